// Package main is the entry point for the rolecast server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rolecast",
	Short: "Pass-the-device secret role dealer",
	Long:  `Rolecast deals hidden roles for social deduction games played around one table, using a single shared device that is passed from player to player.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
