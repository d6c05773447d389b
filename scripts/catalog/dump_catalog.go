package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rolecast/internal/config"
	"rolecast/internal/game"
)

// Dumps the effective role catalog as YAML. With no argument the built-in
// defaults are printed; with a server.yaml path the file's roles section is
// validated and printed instead. Useful for checking a config file before
// pointing the server at it.
func main() {
	cfg := config.DefaultConfig()

	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Printf("Error reading config file: %v\n", err)
			os.Exit(1)
		}

		var fileCfg config.ServerConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			fmt.Printf("Error parsing config file: %v\n", err)
			os.Exit(1)
		}
		if len(fileCfg.Roles.Available) > 0 {
			cfg.Roles = fileCfg.Roles
		} else {
			fmt.Println("No roles section found, showing built-in defaults")
		}
	}

	registry, err := game.NewRegistryFromConfig(cfg.Roles)
	if err != nil {
		fmt.Printf("Role catalog is invalid: %v\n", err)
		os.Exit(1)
	}

	out, err := yaml.Marshal(map[string]config.RolesConfig{"roles": cfg.Roles})
	if err != nil {
		fmt.Printf("Error encoding catalog: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(out)

	fmt.Println("---")
	fmt.Println("# deal order")
	for _, role := range registry.Roles() {
		kind := "special"
		if !role.Special {
			kind = "catch-all"
		}
		fmt.Printf("# %d. %s (%s, team %s)\n", role.DisplayOrder, role.Name, kind, role.Team)
	}
}
