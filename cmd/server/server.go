package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rolecast/internal/config"
	"rolecast/internal/game"
	"rolecast/internal/handlers"
	"rolecast/internal/store"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the rolecast HTTP server with the configured role catalog.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to a server.yaml config file")
}

// SetupServer wires the role registry, session store, handlers and router
// from configuration.
func SetupServer(cfg *config.ServerConfig) (http.Handler, *store.MemoryStore, error) {
	registry, err := game.NewRegistryFromConfig(cfg.Roles)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid role catalog: %w", err)
	}

	sessionStore := store.NewMemoryStore(cfg)
	h := handlers.New(sessionStore, registry, cfg)
	router := handlers.SetupRouter(h, cfg, nil)
	return router, sessionStore, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Printf("Loaded configuration: max players per session = %d", cfg.Server.MaxPlayers)

	handler, sessionStore, err := SetupServer(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Sweep expired sessions for the life of the server.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if purged := sessionStore.PurgeExpired(cfg.Server.SessionTimeout); purged > 0 {
					log.Printf("Purged %d expired session(s)", purged)
				}
			}
		}
	}()

	addr := cfg.Server.Host + ":" + cfg.Server.Port

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout, // 0 for SSE support
	}

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server gracefully stopped")
	return nil
}
