package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Project-Sylos/Folio/internal/api"
	"github.com/Project-Sylos/Folio/internal/config"
	"github.com/Project-Sylos/Folio/internal/db"
	"github.com/Project-Sylos/Folio/internal/logging"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logging.Setup(cfg.Log, false); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	log.Infof("Folio history service (config: %q)", configPath)

	// Open the store
	store, err := db.New(cfg.Store.DBPath, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	if cfg.Seed.Enabled {
		if _, _, err := store.Seed(cfg.Seed); err != nil {
			log.Fatalf("Failed to seed store: %v", err)
		}
	}

	server := api.NewServer(store, &cfg.API)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-sigChan
		log.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			log.Errorf("Error shutting down: %v", err)
		}
	}()

	// I am here to serve.
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	<-done
	log.Info("Server shutdown complete")
}

// getConfigPath returns the configuration file path; empty means defaults
// plus FOLIO_* environment overrides
func getConfigPath() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return ""
}
