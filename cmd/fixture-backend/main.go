// Command fixture-backend serves canned sonification results over the same
// HTTP contract as the real analysis service, for local development.
package main

import (
	"log"

	"github.com/alkime/sonify/internal/config"
	"github.com/alkime/sonify/internal/logger"
	"github.com/alkime/sonify/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	lg := logger.SetupLogger(cfg)

	// Log startup information
	lg.Info("Starting fixture backend",
		"env", cfg.Env,
		"port", cfg.Port,
		"fixtures", cfg.FixturesDir,
		"uploads", cfg.UploadsDir,
		"outputs", cfg.OutputsDir,
	)

	srv, err := server.New(cfg, lg)
	if err != nil {
		lg.Error("Failed to create server", "error", err)
		log.Fatalf("Fatal: %v", err)
	}

	if err := server.Run(srv); err != nil {
		lg.Error("Failed to start server", "error", err)
		log.Fatalf("Fatal: %v", err)
	}
}
