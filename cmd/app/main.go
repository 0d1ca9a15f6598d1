package main

import (
	"flag"
	"log"
	"os"

	"QuantEase/internal/di"
	"QuantEase/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s archive=%v seed=%d", cfg.Environment, cfg.Archive.Enabled, cfg.Strategy.Seed)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if cfg.Archive.Enabled {
		log.Printf("archive backend=%s db=%s table=%s", cfg.Archive.Backend, cfg.ClickHouse.Database, cfg.ClickHouse.Table)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
