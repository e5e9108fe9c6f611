package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"PulseWatch/pkg/config"
	"PulseWatch/pkg/server"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// .env is optional; real deployments set variables directly
	_ = godotenv.Load()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s exchange=%s", cfg.Environment, cfg.GateIO.BaseURL)

	app, err := server.New(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// blocks until signal
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
