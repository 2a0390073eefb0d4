package main

import (
	"flag"
	"log"

	"MetroScraper/internal/database"
	"MetroScraper/internal/logger"
	"MetroScraper/internal/server"
	"MetroScraper/pkg/config"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", "config.yml", "Path to the YAML config")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	l, err := logger.New(*logLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer l.Sync()

	repo, err := database.InitDB(cfg.Storage.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()

	if err := server.Start(repo, cfg, l); err != nil {
		l.Errorf("Server stopped: %v", err)
	}
}
