package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"MetroScraper/internal/app"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	task := flag.String("task", "automatic", "Task to run: scrape, export, or automatic")
	configPath := flag.String("config", "config.yml", "Path to the YAML config")
	envPath := flag.String("env", ".env", "Path to the browser env file")
	citiesFlag := flag.String("cities", "", "Comma separated cities, overrides the config")
	flag.Parse()

	application, err := app.New(*configPath, *envPath)
	if err != nil {
		log.Fatalf("Failed to initialise application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	var cities []string
	if *citiesFlag != "" {
		cities = strings.Split(*citiesFlag, ",")
	}

	application.Log.Infof("Running task: %s", *task)

	switch *task {
	case "scrape":
		err = application.RunScraper(ctx, cities)
	case "export":
		err = application.ExportCSV(ctx, cities)
	case "automatic":
		err = application.RunAutomaticWorkflow(ctx, cities)
	default:
		application.Log.Errorf("Unknown task: %s.", *task)
		err = flag.ErrHelp
	}

	stop()
	if err != nil {
		application.Log.Errorf("Task %s failed: %v", *task, err)
		application.Close()
		os.Exit(1)
	}
	application.Close()
}
