package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"MetroScraper/internal/browser"
	"MetroScraper/internal/database"
	"MetroScraper/internal/export"
	"MetroScraper/internal/kafka"
	"MetroScraper/internal/logger"
	"MetroScraper/internal/models"
	"MetroScraper/internal/scraper"
	"MetroScraper/internal/scraper/metro"
	"MetroScraper/pkg/config"
	"MetroScraper/utils"
)

// ErrCitiesFailed is returned when at least one city could not be scraped.
var ErrCitiesFailed = errors.New("some cities failed")

// ScraperFactory prepares a scraper for one run and returns a function releasing its resources.
type ScraperFactory func() (scraper.Scraper, func(), error)

// App is the main application structure holding all dependencies.
type App struct {
	Config   *config.Config
	Settings *config.BrowserSettings
	Repo     *database.DBRepository
	Producer kafka.Producer
	Log      logger.Logger

	NewScraper ScraperFactory
}

// New creates a new application instance from the YAML config and the browser env file.
func New(configPath, envPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	settings, err := config.LoadBrowserSettings(envPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(settings.LogLevel)
	if err != nil {
		return nil, err
	}
	repo, err := database.InitDB(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Settings: settings,
		Repo:     repo,
		Log:      log,
	}
	a.NewScraper = a.launchMetroScraper

	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			repo.Close()
			return nil, err
		}
		a.Producer = producer
	}
	return a, nil
}

// Close releases the database, the producer and flushes the logger.
func (a *App) Close() {
	if a.Producer != nil {
		if err := a.Producer.Close(); err != nil {
			a.Log.Warnf("Failed to close Kafka producer: %v", err)
		}
	}
	if a.Repo != nil {
		if err := a.Repo.Close(); err != nil {
			a.Log.Warnf("Failed to close database: %v", err)
		}
	}
	_ = a.Log.Sync()
}

// launchMetroScraper starts the browser and wires the Metro scraper to it.
func (a *App) launchMetroScraper() (scraper.Scraper, func(), error) {
	b, err := browser.Launch(*a.Settings, a.Log)
	if err != nil {
		return nil, nil, err
	}

	polite := scraper.NewDomainManager(
		a.Config.Politeness.RequestsPerSecond,
		a.Config.Politeness.Burst,
		a.Config.Politeness.RespectRobots,
		a.Config.Politeness.UserAgentToken,
	)
	workers := utils.GetOptimalWorkerCount(a.Config.Scraper.Workers, a.Log)

	s, err := metro.New(b, a.Config, polite, workers, a.Log)
	if err != nil {
		b.Close()
		return nil, nil, err
	}
	return s, b.Close, nil
}

// citiesOrDefault returns the cleaned list of cities, or the configured ones when empty.
func (a *App) citiesOrDefault(cities []string) []string {
	var cleaned []string
	for _, c := range cities {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		cleaned = a.Config.Metro.Cities
	}
	return utils.UniqueStrings(cleaned)
}

// RunScraper scrapes the category in every city, one city at a time, and stores the results.
// A failing city is logged and skipped; the returned error lists every failed city.
func (a *App) RunScraper(ctx context.Context, cities []string) error {
	_, err := a.scrapeCities(ctx, a.citiesOrDefault(cities))
	return err
}

// scrapeCities replaces the stored stock of every city that scraped successfully and returns
// those cities. A failed city keeps its previous stock.
func (a *App) scrapeCities(ctx context.Context, cities []string) ([]string, error) {
	a.Log.Infof("--- Starting Scraping Task for %d cities ---", len(cities))

	s, cleanup, err := a.NewScraper()
	if err != nil {
		return nil, fmt.Errorf("failed to start scraper: %w", err)
	}
	defer cleanup()

	var done, failed []string
	for i, city := range cities {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		a.Log.Infof("[%d/%d] Scraping city %s", i+1, len(cities), city)

		products, err := s.ScrapeCategory(ctx, city)
		if err != nil {
			if ctx.Err() != nil {
				return done, ctx.Err()
			}
			a.Log.Errorf("Failed to scrape city %s: %v", city, err)
			failed = append(failed, city)
			continue
		}

		saved, err := a.Repo.ReplaceCityProducts(ctx, city, products)
		if err != nil {
			a.Log.Errorf("Failed to save products for %s: %v", city, err)
			failed = append(failed, city)
			continue
		}
		a.Log.Infof("City %s finished. Saved %d products.", city, saved)
		done = append(done, city)

		a.publish(city, products)
	}

	a.Log.Infof("--- Scraping Task Finished: %d ok, %d failed ---", len(done), len(failed))
	if len(failed) > 0 {
		return done, fmt.Errorf("%w: %s", ErrCitiesFailed, strings.Join(failed, ", "))
	}
	return done, nil
}

// publish sends products to Kafka when a producer is configured. Failures are logged only,
// the database stays the source of truth.
func (a *App) publish(city string, products []models.Product) {
	if a.Producer == nil || len(products) == 0 {
		return
	}
	if err := a.Producer.SendBatch(products); err != nil {
		a.Log.Errorf("Failed to publish products for %s: %v", city, err)
	}
}

// ExportCSV writes one <city>.csv per city from the database. With no cities given it
// exports every city that has stored products.
func (a *App) ExportCSV(ctx context.Context, cities []string) error {
	a.Log.Infof("--- Starting CSV Export Task ---")

	var err error
	if len(cities) == 0 {
		cities, err = a.Repo.GetCities(ctx)
		if err != nil {
			return fmt.Errorf("failed to list cities: %w", err)
		}
	}
	if len(cities) == 0 {
		a.Log.Infof("No products stored yet. Nothing to export.")
		return nil
	}

	for _, city := range utils.UniqueStrings(cities) {
		products, err := a.Repo.GetProducts(ctx, models.ProductFilters{City: city})
		if err != nil {
			return fmt.Errorf("failed to load products for %s: %w", city, err)
		}
		path, err := export.ExportCity(a.Config.Storage.CSVDir, city, products)
		if err != nil {
			return err
		}
		a.Log.Infof("Exported %d products for %s to %s", len(products), city, path)
	}
	return nil
}

// RunAutomaticWorkflow scrapes, then exports the cities that scraped successfully. Files of
// failed cities are left as they were.
func (a *App) RunAutomaticWorkflow(ctx context.Context, cities []string) error {
	a.Log.Infof("====== STARTING AUTOMATIC WORKFLOW ======")

	a.Log.Infof("--- STEP 1 of 2: Scraping ---")
	done, scrapeErr := a.scrapeCities(ctx, a.citiesOrDefault(cities))
	if scrapeErr != nil && !errors.Is(scrapeErr, ErrCitiesFailed) {
		return scrapeErr
	}

	a.Log.Infof("--- STEP 2 of 2: Exporting CSV ---")
	if len(done) > 0 {
		if err := a.ExportCSV(ctx, done); err != nil {
			return err
		}
	}

	if scrapeErr != nil {
		a.Log.Warnf("====== AUTOMATIC WORKFLOW FINISHED WITH ERRORS ======")
		return scrapeErr
	}
	a.Log.Infof("====== AUTOMATIC WORKFLOW FINISHED SUCCESSFULLY ======")
	return nil
}
