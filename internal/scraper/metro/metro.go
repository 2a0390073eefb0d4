package metro

import (
	"context"
	"fmt"
	"time"

	"MetroScraper/internal/browser"
	"MetroScraper/internal/logger"
	"MetroScraper/internal/models"
	"MetroScraper/internal/scraper"
	"MetroScraper/pkg/config"

	"github.com/go-rod/rod"
	lru "github.com/hashicorp/golang-lru/v2"
)

// fetchFunc returns the rendered HTML of a product page opened in session.
type fetchFunc func(ctx context.Context, session *rod.Browser, link string) (string, error)

// cachedProduct is a finished lookup; ok is false for out-of-stock pages.
type cachedProduct struct {
	product models.Product
	ok      bool
}

// MetroScraper scrapes one category of online.metro-cc.ru.
type MetroScraper struct {
	browser *browser.Browser
	conf    config.ScraperConfig
	metro   config.MetroConfig
	polite  *scraper.DomainManager
	cache   *lru.Cache[string, cachedProduct]
	workers int
	log     logger.Logger
	fetch   fetchFunc
}

var _ scraper.Scraper = (*MetroScraper)(nil)

// New creates a scraper driving b. workers bounds the number of product pages open at once.
func New(b *browser.Browser, cfg *config.Config, polite *scraper.DomainManager, workers int, log logger.Logger) (*MetroScraper, error) {
	size := cfg.Scraper.CacheSize
	if size < 1 {
		size = 1
	}
	cache, err := lru.New[string, cachedProduct](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create product cache: %w", err)
	}
	if workers < 1 {
		workers = 1
	}

	s := &MetroScraper{
		browser: b,
		conf:    cfg.Scraper,
		metro:   cfg.Metro,
		polite:  polite,
		cache:   cache,
		workers: workers,
		log:     log,
	}
	s.fetch = s.fetchProductHTML
	return s, nil
}

// pause sleeps for d unless ctx ends first.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
