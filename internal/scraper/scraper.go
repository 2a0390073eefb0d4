package scraper

import (
	"context"
	"errors"

	"MetroScraper/internal/models"
)

var (
	// ErrOutOfStock means the product page lacks the price or attribute blocks.
	ErrOutOfStock = errors.New("product is out of stock")
	// ErrDisallowed means robots.txt forbids the URL for our user agent.
	ErrDisallowed = errors.New("disallowed by robots.txt")
)

// Scraper defines the behaviour of a store scraper.
type Scraper interface {
	// ScrapeCategory selects a store in city, walks the whole category listing and returns
	// the details of every product that is in stock there.
	ScrapeCategory(ctx context.Context, city string) ([]models.Product, error)
}
