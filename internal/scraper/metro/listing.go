package metro

import (
	"context"
	"errors"
	"fmt"

	"MetroScraper/internal/models"

	"github.com/go-rod/rod"
)

const defaultMaxShowMore = 200

// LoadAllProducts keeps clicking "show more" until the button is gone or MaxShowMore
// attempts were made. It returns the number of successful clicks.
func (s *MetroScraper) LoadAllProducts(ctx context.Context, page *rod.Page) (int, error) {
	return s.loadAllProducts(ctx, rodActions{page: page, wait: s.conf.ImplicitWait})
}

func (s *MetroScraper) loadAllProducts(ctx context.Context, page pageActions) (int, error) {
	s.log.Infof("Starting to expand the product list")

	limit := s.conf.MaxShowMore
	if limit <= 0 {
		limit = defaultMaxShowMore
	}

	clicks := 0
	for attempt := 0; attempt < limit; attempt++ {
		err := page.Click(showMoreSel)
		switch {
		case errors.Is(err, errElementNotFound):
			if ctx.Err() != nil {
				return clicks, ctx.Err()
			}
			s.log.Infof("'Show more' button not found, list is complete after %d clicks", clicks)
			return clicks, nil
		case err != nil:
			// The button detaches while the next chunk renders; look it up again.
			s.log.Debugf("Failed to click 'Show more': %v", err)
		default:
			clicks++
		}
		if err := pause(ctx, s.conf.Delays.ShowMore); err != nil {
			return clicks, err
		}
	}

	s.log.Warnf("Stopped expanding the product list after %d clicks", clicks)
	return clicks, nil
}

// CollectListing reads the product cards from the current page state.
func (s *MetroScraper) CollectListing(page *rod.Page) ([]models.ListingItem, error) {
	content, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read category page: %w", err)
	}
	items, err := ParseListing(content, s.metro.BaseURL)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Found %d product cards", len(items))
	return items, nil
}
