package metro

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MetroScraper/internal/models"
	"MetroScraper/internal/scraper"
	"MetroScraper/utils"

	"github.com/go-rod/rod"
)

func cacheKey(city, link string) string {
	return city + "\x00" + link
}

// ScrapeProduct returns the product behind link as seen from the store selected in session.
// ok is false when the product is out of stock. Finished lookups are memoised per city and link,
// failures are not.
func (s *MetroScraper) ScrapeProduct(ctx context.Context, session *rod.Browser, city, link string) (models.Product, bool, error) {
	key := cacheKey(city, link)
	if cached, ok := s.cache.Get(key); ok {
		s.log.Debugf("Product cache hit: %s", link)
		return cached.product, cached.ok, nil
	}

	if !s.polite.IsAllowed(ctx, link) {
		return models.Product{}, false, fmt.Errorf("%w: %s", scraper.ErrDisallowed, link)
	}

	var product models.Product
	err := utils.Retry(ctx, s.conf.Tries, s.conf.RetryDelay, s.log, "product "+link, func() error {
		if err := s.polite.Wait(ctx, link); err != nil {
			return utils.Permanent(err)
		}
		content, err := s.fetch(ctx, session, link)
		if err != nil {
			return err
		}
		p, err := ParseProductPage(content, link)
		if errors.Is(err, scraper.ErrOutOfStock) {
			return utils.Permanent(err)
		}
		if err != nil {
			return err
		}
		product = p
		return nil
	})

	switch {
	case errors.Is(err, scraper.ErrOutOfStock):
		s.log.Infof("The product is out of stock: %s", link)
		s.cache.Add(key, cachedProduct{})
		return models.Product{}, false, nil
	case err != nil:
		return models.Product{}, false, fmt.Errorf("failed to scrape %s: %w", link, err)
	}

	product.City = city
	product.ScrapedAt = time.Now()
	s.cache.Add(key, cachedProduct{product: product, ok: true})
	s.log.Debugf("Item data extracted: %+v", product)
	return product, true, nil
}

// fetchProductHTML opens link in its own page of session and returns the rendered HTML.
func (s *MetroScraper) fetchProductHTML(ctx context.Context, session *rod.Browser, link string) (string, error) {
	s.log.Debugf("Opening product page: %s", link)
	page, err := s.browser.OpenPage(ctx, session, link, s.conf.PageTimeout)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := page.Close(); err != nil {
			s.log.Debugf("Failed to close product page %s: %v", link, err)
		}
	}()

	// Out-of-stock pages never render the name block, so a miss here is not an error.
	if _, err := page.Timeout(s.conf.ImplicitWait).Element(productNameSel); err != nil && ctx.Err() != nil {
		return "", ctx.Err()
	}

	content, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read product page: %w", err)
	}
	return content, nil
}
