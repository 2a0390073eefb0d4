package metro

import (
	"context"
	"fmt"

	"MetroScraper/internal/models"
	"MetroScraper/utils"

	"github.com/go-rod/rod"
)

// ScrapeCategory implements scraper.Scraper.
func (s *MetroScraper) ScrapeCategory(ctx context.Context, city string) ([]models.Product, error) {
	s.log.Infof("Starting to parse category %s for city: %s", s.metro.CategoryPath, city)

	var session *rod.Browser
	var listing []models.ListingItem

	// Each attempt starts from a fresh incognito context, like a fresh browser would.
	err := utils.Retry(ctx, s.conf.Tries, s.conf.RetryDelay, s.log, "category listing for "+city, func() error {
		if session != nil {
			_ = session.Close()
			session = nil
		}
		sess, err := s.browser.Session()
		if err != nil {
			return fmt.Errorf("failed to open browser session: %w", err)
		}
		session = sess

		items, err := s.loadListing(ctx, session, city)
		if err != nil {
			return err
		}
		listing = items
		return nil
	})
	if session != nil {
		defer session.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load category for %s: %w", city, err)
	}

	products, err := s.scrapeDetails(ctx, session, city, listing)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Parsed %d products for %s", len(products), city)
	return products, nil
}

func (s *MetroScraper) loadListing(ctx context.Context, session *rod.Browser, city string) ([]models.ListingItem, error) {
	s.log.Infof("Navigating to category page")
	page, err := s.browser.OpenPage(ctx, session, s.metro.CategoryURL(), s.conf.PageTimeout)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if err := s.SelectAddress(ctx, page, city); err != nil {
		return nil, err
	}
	if _, err := s.LoadAllProducts(ctx, page); err != nil {
		return nil, err
	}
	return s.CollectListing(page)
}

type detailJob struct {
	index int
	link  string
}

type detailResult struct {
	index   int
	product models.Product
	ok      bool
	err     error
}

// scrapeDetails fetches every in-stock card with a bounded pool of pages and keeps listing order.
// Products that still fail after all retries are logged and left out.
func (s *MetroScraper) scrapeDetails(ctx context.Context, session *rod.Browser, city string, listing []models.ListingItem) ([]models.Product, error) {
	var jobsList []detailJob
	for i, item := range listing {
		if item.SoldOut {
			s.log.Debugf("Skipping sold out product: %s", item.Link)
			continue
		}
		jobsList = append(jobsList, detailJob{index: i, link: item.Link})
	}
	if len(jobsList) == 0 {
		return []models.Product{}, nil
	}

	numWorkers := s.workers
	if numWorkers > len(jobsList) {
		numWorkers = len(jobsList)
	}
	s.log.Infof("Scraping %d products with %d workers", len(jobsList), numWorkers)

	jobs := make(chan detailJob, len(jobsList))
	results := make(chan detailResult, len(jobsList))

	for w := 1; w <= numWorkers; w++ {
		go func(workerID int) {
			for job := range jobs {
				if ctx.Err() != nil {
					results <- detailResult{index: job.index, err: ctx.Err()}
					continue
				}
				s.log.Debugf("[Worker %d] Scraping details for: %s", workerID, job.link)
				p, ok, err := s.ScrapeProduct(ctx, session, city, job.link)
				results <- detailResult{index: job.index, product: p, ok: ok, err: err}
			}
		}(w)
	}

	for _, j := range jobsList {
		jobs <- j
	}
	close(jobs)

	byIndex := make([]*models.Product, len(listing))
	failed := 0
	for range jobsList {
		r := <-results
		if r.err != nil {
			failed++
			s.log.Errorf("Giving up on product: %v", r.err)
			continue
		}
		if r.ok {
			p := r.product
			byIndex[r.index] = &p
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failed > 0 {
		s.log.Warnf("%d of %d products could not be scraped for %s", failed, len(jobsList), city)
	}

	products := make([]models.Product, 0, len(jobsList))
	for _, p := range byIndex {
		if p != nil {
			products = append(products, *p)
		}
	}
	return products, nil
}
