package scraper

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// robotsEntry is fetched once per host; group stays nil when robots.txt is unavailable.
type robotsEntry struct {
	once  sync.Once
	group *robotstxt.Group
}

// DomainManager paces requests per host and answers robots.txt questions.
type DomainManager struct {
	mu            sync.Mutex
	limiters      map[string]*rate.Limiter
	robotsCache   map[string]*robotsEntry
	limit         rate.Limit
	burst         int
	respectRobots bool
	userAgent     string
	client        *http.Client
}

// NewDomainManager builds a manager allowing rps requests per second per host.
// A non-positive rps disables pacing.
func NewDomainManager(rps float64, burst int, respectRobots bool, userAgent string) *DomainManager {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst < 1 {
		burst = 1
	}
	return &DomainManager{
		limiters:      make(map[string]*rate.Limiter),
		robotsCache:   make(map[string]*robotsEntry),
		limit:         limit,
		burst:         burst,
		respectRobots: respectRobots,
		userAgent:     userAgent,
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

// Wait blocks until the host of targetURL may be hit again.
func (d *DomainManager) Wait(ctx context.Context, targetURL string) error {
	u, err := url.Parse(targetURL)
	if err != nil {
		return err
	}

	d.mu.Lock()
	limiter, exists := d.limiters[u.Host]
	if !exists {
		limiter = rate.NewLimiter(d.limit, d.burst)
		d.limiters[u.Host] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// IsAllowed reports whether robots.txt permits link. Hosts whose robots.txt cannot be
// fetched are treated as allowed. Always true when robots handling is off.
func (d *DomainManager) IsAllowed(ctx context.Context, link string) bool {
	if !d.respectRobots {
		return true
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}

	d.mu.Lock()
	entry, exists := d.robotsCache[u.Host]
	if !exists {
		entry = &robotsEntry{}
		d.robotsCache[u.Host] = entry
	}
	d.mu.Unlock()

	// Only callers for the same host wait on the fetch.
	entry.once.Do(func() {
		entry.group = d.fetchRobots(ctx, u)
	})
	if entry.group == nil {
		return true
	}
	return entry.group.Test(u.Path)
}

func (d *DomainManager) fetchRobots(ctx context.Context, u *url.URL) *robotstxt.Group {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.Scheme+"://"+u.Host+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data.FindGroup(d.userAgent)
}
