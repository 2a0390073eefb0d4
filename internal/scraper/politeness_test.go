package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func robotsServer(t *testing.T, body string, status int, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(hits, 1)
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDomainManager_IsAllowed(t *testing.T) {
	var hits int32
	srv := robotsServer(t, "User-agent: *\nDisallow: /basket\n", http.StatusOK, &hits)
	d := NewDomainManager(0, 1, true, "MetroScraper")
	ctx := context.Background()

	assert.True(t, d.IsAllowed(ctx, srv.URL+"/products/123"))
	assert.False(t, d.IsAllowed(ctx, srv.URL+"/basket"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "robots.txt is fetched once per host")
}

func TestDomainManager_MissingRobotsAllowsAll(t *testing.T) {
	var hits int32
	srv := robotsServer(t, "", http.StatusNotFound, &hits)
	d := NewDomainManager(0, 1, true, "MetroScraper")

	assert.True(t, d.IsAllowed(context.Background(), srv.URL+"/anything"))
}

func TestDomainManager_RobotsDisabled(t *testing.T) {
	var hits int32
	srv := robotsServer(t, "User-agent: *\nDisallow: /\n", http.StatusOK, &hits)
	d := NewDomainManager(0, 1, false, "MetroScraper")

	assert.True(t, d.IsAllowed(context.Background(), srv.URL+"/products/1"))
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestDomainManager_WaitPacesPerHost(t *testing.T) {
	d := NewDomainManager(20, 1, false, "MetroScraper")
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, d.Wait(ctx, "https://online.metro-cc.ru/products/1"))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)

	// A different host has its own budget.
	start = time.Now()
	require.NoError(t, d.Wait(ctx, "https://example.com/"))
	assert.Less(t, time.Since(start), 40*time.Millisecond)
}

func TestDomainManager_WaitHonoursContext(t *testing.T) {
	d := NewDomainManager(0.001, 1, false, "MetroScraper")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.NoError(t, d.Wait(ctx, "https://online.metro-cc.ru/"))
	assert.Error(t, d.Wait(ctx, "https://online.metro-cc.ru/"))
}

func TestDomainManager_RobotsFetchDoesNotBlockWait(t *testing.T) {
	release := make(chan struct{})
	var hits int32
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		fmt.Fprint(w, "User-agent: *\nDisallow: /basket\n")
	}))
	t.Cleanup(slow.Close)
	t.Cleanup(func() {
		select {
		case <-release:
		default:
			close(release)
		}
	})

	d := NewDomainManager(0, 1, true, "MetroScraper")
	ctx := context.Background()

	allowed := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		go func() { allowed <- d.IsAllowed(ctx, slow.URL+"/basket") }()
	}

	// Give the robots.txt request time to start, then pace another host.
	require.Eventually(t, func() bool { return atomic.LoadInt32(&hits) == 1 }, time.Second, 5*time.Millisecond)
	waited := make(chan error, 1)
	go func() { waited <- d.Wait(ctx, "https://other.example/products/1") }()
	select {
	case err := <-waited:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait blocked behind a robots.txt fetch")
	}

	close(release)
	assert.False(t, <-allowed)
	assert.False(t, <-allowed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "concurrent callers share one fetch")
}
