package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"MetroScraper/internal/logger"
	"MetroScraper/pkg/config"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// ErrUnsupportedDriver is returned for WEBDRIVER values that cannot be driven over CDP.
var ErrUnsupportedDriver = errors.New("unsupported webdriver")

// Load strategies, same names as the WebDriver page load strategies.
const (
	LoadNormal = "normal"
	LoadEager  = "eager"
	LoadNone   = "none"
)

// Browser is a launched browser process together with the settings it was started with.
type Browser struct {
	Rod      *rod.Browser
	settings config.BrowserSettings
	launcher *launcher.Launcher
	log      logger.Logger
}

// NewLauncher translates the browser settings into launcher flags without starting anything.
func NewLauncher(s config.BrowserSettings) (*launcher.Launcher, error) {
	l := launcher.New()

	switch strings.ToUpper(s.WebDriver) {
	case "", "CHROMIUM":
		// rod downloads a pinned Chromium when no binary is given.
	case "CHROME":
		if s.BrowserBin == "" {
			if path, has := launcher.LookPath(); has {
				l = l.Bin(path)
			}
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, s.WebDriver)
	}
	if s.BrowserBin != "" {
		l = l.Bin(s.BrowserBin)
	}

	l = l.Headless(s.Headless).NoSandbox(s.NoSandbox)
	if s.DisableDevShmUsage {
		l = l.Set("disable-dev-shm-usage")
	}
	if s.DisableCache {
		l = l.Set("disable-cache")
	}
	if s.WindowSize != "" {
		l = l.Set("window-size", s.WindowSize)
	}
	if s.UserAgent != "" {
		l = l.Set("user-agent", s.UserAgent)
	}
	if s.DisableBlinkFeatures != "" {
		l = l.Set("disable-blink-features", s.DisableBlinkFeatures)
	}
	return l, nil
}

// Launch starts the browser and connects to it.
func Launch(s config.BrowserSettings, log logger.Logger) (*Browser, error) {
	log.Infof("Initializing browser (%s, headless=%t)", s.WebDriver, s.Headless)

	l, err := NewLauncher(s)
	if err != nil {
		return nil, err
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	log.Infof("Browser initialized successfully")
	return &Browser{Rod: b, settings: s, launcher: l, log: log}, nil
}

// Close shuts the browser down and removes its temporary profile.
func (b *Browser) Close() {
	if err := b.Rod.Close(); err != nil {
		b.log.Warnf("Failed to close browser: %v", err)
	}
	b.launcher.Cleanup()
}

// Session opens an isolated incognito context, so cookies such as the chosen store
// do not leak between cities.
func (b *Browser) Session() (*rod.Browser, error) {
	return b.Rod.Incognito()
}

// OpenPage opens a stealth page in session, bound to ctx, and navigates to url.
func (b *Browser) OpenPage(ctx context.Context, session *rod.Browser, url string, timeout time.Duration) (*rod.Page, error) {
	p, err := stealth.Page(session)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	page := p.Context(ctx)
	if err := page.Timeout(timeout).Navigate(url); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := WaitPage(page, b.settings.LoadStrategy, timeout); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}
	return page, nil
}

// WaitPage blocks according to the load strategy: the load event for "normal",
// a non-loading document for "eager", nothing for "none".
func WaitPage(page *rod.Page, strategy string, timeout time.Duration) error {
	switch strings.ToLower(strategy) {
	case LoadNone:
		return nil
	case LoadEager:
		return page.Timeout(timeout).Wait(rod.Eval(`() => document.readyState !== 'loading'`))
	default:
		return page.Timeout(timeout).WaitLoad()
	}
}
