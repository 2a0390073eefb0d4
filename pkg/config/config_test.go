package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Scraper.Tries)
	assert.Equal(t, []string{"Москва", "Санкт-Петербург"}, cfg.Metro.Cities)
	assert.Equal(t, "https://online.metro-cc.ru/category/sladosti-chipsy-sneki/shokolad-batonchiki", cfg.Metro.CategoryURL())
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	yml := `
scraper:
  workers: "3"
  tries: 0
  retry_delay: 250ms
  delays:
    show_more: 1s
metro:
  cities: ["Казань"]
kafka:
  enabled: true
  topic: products
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "3", cfg.Scraper.Workers)
	assert.Equal(t, 1, cfg.Scraper.Tries, "tries is clamped to at least one attempt")
	assert.Equal(t, 250*time.Millisecond, cfg.Scraper.RetryDelay)
	assert.Equal(t, time.Second, cfg.Scraper.Delays.ShowMore)
	assert.Equal(t, 2*time.Second, cfg.Scraper.Delays.CityInput)
	assert.Equal(t, []string{"Казань"}, cfg.Metro.Cities)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, "products", cfg.Kafka.Topic)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("scraper: [oops"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadBrowserSettings_FromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env.non-dev")
	env := "WEBDRIVER=CHROME\nHEADLESS=false\nNO_SANDBOX=true\nWINDOW_SIZE=1280,800\nLOAD_STRATEGY=eager\n"
	require.NoError(t, os.WriteFile(path, []byte(env), 0o600))

	keys := []string{"WEBDRIVER", "HEADLESS", "NO_SANDBOX", "WINDOW_SIZE", "LOAD_STRATEGY", "LOG_LEVEL"}
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	s, err := LoadBrowserSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "CHROME", s.WebDriver)
	assert.False(t, s.Headless)
	assert.True(t, s.NoSandbox)
	assert.Equal(t, "1280,800", s.WindowSize)
	assert.Equal(t, "eager", s.LoadStrategy)
	assert.Equal(t, "info", s.LogLevel)
}

func TestLoadBrowserSettings_MissingEnvFileIsTolerated(t *testing.T) {
	t.Setenv("HEADLESS", "true")

	s, err := LoadBrowserSettings(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.True(t, s.Headless)
}

func TestLoadBrowserSettings_BadBool(t *testing.T) {
	t.Setenv("NO_SANDBOX", "definitely")

	_, err := LoadBrowserSettings("")
	assert.Error(t, err)
}
