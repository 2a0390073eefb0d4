package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ScraperConfig holds general scraper settings.
type ScraperConfig struct {
	Workers      string        `yaml:"workers"`
	Tries        int           `yaml:"tries"`
	RetryDelay   time.Duration `yaml:"retry_delay"`
	ImplicitWait time.Duration `yaml:"implicit_wait"`
	PageTimeout  time.Duration `yaml:"page_timeout"`
	MaxShowMore  int           `yaml:"max_show_more"`
	CacheSize    int           `yaml:"cache_size"`
	Delays       DelayConfig   `yaml:"delays"`
}

// DelayConfig holds the pauses the site needs between UI actions.
type DelayConfig struct {
	CityInput  time.Duration `yaml:"city_input"`
	CityItem   time.Duration `yaml:"city_item"`
	SelectDone time.Duration `yaml:"select_done"`
	ShowMore   time.Duration `yaml:"show_more"`
}

// MetroConfig holds settings specific to the Metro online store.
type MetroConfig struct {
	BaseURL      string   `yaml:"base_url"`
	CategoryPath string   `yaml:"category_path"`
	Cities       []string `yaml:"cities"`
}

// CategoryURL returns the absolute URL of the configured category.
func (m MetroConfig) CategoryURL() string {
	return strings.TrimRight(m.BaseURL, "/") + "/" + strings.TrimLeft(m.CategoryPath, "/")
}

type StorageConfig struct {
	DBPath string `yaml:"db_path"`
	CSVDir string `yaml:"csv_dir"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// PolitenessConfig controls request pacing and robots.txt handling.
type PolitenessConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	RespectRobots     bool    `yaml:"respect_robots"`
	UserAgentToken    string  `yaml:"user_agent_token"`
}

// Config is the complete structure for the config.yml file.
type Config struct {
	Scraper    ScraperConfig    `yaml:"scraper"`
	Metro      MetroConfig      `yaml:"metro"`
	Storage    StorageConfig    `yaml:"storage"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Server     ServerConfig     `yaml:"server"`
	Politeness PolitenessConfig `yaml:"politeness"`
}

// BrowserSettings is read from the environment (usually an env file).
type BrowserSettings struct {
	WebDriver            string `envconfig:"WEBDRIVER" default:"CHROMIUM"`
	BrowserBin           string `envconfig:"BROWSER_BIN"`
	LoadStrategy         string `envconfig:"LOAD_STRATEGY" default:"normal"`
	WindowSize           string `envconfig:"WINDOW_SIZE" default:"1920,1080"`
	DisableCache         bool   `envconfig:"DISABLE_CACHE" default:"false"`
	NoSandbox            bool   `envconfig:"NO_SANDBOX" default:"false"`
	DisableDevShmUsage   bool   `envconfig:"DISABLE_DEV_SHM_USAGE" default:"false"`
	Headless             bool   `envconfig:"HEADLESS" default:"true"`
	DisableBlinkFeatures string `envconfig:"DISABLE_BLINK_FEATURES" default:"AutomationControlled"`
	UserAgent            string `envconfig:"USER_AGENT"`
	LogLevel             string `envconfig:"LOG_LEVEL" default:"info"`
}

// Default returns the configuration used when no config.yml is present.
func Default() *Config {
	return &Config{
		Scraper: ScraperConfig{
			Workers:      "auto",
			Tries:        10,
			RetryDelay:   time.Second,
			ImplicitWait: 6 * time.Second,
			PageTimeout:  60 * time.Second,
			MaxShowMore:  200,
			CacheSize:    4096,
			Delays: DelayConfig{
				CityInput:  2 * time.Second,
				CityItem:   1 * time.Second,
				SelectDone: 3 * time.Second,
				ShowMore:   3 * time.Second,
			},
		},
		Metro: MetroConfig{
			BaseURL:      "https://online.metro-cc.ru/",
			CategoryPath: "category/sladosti-chipsy-sneki/shokolad-batonchiki",
			Cities:       []string{"Москва", "Санкт-Петербург"},
		},
		Storage: StorageConfig{
			DBPath: "products.db",
			CSVDir: ".",
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "metro.products",
		},
		Server: ServerConfig{Port: "8080"},
		Politeness: PolitenessConfig{
			RequestsPerSecond: 2,
			Burst:             1,
			UserAgentToken:    "MetroScraper",
		},
	}
}

// LoadConfig reads the YAML file on top of the defaults. A missing file is not an error.
func LoadConfig(filepath string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filepath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config YAML: %w", err)
	}
	if cfg.Scraper.Tries < 1 {
		cfg.Scraper.Tries = 1
	}
	return cfg, nil
}

// LoadBrowserSettings loads envFile into the process environment (if it exists) and decodes
// the browser settings from it. Variables injected by the runtime win over the file.
func LoadBrowserSettings(envFile string) (*BrowserSettings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if _, statErr := os.Stat(envFile); statErr == nil {
				return nil, fmt.Errorf("env file %s found but could not be loaded: %w", envFile, err)
			}
		}
	}

	var s BrowserSettings
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("invalid browser settings: %w", err)
	}
	return &s, nil
}
