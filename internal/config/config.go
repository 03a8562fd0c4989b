// Package config handles configuration loading for crypto-fun.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Coinlore CoinloreConfig `mapstructure:"coinlore" yaml:"coinlore"`
	Market   MarketConfig   `mapstructure:"market"   yaml:"market"`
	Watch    WatchConfig    `mapstructure:"watch"    yaml:"watch"`
	News     NewsConfig     `mapstructure:"news"     yaml:"news"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// CoinloreConfig holds upstream Coinlore client settings.
type CoinloreConfig struct {
	BaseURL       string `mapstructure:"base_url"        yaml:"base_url"`
	TimeoutSec    int    `mapstructure:"timeout_sec"     yaml:"timeout_sec"`
	RateLimit     int    `mapstructure:"rate_limit"      yaml:"rate_limit"`      // requests per window
	RateWindowSec int    `mapstructure:"rate_window_sec" yaml:"rate_window_sec"`
	CacheTTLSec   int    `mapstructure:"cache_ttl_sec"   yaml:"cache_ttl_sec"`
}

// MarketConfig holds the derived-view policies.
type MarketConfig struct {
	PageLimit        int `mapstructure:"page_limit"         yaml:"page_limit"`
	SearchPageLimit  int `mapstructure:"search_page_limit"  yaml:"search_page_limit"`
	SearchMinResults int `mapstructure:"search_min_results" yaml:"search_min_results"`
	TopMovers        int `mapstructure:"top_movers"         yaml:"top_movers"`
}

// WatchConfig holds the background refresh settings.
type WatchConfig struct {
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`
	PageLimit   int `mapstructure:"page_limit"   yaml:"page_limit"`
}

// NewsConfig holds the RSS aggregation settings.
type NewsConfig struct {
	Enabled     bool     `mapstructure:"enabled"       yaml:"enabled"`
	Feeds       []string `mapstructure:"feeds"         yaml:"feeds"` // "Name=URL" pairs; empty uses defaults
	CacheTTLSec int      `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.cryptofun/config.yaml (home directory)
//  3. /etc/cryptofun/config.yaml (system)
//
// Environment variables override config file values.
// Format: CRYPTOFUN_<SECTION>_<KEY>, e.g., CRYPTOFUN_API_PORT
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".cryptofun"))
	v.AddConfigPath("/etc/cryptofun")

	v.SetEnvPrefix("CRYPTOFUN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("CRYPTOFUN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Coinlore defaults
	v.SetDefault("coinlore.base_url", "https://api.coinlore.net/api")
	v.SetDefault("coinlore.timeout_sec", 30)
	v.SetDefault("coinlore.rate_limit", 1)
	v.SetDefault("coinlore.rate_window_sec", 1)
	v.SetDefault("coinlore.cache_ttl_sec", 60)

	// Market view defaults
	v.SetDefault("market.page_limit", 100)
	v.SetDefault("market.search_page_limit", 2000)
	v.SetDefault("market.search_min_results", 5)
	v.SetDefault("market.top_movers", 10)

	// Watch defaults
	v.SetDefault("watch.interval_sec", 60)
	v.SetDefault("watch.page_limit", 100)

	// News defaults
	v.SetDefault("news.enabled", true)
	v.SetDefault("news.cache_ttl_sec", 600)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads the upstream override keys from
// environment variables, matching how they are documented.
func overrideFromEnv(cfg *Config) {
	if u := os.Getenv("CRYPTOFUN_COINLORE_BASE_URL"); u != "" {
		cfg.Coinlore.BaseURL = u
	}
	if h := os.Getenv("CRYPTOFUN_API_HOST"); h != "" {
		cfg.API.Host = h
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
