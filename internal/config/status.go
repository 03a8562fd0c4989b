package config

import (
	"fmt"
	"os"
)

// SettingSource represents where an effective setting value comes from.
type SettingSource string

const (
	SourceEnv     SettingSource = "env"
	SourceConfig  SettingSource = "config"
	SourceDefault SettingSource = "default"
)

// SettingStatus describes one effective setting for status output.
type SettingStatus struct {
	Name   string        `json:"name"`
	Value  string        `json:"value"`
	Source SettingSource `json:"source"`
}

// Describe returns the effective values of the settings worth showing
// in status output, with the source each one was resolved from.
func Describe(cfg *Config) []SettingStatus {
	return []SettingStatus{
		describeSetting("Coinlore base URL", cfg.Coinlore.BaseURL,
			"https://api.coinlore.net/api", "CRYPTOFUN_COINLORE_BASE_URL"),
		describeSetting("Request timeout", fmt.Sprintf("%ds", cfg.Coinlore.TimeoutSec),
			"30s", "CRYPTOFUN_COINLORE_TIMEOUT_SEC"),
		describeSetting("Watch interval", fmt.Sprintf("%ds", cfg.Watch.IntervalSec),
			"60s", "CRYPTOFUN_WATCH_INTERVAL_SEC"),
		describeSetting("API listen", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
			"0.0.0.0:8080", "CRYPTOFUN_API_PORT"),
		describeSetting("Log level", cfg.Logging.Level, "info", "CRYPTOFUN_LOGGING_LEVEL"),
	}
}

// describeSetting resolves where a value came from: env wins over
// config file, and a value equal to the default is reported as such.
func describeSetting(name, value, defaultValue, envVar string) SettingStatus {
	s := SettingStatus{Name: name, Value: value}
	switch {
	case os.Getenv(envVar) != "":
		s.Source = SourceEnv
	case value != defaultValue:
		s.Source = SourceConfig
	default:
		s.Source = SourceDefault
	}
	return s
}
