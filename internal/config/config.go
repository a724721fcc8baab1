package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultRestMinutes      = 5
	DefaultIntervalMinutes  = 30
	DefaultCountdownMinutes = 25
	MinCountdownMinutes     = 1
	MaxCountdownMinutes     = 180
)

type Config struct {
	DBPath     string   `json:"db_path"`
	WebEnabled bool     `json:"web_enabled"`
	WebPort    int      `json:"web_port"`
	LogPath    string   `json:"log_path"`
	Settings   Settings `json:"settings"`
}

// Settings holds the user preferences edited on the settings page.
type Settings struct {
	NotificationsEnabled bool `json:"notifications_enabled"`
	DefaultRestMinutes   int  `json:"default_rest_minutes"`
	RestIntervalHours    int  `json:"rest_interval_hours"`
	RestIntervalMinutes  int  `json:"rest_interval_minutes"`
	CountdownMinutes     int  `json:"countdown_minutes"`
	SkipPauseWarning     bool `json:"skip_pause_warning"`
}

func Default() Config {
	return Config{WebPort: 8080, DBPath: ":memory:", Settings: DefaultSettings()}
}

func DefaultSettings() Settings {
	return Settings{
		DefaultRestMinutes:  DefaultRestMinutes,
		RestIntervalMinutes: DefaultIntervalMinutes,
		CountdownMinutes:    DefaultCountdownMinutes,
	}
}

// Validate resets out-of-range values to their defaults.
func (s *Settings) Validate() {
	if s.DefaultRestMinutes < 0 || s.DefaultRestMinutes > 30 {
		s.DefaultRestMinutes = DefaultRestMinutes
	}
	if s.RestIntervalHours < 0 || s.RestIntervalHours > 23 {
		s.RestIntervalHours = 0
	}
	if s.RestIntervalMinutes < 0 || s.RestIntervalMinutes > 59 {
		s.RestIntervalMinutes = DefaultIntervalMinutes
	}
	if s.CountdownMinutes < MinCountdownMinutes || s.CountdownMinutes > MaxCountdownMinutes {
		s.CountdownMinutes = DefaultCountdownMinutes
	}
}

func (s Settings) RestInterval() time.Duration {
	return time.Duration(s.RestIntervalHours)*time.Hour + time.Duration(s.RestIntervalMinutes)*time.Minute
}

func (s Settings) RestDuration() time.Duration {
	return time.Duration(s.DefaultRestMinutes) * time.Minute
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "lazyfocus", "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	config.Settings.Validate()
	return config, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	cfg.Settings.Validate()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
