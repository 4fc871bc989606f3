package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration parses TOML duration strings like "30s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	if parsed <= 0 {
		return fmt.Errorf("duration %q must be positive", string(text))
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the daemon configuration loaded from config.toml.
// Retention is deliberately not configurable; it is the
// store.RetentionDays constant.
type Config struct {
	StorePath          string   `toml:"store_path"`
	SampleInterval     Duration `toml:"sample_interval"`
	AutosaveInterval   Duration `toml:"autosave_interval"`
	MayBeInactiveAfter Duration `toml:"may_be_inactive_after"`
	InactiveAfter      Duration `toml:"inactive_after"`
}

// SetDefault fills unset fields with their default values.
func (c *Config) SetDefault() {
	if c.StorePath == "" {
		c.StorePath = defaultStorePath()
	}
	if c.SampleInterval == 0 {
		c.SampleInterval = Duration(30 * time.Second)
	}
	if c.AutosaveInterval == 0 {
		c.AutosaveInterval = Duration(5 * time.Minute)
	}
	if c.MayBeInactiveAfter == 0 {
		c.MayBeInactiveAfter = Duration(1 * time.Minute)
	}
	if c.InactiveAfter == 0 {
		c.InactiveAfter = Duration(5 * time.Minute)
	}
}

// Validate rejects configurations the collector cannot run with.
func (c *Config) Validate() error {
	if c.InactiveAfter.Std() <= c.MayBeInactiveAfter.Std() {
		return fmt.Errorf("inactive_after (%s) must be greater than may_be_inactive_after (%s)",
			c.InactiveAfter.Std(), c.MayBeInactiveAfter.Std())
	}
	return nil
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "store.json"
	}
	return filepath.Join(home, ".local", "share", "daytrace", "store.json")
}

func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file is fine; run on defaults.
			return LoadConfigFromBytes(nil)
		}
		return nil, err
	}
	return LoadConfigFromBytes(data)
}

func LoadConfigFromBytes(data []byte) (*Config, error) {
	var config Config
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	config.SetDefault()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
