// Package config loads client settings from an optional YAML file, a .env
// file and the environment, in increasing order of precedence. Command-line
// flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/erazemk/healthpilot/internal/db"
)

// Config holds every client setting.
type Config struct {
	BackendURL string        `yaml:"backend_url"`
	Food       FoodAPI       `yaml:"food"`
	Exercise   ExerciseAPI   `yaml:"exercise"`
	DBPath     string        `yaml:"db"`
	Addr       string        `yaml:"addr"`
	LogPath    string        `yaml:"log"`
	Timeout    time.Duration `yaml:"timeout"`
	Suggest    Suggest       `yaml:"suggest"`
}

// FoodAPI configures the Edamam food database.
type FoodAPI struct {
	URL    string `yaml:"url"`
	AppID  string `yaml:"app_id"`
	AppKey string `yaml:"app_key"`
}

// ExerciseAPI configures the ExerciseDB lookup.
type ExerciseAPI struct {
	URL  string `yaml:"url"`
	Key  string `yaml:"key"`
	Host string `yaml:"host"`

	// AssetHosts lists the hosts demonstration assets may be fetched from.
	// An entry with a port only matches that port.
	AssetHosts []string `yaml:"asset_hosts"`
}

// Suggest configures the search-as-you-type boxes.
type Suggest struct {
	Delay time.Duration `yaml:"delay"`
	Limit int           `yaml:"limit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BackendURL: "http://localhost:5000",
		Food: FoodAPI{
			URL: "https://api.edamam.com",
		},
		Exercise: ExerciseAPI{
			URL:        "https://exercisedb.p.rapidapi.com",
			Host:       "exercisedb.p.rapidapi.com",
			AssetHosts: []string{"v2.exercisedb.io"},
		},
		DBPath:  db.DefaultPath(),
		Addr:    ":8080",
		Timeout: 10 * time.Second,
		Suggest: Suggest{
			Delay: 500 * time.Millisecond,
			Limit: 10,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults, .env and the environment are used. A missing .env is fine; a
// missing config file named explicitly is not.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides settings from environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"HEALTHPILOT_BACKEND_URL": &c.BackendURL,
		"HEALTHPILOT_DB":          &c.DBPath,
		"HEALTHPILOT_ADDR":        &c.Addr,
		"HEALTHPILOT_LOG":         &c.LogPath,
		"EDAMAM_URL":              &c.Food.URL,
		"EDAMAM_APP_ID":           &c.Food.AppID,
		"EDAMAM_APP_KEY":          &c.Food.AppKey,
		"EXERCISEDB_URL":          &c.Exercise.URL,
		"EXERCISEDB_API_KEY":      &c.Exercise.Key,
		"EXERCISEDB_HOST":         &c.Exercise.Host,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"HEALTHPILOT_TIMEOUT":       &c.Timeout,
		"HEALTHPILOT_SUGGEST_DELAY": &c.Suggest.Delay,
	}
	for name, dst := range durations {
		if v, ok := lookup(name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = d
		}
	}

	if v, ok := lookup("EXERCISEDB_ASSET_HOSTS"); ok && v != "" {
		c.Exercise.AssetHosts = nil
		for _, h := range strings.Split(v, ",") {
			if h = strings.TrimSpace(h); h != "" {
				c.Exercise.AssetHosts = append(c.Exercise.AssetHosts, h)
			}
		}
	}

	if v, ok := lookup("HEALTHPILOT_SUGGEST_LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HEALTHPILOT_SUGGEST_LIMIT: %w", err)
		}
		c.Suggest.Limit = n
	}
	return nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return errors.New("backend_url must be set")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.Suggest.Delay < 0 {
		return errors.New("suggest.delay must not be negative")
	}
	if c.Suggest.Limit <= 0 {
		return errors.New("suggest.limit must be positive")
	}
	return nil
}
