package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration. Values come from an optional
// yaml file, with environment variables taking precedence over both the file
// and the defaults.
type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`

	Queue struct {
		// PageSize is the default queue listing length for status reads
		// and broadcast snapshots.
		PageSize int `yaml:"page_size"`
	} `yaml:"queue"`

	Estimator struct {
		// DefaultPrepMinutes seeds the wait estimator until completed
		// orders provide real history.
		DefaultPrepMinutes int `yaml:"default_prep_minutes"`
	} `yaml:"estimator"`

	Analytics struct {
		// Timezone is the IANA zone whose midnight resets completed_today.
		Timezone string `yaml:"timezone"`
		// RecentCapacity bounds the recent-completions list.
		RecentCapacity int `yaml:"recent_capacity"`
	} `yaml:"analytics"`

	Database struct {
		// URL enables the postgres history archive when set.
		URL string `yaml:"url"`
	} `yaml:"database"`

	AMQP struct {
		// URL enables the RabbitMQ update publisher when set.
		URL string `yaml:"url"`
	} `yaml:"amqp"`
}

// Load reads configuration from path (missing file is fine) and applies env
// overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// run on defaults + env
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.AMQP.URL = getEnv("AMQP_URL", cfg.AMQP.URL)
	cfg.Analytics.Timezone = getEnv("ANALYTICS_TIMEZONE", cfg.Analytics.Timezone)
	cfg.Estimator.DefaultPrepMinutes = getEnvInt("DEFAULT_PREP_MINUTES", cfg.Estimator.DefaultPrepMinutes)

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Server.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	cfg.Queue.PageSize = 8
	cfg.Estimator.DefaultPrepMinutes = 5
	cfg.Analytics.RecentCapacity = 20
	return cfg
}

// DefaultPrep returns the estimator seed as a duration.
func (c *Config) DefaultPrep() time.Duration {
	return time.Duration(c.Estimator.DefaultPrepMinutes) * time.Minute
}

// Location resolves the analytics timezone; empty means the host's local
// zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Analytics.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Analytics.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Analytics.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
