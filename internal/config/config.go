package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAddr         = ":8000"
	defaultAPIBaseURL   = "http://127.0.0.1:8000"
	defaultPollInterval = 5 * time.Second
	defaultProbeTimeout = 3 * time.Second
	defaultLogLevel     = "info"
)

type Config struct {
	Addr         string
	DatabaseURL  string
	APIBaseURL   string
	PollInterval time.Duration
	ProbeTimeout time.Duration
	LogLevel     string
	Env          string
}

// Load reads .env when present and then the process environment. Invalid
// durations keep their defaults and are reported in the returned error;
// the Config is usable either way.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:        getenv("POS_ADDR", defaultAddr),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		APIBaseURL:  getenv("POS_API_BASE_URL", defaultAPIBaseURL),
		LogLevel:    getenv("LOG_LEVEL", defaultLogLevel),
		Env:         os.Getenv("APP_ENV"),
	}

	var errs []error
	var err error
	if cfg.PollInterval, err = duration("POS_POLL_INTERVAL", defaultPollInterval); err != nil {
		errs = append(errs, err)
	}
	if cfg.ProbeTimeout, err = duration("POS_PROBE_TIMEOUT", defaultProbeTimeout); err != nil {
		errs = append(errs, err)
	}
	return cfg, errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}
