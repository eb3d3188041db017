// Package config provides runtime configuration values for the service.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds the process configuration. DatabaseURL and DatabaseName
// have no defaults: the process must fail fast when they are unset.
type Config struct {
	HTTPAddr        string
	DatabaseURL     string
	DatabaseName    string
	ShutdownTimeout time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durenvs(key string, defSec int) time.Duration {
	v := getenv(key, "")
	if v == "" {
		return time.Duration(defSec) * time.Second
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return time.Duration(defSec) * time.Second
	}
	return time.Duration(n) * time.Second
}

// Load collects configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DatabaseName:    os.Getenv("DB_NAME"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 5),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.DatabaseName == "" {
		return Config{}, errors.New("DB_NAME is required")
	}
	return cfg, nil
}

// DSN composes the postgres connection string with the database name.
func (c Config) DSN() string {
	return c.DatabaseURL + " dbname=" + c.DatabaseName
}
