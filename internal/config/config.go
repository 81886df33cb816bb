// Package config loads service configuration from an optional YAML file
// with environment variable overrides. Env always wins, so container
// deployments can skip the file entirely.
package config

import (
	"fmt"
	"os"
	"strconv"

	yaml "gopkg.in/yaml.v3"
)

type Config struct {
	Port        string  `yaml:"port"`
	DatabaseURL string  `yaml:"databaseUrl"`
	RedisURL    string  `yaml:"redisUrl"`
	AuthMode    string  `yaml:"authMode"`
	HMACSecret  string  `yaml:"hmacSecret"`
	RateRPS     float64 `yaml:"rateRps"`
	RateBurst   int     `yaml:"rateBurst"`
	CSVPath     string  `yaml:"csvPath"` // optional seed activities file
}

// Load reads CONFIG_FILE if set (or config.yaml if present), then
// applies env overrides and defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:      "8080",
		AuthMode:  "dev",
		RateRPS:   50,
		RateBurst: 100,
	}

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	overrideString(&cfg.Port, "PORT")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.RedisURL, "REDIS_URL")
	overrideString(&cfg.AuthMode, "AUTH_MODE")
	overrideString(&cfg.HMACSecret, "AUTH_HMAC_SECRET")
	overrideString(&cfg.CSVPath, "ACTIVITIES_CSV")
	if v := os.Getenv("RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.RateRPS = f
		}
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateBurst = n
		}
	}
	return cfg, nil
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
