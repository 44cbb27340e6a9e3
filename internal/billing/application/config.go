package application

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ScheduleConfig defines when the daily billing run fires.
type ScheduleConfig struct {
	DailyAt  string `yaml:"daily_at"`
	Timezone string `yaml:"timezone"`
}

// Config defines billing job configuration.
type Config struct {
	Schedule         ScheduleConfig `yaml:"schedule"`
	GatewayBaseURL   string         `yaml:"gateway_base_url"`
	GatewayToken     string         `yaml:"gateway_access_token"`
	NotifyWebhookURL string         `yaml:"notify_webhook_url"`
	// RunTimeout is written as a duration string ("5m") in the config file.
	RunTimeout     time.Duration `yaml:"-"`
	RunTimeoutText string        `yaml:"run_timeout"`
}

// LoadConfig loads config from yaml (BILLING_CONFIG) with env fallbacks.
func LoadConfig() (Config, error) {
	cfg := Config{
		GatewayBaseURL:   os.Getenv("GATEWAY_BASE_URL"),
		GatewayToken:     os.Getenv("GATEWAY_ACCESS_TOKEN"),
		NotifyWebhookURL: os.Getenv("PAYMENT_NOTIFY_WEBHOOK_URL"),
	}

	if path := os.Getenv("BILLING_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if cfg.RunTimeoutText != "" {
		parsed, err := time.ParseDuration(cfg.RunTimeoutText)
		if err != nil {
			return cfg, fmt.Errorf("billing config: bad run_timeout: %w", err)
		}
		cfg.RunTimeout = parsed
	}

	if cfg.Schedule.DailyAt == "" {
		cfg.Schedule.DailyAt = getenvDefault("BILLING_DAILY_AT", "00:00")
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = getenvDefault("BILLING_TIMEZONE", "America/Sao_Paulo")
	}
	if cfg.RunTimeout == 0 {
		cfg.RunTimeout = getenvDuration("BILLING_RUN_TIMEOUT", 5*time.Minute)
	}
	if cfg.GatewayBaseURL == "" {
		return cfg, errors.New("billing config: gateway base url required")
	}
	if _, err := cfg.Location(); err != nil {
		return cfg, err
	}
	if _, _, err := parseDailyAt(cfg.Schedule.DailyAt); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Location resolves the configured time zone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Schedule.Timezone)
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
