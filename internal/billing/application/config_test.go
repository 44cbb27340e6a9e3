package application

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "billing.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GATEWAY_BASE_URL", "https://gateway.test")
	t.Setenv("BILLING_CONFIG", "")
	t.Setenv("BILLING_DAILY_AT", "")
	t.Setenv("BILLING_TIMEZONE", "")
	t.Setenv("BILLING_RUN_TIMEOUT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Schedule.DailyAt != "00:00" {
		t.Fatalf("daily at = %q, want 00:00", cfg.Schedule.DailyAt)
	}
	if cfg.Schedule.Timezone != "America/Sao_Paulo" {
		t.Fatalf("timezone = %q", cfg.Schedule.Timezone)
	}
	if cfg.RunTimeout != 5*time.Minute {
		t.Fatalf("run timeout = %v, want 5m", cfg.RunTimeout)
	}
}

func TestLoadConfigParsesDurationString(t *testing.T) {
	path := writeConfigFile(t, `
schedule:
  daily_at: "03:30"
  timezone: "UTC"
gateway_base_url: "https://gateway.test"
run_timeout: "90s"
`)
	t.Setenv("GATEWAY_BASE_URL", "")
	t.Setenv("BILLING_CONFIG", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RunTimeout != 90*time.Second {
		t.Fatalf("run timeout = %v, want 90s", cfg.RunTimeout)
	}
	if cfg.Schedule.DailyAt != "03:30" || cfg.Schedule.Timezone != "UTC" {
		t.Fatalf("schedule = %+v", cfg.Schedule)
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := writeConfigFile(t, `
gateway_base_url: "https://gateway.test"
run_timeout: "ninety seconds"
`)
	t.Setenv("GATEWAY_BASE_URL", "")
	t.Setenv("BILLING_CONFIG", path)

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for malformed run_timeout")
	}
}

func TestLoadConfigRequiresGatewayURL(t *testing.T) {
	t.Setenv("GATEWAY_BASE_URL", "")
	t.Setenv("BILLING_CONFIG", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when gateway base url is missing")
	}
}
