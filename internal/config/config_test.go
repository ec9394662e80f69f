package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks the service's env vars so ambient values cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "IUTE_COUNTRY", "IUTE_TESTMODE", "IUTE_ADMIN_KEY",
		"SHOPIFY_SHOP", "SHOPIFY_ADMIN_TOKEN", "IUTE_ORDER_IDS", "POLL_INTERVAL",
		"IUTE_KEY_TTL", "REDIS_URL"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "10000" || cfg.Country != "mk" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.PollInterval != 5*time.Minute || cfg.KeyTTL != time.Hour {
		t.Fatalf("durations: %+v", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
port: "8081"
country: al
testMode: true
adminKey: k1
shop: store.myshopify.com
adminToken: tok
orderIds: ["1", "2"]
pollInterval: 1m
keyTTL: 30m
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8081" || cfg.Country != "al" || !cfg.TestMode {
		t.Fatalf("yaml values: %+v", cfg)
	}
	if len(cfg.OrderIDs) != 2 || cfg.PollInterval != time.Minute || cfg.KeyTTL != 30*time.Minute {
		t.Fatalf("yaml values: %+v", cfg)
	}
	if len(cfg.Missing()) != 0 {
		t.Fatalf("missing: %v", cfg.Missing())
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("IUTE_COUNTRY", "bg")
	t.Setenv("IUTE_TESTMODE", "TRUE")
	t.Setenv("IUTE_ORDER_IDS", " 1, 2 ,,3 ")
	t.Setenv("POLL_INTERVAL", "90s")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Country != "bg" || !cfg.TestMode {
		t.Fatalf("env values: %+v", cfg)
	}
	if len(cfg.OrderIDs) != 3 || cfg.OrderIDs[2] != "3" {
		t.Fatalf("order ids: %v", cfg.OrderIDs)
	}
	if cfg.PollInterval != 90*time.Second {
		t.Fatalf("interval: %v", cfg.PollInterval)
	}
}

func TestMissingCredentials(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	missing := cfg.Missing()
	if len(missing) != 3 {
		t.Fatalf("missing: %v", missing)
	}
}
