// Package config loads service configuration from an optional YAML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Config holds the runtime configuration for the sync service.
type Config struct {
	Port     string `yaml:"port"`
	Country  string `yaml:"country"`  // mk, al, en, bg, bs, md
	TestMode bool   `yaml:"testMode"` // stage domains when true

	AdminKey   string `yaml:"adminKey"`   // x-iute-admin-key credential
	Shop       string `yaml:"shop"`       // your-store.myshopify.com
	AdminToken string `yaml:"adminToken"` // Shopify Admin API access token

	// OrderIDs is the static list of iute order ids re-synced every poll
	// cycle. Empty means the poller does no work.
	OrderIDs     []string      `yaml:"orderIds"`
	PollInterval time.Duration `yaml:"pollInterval"`

	KeyTTL   time.Duration `yaml:"keyTTL"`
	RedisURL string        `yaml:"redisUrl"`
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist), applies environment overrides, then defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("IUTE_COUNTRY"); v != "" {
		c.Country = v
	}
	if v := os.Getenv("IUTE_TESTMODE"); v != "" {
		c.TestMode = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("IUTE_ADMIN_KEY"); v != "" {
		c.AdminKey = v
	}
	if v := os.Getenv("SHOPIFY_SHOP"); v != "" {
		c.Shop = v
	}
	if v := os.Getenv("SHOPIFY_ADMIN_TOKEN"); v != "" {
		c.AdminToken = v
	}
	if v := os.Getenv("IUTE_ORDER_IDS"); v != "" {
		c.OrderIDs = splitIDs(v)
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.PollInterval = d
		}
	}
	if v := os.Getenv("IUTE_KEY_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.KeyTTL = d
		}
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "10000"
	}
	if c.Country == "" {
		c.Country = "mk"
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Minute
	}
	if c.KeyTTL <= 0 {
		c.KeyTTL = time.Hour
	}
}

// Missing returns the names of required credentials that are unset so the
// caller can warn at startup. The service still starts without them; only
// the calls that need them will fail.
func (c *Config) Missing() []string {
	var out []string
	if c.AdminKey == "" {
		out = append(out, "IUTE_ADMIN_KEY")
	}
	if c.Shop == "" {
		out = append(out, "SHOPIFY_SHOP")
	}
	if c.AdminToken == "" {
		out = append(out, "SHOPIFY_ADMIN_TOKEN")
	}
	return out
}

func splitIDs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
