package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"lir/pkg/engine"
)

// Config aggregates the runtime settings of the reconciliation core.
// Everything has a default so an embedder can run with no environment at all.
type Config struct {
	LogLevel        string
	SnapshotTimeout time.Duration
	ExpiringWindow  time.Duration
	SevereWindow    time.Duration
	ExtensionBuffer time.Duration
	DefaultBaseline time.Duration
	// ProductBaselines overrides per-product extension baselines,
	// e.g. LIR_PRODUCT_BASELINES="mso365=168h,aquarium=144h".
	ProductBaselines map[string]time.Duration
}

// Load reads configuration from environment variables (optionally .env) and
// applies the shipped defaults.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		LogLevel:        getString("LIR_LOG_LEVEL", "info"),
		SnapshotTimeout: getDuration("LIR_SNAPSHOT_TIMEOUT", 30*time.Second),
		ExpiringWindow:  getDuration("LIR_EXPIRING_WINDOW", 2*time.Hour),
		SevereWindow:    getDuration("LIR_SEVERE_WINDOW", 30*time.Minute),
		ExtensionBuffer: getDuration("LIR_EXTENSION_BUFFER", engine.ExtensionBuffer),
		DefaultBaseline: getDuration("LIR_DEFAULT_BASELINE", engine.DefaultBaseline),
	}

	baselines, err := parseBaselines(os.Getenv("LIR_PRODUCT_BASELINES"))
	if err != nil {
		return nil, err
	}
	cfg.ProductBaselines = baselines

	return cfg, nil
}

// ClassifierOptions maps the configuration onto classifier overrides.
func (c *Config) ClassifierOptions() engine.ClassifierOptions {
	return engine.ClassifierOptions{
		Baselines:       c.ProductBaselines,
		DefaultBaseline: c.DefaultBaseline,
		ExtensionBuffer: c.ExtensionBuffer,
		ExpiringWindow:  c.ExpiringWindow,
		SevereWindow:    c.SevereWindow,
	}
}

// parseBaselines parses a "product=duration" comma list.
func parseBaselines(raw string) (map[string]time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	baselines := make(map[string]time.Duration)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, found := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("invalid product baseline %q: want product=duration", pair)
		}
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid product baseline %q: %w", pair, err)
		}
		baselines[name] = d
	}
	return baselines, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
