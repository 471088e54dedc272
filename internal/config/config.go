// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - New(ctx) builds a Config holding every default.
// - Load(ctx) layers a YAML file and environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Normalization policies for a metric whose per-category means are all equal.
const (
	PolicyMidpoint = "midpoint"
	PolicyError    = "error"
)

// Config contains process configuration shared by the dashboard and the snapshot tool.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the dashboard listen address.
	Addr string `koanf:"addr"`

	// DataPath is the benchmark CSV read once at start-up.
	DataPath string `koanf:"data_path"`

	// PageTitle is the dashboard heading.
	PageTitle string `koanf:"page_title"`

	// ConstantMetricPolicy decides how a metric constant across categories is normalized.
	ConstantMetricPolicy string `koanf:"constant_metric_policy"`

	// SnapshotURL is the dashboard address captured by the snapshot tool.
	SnapshotURL string `koanf:"snapshot_url"`

	// SnapshotDir and SnapshotName locate the three output files.
	SnapshotDir  string `koanf:"snapshot_dir"`
	SnapshotName string `koanf:"snapshot_name"`

	// SnapshotTimeoutMS bounds the whole capture task.
	SnapshotTimeoutMS int `koanf:"snapshot_timeout_ms"`

	// SnapshotWidth and SnapshotHeight size the browser viewport in pixels.
	SnapshotWidth  int `koanf:"snapshot_width"`
	SnapshotHeight int `koanf:"snapshot_height"`
}

// New creates a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":8501",
		DataPath:             "ai_model_kpi_data2.csv",
		PageTitle:            "AI Model KPI Dashboard",
		ConstantMetricPolicy: PolicyMidpoint,
		SnapshotURL:          "http://localhost:8501",
		SnapshotDir:          ".",
		SnapshotName:         "streamlit_dashboard",
		SnapshotTimeoutMS:    60_000,
		SnapshotWidth:        1280,
		SnapshotHeight:       2400,
	}
}

// SnapshotTimeout returns SnapshotTimeoutMS as a duration.
func (c *Config) SnapshotTimeout() time.Duration {
	return time.Duration(c.SnapshotTimeoutMS) * time.Millisecond
}

// Validate checks the fields every entry point depends on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DataPath) == "":
		return fmt.Errorf("%w: data_path must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.SnapshotName) == "":
		return fmt.Errorf("%w: snapshot_name must not be empty", ErrInvalidConfig)
	case c.SnapshotTimeoutMS <= 0:
		return fmt.Errorf("%w: snapshot_timeout_ms must be positive", ErrInvalidConfig)
	}
	switch c.ConstantMetricPolicy {
	case PolicyMidpoint, PolicyError:
	default:
		return fmt.Errorf("%w: constant_metric_policy %q (want %s or %s)",
			ErrInvalidConfig, c.ConstantMetricPolicy, PolicyMidpoint, PolicyError)
	}
	return nil
}
