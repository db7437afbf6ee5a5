package testsupport

import (
	"path/filepath"
	"testing"

	"reckon/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.ReportDir = filepath.Join(base, "reports")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Gate.AutoApprove = true

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithAutoApprove toggles unattended duplicate resolution on the test config.
func WithAutoApprove(enabled bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Gate.AutoApprove = enabled
	}
}

// WithWorkers sets both pipeline and reconcile worker counts.
func WithWorkers(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pipeline.Workers = n
		cfg.Reconcile.Workers = n
	}
}
