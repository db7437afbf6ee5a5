package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	ReportDir string `toml:"report_dir"`
	LogDir    string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Classifier contains the ordered rule thresholds. The rule order is fixed in
// code; only the numeric cutoffs and marker lists are tunable here.
type Classifier struct {
	TrivialTopicMarkers      []string `toml:"trivial_topic_markers"`
	SmallFileBytes           int64    `toml:"small_file_bytes"`
	ShortDurationSeconds     int      `toml:"short_duration_seconds"`
	MediumDurationSeconds    int      `toml:"medium_duration_seconds"`
	MediumFileBytes          int64    `toml:"medium_file_bytes"`
	NoShowWaitSeconds        int      `toml:"no_show_wait_seconds"`
	MinCoachConfidence       float64  `toml:"min_coach_confidence"`
	MinAttributionConfidence float64  `toml:"min_attribution_confidence"`
	SubstantialContentBytes  int64    `toml:"substantial_content_bytes"`
	AdminHosts               []string `toml:"admin_hosts"`
	KnownCoachHosts          []string `toml:"known_coach_hosts"`
	AdHocTopicMarkers        []string `toml:"ad_hoc_topic_markers"`
}

// Gate contains duplicate-gate approval configuration.
type Gate struct {
	// AutoApprove resolves duplicate matches without prompting.
	AutoApprove bool `toml:"auto_approve"`
	// AutoResolution is the decision applied when AutoApprove is set:
	// "skip" or "override".
	AutoResolution string `toml:"auto_resolution"`
}

// Retry contains bounded-backoff settings for external lookups.
type Retry struct {
	MaxAttempts       int `toml:"max_attempts"`
	InitialIntervalMS int `toml:"initial_interval_ms"`
	MaxIntervalMS     int `toml:"max_interval_ms"`
}

// Reconcile contains reconciliation audit settings.
type Reconcile struct {
	TopicSimilarityThreshold float64 `toml:"topic_similarity_threshold"`
	Workers                  int     `toml:"workers"`
}

// Pipeline contains processing fan-out settings.
type Pipeline struct {
	Workers int `toml:"workers"`
}

// Config encapsulates all configuration values for reckon.
//
// Configuration sections by subsystem:
//   - Paths: data, report, and log directories
//   - Logging: log format and level
//   - Classifier: category rule thresholds and host allow-lists
//   - Gate: duplicate approval policy
//   - Retry: lookup retry/backoff bounds
//   - Reconcile: similarity threshold and audit parallelism
//   - Pipeline: observation processing parallelism
type Config struct {
	Paths      Paths      `toml:"paths"`
	Logging    Logging    `toml:"logging"`
	Classifier Classifier `toml:"classifier"`
	Gate       Gate       `toml:"gate"`
	Retry      Retry      `toml:"retry"`
	Reconcile  Reconcile  `toml:"reconcile"`
	Pipeline   Pipeline   `toml:"pipeline"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/reckon/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The bool result reports
// whether a config file was found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		if value, ok := os.LookupEnv("RECKON_CONFIG"); ok && strings.TrimSpace(value) != "" {
			path = value
		}
	}
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	projectPath, err := filepath.Abs("reckon.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ArchiveDatabasePath returns the sqlite database path backing the archive
// store.
func (c *Config) ArchiveDatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "archive.db")
}

// EnsureDirectories creates the configured directories when missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.ReportDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the embedded sample configuration to the given path,
// refusing to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves a leading ~ to the current user's home directory and
// returns an absolute path.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, path[2:])
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}
