package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validateGate(); err != nil {
		return err
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateClassifier() error {
	cl := c.Classifier
	if cl.MinCoachConfidence < 0 || cl.MinCoachConfidence > 1 {
		return errors.New("classifier.min_coach_confidence must be between 0 and 1")
	}
	if cl.MinAttributionConfidence < 0 || cl.MinAttributionConfidence > 1 {
		return errors.New("classifier.min_attribution_confidence must be between 0 and 1")
	}
	if cl.SmallFileBytes >= cl.MediumFileBytes {
		return errors.New("classifier.small_file_bytes must be below classifier.medium_file_bytes")
	}
	if cl.ShortDurationSeconds >= cl.MediumDurationSeconds {
		return errors.New("classifier.short_duration_seconds must be below classifier.medium_duration_seconds")
	}
	return nil
}

func (c *Config) validateGate() error {
	switch c.Gate.AutoResolution {
	case "skip", "override":
		return nil
	default:
		return fmt.Errorf("gate.auto_resolution must be skip or override, got %q", c.Gate.AutoResolution)
	}
}

func (c *Config) validateRetry() error {
	if c.Retry.MaxAttempts > 10 {
		return errors.New("retry.max_attempts must not exceed 10")
	}
	if c.Retry.InitialIntervalMS > c.Retry.MaxIntervalMS {
		return errors.New("retry.initial_interval_ms must not exceed retry.max_interval_ms")
	}
	return nil
}
