// Package config loads, normalizes, and validates reckon's TOML
// configuration. Classifier thresholds live here rather than in code so
// category cutoffs can be tuned without reordering rules.
package config
