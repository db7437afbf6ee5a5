package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeClassifier()
	c.normalizeGate()
	c.normalizeRetry()
	c.normalizeReconcile()
	c.normalizePipeline()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = ExpandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ReportDir) == "" {
		c.Paths.ReportDir = defaultReportDir
	}
	if c.Paths.ReportDir, err = ExpandPath(c.Paths.ReportDir); err != nil {
		return fmt.Errorf("paths.report_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeClassifier() {
	cl := &c.Classifier
	cl.TrivialTopicMarkers = normalizeMarkers(cl.TrivialTopicMarkers, defaultTrivialTopicMarkers())
	cl.AdHocTopicMarkers = normalizeMarkers(cl.AdHocTopicMarkers, defaultAdHocTopicMarkers())
	cl.AdminHosts = normalizeHosts(cl.AdminHosts)
	cl.KnownCoachHosts = normalizeHosts(cl.KnownCoachHosts)
	if cl.SmallFileBytes <= 0 {
		cl.SmallFileBytes = defaultSmallFileBytes
	}
	if cl.ShortDurationSeconds <= 0 {
		cl.ShortDurationSeconds = defaultShortDurationSeconds
	}
	if cl.MediumDurationSeconds <= 0 {
		cl.MediumDurationSeconds = defaultMediumDurationSeconds
	}
	if cl.MediumFileBytes <= 0 {
		cl.MediumFileBytes = defaultMediumFileBytes
	}
	if cl.NoShowWaitSeconds <= 0 {
		cl.NoShowWaitSeconds = defaultNoShowWaitSeconds
	}
	if cl.MinCoachConfidence <= 0 {
		cl.MinCoachConfidence = defaultMinCoachConfidence
	}
	if cl.MinAttributionConfidence <= 0 {
		cl.MinAttributionConfidence = defaultMinAttributionConfidence
	}
	if cl.SubstantialContentBytes <= 0 {
		cl.SubstantialContentBytes = defaultSubstantialContentBytes
	}
}

func (c *Config) normalizeGate() {
	c.Gate.AutoResolution = strings.ToLower(strings.TrimSpace(c.Gate.AutoResolution))
	if c.Gate.AutoResolution == "" {
		c.Gate.AutoResolution = defaultAutoResolution
	}
}

func (c *Config) normalizeRetry() {
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = defaultRetryMaxAttempts
	}
	if c.Retry.InitialIntervalMS <= 0 {
		c.Retry.InitialIntervalMS = defaultRetryInitialIntervalMS
	}
	if c.Retry.MaxIntervalMS <= 0 {
		c.Retry.MaxIntervalMS = defaultRetryMaxIntervalMS
	}
}

func (c *Config) normalizeReconcile() {
	if c.Reconcile.TopicSimilarityThreshold <= 0 || c.Reconcile.TopicSimilarityThreshold >= 1 {
		c.Reconcile.TopicSimilarityThreshold = defaultTopicSimilarityThreshold
	}
	if c.Reconcile.Workers <= 0 {
		c.Reconcile.Workers = defaultReconcileWorkers
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = defaultPipelineWorkers
	}
}

func normalizeMarkers(markers, fallback []string) []string {
	out := make([]string, 0, len(markers))
	for _, m := range markers {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func normalizeHosts(hosts []string) []string {
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}
