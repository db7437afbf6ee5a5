package config

const (
	defaultDataDir   = "~/.local/share/reckon"
	defaultReportDir = "~/.local/share/reckon/reports"
	defaultLogDir    = "~/.local/share/reckon/logs"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultSmallFileBytes           = 1 << 20  // 1 MiB
	defaultShortDurationSeconds     = 60
	defaultMediumDurationSeconds    = 900
	defaultMediumFileBytes          = 5 << 20  // 5 MiB
	defaultNoShowWaitSeconds        = 1200
	defaultMinCoachConfidence       = 0.5
	defaultMinAttributionConfidence = 0.25
	defaultSubstantialContentBytes  = 50 << 20 // 50 MiB

	defaultAutoResolution = "skip"

	defaultRetryMaxAttempts       = 4
	defaultRetryInitialIntervalMS = 250
	defaultRetryMaxIntervalMS     = 5000

	defaultTopicSimilarityThreshold = 0.6
	defaultReconcileWorkers         = 4
	defaultPipelineWorkers          = 4
)

func defaultTrivialTopicMarkers() []string {
	return []string{"test", "throwaway", "do not keep"}
}

func defaultAdHocTopicMarkers() []string {
	return []string{"personal meeting room", "ad hoc"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			ReportDir: defaultReportDir,
			LogDir:    defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Classifier: Classifier{
			TrivialTopicMarkers:      defaultTrivialTopicMarkers(),
			SmallFileBytes:           defaultSmallFileBytes,
			ShortDurationSeconds:     defaultShortDurationSeconds,
			MediumDurationSeconds:    defaultMediumDurationSeconds,
			MediumFileBytes:          defaultMediumFileBytes,
			NoShowWaitSeconds:        defaultNoShowWaitSeconds,
			MinCoachConfidence:       defaultMinCoachConfidence,
			MinAttributionConfidence: defaultMinAttributionConfidence,
			SubstantialContentBytes:  defaultSubstantialContentBytes,
			AdHocTopicMarkers:        defaultAdHocTopicMarkers(),
		},
		Gate: Gate{
			AutoResolution: defaultAutoResolution,
		},
		Retry: Retry{
			MaxAttempts:       defaultRetryMaxAttempts,
			InitialIntervalMS: defaultRetryInitialIntervalMS,
			MaxIntervalMS:     defaultRetryMaxIntervalMS,
		},
		Reconcile: Reconcile{
			TopicSimilarityThreshold: defaultTopicSimilarityThreshold,
			Workers:                  defaultReconcileWorkers,
		},
		Pipeline: Pipeline{
			Workers: defaultPipelineWorkers,
		},
	}
}
