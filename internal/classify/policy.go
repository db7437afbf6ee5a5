package classify

import (
	"reckon/internal/config"
)

// Policy centralizes classification thresholds and allow-lists. Rule order is
// contractual and lives in the classifier; everything tunable lives here.
type Policy struct {
	TrivialTopicMarkers      []string
	SmallFileBytes           int64
	ShortDurationSeconds     int
	MediumDurationSeconds    int
	MediumFileBytes          int64
	NoShowWaitSeconds        int
	MinCoachConfidence       float64
	MinAttributionConfidence float64
	SubstantialContentBytes  int64
	AdminHosts               []string
	KnownCoachHosts          []string
	AdHocTopicMarkers        []string
}

// DefaultPolicy returns conservative defaults tuned for hour-long coaching
// sessions.
func DefaultPolicy() Policy {
	return PolicyFromConfig(nil)
}

// PolicyFromConfig builds a Policy from configuration, falling back to
// repository defaults when cfg is nil.
func PolicyFromConfig(cfg *config.Config) Policy {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	cl := cfg.Classifier
	return Policy{
		TrivialTopicMarkers:      cl.TrivialTopicMarkers,
		SmallFileBytes:           cl.SmallFileBytes,
		ShortDurationSeconds:     cl.ShortDurationSeconds,
		MediumDurationSeconds:    cl.MediumDurationSeconds,
		MediumFileBytes:          cl.MediumFileBytes,
		NoShowWaitSeconds:        cl.NoShowWaitSeconds,
		MinCoachConfidence:       cl.MinCoachConfidence,
		MinAttributionConfidence: cl.MinAttributionConfidence,
		SubstantialContentBytes:  cl.SubstantialContentBytes,
		AdminHosts:               cl.AdminHosts,
		KnownCoachHosts:          cl.KnownCoachHosts,
		AdHocTopicMarkers:        cl.AdHocTopicMarkers,
	}
}

// normalized fills zero-valued thresholds with defaults so a partially
// constructed Policy (common in tests) still classifies sensibly.
func (p Policy) normalized() Policy {
	d := DefaultPolicy()
	if p.SmallFileBytes <= 0 {
		p.SmallFileBytes = d.SmallFileBytes
	}
	if p.ShortDurationSeconds <= 0 {
		p.ShortDurationSeconds = d.ShortDurationSeconds
	}
	if p.MediumDurationSeconds <= 0 {
		p.MediumDurationSeconds = d.MediumDurationSeconds
	}
	if p.MediumFileBytes <= 0 {
		p.MediumFileBytes = d.MediumFileBytes
	}
	if p.NoShowWaitSeconds <= 0 {
		p.NoShowWaitSeconds = d.NoShowWaitSeconds
	}
	if p.MinCoachConfidence <= 0 || p.MinCoachConfidence > 1 {
		p.MinCoachConfidence = d.MinCoachConfidence
	}
	if p.MinAttributionConfidence <= 0 || p.MinAttributionConfidence > 1 {
		p.MinAttributionConfidence = d.MinAttributionConfidence
	}
	if p.SubstantialContentBytes <= 0 {
		p.SubstantialContentBytes = d.SubstantialContentBytes
	}
	if len(p.TrivialTopicMarkers) == 0 {
		p.TrivialTopicMarkers = d.TrivialTopicMarkers
	}
	if len(p.AdHocTopicMarkers) == 0 {
		p.AdHocTopicMarkers = d.AdHocTopicMarkers
	}
	return p
}

func hostListed(host string, list []string) bool {
	for _, entry := range list {
		if entry != "" && entry == host {
			return true
		}
	}
	return false
}
