package classify

import (
	"testing"
	"time"

	"reckon/internal/recording"
)

func resolvedNames(confidence float64) *recording.NameResolution {
	return &recording.NameResolution{Coach: "Jane", Student: "Alex", Confidence: confidence, Method: "roster"}
}

func baseMeta() recording.Metadata {
	return recording.Metadata{
		Identifier:        "ABEiM0RVZneImaq7zN3u/w==",
		ExternalMeetingID: "8881234567",
		Topic:             "Weekly Coaching with Alex",
		StartTime:         time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
		DurationSeconds:   3600,
		AggregateFileSize: 10 << 20,
		ParticipantCount:  2,
		HostIdentity:      "coach.jane@domain",
		Names:             resolvedNames(0.8),
	}
}

func newTestClassifier() *Classifier {
	return New(DefaultPolicy(), nil)
}

func TestClassifyRules(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*recording.Metadata)
		wantCat    recording.Category
		wantRule   int
		wantNoShow bool
	}{
		{
			name:     "rule 1 throwaway topic",
			mutate:   func(m *recording.Metadata) { m.Topic = "TEST recording, ignore" },
			wantCat:  recording.CategoryTrivial,
			wantRule: 1,
		},
		{
			name: "rule 2 small and short",
			mutate: func(m *recording.Metadata) {
				m.AggregateFileSize = 1_048_575
				m.DurationSeconds = 59
			},
			wantCat:  recording.CategoryTrivial,
			wantRule: 2,
		},
		{
			name: "rule 2 small with zero participants",
			mutate: func(m *recording.Metadata) {
				m.AggregateFileSize = 1_048_575
				m.DurationSeconds = 61
				m.ParticipantCount = 0
			},
			wantCat:  recording.CategoryTrivial,
			wantRule: 2,
		},
		{
			name: "rule 3 unattributed medium-small",
			mutate: func(m *recording.Metadata) {
				m.DurationSeconds = 300
				m.AggregateFileSize = 2 << 20
				m.Names = &recording.NameResolution{Coach: "Jane", Confidence: 0.9}
			},
			wantCat:  recording.CategoryTrivial,
			wantRule: 3,
		},
		{
			name: "rule 4 no-show in personal room",
			mutate: func(m *recording.Metadata) {
				m.Topic = "Personal Meeting Room"
				m.ParticipantCount = 1
				m.DurationSeconds = 2400
			},
			wantCat:    recording.CategoryMISC,
			wantRule:   4,
			wantNoShow: true,
		},
		{
			name: "rule 5 substantial attributed content",
			mutate: func(m *recording.Metadata) {
				m.AggregateFileSize = 60 << 20
				m.Names = resolvedNames(0.3)
			},
			wantCat:  recording.CategoryCoaching,
			wantRule: 5,
		},
		{
			name: "rule 6 student unresolved",
			mutate: func(m *recording.Metadata) {
				m.DurationSeconds = 1000
				m.Names = &recording.NameResolution{Coach: "Jane", Confidence: 0.9}
			},
			wantCat:  recording.CategoryMISC,
			wantRule: 6,
		},
		{
			name:     "rule 7 default coaching",
			mutate:   func(m *recording.Metadata) {},
			wantCat:  recording.CategoryCoaching,
			wantRule: 7,
		},
	}

	c := newTestClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := baseMeta()
			tt.mutate(&meta)
			got := c.Classify(meta)
			if got.Category != tt.wantCat || got.Rule != tt.wantRule || got.NoShow != tt.wantNoShow {
				t.Errorf("Classify() = %+v, want category %q rule %d noShow %v", got, tt.wantCat, tt.wantRule, tt.wantNoShow)
			}
		})
	}
}

func TestClassifyThresholdBoundaries(t *testing.T) {
	c := newTestClassifier()

	// Both sides of the small-file and short-duration cutoffs.
	tests := []struct {
		name     string
		size     int64
		duration int
		wantRule int
	}{
		{"below both", 1_048_575, 59, 2},
		{"at size cutoff", 1_048_576, 59, 7},
		{"at duration cutoff", 1_048_575, 60, 7},
		{"above both", 1_048_576, 61, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := baseMeta()
			meta.AggregateFileSize = tt.size
			meta.DurationSeconds = tt.duration
			got := c.Classify(meta)
			if got.Rule != tt.wantRule {
				t.Errorf("size=%d duration=%d fired rule %d (%s), want rule %d", tt.size, tt.duration, got.Rule, got.Category, tt.wantRule)
			}
		})
	}
}

func TestClassifyNoShowViaKnownCoachHost(t *testing.T) {
	policy := DefaultPolicy()
	policy.KnownCoachHosts = []string{"coach.jane@domain"}
	c := New(policy, nil)

	meta := baseMeta()
	meta.Topic = "Session"
	meta.ParticipantCount = 1
	meta.DurationSeconds = 2400

	got := c.Classify(meta)
	if got.Category != recording.CategoryMISC || !got.NoShow {
		t.Errorf("Classify() = %+v, want no-show MISC via host allow-list", got)
	}
}

func TestClassifyNoShowRequiresWait(t *testing.T) {
	c := newTestClassifier()
	meta := baseMeta()
	meta.Topic = "Personal Meeting Room"
	meta.ParticipantCount = 1
	meta.DurationSeconds = 1200 // exactly at the wait threshold, not past it

	got := c.Classify(meta)
	if got.NoShow {
		t.Errorf("Classify() = %+v, wait threshold must be exceeded", got)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := newTestClassifier()
	meta := baseMeta()
	first := c.Classify(meta)
	for i := 0; i < 10; i++ {
		if got := c.Classify(meta); got != first {
			t.Fatalf("Classify() diverged: %+v vs %+v", got, first)
		}
	}
}

func TestClassifyManualOverride(t *testing.T) {
	c := newTestClassifier()
	meta := baseMeta()
	meta.Topic = "TEST recording" // would fire rule 1 without the override
	meta.CategoryOverride = recording.CategorySAT

	got := c.Classify(meta)
	if got.Category != recording.CategorySAT || got.Rule != 0 {
		t.Errorf("Classify() = %+v, want SAT via override", got)
	}
}

func TestClassifyIncompleteInput(t *testing.T) {
	c := newTestClassifier()
	meta := baseMeta()
	meta.Names = nil
	meta.DurationSeconds = 1000

	got := c.Classify(meta)
	if got.Category != recording.CategoryMISC || got.Rule != 6 {
		t.Errorf("Classify() = %+v, want conservative MISC", got)
	}
	if !got.Incomplete {
		t.Error("missing name resolution should set Incomplete")
	}

	complete := c.Classify(baseMeta())
	if complete.Incomplete {
		t.Errorf("complete input flagged incomplete: %+v", complete)
	}
}

func TestPolicyNormalizedFillsDefaults(t *testing.T) {
	p := Policy{}.normalized()
	d := DefaultPolicy()
	if p.SmallFileBytes != d.SmallFileBytes || p.NoShowWaitSeconds != d.NoShowWaitSeconds {
		t.Errorf("normalized() = %+v, want defaults filled", p)
	}
	if len(p.TrivialTopicMarkers) == 0 {
		t.Error("normalized() left marker list empty")
	}
}
