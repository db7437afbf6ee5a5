package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"reckon/internal/archive"
	"reckon/internal/classify"
	"reckon/internal/dupgate"
	"reckon/internal/identity"
	"reckon/internal/recording"
	"reckon/internal/retry"
	"reckon/internal/testsupport"
)

// memoryArchive backs both the gate lookup and the pipeline write side with
// read-after-write consistency, which the locking scheme depends on.
type memoryArchive struct {
	mu      sync.Mutex
	records []*archive.Record
	nextID  int64
	fail    bool
}

func (m *memoryArchive) Insert(_ context.Context, record *archive.Record) (*archive.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errors.New("disk full")
	}
	m.nextID++
	stored := *record
	stored.ID = m.nextID
	stored.CreatedAt = time.Now().UTC()
	m.records = append(m.records, &stored)
	return &stored, nil
}

func (m *memoryArchive) FindByIdentity(_ context.Context, form string) (*dupgate.Prior, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records {
		for _, have := range record.Identity.Forms() {
			if have == form {
				return prior(record), nil
			}
		}
	}
	return nil, nil
}

func (m *memoryArchive) FindByFingerprint(_ context.Context, fingerprint string) (*dupgate.Prior, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records {
		if record.Fingerprint != "" && record.Fingerprint == fingerprint {
			return prior(record), nil
		}
	}
	return nil, nil
}

func prior(record *archive.Record) *dupgate.Prior {
	return &dupgate.Prior{
		RecordID:    record.ID,
		Identity:    record.Identity,
		Fingerprint: record.Fingerprint,
		Topic:       record.Topic,
		Category:    string(record.Category),
		ProcessedAt: record.CreatedAt,
	}
}

func newTestPipeline(t *testing.T, store *memoryArchive, opts Options) *Pipeline {
	t.Helper()
	policy := retry.Policy{MaxAttempts: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
	gate := dupgate.New(store, dupgate.AutoApprover{}, policy, nil)
	classifier := classify.New(classify.DefaultPolicy(), nil)
	return New(gate, classifier, store, opts, nil)
}

func observation(identifier, meetingID string) recording.Metadata {
	return recording.Metadata{
		Identifier:        identifier,
		ExternalMeetingID: meetingID,
		Topic:             "Weekly Coaching Session",
		StartTime:         time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
		DurationSeconds:   1800,
		AggregateFileSize: 250 << 20,
		ParticipantCount:  2,
		Names:             &recording.NameResolution{Coach: "Jane", Student: "Alex", Confidence: 0.9},
		Files: []recording.FileInfo{
			{Type: "video", SizeBytes: 250 << 20, Available: true},
		},
	}
}

func TestRunArchivesNewObservation(t *testing.T) {
	store := &memoryArchive{}
	p := newTestPipeline(t, store, Options{})

	summary, err := p.Run(t.Context(), []recording.Metadata{observation("ABEiM0RVZneImaq7zN3u/w==", "888")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Attempted != 1 || summary.ProceededNew != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.RunID == "" {
		t.Error("summary missing run id")
	}

	outcome := summary.Outcomes[0]
	if outcome.Decision != dupgate.DecisionProceedNew || outcome.RecordID == 0 {
		t.Errorf("outcome = %+v", outcome)
	}
	if outcome.Category != recording.CategoryCoaching {
		t.Errorf("Category = %q", outcome.Category)
	}
	if len(store.records) != 1 {
		t.Fatalf("records = %d", len(store.records))
	}
	if store.records[0].RunID != summary.RunID {
		t.Errorf("record run id = %q, want %q", store.records[0].RunID, summary.RunID)
	}
}

func TestRunSkipsExactDuplicate(t *testing.T) {
	store := &memoryArchive{}
	p := newTestPipeline(t, store, Options{})

	obs := observation("ABEiM0RVZneImaq7zN3u/w==", "888")
	if _, err := p.Run(t.Context(), []recording.Metadata{obs}); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	// Second observation arrives in a legacy encoding; the archive lookup
	// must still match the compact-form row.
	dup := obs
	dup.Identifier = "00112233445566778899aabbccddeeff"
	dup.IdentifierEncoding = identity.EncodingLegacyHex

	summary, err := p.Run(t.Context(), []recording.Metadata{dup})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	outcome := summary.Outcomes[0]
	if summary.Skipped != 1 || outcome.Decision != dupgate.DecisionSkipDuplicate {
		t.Fatalf("summary = %+v", summary)
	}
	if outcome.MatchMethod != dupgate.MethodCompact {
		t.Errorf("MatchMethod = %q", outcome.MatchMethod)
	}
	if len(store.records) != 1 {
		t.Errorf("duplicate was archived: %d records", len(store.records))
	}
}

func TestRunFingerprintFallbackDedup(t *testing.T) {
	// Same meeting id and start time, rotated instance identifiers: identity
	// matching misses, the fingerprint catches the duplicate.
	store := &memoryArchive{}
	p := newTestPipeline(t, store, Options{})

	first := observation("ABEiM0RVZneImaq7zN3u/w==", "8881234567")
	second := observation("ffeeddccbbaa99887766554433221100", "8881234567")

	summary, err := p.Run(t.Context(), []recording.Metadata{first, second})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.ProceededNew != 1 || summary.Skipped != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	for _, outcome := range summary.Outcomes {
		if outcome.Decision == dupgate.DecisionSkipDuplicate && outcome.MatchMethod != dupgate.MethodFingerprint {
			t.Errorf("skip method = %q, want fingerprint", outcome.MatchMethod)
		}
	}
	if len(store.records) != 1 {
		t.Errorf("records = %d, want 1", len(store.records))
	}
}

func TestRunConcurrentSameIdentity(t *testing.T) {
	// Concurrent observations of one recording must serialize on the
	// identity lock: exactly one archive row regardless of interleaving.
	store := &memoryArchive{}
	p := newTestPipeline(t, store, Options{Workers: 8})

	observations := make([]recording.Metadata, 8)
	for i := range observations {
		observations[i] = observation("ABEiM0RVZneImaq7zN3u/w==", "888")
	}

	summary, err := p.Run(t.Context(), observations)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.ProceededNew != 1 || summary.Skipped != 7 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(store.records) != 1 {
		t.Errorf("records = %d, want 1", len(store.records))
	}
}

func TestRunMalformedIdentifierFailsOnlyThatObservation(t *testing.T) {
	store := &memoryArchive{}
	p := newTestPipeline(t, store, Options{})

	bad := observation("abc123==", "999") // decodes to 4 bytes, not 128 bits
	good := observation("ABEiM0RVZneImaq7zN3u/w==", "888")

	summary, err := p.Run(t.Context(), []recording.Metadata{bad, good})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 1 || summary.ProceededNew != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	failed := summary.Outcomes[0]
	if !failed.Failed() || failed.ErrKind != "validation" {
		t.Errorf("failed outcome = %+v", failed)
	}
	if len(store.records) != 1 {
		t.Errorf("records = %d, want 1", len(store.records))
	}
}

func TestRunArchiveWriteFailureRecorded(t *testing.T) {
	store := &memoryArchive{fail: true}
	p := newTestPipeline(t, store, Options{})

	summary, err := p.Run(t.Context(), []recording.Metadata{observation("ABEiM0RVZneImaq7zN3u/w==", "888")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Outcomes[0].ErrKind != "transient" {
		t.Errorf("ErrKind = %q", summary.Outcomes[0].ErrKind)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	store := &memoryArchive{}
	p := newTestPipeline(t, store, Options{DryRun: true})

	summary, err := p.Run(t.Context(), []recording.Metadata{observation("ABEiM0RVZneImaq7zN3u/w==", "888")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.DryRun || summary.ProceededNew != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Outcomes[0].Category != recording.CategoryCoaching {
		t.Errorf("dry run skipped classification: %+v", summary.Outcomes[0])
	}
	if len(store.records) != 0 {
		t.Errorf("dry run wrote %d records", len(store.records))
	}
}

func TestFromConfigAgainstRealStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	p := FromConfig(cfg, store, dupgate.AutoApprover{}, Options{}, nil)

	first, err := p.Run(t.Context(), []recording.Metadata{observation("ABEiM0RVZneImaq7zN3u/w==", "888")})
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.ProceededNew != 1 {
		t.Fatalf("first summary = %+v", first)
	}

	second, err := p.Run(t.Context(), []recording.Metadata{observation("ABEiM0RVZneImaq7zN3u/w==", "888")})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.Skipped != 1 {
		t.Fatalf("second summary = %+v", second)
	}

	records, err := store.List(t.Context())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("records = %d, want 1", len(records))
	}
}

func TestRunNoIdentifierUsesFingerprintKey(t *testing.T) {
	store := &memoryArchive{}
	p := newTestPipeline(t, store, Options{})

	obs := observation("", "8881234567")
	summary, err := p.Run(t.Context(), []recording.Metadata{obs, obs})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.ProceededNew != 1 || summary.Skipped != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}
