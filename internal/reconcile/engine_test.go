package reconcile

import (
	"strings"
	"testing"
	"time"

	"reckon/internal/archive"
	"reckon/internal/identity"
	"reckon/internal/recording"
)

var testStart = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(nil, nil)
}

func archivedRecord(t *testing.T, id int64) *archive.Record {
	t.Helper()
	ci, err := identity.Canonicalize("ABEiM0RVZneImaq7zN3u/w==", identity.EncodingCompact)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	return &archive.Record{
		ID:        id,
		Identity:  ci,
		MeetingID: "8881234567",
		Topic:     "Weekly Coaching Session",
		StartTime: testStart,
		FileTypes: []string{"video", "audio", "transcript"},
	}
}

func sourceObservation() recording.Metadata {
	return recording.Metadata{
		Identifier:         "ABEiM0RVZneImaq7zN3u/w==",
		IdentifierEncoding: identity.EncodingCompact,
		ExternalMeetingID:  "8881234567",
		Topic:              "Weekly Coaching Session",
		StartTime:          testStart,
		Files: []recording.FileInfo{
			{Type: "video", SizeBytes: 200 << 20, Available: true},
			{Type: "audio", SizeBytes: 40 << 20, Available: true},
			{Type: "transcript", SizeBytes: 1 << 16, Available: true},
		},
	}
}

func TestReconcileMatchedByIdentity(t *testing.T) {
	engine := newTestEngine(t)
	record := archivedRecord(t, 1)

	// The source side arrives in legacy hex; the record was written from the
	// compact form. Normalizing both sides must still match.
	source := sourceObservation()
	source.Identifier = record.Identity.LegacyHex
	source.IdentifierEncoding = identity.EncodingLegacyHex

	report, err := engine.Reconcile(t.Context(), []recording.Metadata{source}, []*archive.Record{record}, nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(report.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(report.Entries))
	}
	entry := report.Entries[0]
	if entry.Status != StatusMatched || entry.RecordID != 1 || entry.Evidence != "identity" {
		t.Errorf("entry = %+v", entry)
	}
	if report.RunID == "" || entry.Timestamp.IsZero() {
		t.Error("report missing run id or entry timestamp")
	}
}

func TestReconcileMissingInArchive(t *testing.T) {
	engine := newTestEngine(t)

	source := sourceObservation()
	source.ExternalMeetingID = "999"
	source.Topic = "Unrelated Onboarding Call"

	report, err := engine.Reconcile(t.Context(), []recording.Metadata{source}, []*archive.Record{archivedRecord(t, 1)}, nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	entry := report.Entries[0]
	if entry.Status != StatusMissingInArchive {
		t.Errorf("entry = %+v", entry)
	}
	if report.Discrepancies() != 1 {
		t.Errorf("Discrepancies() = %d", report.Discrepancies())
	}
}

func TestReconcileMeetingIDFallback(t *testing.T) {
	engine := newTestEngine(t)
	record := archivedRecord(t, 4)

	// Identifier rotated between observation and archive write; meeting id
	// equality still resolves the match.
	source := sourceObservation()
	source.Identifier = "ffeeddccbbaa99887766554433221100"
	source.IdentifierEncoding = identity.EncodingLegacyHex

	report, err := engine.Reconcile(t.Context(), []recording.Metadata{source}, []*archive.Record{record}, nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	entry := report.Entries[0]
	if entry.Status != StatusMatched || entry.RecordID != 4 || entry.Evidence != "meeting-id" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestReconcileTopicSimilarityFallback(t *testing.T) {
	engine := newTestEngine(t)
	record := archivedRecord(t, 6)
	record.MeetingID = ""

	source := sourceObservation()
	source.Identifier = ""
	source.ExternalMeetingID = ""
	source.Topic = "Weekly Coaching Session with Alex"
	source.StartTime = testStart.Add(3 * time.Hour) // same UTC date

	report, err := engine.Reconcile(t.Context(), []recording.Metadata{source}, []*archive.Record{record}, nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	entry := report.Entries[0]
	if entry.Status != StatusMatched || entry.Evidence != "topic-similarity" {
		t.Errorf("entry = %+v", entry)
	}

	// A different date defeats the topic fallback even with identical topics.
	source.StartTime = testStart.AddDate(0, 0, 1)
	report, err = engine.Reconcile(t.Context(), []recording.Metadata{source}, []*archive.Record{record}, nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if report.Entries[0].Status != StatusMissingInArchive {
		t.Errorf("cross-date entry = %+v", report.Entries[0])
	}
}

func TestReconcileAmbiguousMatch(t *testing.T) {
	engine := newTestEngine(t)
	a := archivedRecord(t, 10)
	b := archivedRecord(t, 11)
	b.Identity = identity.CanonicalIdentity{}

	source := sourceObservation()
	source.Identifier = "" // force fallback; both records share the meeting id

	report, err := engine.Reconcile(t.Context(), []recording.Metadata{source}, []*archive.Record{a, b}, nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	entry := report.Entries[0]
	if entry.Status != StatusAmbiguousMatch {
		t.Fatalf("entry = %+v", entry)
	}
	if len(entry.CandidateIDs) != 2 || entry.CandidateIDs[0] != 10 || entry.CandidateIDs[1] != 11 {
		t.Errorf("CandidateIDs = %v", entry.CandidateIDs)
	}
}

func TestReconcilePartialFiles(t *testing.T) {
	// Source declares video+audio+transcript; storage holds only video+audio.
	engine := newTestEngine(t)
	record := archivedRecord(t, 2)
	source := sourceObservation()

	manifests := []StorageManifest{
		{Identifier: record.Identity.LegacyHexDashed, FileTypes: []string{"video", "audio"}},
	}

	report, err := engine.Reconcile(t.Context(), []recording.Metadata{source}, []*archive.Record{record}, manifests)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	entry := report.Entries[0]
	if entry.Status != StatusPartialFiles {
		t.Fatalf("entry = %+v", entry)
	}
	if len(entry.MissingTypes) != 1 || entry.MissingTypes[0] != "transcript" {
		t.Errorf("MissingTypes = %v", entry.MissingTypes)
	}
}

func TestReconcileCompleteManifestStaysMatched(t *testing.T) {
	engine := newTestEngine(t)
	record := archivedRecord(t, 3)
	source := sourceObservation()

	manifests := []StorageManifest{
		{MeetingID: "8881234567", FileTypes: []string{"Video", "AUDIO", "transcript"}},
	}

	report, err := engine.Reconcile(t.Context(), []recording.Metadata{source}, []*archive.Record{record}, manifests)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if report.Entries[0].Status != StatusMatched {
		t.Errorf("entry = %+v", report.Entries[0])
	}
}

func TestReconcilePreservesSourceOrder(t *testing.T) {
	engine := newTestEngine(t)
	record := archivedRecord(t, 1)

	sources := make([]recording.Metadata, 20)
	for i := range sources {
		if i%2 == 0 {
			sources[i] = sourceObservation()
		} else {
			miss := sourceObservation()
			miss.Identifier = ""
			miss.ExternalMeetingID = "unmatched"
			miss.Topic = "standalone debrief"
			sources[i] = miss
		}
	}

	report, err := engine.Reconcile(t.Context(), sources, []*archive.Record{record}, nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	for i, entry := range report.Entries {
		want := StatusMatched
		if i%2 == 1 {
			want = StatusMissingInArchive
		}
		if entry.Status != want {
			t.Errorf("entry %d status = %q, want %q", i, entry.Status, want)
		}
	}
}

func TestDecodeManifests(t *testing.T) {
	single := `{"identifier": "00112233445566778899aabbccddeeff", "fileTypes": ["video"]}`
	got, err := DecodeManifests(strings.NewReader(single))
	if err != nil {
		t.Fatalf("DecodeManifests single: %v", err)
	}
	if len(got) != 1 || got[0].FileTypes[0] != "video" {
		t.Errorf("single = %+v", got)
	}

	array := `[{"externalMeetingId": "123", "fileTypes": ["audio", "video"]}, {"identifier": "x"}]`
	got, err = DecodeManifests(strings.NewReader(array))
	if err != nil {
		t.Fatalf("DecodeManifests array: %v", err)
	}
	if len(got) != 2 || got[0].MeetingID != "123" {
		t.Errorf("array = %+v", got)
	}

	if _, err := DecodeManifests(strings.NewReader("{broken")); err == nil {
		t.Error("DecodeManifests accepted malformed JSON")
	}
}
