package reconcile

import (
	"fmt"
	"strings"
	"time"

	"reckon/internal/archive"
	"reckon/internal/identity"
	"reckon/internal/recording"
	"reckon/internal/textutil"
)

// matchOne resolves a single source recording against the archive snapshot
// and optional storage manifests. It is pure over its inputs; the engine
// stamps the timestamp afterwards.
func (e *Engine) matchOne(source recording.Metadata, records []*archive.Record, manifests []StorageManifest) Entry {
	entry := Entry{
		Identifier: source.Identifier,
		MeetingID:  source.ExternalMeetingID,
		Topic:      source.Topic,
	}

	sourceIdentity := canonicalizeLenient(source.Identifier, source.IdentifierEncoding)
	entry.Identity = sourceIdentity

	// Identity match first. Both sides are normalized through the codec, so
	// a source in one encoding matches a record written from another.
	if !sourceIdentity.IsZero() {
		for _, record := range records {
			if record.Identity.Compact == sourceIdentity.Compact {
				return e.checkFiles(entry, source, record, manifests, "identity")
			}
		}
	}

	// Fallback signals: meeting-id equality, then topic similarity on the
	// same UTC date. Multiple plausible candidates are never auto-resolved.
	var candidates []*archive.Record
	var evidence []string
	for _, record := range records {
		switch {
		case source.ExternalMeetingID != "" && record.MeetingID == source.ExternalMeetingID:
			candidates = append(candidates, record)
			evidence = append(evidence, "meeting-id")
		case topicAndDateMatch(source, record, e.similarityThreshold):
			candidates = append(candidates, record)
			evidence = append(evidence, "topic-similarity")
		}
	}

	switch len(candidates) {
	case 0:
		entry.Status = StatusMissingInArchive
		entry.Evidence = "no archive record matched by identity, meeting id, or topic"
		return entry
	case 1:
		return e.checkFiles(entry, source, candidates[0], manifests, evidence[0])
	default:
		entry.Status = StatusAmbiguousMatch
		for _, candidate := range candidates {
			entry.CandidateIDs = append(entry.CandidateIDs, candidate.ID)
		}
		entry.Evidence = fmt.Sprintf("%d fallback candidates (%s)", len(candidates), strings.Join(evidence, ", "))
		return entry
	}
}

// checkFiles finishes a matched entry, downgrading to partial-files when the
// storage manifest lacks a file type the source declares. When no manifests
// were supplied the storage side is not audited.
func (e *Engine) checkFiles(entry Entry, source recording.Metadata, record *archive.Record, manifests []StorageManifest, evidence string) Entry {
	entry.RecordID = record.ID
	entry.Status = StatusMatched
	entry.Evidence = evidence

	declared := source.FileTypes()
	if len(manifests) == 0 || len(declared) == 0 {
		return entry
	}

	stored := make(map[string]bool)
	found := false
	for _, manifest := range manifests {
		if !manifestFor(manifest, source, record) {
			continue
		}
		found = true
		for t := range manifest.normalizedTypes() {
			stored[t] = true
		}
	}

	var missing []string
	for _, t := range declared {
		if !stored[t] {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		entry.Status = StatusPartialFiles
		entry.MissingTypes = missing
		if found {
			entry.Evidence = evidence + "; storage manifest incomplete"
		} else {
			entry.Evidence = evidence + "; no storage manifest found"
		}
	}
	return entry
}

func manifestFor(manifest StorageManifest, source recording.Metadata, record *archive.Record) bool {
	if mi := manifest.identity(); !mi.IsZero() {
		if !record.Identity.IsZero() && mi.Compact == record.Identity.Compact {
			return true
		}
	}
	if manifest.MeetingID != "" {
		if manifest.MeetingID == source.ExternalMeetingID || manifest.MeetingID == record.MeetingID {
			return true
		}
	}
	return false
}

func topicAndDateMatch(source recording.Metadata, record *archive.Record, threshold float64) bool {
	if source.Topic == "" || record.Topic == "" {
		return false
	}
	if source.StartTime.IsZero() || record.StartTime.IsZero() {
		return false
	}
	if !sameUTCDate(source.StartTime, record.StartTime) {
		return false
	}
	return textutil.TopicSimilarity(source.Topic, record.Topic) >= threshold
}

func sameUTCDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// canonicalizeLenient derives a canonical identity when possible and yields
// the zero value otherwise. Reconciliation reports on malformed identifiers
// via fallback matching instead of failing the run.
func canonicalizeLenient(value string, declared identity.Encoding) identity.CanonicalIdentity {
	if strings.TrimSpace(value) == "" {
		return identity.CanonicalIdentity{}
	}
	ci, err := identity.Canonicalize(value, declared)
	if err != nil {
		return identity.CanonicalIdentity{}
	}
	return ci
}
