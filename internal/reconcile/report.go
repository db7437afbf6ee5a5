package reconcile

import (
	"time"

	"reckon/internal/identity"
)

// Status classifies one source recording's standing against the archive.
type Status string

const (
	// StatusMatched means exactly one archive record corresponds to the
	// source recording and no storage files are missing.
	StatusMatched Status = "matched"
	// StatusMissingInArchive means no archive record matched by identity or
	// by any fallback signal.
	StatusMissingInArchive Status = "missing-in-archive"
	// StatusPartialFiles means a record matched but storage lacks at least
	// one file type the source declares.
	StatusPartialFiles Status = "partial-files"
	// StatusAmbiguousMatch means multiple fallback candidates were plausible.
	// Ambiguity is reported for human review, never auto-resolved.
	StatusAmbiguousMatch Status = "ambiguous-match"
)

// Entry is one line of the discrepancy report.
type Entry struct {
	Identifier   string
	Identity     identity.CanonicalIdentity
	MeetingID    string
	Topic        string
	Status       Status
	RecordID     int64
	CandidateIDs []int64
	MissingTypes []string
	Evidence     string
	Timestamp    time.Time
}

// Report is the full reconciliation output for one run: flat, append-only,
// intended for human review.
type Report struct {
	RunID       string
	GeneratedAt time.Time
	Entries     []Entry
}

// Counts returns the entry totals grouped by status.
func (r *Report) Counts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, entry := range r.Entries {
		counts[entry.Status]++
	}
	return counts
}

// Discrepancies reports whether any entry is not cleanly matched.
func (r *Report) Discrepancies() int {
	total := 0
	for _, entry := range r.Entries {
		if entry.Status != StatusMatched {
			total++
		}
	}
	return total
}
