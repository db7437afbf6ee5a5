package recording

import (
	"strings"
	"time"

	"reckon/internal/identity"
)

// FileInfo describes one entry in a recording's file manifest.
type FileInfo struct {
	Type      string
	SizeBytes int64
	Available bool
}

// NameResolution is the opaque attribution result supplied by an external
// resolver: who coached, who attended, and how confident the resolver is.
type NameResolution struct {
	Coach      string
	Student    string
	Confidence float64
	Method     string
}

// CoachResolved reports whether a coach name was attributed.
func (n *NameResolution) CoachResolved() bool {
	return n != nil && strings.TrimSpace(n.Coach) != ""
}

// StudentResolved reports whether a student name was attributed.
func (n *NameResolution) StudentResolved() bool {
	return n != nil && strings.TrimSpace(n.Student) != ""
}

// Metadata is one observation of a recording as delivered by an ingestion
// channel. Multiple observations of the same physical recording are distinct
// values; they are never merged in place.
type Metadata struct {
	Identifier         string
	IdentifierEncoding identity.Encoding
	ExternalMeetingID  string
	Topic              string
	StartTime          time.Time
	DurationSeconds    int
	AggregateFileSize  int64
	ParticipantCount   int
	HostIdentity       string
	Files              []FileInfo
	Names              *NameResolution

	// CategoryOverride carries a manually declared category on import
	// channels that pre-sort recordings. Empty for the automated channels.
	CategoryOverride Category
}

// Fingerprint derives the secondary dedup key for this observation.
func (m Metadata) Fingerprint() string {
	return identity.MeetingFingerprint(m.ExternalMeetingID, m.StartTime)
}

// FileTypes returns the declared manifest types, normalized to lowercase.
func (m Metadata) FileTypes() []string {
	if len(m.Files) == 0 {
		return nil
	}
	types := make([]string, 0, len(m.Files))
	for _, f := range m.Files {
		t := strings.ToLower(strings.TrimSpace(f.Type))
		if t != "" {
			types = append(types, t)
		}
	}
	return types
}
