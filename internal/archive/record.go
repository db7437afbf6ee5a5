package archive

import (
	"time"

	"reckon/internal/dupgate"
	"reckon/internal/identity"
	"reckon/internal/recording"
)

// Record is one processed recording as persisted in the archive. All three
// identifier forms are stored at write time so later lookups match whatever
// encoding a source hands us, without rewriting historical rows.
type Record struct {
	ID                int64
	Identity          identity.CanonicalIdentity
	Fingerprint       string
	MeetingID         string
	Topic             string
	StartTime         time.Time
	DurationSeconds   int64
	AggregateFileSize int64
	Category          recording.Category
	Rule              int
	NoShow            bool
	Incomplete        bool
	Decision          dupgate.Decision
	MatchMethod       dupgate.Method
	RunID             string
	FileTypes         []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (r *Record) prior() *dupgate.Prior {
	if r == nil {
		return nil
	}
	return &dupgate.Prior{
		RecordID:    r.ID,
		Identity:    r.Identity,
		Fingerprint: r.Fingerprint,
		Topic:       r.Topic,
		Category:    string(r.Category),
		ProcessedAt: r.CreatedAt,
	}
}
