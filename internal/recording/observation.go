package recording

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"reckon/internal/identity"
	"reckon/internal/services"
)

// observationPayload is the wire shape shared by the push, pull, and manual
// import channels.
type observationPayload struct {
	Identifier             string                `json:"identifier"`
	IdentifierEncoding     string                `json:"identifierEncoding,omitempty"`
	ExternalMeetingID      string                `json:"externalMeetingId"`
	Topic                  string                `json:"topic"`
	StartTime              string                `json:"startTime"`
	DurationSeconds        int                   `json:"durationSeconds"`
	AggregateFileSizeBytes int64                 `json:"aggregateFileSizeBytes"`
	ParticipantCount       int                   `json:"participantCount"`
	HostIdentity           string                `json:"hostIdentity"`
	Files                  []filePayload         `json:"files,omitempty"`
	NameResolution         *nameResolutionWire   `json:"nameResolution,omitempty"`
	Category               string                `json:"category,omitempty"`
}

type filePayload struct {
	Type      string `json:"type"`
	SizeBytes int64  `json:"sizeBytes"`
	Available *bool  `json:"available,omitempty"`
}

type nameResolutionWire struct {
	Coach      string  `json:"coach"`
	Student    string  `json:"student"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method,omitempty"`
}

// DecodeObservations reads observation metadata from r. Both a single JSON
// object and an array of objects are accepted; the bulk-pull channel delivers
// arrays, the push channel single objects.
func DecodeObservations(r io.Reader) ([]Metadata, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "recording", "read observations", "", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, services.Wrap(services.ErrValidation, "recording", "decode observations", "empty input", nil)
	}

	var payloads []observationPayload
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &payloads); err != nil {
			return nil, services.Wrap(services.ErrValidation, "recording", "decode observations", "invalid JSON array", err)
		}
	} else {
		var single observationPayload
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, services.Wrap(services.ErrValidation, "recording", "decode observations", "invalid JSON object", err)
		}
		payloads = []observationPayload{single}
	}

	observations := make([]Metadata, 0, len(payloads))
	for i, p := range payloads {
		meta, err := p.toMetadata()
		if err != nil {
			return nil, fmt.Errorf("observation %d: %w", i, err)
		}
		observations = append(observations, meta)
	}
	return observations, nil
}

func (p observationPayload) toMetadata() (Metadata, error) {
	encoding, err := identity.ParseEncoding(p.IdentifierEncoding)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrValidation, "recording", "parse encoding", "", err)
	}

	var start time.Time
	if strings.TrimSpace(p.StartTime) != "" {
		start, err = time.Parse(time.RFC3339, p.StartTime)
		if err != nil {
			return Metadata{}, services.Wrap(services.ErrValidation, "recording", "parse start time", p.StartTime, err)
		}
	}

	var override Category
	if strings.TrimSpace(p.Category) != "" {
		override, err = ParseCategory(p.Category)
		if err != nil {
			return Metadata{}, services.Wrap(services.ErrValidation, "recording", "parse category", "", err)
		}
	}

	meta := Metadata{
		Identifier:         strings.TrimSpace(p.Identifier),
		IdentifierEncoding: encoding,
		ExternalMeetingID:  strings.TrimSpace(p.ExternalMeetingID),
		Topic:              p.Topic,
		StartTime:          start,
		DurationSeconds:    p.DurationSeconds,
		AggregateFileSize:  p.AggregateFileSizeBytes,
		ParticipantCount:   p.ParticipantCount,
		HostIdentity:       strings.ToLower(strings.TrimSpace(p.HostIdentity)),
		CategoryOverride:   override,
	}

	for _, f := range p.Files {
		available := true
		if f.Available != nil {
			available = *f.Available
		}
		meta.Files = append(meta.Files, FileInfo{
			Type:      strings.ToLower(strings.TrimSpace(f.Type)),
			SizeBytes: f.SizeBytes,
			Available: available,
		})
	}

	if p.NameResolution != nil {
		meta.Names = &NameResolution{
			Coach:      strings.TrimSpace(p.NameResolution.Coach),
			Student:    strings.TrimSpace(p.NameResolution.Student),
			Confidence: p.NameResolution.Confidence,
			Method:     p.NameResolution.Method,
		}
	}

	return meta, nil
}
