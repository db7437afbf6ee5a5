package reconcile

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"reckon/internal/identity"
)

// StorageManifest is one storage location's view of a recording's files,
// keyed by identifier and/or meeting id depending on what the location knows.
type StorageManifest struct {
	Identifier string   `json:"identifier"`
	MeetingID  string   `json:"externalMeetingId"`
	FileTypes  []string `json:"fileTypes"`
}

func (m StorageManifest) identity() identity.CanonicalIdentity {
	if m.Identifier == "" {
		return identity.CanonicalIdentity{}
	}
	ci, err := identity.Canonicalize(m.Identifier, identity.EncodingUnknown)
	if err != nil {
		return identity.CanonicalIdentity{}
	}
	return ci
}

func (m StorageManifest) normalizedTypes() map[string]bool {
	types := make(map[string]bool, len(m.FileTypes))
	for _, t := range m.FileTypes {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			types[t] = true
		}
	}
	return types
}

// DecodeManifests reads a JSON array (or single object) of storage manifests.
func DecodeManifests(r io.Reader) ([]StorageManifest, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read manifests: %w", err)
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var manifests []StorageManifest
		if err := json.Unmarshal([]byte(trimmed), &manifests); err != nil {
			return nil, fmt.Errorf("decode manifests: %w", err)
		}
		return manifests, nil
	}

	var single StorageManifest
	if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return []StorageManifest{single}, nil
}
