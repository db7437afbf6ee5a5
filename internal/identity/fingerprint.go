package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// fingerprintBytes is the truncated digest length. 64 bits keeps collisions
// negligible at archive scale while staying short enough for log lines and
// lock keys.
const fingerprintBytes = 8

// MeetingFingerprint derives the secondary dedup key from the external
// meeting identifier and the recording start instant. The ingestion platform
// rotates instance identifiers when the same scheduled meeting is re-recorded;
// this digest stays stable across those rotations.
//
// Returns "" when the meeting identifier is blank or the start time is
// unset; a missing input must not produce a colliding constant digest.
func MeetingFingerprint(externalMeetingID string, start time.Time) string {
	externalMeetingID = strings.TrimSpace(externalMeetingID)
	if externalMeetingID == "" || start.IsZero() {
		return ""
	}
	payload := externalMeetingID + "\x00" + start.UTC().Format(time.RFC3339)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:fingerprintBytes])
}
