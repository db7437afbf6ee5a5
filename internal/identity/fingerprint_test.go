package identity

import (
	"testing"
	"time"
)

func TestMeetingFingerprintDeterministic(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	a := MeetingFingerprint("8881234567", start)
	b := MeetingFingerprint("8881234567", start)
	if a == "" || a != b {
		t.Fatalf("fingerprint not deterministic: %q vs %q", a, b)
	}
	if len(a) != 2*fingerprintBytes {
		t.Errorf("fingerprint length = %d, want %d", len(a), 2*fingerprintBytes)
	}
}

func TestMeetingFingerprintTimezoneInsensitive(t *testing.T) {
	utc := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	est := utc.In(time.FixedZone("EST", -5*3600))
	if MeetingFingerprint("8881234567", utc) != MeetingFingerprint("8881234567", est) {
		t.Error("same instant in different zones should fingerprint identically")
	}
}

func TestMeetingFingerprintDistinguishesInputs(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	base := MeetingFingerprint("8881234567", start)
	if MeetingFingerprint("8881234568", start) == base {
		t.Error("different meeting ids should not collide")
	}
	if MeetingFingerprint("8881234567", start.Add(time.Hour)) == base {
		t.Error("different start times should not collide")
	}
}

func TestMeetingFingerprintMissingInputs(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	if got := MeetingFingerprint("", start); got != "" {
		t.Errorf("empty meeting id should yield no fingerprint, got %q", got)
	}
	if got := MeetingFingerprint("  ", start); got != "" {
		t.Errorf("blank meeting id should yield no fingerprint, got %q", got)
	}
	if got := MeetingFingerprint("8881234567", time.Time{}); got != "" {
		t.Errorf("zero start time should yield no fingerprint, got %q", got)
	}
}
