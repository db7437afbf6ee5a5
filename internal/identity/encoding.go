package identity

import (
	"fmt"
	"strings"
)

// Encoding identifies the textual form a recording identifier arrived in.
type Encoding string

const (
	// EncodingCompact is the base64 form emitted by the ingestion platform.
	EncodingCompact Encoding = "compact"
	// EncodingLegacyHex is the 32-character hex form found in older archive rows.
	EncodingLegacyHex Encoding = "legacy-hex"
	// EncodingLegacyHexDashed is the 8-4-4-4-12 grouped hex form.
	EncodingLegacyHexDashed Encoding = "legacy-hex-dashed"
	// EncodingUnknown marks an undeclared encoding; Canonicalize infers it.
	EncodingUnknown Encoding = "unknown"
)

var allEncodings = []Encoding{
	EncodingCompact,
	EncodingLegacyHex,
	EncodingLegacyHexDashed,
	EncodingUnknown,
}

// Valid reports whether the encoding is a known member of the closed set.
func (e Encoding) Valid() bool {
	for _, known := range allEncodings {
		if e == known {
			return true
		}
	}
	return false
}

// ParseEncoding maps a declared encoding tag to the closed Encoding set. An
// empty tag parses as EncodingUnknown so callers fall through to inference.
func ParseEncoding(value string) (Encoding, error) {
	trimmed := Encoding(strings.ToLower(strings.TrimSpace(value)))
	if trimmed == "" {
		return EncodingUnknown, nil
	}
	if !trimmed.Valid() {
		return EncodingUnknown, fmt.Errorf("%w: encoding tag %q", ErrUnknownEncoding, value)
	}
	return trimmed, nil
}

// InferEncoding guesses the encoding from structure alone. The compact check
// runs first: base64 of a 128-bit value always carries '=' padding, and may
// contain '+' or '/', none of which appear in the hex forms.
func InferEncoding(value string) (Encoding, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return EncodingUnknown, fmt.Errorf("%w: empty identifier", ErrUnknownEncoding)
	case strings.ContainsAny(value, "+/") || strings.HasSuffix(value, "="):
		return EncodingCompact, nil
	case len(value) == 32 && isHex(value):
		return EncodingLegacyHex, nil
	case len(value) == 36 && isDashedHex(value):
		return EncodingLegacyHexDashed, nil
	default:
		return EncodingUnknown, fmt.Errorf("%w: cannot infer encoding of %q", ErrUnknownEncoding, value)
	}
}

func isHex(value string) bool {
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func isDashedHex(value string) bool {
	groups := strings.Split(value, "-")
	if len(groups) != 5 {
		return false
	}
	widths := []int{8, 4, 4, 4, 12}
	for i, group := range groups {
		if len(group) != widths[i] || !isHex(group) {
			return false
		}
	}
	return true
}
