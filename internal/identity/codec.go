package identity

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// rawLength is the decoded identifier size. Every channel encodes the same
// 128-bit value.
const rawLength = 16

var (
	// ErrMalformedIdentifier marks identifiers that decode to something other
	// than 128 bits, or fail to decode at all.
	ErrMalformedIdentifier = errors.New("malformed identifier")
	// ErrUnknownEncoding marks identifiers whose encoding is neither declared
	// nor structurally inferable.
	ErrUnknownEncoding = errors.New("unknown identifier encoding")
)

// CanonicalIdentity holds every known textual form of one recording
// identifier. All three fields are derived from the same 128-bit value, so
// equality on any one field implies equality on the others.
type CanonicalIdentity struct {
	Compact         string
	LegacyHex       string
	LegacyHexDashed string
}

// IsZero reports whether no identity was derived.
func (ci CanonicalIdentity) IsZero() bool {
	return ci.Compact == ""
}

// Key returns the form used for lock keying and archive indexing.
func (ci CanonicalIdentity) Key() string {
	return ci.Compact
}

// Forms returns the encodings in lookup-priority order: compact first because
// it is the current write format, then the legacy forms historical records
// were written in.
func (ci CanonicalIdentity) Forms() []string {
	if ci.IsZero() {
		return nil
	}
	return []string{ci.Compact, ci.LegacyHex, ci.LegacyHexDashed}
}

// Canonicalize decodes an identifier in the declared encoding (inferring the
// encoding when declared is EncodingUnknown) and derives all three textual
// forms. Malformed input yields an error and a zero identity; forms are never
// guessed.
func Canonicalize(value string, declared Encoding) (CanonicalIdentity, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return CanonicalIdentity{}, fmt.Errorf("%w: empty identifier", ErrMalformedIdentifier)
	}

	encoding := declared
	if encoding == "" || encoding == EncodingUnknown {
		inferred, err := InferEncoding(value)
		if err != nil {
			return CanonicalIdentity{}, err
		}
		encoding = inferred
	}

	raw, err := decode(value, encoding)
	if err != nil {
		return CanonicalIdentity{}, err
	}
	if len(raw) != rawLength {
		return CanonicalIdentity{}, fmt.Errorf("%w: decoded to %d bytes, want %d", ErrMalformedIdentifier, len(raw), rawLength)
	}

	var id uuid.UUID
	copy(id[:], raw)
	return CanonicalIdentity{
		Compact:         base64.StdEncoding.EncodeToString(raw),
		LegacyHex:       hex.EncodeToString(raw),
		LegacyHexDashed: id.String(),
	}, nil
}

func decode(value string, encoding Encoding) ([]byte, error) {
	switch encoding {
	case EncodingCompact:
		raw, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64: %v", ErrMalformedIdentifier, err)
		}
		return raw, nil
	case EncodingLegacyHex:
		if len(value) != 2*rawLength || !isHex(value) {
			return nil, fmt.Errorf("%w: expected %d hex digits", ErrMalformedIdentifier, 2*rawLength)
		}
		raw, err := hex.DecodeString(strings.ToLower(value))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid hex: %v", ErrMalformedIdentifier, err)
		}
		return raw, nil
	case EncodingLegacyHexDashed:
		if !isDashedHex(value) {
			return nil, fmt.Errorf("%w: expected 8-4-4-4-12 hex grouping", ErrMalformedIdentifier)
		}
		id, err := uuid.Parse(strings.ToLower(value))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid grouping: %v", ErrMalformedIdentifier, err)
		}
		return id[:], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, encoding)
	}
}
