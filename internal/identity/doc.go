// Package identity canonicalizes recording identifiers across the three
// textual encodings the ingestion channels use, and derives the secondary
// meeting fingerprint used when instance identifiers rotate.
//
// Every identifier is a 128-bit value. The push channel emits base64
// ("compact"); older archive rows hold bare hex or 8-4-4-4-12 grouped hex.
// Canonicalize is pure and structural: it validates shape and length, never
// real-world existence, and refuses to guess when input is malformed.
package identity
