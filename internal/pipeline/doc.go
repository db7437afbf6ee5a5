// Package pipeline orchestrates observation processing: canonicalize the
// identifier, derive the meeting fingerprint, resolve the duplicate gate
// under a per-identity lock, classify, and record the attempt in the
// archive. Every observation lands in the run summary with its decision or
// error kind.
package pipeline
