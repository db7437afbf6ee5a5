// Package reconcile audits the source-of-truth channel's recordings against
// the archive and storage snapshots.
//
// For each source recording it attempts a canonical-identity match, then
// falls back to meeting-id equality or topic similarity on the same UTC
// date. The output is a flat discrepancy report for human review; ambiguous
// fallback matches are reported, never auto-resolved.
package reconcile
