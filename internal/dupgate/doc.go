// Package dupgate decides whether an observed recording was already
// processed.
//
// The gate queries an injected RecordLookup through an ordered strategy
// chain: exact compact-form match, then the legacy hex forms historical
// archive rows were written in, then the meeting fingerprint for instances
// whose identifier rotated. Any match is handed to an injected Approver,
// which resolves skip versus override; no match at any step proceeds as new.
//
// Lookup failures are surfaced, never swallowed: the gate fails closed rather
// than risking duplicate processing during an outage.
package dupgate
