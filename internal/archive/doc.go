// Package archive persists processed-recording records in SQLite.
//
// Every record stores the identifier in all three encodings plus the meeting
// fingerprint, which is what lets the duplicate gate match observations
// regardless of the encoding their source emitted. The store implements
// dupgate.RecordLookup directly.
package archive
