// Package recording defines the observation data model shared by every
// ingestion channel, the closed Category set, and the JSON wire decoding for
// the metadata shape those channels deliver.
package recording
