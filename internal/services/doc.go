// Package services provides shared plumbing for pipeline components: sentinel
// errors with wrap helpers for failure classification, and context carriage
// for recording, stage, and run identifiers so log lines stay correlated
// across components.
package services
