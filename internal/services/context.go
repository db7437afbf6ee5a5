package services

import "context"

type contextKey string

const (
	recordingKey contextKey = "recording"
	stageKey     contextKey = "stage"
	runIDKey     contextKey = "run_id"
)

// WithRecording annotates context with the recording identifier under
// processing. The canonical compact form is preferred; a fingerprint is used
// when the identity is unresolved.
func WithRecording(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, recordingKey, id)
}

// RecordingFromContext extracts the recording identifier if present.
func RecordingFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(recordingKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with the run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run correlation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
