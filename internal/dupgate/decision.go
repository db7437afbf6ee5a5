package dupgate

import (
	"time"

	"reckon/internal/identity"
)

// Decision is the gate outcome for one observation.
type Decision string

const (
	// DecisionProceedNew means no prior record matched at any step.
	DecisionProceedNew Decision = "proceed-new"
	// DecisionSkipDuplicate means a prior record matched and the approval
	// policy chose to skip reprocessing.
	DecisionSkipDuplicate Decision = "skip-duplicate"
	// DecisionProceedOverride means a prior record matched but the approval
	// policy chose to reprocess anyway.
	DecisionProceedOverride Decision = "proceed-override"
)

// Method identifies which lookup step produced a match.
type Method string

const (
	MethodCompact         Method = "compact"
	MethodLegacyHex       Method = "legacy-hex"
	MethodLegacyHexDashed Method = "legacy-hex-dashed"
	MethodFingerprint     Method = "fingerprint"
	MethodNone            Method = "none"
)

// Prior is the matched prior record surfaced to the approval policy.
type Prior struct {
	RecordID    int64
	Identity    identity.CanonicalIdentity
	Fingerprint string
	Topic       string
	Category    string
	ProcessedAt time.Time
}

// ProcessingDecision is the full gate output: the decision, the matched prior
// record when one exists, and the matching method that found it.
type ProcessingDecision struct {
	Decision Decision
	Prior    *Prior
	Method   Method
}

// Proceed reports whether the pipeline should continue past the gate.
func (d ProcessingDecision) Proceed() bool {
	return d.Decision != DecisionSkipDuplicate
}
