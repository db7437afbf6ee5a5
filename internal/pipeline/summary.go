package pipeline

import (
	"reckon/internal/dupgate"
	"reckon/internal/recording"
)

// Outcome is the per-observation result line in a run summary. Failed
// observations carry their error kind; they never silently disappear from
// the attempted count.
type Outcome struct {
	Identifier  string
	Topic       string
	Decision    dupgate.Decision
	MatchMethod dupgate.Method
	Category    recording.Category
	Rule        int
	NoShow      bool
	Incomplete  bool
	RecordID    int64
	Err         string
	ErrKind     string
}

// Failed reports whether the observation errored before a decision resolved.
func (o Outcome) Failed() bool {
	return o.ErrKind != ""
}

// Summary aggregates one pipeline run.
type Summary struct {
	RunID        string
	DryRun       bool
	Attempted    int
	ProceededNew int
	Overridden   int
	Skipped      int
	Failed       int
	Outcomes     []Outcome
}

func summarize(runID string, dryRun bool, outcomes []Outcome) *Summary {
	summary := &Summary{RunID: runID, DryRun: dryRun, Outcomes: outcomes, Attempted: len(outcomes)}
	for _, outcome := range outcomes {
		switch {
		case outcome.Failed():
			summary.Failed++
		case outcome.Decision == dupgate.DecisionSkipDuplicate:
			summary.Skipped++
		case outcome.Decision == dupgate.DecisionProceedOverride:
			summary.Overridden++
		default:
			summary.ProceededNew++
		}
	}
	return summary
}
