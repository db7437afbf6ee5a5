package classify

import (
	"log/slog"

	"reckon/internal/logging"
	"reckon/internal/recording"
	"reckon/internal/textutil"
)

// Result is the classifier output for one processing attempt.
type Result struct {
	Category recording.Category
	// Rule is the 1-based index of the rule that fired; 0 when a manual
	// category override bypassed the rule table.
	Rule int
	// NoShow tags MISC results produced by the no-show rule, which downstream
	// filing handles differently from generic MISC.
	NoShow bool
	// Incomplete reports that a required field was absent and the most
	// conservative applicable rule decided instead.
	Incomplete bool
	Reason     string
}

// Classifier assigns one operational category per recording via an ordered
// rule list. First match wins; the order is part of the contract.
type Classifier struct {
	policy Policy
	logger *slog.Logger
}

// New constructs a Classifier. The policy is normalized so zero-valued
// thresholds fall back to defaults.
func New(policy Policy, logger *slog.Logger) *Classifier {
	return &Classifier{
		policy: policy.normalized(),
		logger: logging.NewComponentLogger(logger, "classifier"),
	}
}

// Classify is pure: identical inputs always yield the identical Result.
// Missing fields never abort classification; they steer it toward the most
// conservative applicable category and set Incomplete.
func (c *Classifier) Classify(meta recording.Metadata) Result {
	if meta.CategoryOverride != "" && meta.CategoryOverride.Valid() {
		return Result{Category: meta.CategoryOverride, Reason: "manual category override"}
	}

	result := c.applyRules(meta)
	result.Incomplete = result.Incomplete || incompleteInput(meta)

	c.logger.Debug("classified recording",
		logging.String(logging.FieldCategory, string(result.Category)),
		logging.Int("rule", result.Rule),
		logging.Bool("no_show", result.NoShow),
		logging.Bool("incomplete", result.Incomplete),
		logging.String("reason", result.Reason),
	)
	return result
}

func (c *Classifier) applyRules(meta recording.Metadata) Result {
	p := c.policy
	names := meta.Names

	// Rule 1: explicit throwaway markers in the topic.
	if textutil.ContainsMarker(meta.Topic, p.TrivialTopicMarkers) {
		return Result{Category: recording.CategoryTrivial, Rule: 1, Reason: "topic contains throwaway marker"}
	}

	// Rule 2: too small to hold content, and either too short or empty.
	if meta.AggregateFileSize < p.SmallFileBytes &&
		(meta.DurationSeconds < p.ShortDurationSeconds || meta.ParticipantCount == 0) {
		return Result{Category: recording.CategoryTrivial, Rule: 2, Reason: "below small-file and short-session thresholds"}
	}

	// Rule 3: medium-small with unattributed or administrative sessions.
	if meta.DurationSeconds < p.MediumDurationSeconds && meta.AggregateFileSize < p.MediumFileBytes &&
		(!names.StudentResolved() || !names.CoachResolved() || hostListed(meta.HostIdentity, p.AdminHosts)) {
		return Result{Category: recording.CategoryTrivial, Rule: 3, Reason: "medium-small session without full attribution"}
	}

	// Rule 4: a coach alone in an ad-hoc room past the reasonable wait is a
	// no-show. Must precede rule 5: both share resolved attribution, but
	// filing differs materially.
	if names.CoachResolved() && names.StudentResolved() &&
		names.Confidence >= p.MinCoachConfidence &&
		meta.ParticipantCount == 1 &&
		meta.DurationSeconds > p.NoShowWaitSeconds &&
		(textutil.ContainsMarker(meta.Topic, p.AdHocTopicMarkers) || hostListed(meta.HostIdentity, p.KnownCoachHosts)) {
		return Result{Category: recording.CategoryMISC, Rule: 4, NoShow: true, Reason: "solo coach past no-show wait threshold"}
	}

	// Rule 5: attributed session with substantial content.
	if names.CoachResolved() && names.StudentResolved() &&
		names.Confidence >= p.MinAttributionConfidence &&
		meta.AggregateFileSize > p.SubstantialContentBytes {
		return Result{Category: recording.CategoryCoaching, Rule: 5, Reason: "attributed session with substantial content"}
	}

	// Rule 6: no student attribution.
	if !names.StudentResolved() {
		return Result{Category: recording.CategoryMISC, Rule: 6, Reason: "student unresolved"}
	}

	// Rule 7: default.
	return Result{Category: recording.CategoryCoaching, Rule: 7, Reason: "default"}
}

// incompleteInput reports whether fields the rules depend on were absent.
func incompleteInput(meta recording.Metadata) bool {
	switch {
	case meta.Topic == "":
		return true
	case meta.StartTime.IsZero():
		return true
	case meta.AggregateFileSize == 0:
		return true
	case meta.Names == nil:
		return true
	default:
		return false
	}
}
