// Package classify assigns each recording one operational category through a
// single ordered rule table.
//
// Cheap high-confidence signals (throwaway topics, tiny files) short-circuit
// before attribution-based rules, and the no-show rule precedes the generic
// coaching rule despite sharing preconditions because downstream filing
// treats the two differently. Thresholds are configuration, not control flow:
// they tune without reordering rules.
package classify
