// Package report exports reconciliation reports for human review.
package report
