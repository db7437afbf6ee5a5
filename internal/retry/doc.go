// Package retry consolidates the retry/backoff handling for external calls
// into one wrapper parameterized by error classification: everything is
// retryable unless marked Permanent.
package retry
