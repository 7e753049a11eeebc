// Package errors defines the sentinel errors of the messaging core.
// Callers match them with errors.Is after any amount of wrapping.
package errors

import "fmt"

var (
	// ErrRateLimited is returned when a sender exhausted its sliding window.
	ErrRateLimited = fmt.Errorf("rate limited")
	// ErrContentRejected is returned when the moderation gate refuses a message.
	ErrContentRejected = fmt.Errorf("content rejected")
	// ErrWriteFailed wraps transient store failures. Retryable by the caller.
	ErrWriteFailed = fmt.Errorf("write failed")
	// ErrNotAuthorized covers missing identity and participant checks.
	ErrNotAuthorized = fmt.Errorf("not authorized")
	// ErrThreadConflict marks a concurrent thread creation. Never surfaced:
	// the resolver swallows it and re-reads the winning row.
	ErrThreadConflict = fmt.Errorf("thread already created")
	ErrNotFound       = fmt.Errorf("not found")
	ErrInvalidStatus  = fmt.Errorf("unknown status type")
	ErrWorkerPanic    = fmt.Errorf("worker panic")
)
