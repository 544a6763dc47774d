package types

import (
	"fmt"
	"strings"
)

// NotFoundError signals that the geocoding provider returned zero candidates
// for the user's location text. Fatal, surfaced to the user.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("location not found: %q", e.Query)
}

// TransportError wraps a network-level failure (connection reset, DNS, TLS).
// Fatal for the geocoding client; retryable inside the recommendation invoker
// only through its own classification.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RetryableServiceError signals a transient upstream failure (5xx, timeout).
// The invoker retries these up to its retry budget, then fails the run.
type RetryableServiceError struct {
	Status int
	Reason string
}

func (e *RetryableServiceError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("upstream temporarily unavailable (status %d): %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("upstream temporarily unavailable: %s", e.Reason)
}

// MalformedResponseError signals a server-side rendering failure: non-JSON
// content type or an unparsable body. Never retried.
type MalformedResponseError struct {
	ContentType string
	Reason      string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed backend response (%s): %s", e.ContentType, e.Reason)
}

// EmptyResultError signals a well-formed backend response carrying no activities.
type EmptyResultError struct{}

func (e *EmptyResultError) Error() string {
	return "backend returned no activities"
}

// ValidationError carries one message per offending field of the AI payload.
// It never escapes the validator's repair tier.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "activity payload failed validation: " + strings.Join(e.Fields, "; ")
}
