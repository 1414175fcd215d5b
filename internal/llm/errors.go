// Package llm provides the pluggable text-generation provider layer and
// the provider error taxonomy shared by every model-backed stage.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// TransientError is a provider failure worth retrying: rate limits,
// server errors, timeouts.
type TransientError struct {
	Op    string
	Cause error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient provider error during %s: %v", e.Op, e.Cause)
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}

// PermanentError is a provider failure that retrying cannot fix: bad
// credentials, malformed requests, unknown models.
type PermanentError struct {
	Op    string
	Cause error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent provider error during %s: %v", e.Op, e.Cause)
}

func (e *PermanentError) Unwrap() error {
	return e.Cause
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// ClassifyError wraps a raw provider error as transient or permanent.
// Timeouts and cancellations count as transient: the per-call deadline
// expired, not the job's.
func ClassifyError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransientError{Op: op, Cause: err}
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return classifyStatus(op, gErr.Code, err)
	}
	// Unknown failure shapes (network resets, truncated bodies) are
	// treated as transient so the retry ceiling decides.
	return &TransientError{Op: op, Cause: err}
}

// ClassifyStatusCode wraps an HTTP status from a non-Google backend.
func ClassifyStatusCode(op string, status int, err error) error {
	return classifyStatus(op, status, err)
}

func classifyStatus(op string, status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &TransientError{Op: op, Cause: err}
	case status >= 500:
		return &TransientError{Op: op, Cause: err}
	default:
		return &PermanentError{Op: op, Cause: err}
	}
}
