package analyses

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrAIAnalysis   = errors.New("ai analysis failed")
)

const (
	ErrorCodeValidation = "validation_error"
	ErrorCodeNotFound   = "not_found"
	ErrorCodeInternal   = "internal_error"
)

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// AIFailureKind distinguishes why the AI path produced no usable result.
type AIFailureKind string

const (
	AIFailureUnavailable     AIFailureKind = "unavailable"
	AIFailureTransport       AIFailureKind = "transport"
	AIFailureInvalidResponse AIFailureKind = "invalid_response"
	AIFailureTimeout         AIFailureKind = "timeout"
)

// isTimeout reports deadline expiry from the context or from the HTTP transport.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// AIAnalysisError is the AI path's failure variant. It never reaches API callers.
type AIAnalysisError struct {
	Kind AIFailureKind
	Err  error
}

func (e *AIAnalysisError) Error() string {
	return fmt.Sprintf("ai analysis %s: %v", e.Kind, e.Err)
}

func (e *AIAnalysisError) Unwrap() error {
	return e.Err
}

func (e *AIAnalysisError) Is(target error) bool {
	return target == ErrAIAnalysis
}
