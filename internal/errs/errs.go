// Package errs defines the error taxonomy shared across debrief.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrPhaseOrder       = errors.New("phase invoked out of sequence")
	ErrPermissionDenied = errors.New("permission denied by upstream system")
	ErrRateLimited      = errors.New("upstream rate limit exceeded")
	ErrNetwork          = errors.New("network failure")
	ErrNotFound         = errors.New("not found")
	ErrAPI              = errors.New("upstream API error")
	ErrExtraction       = errors.New("knowledge extraction failed")
)

// Validation wraps ErrValidation with a reason.
func Validation(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, a...))
}

// PhaseOrder wraps ErrPhaseOrder with a reason.
func PhaseOrder(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrPhaseOrder, fmt.Sprintf(format, a...))
}

// NotFound wraps ErrNotFound naming the missing entity.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// Code returns the short machine code recorded in session error logs.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrPhaseOrder):
		return "phase_order_error"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrNetwork):
		return "network_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrExtraction):
		return "extraction_error"
	case errors.Is(err, ErrAPI):
		return "api_error"
	default:
		return "internal_error"
	}
}

// PermissionMessage is the fixed user-facing text for permission failures.
// Raw upstream status codes must never reach a caller.
const PermissionMessage = "access to the upstream system was denied; check the configured credentials"
