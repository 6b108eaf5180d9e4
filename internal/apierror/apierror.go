// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// Machine-readable error codes.
const (
	CodeValidation           = "validation_error"
	CodeInsufficientCapacity = "insufficient_capacity"
	CodeInvalidReelState     = "invalid_reel_state"
	CodeConflict             = "concurrent_update_conflict"
	CodePersistence          = "persistence_failure"
	CodeNotFound             = "not_found"
	CodeForbidden            = "forbidden"
	CodeDuplicate            = "duplicate"
	CodeUpstream             = "upstream_unavailable"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail    string `json:"detail"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// NewCoded attaches a taxonomy code to the message.
func NewCoded(code, msg string) *APIError {
	return &APIError{Detail: msg, Code: code}
}

// NewRetryable marks an error the caller may resubmit unchanged.
func NewRetryable(code, msg string) *APIError {
	return &APIError{Detail: msg, Code: code, Retryable: true}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation failed", Code: CodeValidation, Fields: fields}
}

// CapacityError reports how many sheets were asked for and how many remain.
type CapacityError struct {
	Detail    string `json:"detail"`
	Code      string `json:"code"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

func NewCapacity(msg string, requested, available int64) *CapacityError {
	return &CapacityError{Detail: msg, Code: CodeInsufficientCapacity, Requested: requested, Available: available}
}
