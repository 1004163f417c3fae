package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Recoverable indicates if a fallback tier may absorb this failure.
	Recoverable bool `json:"recoverable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic recoverable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:        code,
		Message:     message,
		Recoverable: IsRecoverableCode(code),
	}
}

// IsRecoverable reports whether err is an AppError whose failure a fallback
// tier may absorb. Non-AppError values are treated as recoverable backend
// failures, matching the pipeline's catch-everything boundary.
func IsRecoverable(err error) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Recoverable
	}
	return true
}

// GetCode extracts the error code from err. Non-AppError values map to
// ErrCodeInternal.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// --- Common Error Constructors ---

// DecodeFailed creates a new AppError for an audio source that could not be decoded.
func DecodeFailed(source string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("Unable to decode audio source %q.", source),
		Recoverable: false, Cause: cause,
		Details: map[string]any{"source": source},
	}
}

// EmptyWaveform creates a new AppError for a waveform with no samples.
func EmptyWaveform() *AppError {
	return &AppError{
		Code: ErrCodeEmptyWaveform, Message: "The decoded waveform contains no samples.",
		Recoverable: false,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Recoverable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		Recoverable: false,
	}
}

// BackendFailed creates a new AppError for a neural backend that failed to
// load or run inference.
func BackendFailed(backend string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeBackendFailed, Message: fmt.Sprintf("The %s backend failed.", backend),
		Recoverable: true, Cause: cause,
		Details: map[string]any{"backend": backend},
	}
}

// MalformedOutput creates a new AppError for a backend that returned
// structurally invalid data.
func MalformedOutput(backend, reason string) *AppError {
	return &AppError{
		Code: ErrCodeMalformedOutput, Message: fmt.Sprintf("The %s backend returned malformed output: %s", backend, reason),
		Recoverable: true,
		Details:     map[string]any{"backend": backend},
	}
}

// Timeout creates a new AppError for a backend call that exceeded its deadline.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The operation took too long.",
		Recoverable: true,
		Details:     map[string]any{"operation": operation},
	}
}

// Unauthorized creates a new AppError for a rejected credential.
func Unauthorized(backend string) *AppError {
	return &AppError{
		Code: ErrCodeUnauthorized, Message: fmt.Sprintf("The %s backend rejected the supplied credential.", backend),
		Recoverable: true,
		Details:     map[string]any{"backend": backend},
	}
}

// ContractViolation creates a new AppError for an upstream invariant break.
func ContractViolation(component, reason string) *AppError {
	return &AppError{
		Code: ErrCodeContractViolation, Message: fmt.Sprintf("%s: %s", component, reason),
		Recoverable: false,
		Details:     map[string]any{"component": component},
	}
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Recoverable: false, Cause: cause,
	}
}
