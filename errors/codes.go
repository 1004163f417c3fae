package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Input errors, fatal: there is no valid data to segment.
const (
	// ErrCodeDecodeFailed indicates the audio source could not be decoded.
	ErrCodeDecodeFailed ErrorCode = "DECODE_FAILED"
	// ErrCodeEmptyWaveform indicates the decoded waveform contains no samples.
	ErrCodeEmptyWaveform ErrorCode = "EMPTY_WAVEFORM"
	// ErrCodeInvalidInput indicates a caller-supplied parameter is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Backend errors, recoverable: the pipeline degrades to the next tier.
const (
	// ErrCodeBackendFailed indicates a neural backend failed to load or infer.
	ErrCodeBackendFailed ErrorCode = "BACKEND_FAILED"
	// ErrCodeMalformedOutput indicates a backend returned structurally invalid data.
	ErrCodeMalformedOutput ErrorCode = "MALFORMED_OUTPUT"
	// ErrCodeTimeout indicates a backend call exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeUnauthorized indicates a backend rejected the supplied credential.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
)

// Internal errors
const (
	// ErrCodeContractViolation indicates a pipeline stage received input that
	// breaks an upstream invariant. This is a bug, not a runtime condition.
	ErrCodeContractViolation ErrorCode = "CONTRACT_VIOLATION"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var recoverableCodes = map[ErrorCode]bool{
	ErrCodeBackendFailed:   true,
	ErrCodeMalformedOutput: true,
	ErrCodeTimeout:         true,
	ErrCodeUnauthorized:    true,
}

// IsRecoverableCode returns true if the error code indicates a failure the
// pipeline may silently absorb by degrading to a fallback tier.
func IsRecoverableCode(code ErrorCode) bool {
	return recoverableCodes[code]
}
