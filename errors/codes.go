package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Consumer and producer failures
const (
	// ErrCodeStreamFailed indicates a consumer failed while processing an input.
	ErrCodeStreamFailed ErrorCode = "STREAM_FAILED"
	// ErrCodeSourceFailed indicates a producer failed, e.g. an I/O error reading a file.
	ErrCodeSourceFailed ErrorCode = "SOURCE_FAILED"
	// ErrCodeDiverged indicates a consumer kept asking for input after end-of-stream.
	ErrCodeDiverged ErrorCode = "DIVERGED"
)

// Push source errors
const (
	// ErrCodeStopped indicates the source was stopped and accepts no more values.
	ErrCodeStopped ErrorCode = "STOPPED"
	// ErrCodeQueueFull indicates a bounded push queue is at capacity.
	ErrCodeQueueFull ErrorCode = "QUEUE_FULL"
	// ErrCodeAlreadyAttached indicates a unicast source is already driving a consumer.
	ErrCodeAlreadyAttached ErrorCode = "ALREADY_ATTACHED"
)

// Promise errors
const (
	// ErrCodeTimeout indicates a bounded wait expired before resolution.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeDoubleResolution indicates a promise was resolved after it was already terminal.
	ErrCodeDoubleResolution ErrorCode = "DOUBLE_RESOLUTION"
)

// Setup errors
const (
	// ErrCodeInvalidConfig indicates configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// retryableCodes marks codes where trying again later can succeed.
// Nothing in the engine retries on its own; this is advice for callers.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:   true,
	ErrCodeQueueFull: true,
	ErrCodeInternal:  false,
}

// IsRetryableCode returns true if the error code represents a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
