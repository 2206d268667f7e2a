package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// AppError is the unified error type of the stream engine.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
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

// Is reports whether target is an *AppError with the same code, so that
// stderrors.Is(err, errors.New(code, "")) matches by code.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
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

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Stream error constructors ---

// Stream wraps a consumer-side failure raised while handling an input.
func Stream(cause error) *AppError {
	return &AppError{
		Code: ErrCodeStreamFailed, Message: "consumer failed while processing input",
		Retryable: false, Cause: cause,
	}
}

// Source wraps a producer-side failure, e.g. an I/O error.
func Source(source string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSourceFailed, Message: fmt.Sprintf("source %s failed", source),
		Retryable: false, Cause: cause,
		Details: map[string]any{"source": source},
	}
}

// Panic converts a recovered panic value into an error usable as a cause.
func Panic(recovered any) error {
	if err, ok := recovered.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", recovered)
}

// Diverged reports a consumer that still asked for input after end-of-stream.
func Diverged() *AppError {
	return &AppError{
		Code: ErrCodeDiverged, Message: "iteratee did not terminate after EOF",
		Retryable: false,
	}
}

// Timeout reports a bounded wait that expired. The awaited work keeps running.
func Timeout(operation string, after time.Duration) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s did not complete within %s", operation, after),
		Retryable: true,
		Details:   map[string]any{"operation": operation, "timeout": after.String()},
	}
}

// DoubleResolution reports a second attempt to resolve a terminal promise.
func DoubleResolution() *AppError {
	return &AppError{
		Code: ErrCodeDoubleResolution, Message: "promise is already resolved; value kept",
		Retryable: false,
	}
}

// Stopped reports a value pushed into a stopped source.
func Stopped(source string) *AppError {
	return &AppError{
		Code: ErrCodeStopped, Message: fmt.Sprintf("%s is stopped", source),
		Retryable: false,
		Details:   map[string]any{"source": source},
	}
}

// QueueFull reports a bounded push queue at capacity.
func QueueFull(limit int) *AppError {
	return &AppError{
		Code: ErrCodeQueueFull, Message: fmt.Sprintf("push queue is full (limit %d)", limit),
		Retryable: true,
		Details:   map[string]any{"limit": limit},
	}
}

// AlreadyAttached reports a second concurrent attachment to a unicast source.
func AlreadyAttached() *AppError {
	return &AppError{
		Code: ErrCodeAlreadyAttached, Message: "unicast source already drives a consumer",
		Retryable: false,
	}
}

// InvalidConfig reports a configuration that failed validation.
func InvalidConfig(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: message,
		Retryable: false,
	}
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "an unexpected error occurred",
		Retryable: false, Cause: cause,
	}
}

// --- Inspection helpers ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether any AppError in err's chain carries code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// IsRetryable returns true if err is an AppError marked retryable.
func IsRetryable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Retryable
	}
	return false
}
