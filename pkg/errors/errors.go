// Package errors defines the typed error taxonomy shared by every layer of
// the CLI. Lower layers return *StructuredError values; only the command
// layer turns them into user-visible output and exit codes.
package errors

import "fmt"

// Kind classifies a failure. The string value is the user-visible error
// class printed on the error stream.
type Kind string

const (
	// KindConfigInvalid is a local configuration failure, detected before
	// any network call.
	KindConfigInvalid Kind = "ConfigInvalid"

	// Transport failures, eligible for retry at the HTTP layer.
	KindConnectionFailed Kind = "ConnectionFailed"
	KindTimeout          Kind = "Timeout"

	// Protocol failures, never retried beyond the HTTP layer.
	KindAuthRejected      Kind = "AuthRejected"
	KindNotFound          Kind = "NotFound"
	KindValidationFailed  Kind = "ValidationFailed"
	KindServerError       Kind = "ServerError"
	KindMalformedResponse Kind = "MalformedResponse"
	KindUnknown           Kind = "Unknown"
)

// StructuredError carries a failure class plus enough context to render a
// single-line message and pick an exit code.
type StructuredError struct {
	Kind       Kind
	Message    string
	StatusCode int // 0 when no HTTP response was received
	Retryable  bool
	cause      error
}

// New creates a StructuredError with the given kind and message.
func New(kind Kind, message string) *StructuredError {
	return &StructuredError{Kind: kind, Message: message}
}

// Newf creates a StructuredError with a formatted message.
func Newf(kind Kind, format string, args ...any) *StructuredError {
	return &StructuredError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a StructuredError that records err as its cause. The cause is
// reachable through errors.Unwrap for callers that need the original error.
func Wrap(kind Kind, message string, err error) *StructuredError {
	return &StructuredError{Kind: kind, Message: message, cause: err}
}

// WithStatus returns e with the HTTP status code recorded.
func (e *StructuredError) WithStatus(code int) *StructuredError {
	e.StatusCode = code
	return e
}

// WithRetryable returns e with the retryable flag set.
func (e *StructuredError) WithRetryable(retryable bool) *StructuredError {
	e.Retryable = retryable
	return e
}

// Error renders the single-line <Kind>: <message> form.
func (e *StructuredError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *StructuredError) Unwrap() error {
	return e.cause
}

// IsTransport reports whether the kind is a transport-level failure that the
// retry policy may act on.
func (k Kind) IsTransport() bool {
	return k == KindConnectionFailed || k == KindTimeout
}
