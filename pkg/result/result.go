// Package result defines the uniform envelope produced for every gateway
// call and the normalizer that maps raw HTTP responses into it. This is the
// single place HTTP status codes are interpreted; no other package inspects
// them.
package result

import (
	liperr "github.com/bitinglip/bitinglip-cli/pkg/errors"
)

// Result is the terminal outcome of one gateway call: either Ok data or a
// typed error. It is built once and never mutated afterward.
type Result struct {
	StatusCode int
	Data       any    // decoded JSON payload, nil on failure
	RequestID  string // gateway correlation id, empty if not echoed
	Err        *liperr.StructuredError
}

// Ok builds a success Result.
func Ok(statusCode int, data any, requestID string) Result {
	return Result{StatusCode: statusCode, Data: data, RequestID: requestID}
}

// Fail builds a failure Result from a structured error.
func Fail(err *liperr.StructuredError) Result {
	return Result{StatusCode: err.StatusCode, Err: err}
}

// IsErr reports whether the result carries a failure.
func (r Result) IsErr() bool {
	return r.Err != nil
}
