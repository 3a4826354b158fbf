package result

import (
	"bytes"
	"encoding/json"
	"fmt"

	liperr "github.com/bitinglip/bitinglip-cli/pkg/errors"
)

// Normalize converts a raw gateway response into a Result. The mapping is
// total over the HTTP status space: every (status, body) pair yields exactly
// one Ok or one typed Err.
func Normalize(statusCode int, body []byte) Result {
	if statusCode >= 200 && statusCode <= 299 {
		data, err := decodeJSON(body)
		if err != nil {
			return Fail(liperr.New(liperr.KindMalformedResponse,
				"response body is not valid JSON").WithStatus(statusCode))
		}
		return Ok(statusCode, data, extractRequestID(data))
	}

	kind, retryable := classify(statusCode)
	msg := extractMessage(body)
	if msg == "" {
		msg = genericMessage(kind, statusCode)
	}
	return Fail(liperr.New(kind, msg).WithStatus(statusCode).WithRetryable(retryable))
}

func classify(statusCode int) (liperr.Kind, bool) {
	switch {
	case statusCode == 401 || statusCode == 403:
		return liperr.KindAuthRejected, false
	case statusCode == 404:
		return liperr.KindNotFound, false
	case statusCode == 400 || statusCode == 422:
		return liperr.KindValidationFailed, false
	case statusCode >= 500:
		return liperr.KindServerError, true
	default:
		return liperr.KindUnknown, false
	}
}

func genericMessage(kind liperr.Kind, statusCode int) string {
	switch kind {
	case liperr.KindAuthRejected:
		return "authentication rejected by gateway"
	case liperr.KindNotFound:
		return "resource not found"
	case liperr.KindValidationFailed:
		return "request validation failed"
	case liperr.KindServerError:
		return fmt.Sprintf("gateway returned HTTP %d", statusCode)
	default:
		return fmt.Sprintf("unexpected HTTP status %d", statusCode)
	}
}

// decodeJSON parses a response body preserving number literals, so that
// rendering and round-tripping do not reformat values.
func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	// Trailing garbage after the first JSON value is malformed.
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return data, nil
}

// extractRequestID pulls the gateway correlation id out of a response object
// when present.
func extractRequestID(data any) string {
	obj, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	id, _ := obj["request_id"].(string)
	return id
}

// extractMessage finds a human-readable error message in a failure body.
// The backing services disagree on the field name, so the common candidates
// are checked in order.
func extractMessage(body []byte) string {
	data, err := decodeJSON(body)
	if err != nil {
		return ""
	}
	obj, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"error", "message", "detail"} {
		if msg, ok := obj[key].(string); ok && msg != "" {
			return msg
		}
	}
	return ""
}
