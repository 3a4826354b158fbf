package result

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	liperr "github.com/bitinglip/bitinglip-cli/pkg/errors"
)

func TestNormalize_OkWithJSONBody(t *testing.T) {
	res := Normalize(200, []byte(`{"id":"gpt2"}`))

	assert.False(t, res.IsErr())
	assert.Equal(t, 200, res.StatusCode)

	obj, ok := res.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %T", res.Data)
	}
	assert.Equal(t, "gpt2", obj["id"])
}

func TestNormalize_OkExtractsRequestID(t *testing.T) {
	res := Normalize(202, []byte(`{"task_id":"t-42","request_id":"req-7"}`))

	assert.False(t, res.IsErr())
	assert.Equal(t, "req-7", res.RequestID)
}

func TestNormalize_MalformedBody(t *testing.T) {
	res := Normalize(200, []byte("not json"))

	if !res.IsErr() {
		t.Fatal("expected error result")
	}
	assert.Equal(t, liperr.KindMalformedResponse, res.Err.Kind)
	assert.False(t, res.Err.Retryable)
}

func TestNormalize_StatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantKind  liperr.Kind
		wantRetry bool
	}{
		{"unauthorized", 401, `{}`, liperr.KindAuthRejected, false},
		{"forbidden", 403, `{}`, liperr.KindAuthRejected, false},
		{"not found", 404, `{}`, liperr.KindNotFound, false},
		{"bad request", 400, `{}`, liperr.KindValidationFailed, false},
		{"unprocessable", 422, `{}`, liperr.KindValidationFailed, false},
		{"internal", 500, `{}`, liperr.KindServerError, true},
		{"bad gateway", 502, `{}`, liperr.KindServerError, true},
		{"redirect is unknown", 302, ``, liperr.KindUnknown, false},
		{"teapot is unknown", 418, `{}`, liperr.KindUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(tt.status, []byte(tt.body))
			if !res.IsErr() {
				t.Fatal("expected error result")
			}
			assert.Equal(t, tt.wantKind, res.Err.Kind)
			assert.Equal(t, tt.wantRetry, res.Err.Retryable)
			assert.Equal(t, tt.status, res.Err.StatusCode)
		})
	}
}

func TestNormalize_ExtractsErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"worker not found"}`, "worker not found"},
		{"message field", `{"message":"model name is required"}`, "model name is required"},
		{"detail field", `{"detail":"invalid page size"}`, "invalid page size"},
		{"empty body falls back", ``, "resource not found"},
		{"non-object body falls back", `[1,2]`, "resource not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(404, []byte(tt.body))
			if !res.IsErr() {
				t.Fatal("expected error result")
			}
			assert.Equal(t, tt.want, res.Err.Message)
		})
	}
}

func TestNormalize_ValidationFallbackMessage(t *testing.T) {
	res := Normalize(422, []byte(`{"fields":["name"]}`))
	if !res.IsErr() {
		t.Fatal("expected error result")
	}
	assert.Equal(t, "request validation failed", res.Err.Message)
}

func TestNormalize_PreservesNumberLiterals(t *testing.T) {
	res := Normalize(200, []byte(`{"count":3,"load":0.25}`))
	assert.False(t, res.IsErr())

	obj := res.Data.(map[string]any)
	assert.Equal(t, json.Number("3"), obj["count"])
	assert.Equal(t, json.Number("0.25"), obj["load"])
}

func TestNormalize_TrailingGarbageIsMalformed(t *testing.T) {
	res := Normalize(200, []byte(`{"a":1} extra`))
	if !res.IsErr() {
		t.Fatal("expected error result")
	}
	assert.Equal(t, liperr.KindMalformedResponse, res.Err.Kind)
}
