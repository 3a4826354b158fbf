package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitinglip/bitinglip-cli/pkg/config"
	liperr "github.com/bitinglip/bitinglip-cli/pkg/errors"
	"github.com/bitinglip/bitinglip-cli/pkg/serializer"
)

func testSettings(t *testing.T, endpoint string, retries int) *config.Settings {
	t.Helper()
	u, err := url.Parse(endpoint)
	require.NoError(t, err)
	return &config.Settings{
		Endpoint: u,
		Format:   serializer.FormatTable,
		Timeout:  2 * time.Second,
		Retries:  retries,
	}
}

// testClient shrinks the backoff so retry tests run fast.
func testClient(settings *config.Settings) *Client {
	c := New(settings)
	c.backoffBase = time.Millisecond
	c.backoffCap = 5 * time.Millisecond
	return c
}

func mustDescriptor(t *testing.T, resource Resource, verb Verb, params map[string]string, query url.Values, body any) *Descriptor {
	t.Helper()
	d, err := NewDescriptor(resource, verb, params, query, body)
	require.NoError(t, err)
	return d
}

func TestClient_SendOk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/cluster/status", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Empty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","request_id":"req-1"}`))
	}))
	defer srv.Close()

	c := testClient(testSettings(t, srv.URL, 0))
	res := c.Send(context.Background(), mustDescriptor(t, ResourceCluster, VerbStatus, nil, nil, nil))

	require.False(t, res.IsErr())
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, "req-1", res.RequestID)
}

func TestClient_SendBearerAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	settings := testSettings(t, srv.URL, 0)
	settings.APIKey = "secret"

	res := testClient(settings).Send(context.Background(),
		mustDescriptor(t, ResourceModels, VerbList, nil, nil, nil))
	assert.False(t, res.IsErr())
}

func TestClient_RetryThenSucceed(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"temporary"}`))
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := testClient(testSettings(t, srv.URL, 2))
	res := c.Send(context.Background(), mustDescriptor(t, ResourceCluster, VerbStatus, nil, nil, nil))

	assert.False(t, res.IsErr())
	assert.Equal(t, int32(3), calls.Load(), "expected exactly 3 attempts")
}

func TestClient_RetriesExhaustedOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"still broken"}`))
	}))
	defer srv.Close()

	c := testClient(testSettings(t, srv.URL, 2))
	res := c.Send(context.Background(), mustDescriptor(t, ResourceCluster, VerbStatus, nil, nil, nil))

	require.True(t, res.IsErr())
	assert.Equal(t, liperr.KindServerError, res.Err.Kind)
	assert.Equal(t, "still broken", res.Err.Message)
	assert.True(t, res.Err.Retryable)
	assert.Equal(t, int32(3), calls.Load(), "expected retries+1 attempts")
}

func TestClient_4xxNeverRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"worker not found"}`))
	}))
	defer srv.Close()

	c := testClient(testSettings(t, srv.URL, 3))
	res := c.Send(context.Background(), mustDescriptor(t, ResourceWorkers, VerbShow,
		map[string]string{"id": "w-1"}, nil, nil))

	require.True(t, res.IsErr())
	assert.Equal(t, liperr.KindNotFound, res.Err.Kind)
	assert.Equal(t, "worker not found", res.Err.Message)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestClient_ConnectionFailedExhausted(t *testing.T) {
	// Reserve a port, then close the listener so connections are refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	c := testClient(testSettings(t, endpoint, 1))
	res := c.Send(context.Background(), mustDescriptor(t, ResourceCluster, VerbStatus, nil, nil, nil))

	require.True(t, res.IsErr())
	assert.Equal(t, liperr.KindConnectionFailed, res.Err.Kind)
	assert.False(t, res.Err.Retryable, "retryable must be false after exhaustion")
}

func TestClient_TimeoutPerAttempt(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	settings := testSettings(t, srv.URL, 0)
	settings.Timeout = 50 * time.Millisecond

	res := testClient(settings).Send(context.Background(),
		mustDescriptor(t, ResourceCluster, VerbStatus, nil, nil, nil))

	require.True(t, res.IsErr())
	assert.Equal(t, liperr.KindTimeout, res.Err.Kind)
}

func TestClient_CancellationAbortsRetryLoop(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())

	settings := testSettings(t, srv.URL, 10)
	c := New(settings)
	c.backoffBase = time.Hour // cancellation must interrupt the backoff sleep
	c.backoffCap = time.Hour

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	res := c.Send(ctx, mustDescriptor(t, ResourceCluster, VerbStatus, nil, nil, nil))

	require.True(t, res.IsErr())
	assert.Equal(t, liperr.KindTimeout, res.Err.Kind)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_MalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	res := testClient(testSettings(t, srv.URL, 0)).Send(context.Background(),
		mustDescriptor(t, ResourceModels, VerbList, nil, nil, nil))

	require.True(t, res.IsErr())
	assert.Equal(t, liperr.KindMalformedResponse, res.Err.Kind)
}

func TestClient_PostBodyAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/models/assign", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"task_id":"t-42"}`))
	}))
	defer srv.Close()

	body := map[string]any{"model_name": "gpt2", "worker_id": "worker-1"}
	res := testClient(testSettings(t, srv.URL, 0)).Send(context.Background(),
		mustDescriptor(t, ResourceModels, VerbAssign, nil, nil, body))

	require.False(t, res.IsErr())
	assert.Equal(t, 202, res.StatusCode)
}

func TestClient_EndpointWithBasePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gw/api/v1/models", r.URL.Path)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	res := testClient(testSettings(t, srv.URL+"/gw/", 0)).Send(context.Background(),
		mustDescriptor(t, ResourceModels, VerbList, nil, nil, nil))
	assert.False(t, res.IsErr())
}

func TestClient_PathParamsEscapedOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The wire path must carry the name escaped exactly once.
		assert.Equal(t, "/api/v1/models/org%2Fmodel%20v2", r.URL.EscapedPath())
		assert.Equal(t, "/api/v1/models/org/model v2", r.URL.Path)
		w.Write([]byte(`{"id":"org/model v2"}`))
	}))
	defer srv.Close()

	res := testClient(testSettings(t, srv.URL, 0)).Send(context.Background(),
		mustDescriptor(t, ResourceModels, VerbShow,
			map[string]string{"name": "org/model v2"}, nil, nil))
	assert.False(t, res.IsErr())
}

func TestClient_BasePathWithEscapedParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gw/api/v1/models/meta%2Fllama", r.URL.EscapedPath())
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	res := testClient(testSettings(t, srv.URL+"/gw", 0)).Send(context.Background(),
		mustDescriptor(t, ResourceModels, VerbShow,
			map[string]string{"name": "meta/llama"}, nil, nil))
	assert.False(t, res.IsErr())
}

func TestClient_BackoffBounds(t *testing.T) {
	c := testClient(testSettings(t, "http://localhost:1", 0))
	c.backoffBase = 200 * time.Millisecond
	c.backoffCap = 5 * time.Second

	for attempt := 0; attempt < 12; attempt++ {
		d := c.backoff(attempt)
		assert.GreaterOrEqual(t, d, 160*time.Millisecond, "attempt %d below jitter floor", attempt)
		assert.LessOrEqual(t, d, 6*time.Second, "attempt %d above jitter ceiling", attempt)
	}
}
