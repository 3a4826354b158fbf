package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bitinglip/bitinglip-cli/pkg/config"
	liperr "github.com/bitinglip/bitinglip-cli/pkg/errors"
	"github.com/bitinglip/bitinglip-cli/pkg/result"
	"github.com/bitinglip/bitinglip-cli/pkg/version"
)

const (
	defaultBackoffBase = 200 * time.Millisecond
	defaultBackoffCap  = 5 * time.Second
)

// Client issues authenticated requests against the gateway. It keeps no
// state between calls, so a single Client is safe for reuse and for
// concurrent Sends.
type Client struct {
	settings   *config.Settings
	httpClient *http.Client

	backoffBase time.Duration
	backoffCap  time.Duration
}

// New creates a Client for the given settings. Per-attempt deadlines come
// from settings.Timeout via request contexts, not from http.Client.Timeout.
func New(settings *config.Settings) *Client {
	return &Client{
		settings:    settings,
		httpClient:  &http.Client{},
		backoffBase: defaultBackoffBase,
		backoffCap:  defaultBackoffCap,
	}
}

// Send performs one gateway call and returns exactly one terminal Result.
// Transport failures and 5xx responses are retried up to settings.Retries
// times with jittered exponential backoff; 4xx responses are never retried.
func (c *Client) Send(ctx context.Context, d *Descriptor) result.Result {
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(string(d.Resource), string(d.Verb)).
			Observe(time.Since(start).Seconds())
	}()

	var body []byte
	if d.Body != nil {
		var err error
		body, err = json.Marshal(d.Body)
		if err != nil {
			return result.Fail(liperr.Wrap(liperr.KindValidationFailed,
				"failed to encode request body", err))
		}
	}

	target := c.requestURL(d)
	requestID := uuid.New().String()

	var res result.Result
	for attempt := 0; ; attempt++ {
		slog.Debug("sending gateway request",
			"method", d.Method,
			"url", target,
			"attempt", attempt+1,
			"request_id", requestID,
		)

		var retryable bool
		res, retryable = c.attempt(ctx, d, target, body, requestID)
		c.observeAttempt(d, res)

		if !retryable {
			return res
		}
		if attempt >= c.settings.Retries {
			// Retries are spent; the caller must not retry transport
			// failures again.
			if res.Err != nil && res.Err.Kind.IsTransport() {
				res.Err.Retryable = false
			}
			return res
		}

		retriesTotal.Inc()
		delay := c.backoff(attempt)
		slog.Debug("retrying after backoff",
			"delay", delay,
			"attempt", attempt+1,
			"error", res.Err,
		)
		if err := sleep(ctx, delay); err != nil {
			return result.Fail(liperr.Wrap(liperr.KindTimeout, "request cancelled", err))
		}
	}
}

// attempt performs a single HTTP exchange. The second return value reports
// whether the failure is eligible for another attempt.
func (c *Client) attempt(ctx context.Context, d *Descriptor, target string, body []byte, requestID string) (result.Result, bool) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.settings.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, d.Method, target, reader)
	if err != nil {
		return result.Fail(liperr.Wrap(liperr.KindUnknown, "failed to build request", err)), false
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.settings.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.settings.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return result.Fail(liperr.Wrap(liperr.KindConnectionFailed,
			"failed to read response body", err).WithRetryable(true)), true
	}

	slog.Debug("gateway response",
		"status", resp.StatusCode,
		"request_id", requestID,
		"bytes", len(raw),
	)

	res := result.Normalize(resp.StatusCode, raw)
	// 5xx is retried like a connection failure; everything else is terminal.
	return res, resp.StatusCode >= 500
}

func (c *Client) classifyTransportError(ctx context.Context, err error) (result.Result, bool) {
	// Operator interrupt: abort immediately, no further attempts.
	if ctx.Err() != nil {
		return result.Fail(liperr.Wrap(liperr.KindTimeout, "request cancelled", ctx.Err())), false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return result.Fail(liperr.Newf(liperr.KindTimeout,
			"request timed out after %s", c.settings.Timeout).WithRetryable(true)), true
	}
	return result.Fail(liperr.Wrap(liperr.KindConnectionFailed,
		fmt.Sprintf("gateway unreachable: %v", err), err).WithRetryable(true)), true
}

func (c *Client) requestURL(d *Descriptor) string {
	u := *c.settings.Endpoint
	// d.Path arrives already percent-escaped; keep it in RawPath and the
	// decoded form in Path so String() does not escape it a second time.
	raw := strings.TrimRight(u.EscapedPath(), "/") + d.Path
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}
	u.Path = decoded
	u.RawPath = raw
	if len(d.Query) > 0 {
		u.RawQuery = d.Query.Encode()
	}
	return u.String()
}

// backoff computes the delay before the next attempt: exponential from the
// base, capped, with +/-20% jitter.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.backoffBase << attempt
	if delay > c.backoffCap || delay <= 0 {
		delay = c.backoffCap
	}
	jitter := delay / 5
	if jitter > 0 {
		delay = delay - jitter + time.Duration(rand.Int64N(int64(2*jitter)))
	}
	return delay
}

func (c *Client) observeAttempt(d *Descriptor, res result.Result) {
	outcome := "ok"
	if res.Err != nil {
		outcome = string(res.Err.Kind)
	}
	attemptsTotal.WithLabelValues(string(d.Resource), outcome).Inc()
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// QueryValues builds url.Values from non-empty key/value pairs, keeping
// command code free of url plumbing.
func QueryValues(pairs map[string]string) url.Values {
	q := url.Values{}
	for k, v := range pairs {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}
