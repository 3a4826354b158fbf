package gateway

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	liperr "github.com/bitinglip/bitinglip-cli/pkg/errors"
	"github.com/bitinglip/bitinglip-cli/pkg/result"
)

// DefaultHealthComponents are the backing services probed by a full health
// check.
var DefaultHealthComponents = []string{
	"gateway",
	"cluster-manager",
	"model-manager",
	"task-manager",
}

// probe rate for health fan-out, kept modest so a large component list does
// not hammer a degraded gateway.
const healthProbeRate = 4

// ComponentHealth probes each component's health endpoint concurrently and
// aggregates the outcomes into one Result keyed by component. Each probe has
// its own deadline and failure domain: one component failing does not cancel
// or fail its siblings. Only when every probe fails at the transport level is
// the first transport error returned, since that means the gateway itself is
// unreachable.
func (c *Client) ComponentHealth(ctx context.Context, components []string) result.Result {
	if len(components) == 0 {
		components = DefaultHealthComponents
	}

	limiter := rate.NewLimiter(rate.Limit(healthProbeRate), 1)

	var mu sync.Mutex
	report := make(map[string]any, len(components))
	outcomes := make(map[string]result.Result, len(components))

	// The group collects Results instead of returning errors, so sibling
	// probes keep running whatever an individual probe does.
	g, gctx := errgroup.WithContext(ctx)
	for _, component := range components {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}

			d, err := NewDescriptor(ResourceCluster, VerbHealth,
				map[string]string{"component": component}, nil, nil)
			if err != nil {
				return err
			}

			res := c.Send(gctx, d)
			mu.Lock()
			outcomes[component] = res
			report[component] = componentEntry(res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result.Fail(liperr.Wrap(liperr.KindTimeout, "health check cancelled", err))
	}

	if allTransportFailures(outcomes) {
		for _, component := range components {
			if res, ok := outcomes[component]; ok {
				return res
			}
		}
	}

	return result.Ok(200, report, "")
}

func componentEntry(res result.Result) map[string]any {
	if res.IsErr() {
		return map[string]any{
			"status": "unhealthy",
			"error":  res.Err.Error(),
		}
	}
	entry := map[string]any{"status": "healthy"}
	if obj, ok := res.Data.(map[string]any); ok {
		for k, v := range obj {
			if k != "request_id" {
				entry[k] = v
			}
		}
	}
	return entry
}

func allTransportFailures(outcomes map[string]result.Result) bool {
	if len(outcomes) == 0 {
		return false
	}
	for _, res := range outcomes {
		if res.Err == nil || !res.Err.Kind.IsTransport() {
			return false
		}
	}
	return true
}
