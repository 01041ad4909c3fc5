package graph

import (
	"context"
	"time"

	"github.com/ppiankov/medqa/internal/metrics"
	"github.com/ppiankov/medqa/internal/worker"
)

const limiterKey = "graph"

// Throttled rate-limits queries and records their latency
type Throttled struct {
	next    Client
	limiter *worker.Limiter
	metrics *metrics.Collector
}

// NewThrottled wraps next. A nil limiter disables throttling.
func NewThrottled(next Client, limiter *worker.Limiter, m *metrics.Collector) *Throttled {
	return &Throttled{next: next, limiter: limiter, metrics: m}
}

func (t *Throttled) Run(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx, limiterKey); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	rows, err := t.next.Run(ctx, cypher, params)
	t.metrics.ObserveGraphQuery(err, time.Since(start))
	return rows, err
}
