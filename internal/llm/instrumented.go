package llm

import (
	"context"
	"time"

	"github.com/ppiankov/medqa/internal/metrics"
	"github.com/ppiankov/medqa/internal/worker"
)

const limiterKey = "llm"

// Instrumented wraps a Provider with rate limiting and request metrics
type Instrumented struct {
	Provider
	limiter *worker.Limiter
	metrics *metrics.Collector
}

// Instrument decorates p. Nil limiter or collector disables that concern.
func Instrument(p Provider, limiter *worker.Limiter, m *metrics.Collector) *Instrumented {
	return &Instrumented{Provider: p, limiter: limiter, metrics: m}
}

// Complete waits for a rate limit slot, then delegates
func (i *Instrumented) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if i.limiter != nil {
		if err := i.limiter.Wait(ctx, limiterKey); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := i.Provider.Complete(ctx, req)
	i.metrics.ObserveLLM(i.Name(), err, time.Since(start))
	return resp, err
}
