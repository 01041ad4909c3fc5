package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/medqa/internal/cache"
	"github.com/ppiankov/medqa/internal/classify"
	"github.com/ppiankov/medqa/internal/graph"
	"github.com/ppiankov/medqa/internal/lexicon"
	"github.com/ppiankov/medqa/internal/llm"
	"github.com/ppiankov/medqa/internal/metrics"
	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/worker"
)

// Build loads the lexicon, connects to the graph and wires the cache, rate
// limits and LLM provider described by cfg. The returned func releases the
// graph connection.
func Build(ctx context.Context, cfg *model.Config, m *metrics.Collector, logger *zap.Logger) (*Pipeline, func(context.Context) error, error) {
	store, err := lexicon.LoadDir(cfg.Lexicon.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("load lexicon: %w", err)
	}
	logLexicon(logger, cfg.Lexicon.Dir, store)

	var triggers *classify.Triggers
	if cfg.Lexicon.TriggersFile != "" {
		if triggers, err = classify.LoadTriggers(cfg.Lexicon.TriggersFile); err != nil {
			return nil, nil, fmt.Errorf("load triggers: %w", err)
		}
	}

	neo, err := graph.NewNeo4jClient(ctx, cfg.Graph, logger)
	if err != nil {
		return nil, nil, err
	}

	var client graph.Client = graph.NewThrottled(neo, worker.NewLimiter(cfg.Graph.RequestsPerSecond, cfg.Graph.Burst), m)
	c, err := cache.New(cfg.Cache, logger)
	if err != nil {
		_ = neo.Close(ctx)
		return nil, nil, fmt.Errorf("create cache: %w", err)
	}
	if c != nil {
		client = graph.NewCached(client, c, cfg.Cache.TTL, m, logger)
	}

	// A broken LLM setup leaves the rule-based engine usable
	var provider llm.Provider
	p, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	switch {
	case err != nil:
		logger.Warn("LLM provider disabled", zap.Error(err))
	case p != nil:
		provider = llm.Instrument(p, worker.NewLimiter(cfg.LLM.RequestsPerSecond, 1), m)
	}

	pl := New(cfg, Deps{
		Lexicon:  store,
		Triggers: triggers,
		Graph:    client,
		LLM:      provider,
		Metrics:  m,
		Logger:   logger,
	})
	return pl, neo.Close, nil
}

// logLexicon reports dictionary sizes per entity type and warns about empty ones
func logLexicon(logger *zap.Logger, dir string, store *lexicon.Store) {
	fields := []zap.Field{zap.String("dir", dir), zap.Int("terms", store.Len())}
	for _, t := range model.AllEntityTypes() {
		n := len(store.OfType(t))
		if n == 0 {
			logger.Warn("empty dictionary", zap.Stringer("type", t))
		}
		fields = append(fields, zap.Int(t.String(), n))
	}
	logger.Info("lexicon loaded", fields...)
}
