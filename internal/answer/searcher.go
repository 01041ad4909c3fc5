package answer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/medqa/internal/graph"
	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/plan"
	"github.com/ppiankov/medqa/internal/util"
)

// ErrGraphUnavailable is returned when no planned query could be executed
var ErrGraphUnavailable = errors.New("answer: graph unavailable")

// ErrPartial comes back together with the segments that could be built when
// some, but not all, planned queries failed
var ErrPartial = errors.New("answer: some graph queries failed")

const keyRows = 3

// Searcher executes plan entries and collects the rendered segments
type Searcher struct {
	client graph.Client
	synth  *Synthesizer
	logger *zap.Logger
}

// NewSearcher creates a searcher
func NewSearcher(client graph.Client, synth *Synthesizer, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{
		client: client,
		synth:  synth,
		logger: logger.With(zap.String("component", "answer")),
	}
}

// Search runs every query of every entry in order. A failing query is logged
// and skipped. When all of them fail ErrGraphUnavailable is returned; when
// only some do, the segments are returned with ErrPartial. Segments repeating
// an earlier one are dropped.
func (s *Searcher) Search(ctx context.Context, entries []plan.Entry) ([]string, error) {
	var (
		segments []string
		seen     = make(map[string]bool)
		total    int
		failed   int
		lastErr  error
	)

	for _, e := range entries {
		var rows []plan.Row
		for _, q := range e.Queries {
			total++
			records, err := s.client.Run(ctx, q.Template.Cypher, q.Params)
			if err != nil {
				failed++
				lastErr = err
				s.logger.Warn("query failed",
					zap.String("question_type", string(e.QuestionType)),
					zap.String("template", q.Template.Name),
					zap.String("entity", q.Entity),
					zap.Error(err))
				continue
			}
			if len(records) == 0 {
				s.logger.Debug("query returned no rows",
					zap.String("template", q.Template.Name),
					zap.String("entity", q.Entity))
			}
			rows = append(rows, plan.Decode(records)...)
		}

		text, ok := s.synth.Synthesize(e.QuestionType, rows)
		if !ok {
			continue
		}
		key := SegmentKey(e.QuestionType, rows)
		if seen[key] {
			continue
		}
		seen[key] = true
		segments = append(segments, text)
	}

	switch {
	case failed == 0:
		return segments, nil
	case failed == total:
		return nil, fmt.Errorf("%w: %w", ErrGraphUnavailable, lastErr)
	default:
		return segments, fmt.Errorf("%w: %d of %d: %w", ErrPartial, failed, total, lastErr)
	}
}

// SegmentKey identifies an answer segment by question type and the entity
// names of its leading rows. Department answers key on the disease and its
// sorted departments.
func SegmentKey(qt model.QuestionType, rows []plan.Row) string {
	if len(rows) == 0 {
		return ""
	}
	if qt == model.DiseaseDepartment {
		depts := util.Dedupe(objects(rows))
		sort.Strings(depts)
		return rows[0].Subject + "|" + strings.Join(depts, ",")
	}

	parts := []string{string(qt)}
	for _, r := range util.FirstN(rows, keyRows) {
		for _, v := range []string{r.Subject, r.Object, r.Symptom} {
			if v != "" {
				parts = append(parts, v)
			}
		}
	}
	return strings.Join(parts, "|")
}
