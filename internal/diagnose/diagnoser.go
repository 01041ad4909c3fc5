// Package diagnose ranks diseases by how many of a user's symptoms they cover.
package diagnose

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/medqa/internal/graph"
	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/util"
	"github.com/ppiankov/medqa/internal/worker"
)

const (
	// DefaultLimit caps the number of candidate diseases returned
	DefaultLimit = 10
	// DefaultCommonLimit is the size of the common symptom list
	DefaultCommonLimit = 20

	relatedSample = 5
)

const (
	querySymptomMatches = `MATCH (d:Disease)-[:has_symptom]->(s:Symptom)
WHERE s.name CONTAINS $name
RETURN d.name AS disease, s.name AS symptom`

	queryCommonSymptoms = `MATCH (d:Disease)-[:has_symptom]->(s:Symptom)
RETURN s.name AS symptom, count(d) AS cnt
ORDER BY cnt DESC LIMIT $limit`
)

// junk are symptom nodes that come from scraped page furniture
var junk = map[string]bool{"驻站医": true, "驻站医师": true}

// ErrNoSymptoms is returned when Diagnose gets nothing to match
var ErrNoSymptoms = errors.New("diagnose: no symptoms given")

// Diagnoser matches symptom combinations against the graph
type Diagnoser struct {
	client  graph.Client
	workers int
	limit   int
	logger  *zap.Logger
}

func New(client graph.Client, workers int, logger *zap.Logger) *Diagnoser {
	if workers <= 0 {
		workers = 4
	}
	return &Diagnoser{
		client:  client,
		workers: workers,
		limit:   DefaultLimit,
		logger:  logger.With(zap.String("component", "diagnoser")),
	}
}

type hit struct {
	disease string
	symptom string
}

type candidate struct {
	disease string
	matched []string
	related []string
}

// Diagnose looks up diseases whose symptoms contain each user symptom and
// ranks them by the number of user symptoms matched. Ties keep the order in
// which diseases were first seen. A symptom whose lookup fails counts as
// unmatched; if every lookup fails the last error is returned.
func (d *Diagnoser) Diagnose(ctx context.Context, symptoms []string) ([]model.Diagnosis, error) {
	cleaned := make([]string, len(symptoms))
	for i, s := range symptoms {
		cleaned[i] = strings.TrimSpace(s)
	}
	symptoms = util.Dedupe(cleaned)
	if len(symptoms) == 0 {
		return nil, ErrNoSymptoms
	}

	outcomes := worker.Map(ctx, d.workers, symptoms, func(ctx context.Context, s string) ([]hit, error) {
		rows, err := d.client.Run(ctx, querySymptomMatches, map[string]any{"name": s})
		if err != nil {
			return nil, err
		}
		hits := make([]hit, 0, len(rows))
		for _, r := range rows {
			if name := r.String("disease"); name != "" {
				hits = append(hits, hit{disease: name, symptom: r.String("symptom")})
			}
		}
		return hits, nil
	})

	var (
		order   []*candidate
		byName  = make(map[string]*candidate)
		lastErr error
		failed  int
	)
	for _, o := range outcomes {
		if o.Err != nil {
			d.logger.Warn("symptom lookup failed", zap.String("symptom", symptoms[o.Index]), zap.Error(o.Err))
			lastErr = o.Err
			failed++
			continue
		}
		user := symptoms[o.Index]
		for _, h := range o.Value {
			c, ok := byName[h.disease]
			if !ok {
				c = &candidate{disease: h.disease}
				byName[h.disease] = c
				order = append(order, c)
			}
			if !slices.Contains(c.matched, user) {
				c.matched = append(c.matched, user)
			}
			if h.symptom != "" && !slices.Contains(c.related, h.symptom) {
				c.related = append(c.related, h.symptom)
			}
		}
	}
	if failed == len(symptoms) {
		return nil, fmt.Errorf("diagnose: %w", lastErr)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return len(order[i].matched) > len(order[j].matched)
	})

	order = util.FirstN(order, d.limit)
	out := make([]model.Diagnosis, len(order))
	for i, c := range order {
		out[i] = model.Diagnosis{
			Disease:         c.disease,
			MatchRate:       min(len(c.matched)*100/len(symptoms), 100),
			MatchedSymptoms: c.matched,
			RelatedSymptoms: util.FirstN(c.related, relatedSample),
		}
	}
	return out, nil
}

// CommonSymptoms lists the symptoms shared by the most diseases
func (d *Diagnoser) CommonSymptoms(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultCommonLimit
	}
	rows, err := d.client.Run(ctx, queryCommonSymptoms, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("common symptoms: %w", err)
	}
	var out []string
	for _, s := range graph.Column(rows, "symptom") {
		if !junk[s] {
			out = append(out, s)
		}
	}
	return out, nil
}
