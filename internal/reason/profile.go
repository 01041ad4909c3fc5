package reason

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/medqa/internal/model"
)

// ErrNotFound is returned when a disease cannot be resolved in the graph
var ErrNotFound = errors.New("reason: not found")

// Profile gathers everything the graph records about one disease
func (e *Executor) Profile(ctx context.Context, name string) (*model.DiseaseProfile, error) {
	disease, ok, err := e.resolver.Resolve(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", name, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	p := &model.DiseaseProfile{Disease: disease}
	lists := []struct {
		query string
		limit int
		dst   *[]string
	}{
		{querySymptoms, 10, &p.Symptoms},
		{queryDrugs, 10, &p.Drugs},
		{queryGoodFoods, 8, &p.FoodsGood},
		{queryBadFoods, 8, &p.FoodsBad},
		{queryChecks, 8, &p.Checks},
		{queryDepartments, 5, &p.Departments},
		{queryComplications, 8, &p.Complications},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, l := range lists {
		g.Go(func() error {
			items, err := e.names(gctx, l.query, disease, l.limit)
			if err != nil {
				return err
			}
			*l.dst = items
			return nil
		})
	}
	g.Go(func() error {
		rows, err := e.client.Run(gctx, queryProperties, map[string]any{"name": disease})
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			p.Prevention = rows[0].String("prevent")
			p.Cause = rows[0].String("cause")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("profile %q: %w", disease, err)
	}
	return p, nil
}
