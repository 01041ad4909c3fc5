package reason

import (
	"context"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/ppiankov/medqa/internal/graph"
)

// Matching defaults for partial disease names
const (
	DefaultMaxExtra = 3
	DefaultWindow   = 2
)

// NameResolver maps a user-typed disease name onto a graph node name
type NameResolver struct {
	client   graph.Client
	maxExtra int
	window   int
	limit    int
}

// NewNameResolver creates a resolver. maxExtra bounds how much longer than
// the input the closest candidate may be; window is the fallback tolerance.
func NewNameResolver(client graph.Client, maxExtra, window, limit int) *NameResolver {
	if limit <= 0 {
		limit = limitCandidates
	}
	return &NameResolver{client: client, maxExtra: maxExtra, window: window, limit: limit}
}

// Resolve returns the graph name for name. An exact node wins; otherwise the
// containment candidates are ranked by PickCandidate. ok is false when the
// graph has no candidate at all.
func (r *NameResolver) Resolve(ctx context.Context, name string) (string, bool, error) {
	if name == "" {
		return "", false, nil
	}

	rows, err := r.client.Run(ctx, queryExactDisease, map[string]any{"name": name})
	if err != nil {
		return "", false, fmt.Errorf("exact lookup %q: %w", name, err)
	}
	if len(rows) > 0 {
		if exact := rows[0].String("name"); exact != "" {
			return exact, true, nil
		}
	}

	rows, err = r.client.Run(ctx, queryDiseaseCandidates, map[string]any{"name": name, "limit": int64(r.limit)})
	if err != nil {
		return "", false, fmt.Errorf("candidate lookup %q: %w", name, err)
	}
	best, ok := PickCandidate(name, graph.Column(rows, "name"), r.maxExtra, r.window)
	return best, ok, nil
}

// PickCandidate chooses among names containing input. Candidates are ranked
// by absolute length difference, then by name. In order of preference:
//
//  1. a candidate equal to input
//  2. the best-ranked candidate if it is at most maxExtra runes longer
//  3. the first ranked candidate within window runes of input
//  4. the best-ranked candidate
func PickCandidate(input string, candidates []string, maxExtra, window int) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	for _, c := range candidates {
		if c == input {
			return c, true
		}
	}

	n := utf8.RuneCountInString(input)
	diff := func(s string) int { return utf8.RuneCountInString(s) - n }

	ranked := append([]string(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		di, dj := abs(diff(ranked[i])), abs(diff(ranked[j]))
		if di != dj {
			return di < dj
		}
		return ranked[i] < ranked[j]
	})

	best := ranked[0]
	if diff(best) <= maxExtra {
		return best, true
	}
	for _, c := range ranked {
		if abs(diff(c)) <= window {
			return c, true
		}
	}
	return best, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
