// Package graph talks to the medical knowledge graph.
package graph

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable marks failures of the graph store itself (connectivity, query
// execution) as opposed to empty results
var ErrUnavailable = errors.New("knowledge graph unavailable")

// Client executes a parameterized Cypher query and returns flat rows
type Client interface {
	Run(ctx context.Context, cypher string, params map[string]any) ([]Record, error)
}

// ClientFunc adapts a function to Client
type ClientFunc func(ctx context.Context, cypher string, params map[string]any) ([]Record, error)

func (f ClientFunc) Run(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	return f(ctx, cypher, params)
}

// Record is one result row keyed by the RETURN aliases
type Record map[string]any

// String returns the field as text. Missing and null fields are "".
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Strings returns a list field. A scalar field becomes a one-element list.
func (r Record) Strings(key string) []string {
	switch v := r[key].(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if x == nil {
				continue
			}
			if s, ok := x.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprint(x))
			}
		}
		return out
	default:
		if s := r.String(key); s != "" {
			return []string{s}
		}
		return nil
	}
}

// Int returns a numeric field. Rows decoded from JSON carry float64.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Column collects the non-empty values of one field across rows
func Column(rows []Record, key string) []string {
	var out []string
	for _, r := range rows {
		if s := r.String(key); s != "" {
			out = append(out, s)
		}
	}
	return out
}
