// Package graphtest provides a scripted graph.Client for tests.
package graphtest

import (
	"context"
	"strings"
	"sync"

	"github.com/ppiankov/medqa/internal/graph"
)

// Stub answers queries from scripted routes. Unmatched queries return no rows.
type Stub struct {
	mu     sync.Mutex
	routes []*Route
	calls  []Call
	err    error
}

// Call is one recorded query
type Call struct {
	Cypher string
	Params map[string]any
}

// Route matches queries whose text contains Fragment and, when Name is set,
// whose params carry Name as a value
type Route struct {
	fragment string
	name     string
	rows     []graph.Record
	err      error
}

func New() *Stub {
	return &Stub{}
}

// When adds a route. Later routes take precedence over earlier ones.
func (s *Stub) When(fragment, name string) *Route {
	r := &Route{fragment: fragment, name: name}
	s.mu.Lock()
	s.routes = append(s.routes, r)
	s.mu.Unlock()
	return r
}

// FailAll makes every query fail with err
func (s *Stub) FailAll(err error) *Stub {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	return s
}

// Return sets the rows for the route
func (r *Route) Return(rows ...graph.Record) *Route {
	r.rows = rows
	return r
}

// Fail makes the route return err
func (r *Route) Fail(err error) *Route {
	r.err = err
	return r
}

// Calls returns the queries seen so far
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount counts recorded queries containing fragment
func (s *Stub) CallCount(fragment string) int {
	n := 0
	for _, c := range s.Calls() {
		if strings.Contains(c.Cypher, fragment) {
			n++
		}
	}
	return n
}

func (s *Stub) Run(ctx context.Context, cypher string, params map[string]any) ([]graph.Record, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Cypher: cypher, Params: params})
	routes := s.routes
	failAll := s.err
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failAll != nil {
		return nil, failAll
	}

	for i := len(routes) - 1; i >= 0; i-- {
		r := routes[i]
		if !strings.Contains(cypher, r.fragment) {
			continue
		}
		if r.name != "" && !hasValue(params, r.name) {
			continue
		}
		if r.err != nil {
			return nil, r.err
		}
		return r.rows, nil
	}
	return nil, nil
}

func hasValue(params map[string]any, name string) bool {
	for _, v := range params {
		switch x := v.(type) {
		case string:
			if x == name {
				return true
			}
		case []string:
			for _, s := range x {
				if s == name {
					return true
				}
			}
		}
	}
	return false
}

// Rows builds records sharing one key, e.g. Rows("complication", "糖尿病足", "糖尿病肾病")
func Rows(key string, values ...string) []graph.Record {
	out := make([]graph.Record, len(values))
	for i, v := range values {
		out[i] = graph.Record{key: v}
	}
	return out
}
