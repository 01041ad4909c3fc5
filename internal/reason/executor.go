package reason

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/medqa/internal/graph"
	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/util"
	"github.com/ppiankov/medqa/internal/worker"
)

// Executor runs detected reasoning chains. Hops run in sequence; the
// per-entity queries inside a hop run on a bounded worker pool.
type Executor struct {
	client   graph.Client
	resolver *NameResolver
	width    int
	workers  int
	logger   *zap.Logger
}

// NewExecutor creates an executor
func NewExecutor(client graph.Client, cfg model.ReasoningConfig, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	width := cfg.FanoutWidth
	if width <= 0 {
		width = 5
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Executor{
		client:   client,
		resolver: NewNameResolver(client, cfg.FuzzyMaxExtra, cfg.FuzzyWindow, cfg.CandidateLimit),
		width:    width,
		workers:  workers,
		logger:   logger.With(zap.String("component", "reason")),
	}
}

// Execute runs the chain described by hop for subject. A subject the graph
// does not know yields Success=false; an error means the graph itself failed
// on the first hop.
func (e *Executor) Execute(ctx context.Context, subject string, hop model.HopInfo) (*model.ReasoningResult, error) {
	var (
		res *model.ReasoningResult
		err error
	)
	switch hop.Type {
	case ComplicationSymptom, ComplicationTreatment, ComplicationFood, ComplicationPrevention:
		res, err = e.complicationChain(ctx, subject, chains[hop.Type])
	case Complication:
		res, err = e.complications(ctx, subject)
	case SymptomDiseaseCheck:
		res, err = e.symptomChecks(ctx, subject)
	case SymptomDiseaseDept:
		res, err = e.symptomDepartments(ctx, subject)
	case DiseaseDrugDepartment:
		res, err = e.drugsAndDepartments(ctx, subject, hop.Hops)
	default:
		return nil, fmt.Errorf("unknown reasoning type %q", hop.Type)
	}
	if err != nil {
		return nil, err
	}

	res.Entity = subject
	res.HopInfo = hop
	if res.Path == nil {
		res.Path = []model.TraceStep{}
	}
	return res, nil
}

func notFound(format, name string) *model.ReasoningResult {
	return &model.ReasoningResult{Message: fmt.Sprintf(format, name)}
}

// names runs a list query for one subject
func (e *Executor) names(ctx context.Context, query, name string, limit int) ([]string, error) {
	rows, err := e.client.Run(ctx, query, map[string]any{"name": name, "limit": int64(limit)})
	if err != nil {
		return nil, err
	}
	return util.Dedupe(graph.Column(rows, "name")), nil
}

// rootDisease resolves subject and fetches its complications. A nil result
// with a nil error means a not-found outcome is returned in res.
func (e *Executor) rootDisease(ctx context.Context, subject string, limit int) (disease string, comps []string, res *model.ReasoningResult, err error) {
	disease, ok, err := e.resolver.Resolve(ctx, subject)
	if err != nil {
		return "", nil, nil, fmt.Errorf("resolve %q: %w", subject, err)
	}
	if !ok {
		return "", nil, notFound("未找到「%s」的相关信息", subject), nil
	}

	comps, err = e.names(ctx, queryComplications, disease, limit)
	if err != nil {
		return "", nil, nil, fmt.Errorf("complications of %q: %w", disease, err)
	}
	if len(comps) == 0 {
		return "", nil, notFound("未找到「%s」的并发症信息", disease), nil
	}
	return disease, comps, nil, nil
}

// found is one fan-out result for a subject that had data
type found[T any] struct {
	name  string
	value T
}

// secondHopFailed replaces the missing-data note when the graph failed for
// every subject of a later hop
const secondHopFailed = "⚠️ 知识图谱暂时无法访问，未能完成第二步查询，请稍后再试。"

// fanout queries each subject concurrently. Failed or empty subjects are
// skipped; the rest keep subject order. A non-nil error counts the failed
// subjects and comes back together with whatever was found.
func fanout[T any](ctx context.Context, e *Executor, subjects []string, fetch func(context.Context, string) (T, bool, error)) ([]found[T], error) {
	type item struct {
		value T
		ok    bool
	}
	outcomes := worker.Map(ctx, e.workers, subjects, func(ctx context.Context, s string) (item, error) {
		v, ok, err := fetch(ctx, s)
		return item{v, ok}, err
	})

	var (
		out    []found[T]
		failed int
		first  error
	)
	for _, o := range outcomes {
		if o.Err != nil {
			e.logger.Warn("sub-query failed", zap.String("subject", subjects[o.Index]), zap.Error(o.Err))
			if first == nil {
				first = o.Err
			}
			failed++
			continue
		}
		if o.Value.ok {
			out = append(out, found[T]{name: subjects[o.Index], value: o.Value.value})
		}
	}
	if failed > 0 {
		return out, fmt.Errorf("%d of %d sub-queries failed: %w", failed, len(subjects), first)
	}
	return out, nil
}

// listFetcher adapts a list query to fanout
func (e *Executor) listFetcher(query string, limit int) func(context.Context, string) ([]string, bool, error) {
	return func(ctx context.Context, name string) ([]string, bool, error) {
		items, err := e.names(ctx, query, name, limit)
		return items, len(items) > 0, err
	}
}

// answer assembles the rendered text
type answer struct {
	b strings.Builder
}

func (a *answer) line(format string, args ...any) {
	fmt.Fprintf(&a.b, format, args...)
	a.b.WriteByte('\n')
}

func (a *answer) blank() {
	a.b.WriteByte('\n')
}

func (a *answer) String() string {
	return strings.TrimRight(a.b.String(), "\n")
}

func join(items []string, n int) string {
	return strings.Join(util.FirstN(items, n), "、")
}
