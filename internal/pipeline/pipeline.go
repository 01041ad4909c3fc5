// Package pipeline composes the question answering engine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/medqa/internal/answer"
	"github.com/ppiankov/medqa/internal/classify"
	"github.com/ppiankov/medqa/internal/diagnose"
	"github.com/ppiankov/medqa/internal/dialog"
	"github.com/ppiankov/medqa/internal/graph"
	"github.com/ppiankov/medqa/internal/lexicon"
	"github.com/ppiankov/medqa/internal/llm"
	"github.com/ppiankov/medqa/internal/metrics"
	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/plan"
	"github.com/ppiankov/medqa/internal/rag"
	"github.com/ppiankov/medqa/internal/reason"
	"github.com/ppiankov/medqa/internal/rewrite"
)

const (
	noEntitiesAnswer = "🤔 抱歉，我暂时无法理解您的问题，请描述具体的症状或实体。"
	graphDownAnswer  = "⚠️ 知识库暂时无法访问，请稍后再试。"
	busyAnswer       = "系统繁忙或连接错误，请稍后再试。"
)

// Deps are the collaborators a Pipeline is assembled from
type Deps struct {
	Lexicon  *lexicon.Store
	Triggers *classify.Triggers // nil uses the built-in keywords
	Graph    graph.Client
	LLM      llm.Provider // nil disables generated answers
	Metrics  *metrics.Collector
	Logger   *zap.Logger
}

// Pipeline answers questions. It is built once and is safe for concurrent
// use; nothing in it changes after New returns.
type Pipeline struct {
	resolver   *dialog.Resolver
	rewriter   *rewrite.Rewriter
	detector   *reason.Detector
	executor   *reason.Executor
	recognizer *lexicon.Recognizer
	normalizer *lexicon.Normalizer
	classifier *classify.Classifier
	searcher   *answer.Searcher
	diagnoser  *diagnose.Diagnoser
	retriever  *rag.Retriever
	assistant  *rag.Assistant
	metrics    *metrics.Collector
	logger     *zap.Logger
}

// New assembles a pipeline from cfg and deps
func New(cfg *model.Config, deps Deps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	recognizer := lexicon.NewRecognizer(deps.Lexicon)
	synth := answer.NewSynthesizer(answer.NewPicker(cfg.Answer.Seed), cfg.Answer.DisplayLimit)

	return &Pipeline{
		resolver:   dialog.NewResolver(recognizer),
		rewriter:   rewrite.New(),
		detector:   reason.NewDetector(),
		executor:   reason.NewExecutor(deps.Graph, cfg.Reasoning, logger),
		recognizer: recognizer,
		normalizer: lexicon.NewNormalizer(deps.Lexicon),
		classifier: classify.New(deps.Triggers, deps.Lexicon.Deny()),
		searcher:   answer.NewSearcher(deps.Graph, synth, logger),
		diagnoser:  diagnose.New(deps.Graph, cfg.Reasoning.Workers, logger),
		retriever:  rag.NewRetriever(deps.Graph, recognizer, rag.DefaultLimit, logger),
		assistant:  rag.NewAssistant(deps.LLM, cfg.LLM, logger),
		metrics:    deps.Metrics,
		logger:     logger.With(zap.String("component", "pipeline")),
	}
}

// Chat answers one question from the knowledge graph. A detected multi-hop
// question is answered by the reasoning executor; anything else, including a
// reasoning run that found nothing, goes through classification and query
// planning. It never panics and always returns a displayable answer.
func (p *Pipeline) Chat(ctx context.Context, question string, conv *model.ConversationContext) (res model.ChatResult) {
	res.Process = model.ProcessInfo{RequestID: uuid.NewString(), Method: model.MethodRule}
	defer p.finish(&res)

	q := p.understand(question, conv, &res.Process, true)

	if r, ok := p.reason(ctx, q, &res.Process); ok {
		res.Process.Method = model.MethodReasoning
		res.Answer = r.Answer
		res.Process.Outcome = outcome(&res.Process)
		return res
	}

	c := p.classify(q)
	if len(c.Entities) == 0 {
		res.Answer = noEntitiesAnswer
		res.Process.Outcome = model.OutcomeNoEntities
		return res
	}
	res.Classification = &c

	segments, err := p.searcher.Search(ctx, plan.Plan(c))
	if errors.Is(err, answer.ErrPartial) {
		p.logger.Warn("graph search incomplete", zap.String("request_id", res.Process.RequestID), zap.Error(err))
		failGraph(&res.Process, err)
		err = nil
	}
	switch {
	case err != nil:
		p.logger.Warn("graph search failed", zap.String("request_id", res.Process.RequestID), zap.Error(err))
		failGraph(&res.Process, err)
		res.Answer = graphDownAnswer
		res.Process.Outcome = model.OutcomeFailed
	case len(segments) == 0 && res.Process.Error != model.ErrorNone:
		res.Answer = noDataAnswer(c)
		res.Process.Outcome = model.OutcomeDegraded
	case len(segments) == 0:
		res.Answer = noDataAnswer(c)
		res.Process.Outcome = model.OutcomeNoData
	default:
		res.Answer = strings.Join(segments, "\n\n")
		res.Process.Outcome = outcome(&res.Process)
	}
	return res
}

// Ask answers with the LLM, grounded on a reasoning result when the question
// is multi-hop and on retrieved graph facts otherwise. Without a working LLM
// the grounding text itself is returned.
func (p *Pipeline) Ask(ctx context.Context, question string, conv *model.ConversationContext) (res model.ChatResult) {
	res.Process = model.ProcessInfo{RequestID: uuid.NewString(), Method: model.MethodLLM}
	defer p.finish(&res)

	q := p.understand(question, conv, &res.Process, false)
	c := p.classify(q)
	if len(c.Entities) > 0 {
		res.Classification = &c
	}

	var k rag.Knowledge
	if r, ok := p.reason(ctx, q, &res.Process); ok {
		res.Process.Method = model.MethodReasoningLLM
		k = rag.Knowledge{Text: r.Answer, FromReasoning: true}
	} else {
		text, err := p.retriever.Retrieve(ctx, q, c.Entities)
		if err != nil {
			p.logger.Warn("retrieval failed", zap.String("request_id", res.Process.RequestID), zap.Error(err))
			failGraph(&res.Process, err)
		}
		k = rag.Knowledge{Text: text}
	}
	res.Process.Retrieved = k.Text

	reply, err := p.assistant.Answer(ctx, q, k, dialog.RecentHistory(conv, rag.HistoryTurns))
	res.Answer = reply.Text
	res.Process.LLMUsed = reply.LLMUsed
	if err != nil {
		res.Process.Error = model.ErrorLLMUnavailable
		res.Process.ErrorDetail = err.Error()
		if k.Text == "" {
			res.Process.Outcome = model.OutcomeFailed
			return res
		}
	}
	res.Process.Outcome = outcome(&res.Process)
	return res
}

// Diagnose ranks diseases for a symptom combination
func (p *Pipeline) Diagnose(ctx context.Context, symptoms []string) ([]model.Diagnosis, error) {
	return p.diagnoser.Diagnose(ctx, symptoms)
}

// CommonSymptoms lists frequently recorded symptoms
func (p *Pipeline) CommonSymptoms(ctx context.Context, limit int) ([]string, error) {
	return p.diagnoser.CommonSymptoms(ctx, limit)
}

// Profile summarizes one disease
func (p *Pipeline) Profile(ctx context.Context, disease string) (*model.DiseaseProfile, error) {
	return p.executor.Profile(ctx, strings.TrimSpace(disease))
}

// understand applies context resolution and, when colloquial is set, the
// colloquial rewrite. Both are recorded in proc.
func (p *Pipeline) understand(question string, conv *model.ConversationContext, proc *model.ProcessInfo, colloquial bool) string {
	question = strings.TrimSpace(question)

	q := question
	if resolved, ok := p.resolver.Resolve(question, conv); ok {
		proc.ContextResolved = &model.ContextRewrite{Original: question, Resolved: resolved}
		q = resolved
	}

	if colloquial {
		if rw := p.rewriter.Rewrite(q); rw.Changed() {
			proc.Rewrite = &model.Rewrite{Original: rw.Original, Rewritten: rw.Rewritten, Rules: rw.Rules}
			q = rw.Rewritten
		}
	}
	return q
}

// reason runs the multi-hop executor when the question matches a pattern.
// The run is recorded in proc whether or not it succeeded.
func (p *Pipeline) reason(ctx context.Context, question string, proc *model.ProcessInfo) (*model.ReasoningResult, bool) {
	hop, ok := p.detector.Detect(question)
	if !ok {
		return nil, false
	}

	info := &model.ReasoningInfo{Type: hop.Type, Description: hop.Description, Path: []model.TraceStep{}}
	proc.Reasoning = info

	r, err := p.executor.Execute(ctx, hop.Entity, hop)
	if err != nil {
		p.logger.Warn("reasoning failed, falling back to rules",
			zap.String("request_id", proc.RequestID),
			zap.String("type", hop.Type),
			zap.Error(err))
		info.Message = err.Error()
		failGraph(proc, err)
		return nil, false
	}

	info.Success = r.Success
	info.Message = r.Message
	info.Path = r.Path
	if r.Err != nil {
		p.logger.Warn("reasoning answer incomplete",
			zap.String("request_id", proc.RequestID),
			zap.String("type", hop.Type),
			zap.Error(r.Err))
		failGraph(proc, r.Err)
	}
	return r, r.Success
}

func (p *Pipeline) classify(question string) model.Classification {
	entities := p.normalizer.Canonicalize(p.recognizer.Recognize(question))
	return p.classifier.Classify(p.normalizer.Normalize(question), entities)
}

// finish turns a panic into a failed result and records the outcome
func (p *Pipeline) finish(res *model.ChatResult) {
	if r := recover(); r != nil {
		p.logger.Error("chat panicked",
			zap.String("request_id", res.Process.RequestID),
			zap.Any("panic", r),
			zap.Stack("stack"))
		res.Answer = busyAnswer
		res.Classification = nil
		res.Process.Outcome = model.OutcomeFailed
		res.Process.Error = model.ErrorInternal
		res.Process.ErrorDetail = fmt.Sprint(r)
	}
	p.metrics.RecordChat(string(res.Process.Method), string(res.Process.Outcome))
}

func failGraph(proc *model.ProcessInfo, err error) {
	proc.Error = model.ErrorGraphUnavailable
	proc.ErrorDetail = err.Error()
}

// outcome is answered unless a collaborator failed along the way
func outcome(proc *model.ProcessInfo) model.Outcome {
	if proc.Error != model.ErrorNone {
		return model.OutcomeDegraded
	}
	return model.OutcomeAnswered
}

func noDataAnswer(c model.Classification) string {
	names := strings.Join(c.Entities.Texts(), ",")
	types := "未知类型"
	if len(c.QuestionTypes) > 0 {
		tags := make([]string, len(c.QuestionTypes))
		for i, qt := range c.QuestionTypes {
			tags[i] = string(qt)
		}
		types = strings.Join(tags, ",")
	}
	return fmt.Sprintf("📚 抱歉，虽然识别到您在问 [%s]，但知识库中暂时没有 [%s] 的相关数据。", names, types)
}
