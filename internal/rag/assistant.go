package rag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/medqa/internal/llm"
	"github.com/ppiankov/medqa/internal/model"
)

const systemPrompt = `你是一位专业的医疗助手，基于提供的医疗知识图谱信息回答用户问题。
要求：
1. 基于提供的知识图谱信息回答问题，不要编造信息
2. 如果知识图谱中没有相关信息，明确告知用户
3. 回答要专业、准确、易懂
4. 对于医疗建议，要提醒用户咨询专业医生
5. 使用中文回答

知识图谱信息会以以下格式提供：
[知识图谱信息]
...
[/知识图谱信息]`

// HistoryTurns is how many earlier messages accompany a question
const HistoryTurns = 6

// Knowledge is the grounding sent with a question
type Knowledge struct {
	Text string
	// FromReasoning marks Text as a multi-hop reasoning answer rather than
	// retrieved facts
	FromReasoning bool
}

// Reply is an assistant answer. Degraded replies are built from Knowledge
// alone because the LLM could not be used.
type Reply struct {
	Text     string
	LLMUsed  bool
	Degraded bool
}

// Assistant asks the LLM to answer from graph knowledge
type Assistant struct {
	provider    llm.Provider
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// NewAssistant wraps provider. A nil provider yields degraded replies only.
func NewAssistant(provider llm.Provider, cfg model.LLMConfig, logger *zap.Logger) *Assistant {
	return &Assistant{
		provider:    provider,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger.With(zap.String("component", "assistant")),
	}
}

// Answer sends the system prompt, history and knowledge to the LLM. When the
// LLM is missing or fails, the reply falls back to the knowledge text and the
// error says why.
func (a *Assistant) Answer(ctx context.Context, question string, k Knowledge, history []model.Message) (Reply, error) {
	if a.provider == nil {
		return a.degrade(k, llm.ErrNotConfigured), llm.ErrNotConfigured
	}

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		Messages:    BuildMessages(question, k, history),
		Model:       a.model,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	})
	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = fmt.Errorf("%s returned an empty reply", a.provider.Name())
	}
	if err != nil {
		a.logger.Warn("completion failed, answering from knowledge",
			zap.String("provider", a.provider.Name()),
			zap.Bool("reasoning", k.FromReasoning),
			zap.Error(err))
		return a.degrade(k, err), fmt.Errorf("complete: %w", err)
	}
	return Reply{Text: resp.Text, LLMUsed: true}, nil
}

func (a *Assistant) degrade(k Knowledge, cause error) Reply {
	r := Reply{Degraded: true}
	switch {
	case k.FromReasoning:
		r.Text = "⚠️ LLM服务暂时不可用，以下是基于知识推理的结果：\n\n" + k.Text
	case k.Text != "":
		r.Text = fmt.Sprintf("⚠️ LLM服务暂时不可用 (%v)，以下是基于知识图谱的信息：\n\n基于知识图谱信息：\n\n%s", cause, k.Text)
	default:
		r.Text = fmt.Sprintf("抱歉，暂时无法回答您的问题。\n\n错误信息: %v", cause)
	}
	return r
}

// BuildMessages lays out the transcript: system prompt, the last
// HistoryTurns messages, then the question wrapped with its knowledge
func BuildMessages(question string, k Knowledge, history []model.Message) []model.Message {
	if len(history) > HistoryTurns {
		history = history[len(history)-HistoryTurns:]
	}

	msgs := make([]model.Message, 0, len(history)+2)
	msgs = append(msgs, model.Message{Role: model.RoleSystem, Content: systemPrompt})
	msgs = append(msgs, history...)

	var b strings.Builder
	switch {
	case k.FromReasoning:
		b.WriteString("[知识推理结果]\n" + k.Text + "\n[/知识推理结果]\n\n")
		b.WriteString("注意：以上是通过多跳推理得到的结果，请基于这些信息回答用户问题。\n\n")
	case k.Text != "":
		b.WriteString("[知识图谱信息]\n" + k.Text + "\n[/知识图谱信息]\n\n")
	default:
		b.WriteString("[知识图谱信息]\n未找到相关信息\n[/知识图谱信息]\n\n")
	}
	b.WriteString("用户问题: " + question)

	return append(msgs, model.Message{Role: model.RoleUser, Content: b.String()})
}
