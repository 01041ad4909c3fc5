package model

// Method is the path a question took through the engine
type Method string

const (
	MethodReasoning    Method = "reasoning"
	MethodRule         Method = "rule"
	MethodReasoningLLM Method = "reasoning_llm"
	MethodLLM          Method = "llm_rag"
)

// Outcome classifies how a chat call ended
type Outcome string

const (
	OutcomeAnswered   Outcome = "answered"
	OutcomeNoEntities Outcome = "no_entities"
	OutcomeNoData     Outcome = "no_data"
	OutcomeDegraded   Outcome = "degraded"
	OutcomeFailed     Outcome = "failed"
)

// ErrorKind lets callers branch on collaborator failures
type ErrorKind string

const (
	ErrorNone             ErrorKind = ""
	ErrorGraphUnavailable ErrorKind = "graph_unavailable"
	ErrorLLMUnavailable   ErrorKind = "llm_unavailable"
	ErrorInternal         ErrorKind = "internal"
)

// ContextRewrite records a pronoun or follow-up rewrite
type ContextRewrite struct {
	Original string `json:"original"`
	Resolved string `json:"resolved"`
}

// Rewrite records colloquial-to-standard question rewriting
type Rewrite struct {
	Original  string   `json:"original"`
	Rewritten string   `json:"rewritten"`
	Rules     []string `json:"rules,omitempty"`
}

// ReasoningInfo is the observable part of a reasoning run
type ReasoningInfo struct {
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Success     bool        `json:"success"`
	Message     string      `json:"message,omitempty"`
	Path        []TraceStep `json:"path"`
}

// ProcessInfo is diagnostic metadata returned with every answer
type ProcessInfo struct {
	RequestID       string          `json:"request_id"`
	Method          Method          `json:"method"`
	ContextResolved *ContextRewrite `json:"context_resolved,omitempty"`
	Rewrite         *Rewrite        `json:"rewrite,omitempty"`
	Reasoning       *ReasoningInfo  `json:"reasoning,omitempty"`
	Outcome         Outcome         `json:"outcome"`
	LLMUsed         bool            `json:"llm_used,omitempty"`
	Retrieved       string          `json:"retrieved,omitempty"`
	Error           ErrorKind       `json:"error,omitempty"`
	ErrorDetail     string          `json:"error_detail,omitempty"`
}

// ChatResult is what the engine hands back to the conversation layer
type ChatResult struct {
	Answer         string          `json:"answer"`
	Classification *Classification `json:"classification,omitempty"`
	Process        ProcessInfo     `json:"process"`
}
