package model

// Message roles used in conversation history and LLM requests
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationContext is owned by the caller and passed in per call.
// The engine only reads it.
type ConversationContext struct {
	LastDisease  string    `json:"last_disease,omitempty"`
	LastSymptom  string    `json:"last_symptom,omitempty"`
	LastEntities Entities  `json:"last_entities,omitempty"`
	History      []Message `json:"history,omitempty"`
}
