package llm

import (
	"context"
	"errors"

	"github.com/ppiankov/medqa/internal/model"
)

// ErrNotConfigured is returned when a completion is requested without a provider
var ErrNotConfigured = errors.New("llm provider not configured")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete generates the assistant reply for a chat transcript
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for a chat completion
type CompletionRequest struct {
	// Messages is the transcript, system prompt first
	Messages []model.Message

	// Model overrides the configured model
	Model string

	Temperature float32

	// MaxTokens limits the response length
	MaxTokens int
}

// CompletionResponse contains the generated reply
type CompletionResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "deepseek", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	APIKey string

	// BaseURL overrides the API endpoint (for proxies or compatible services)
	BaseURL string

	// Timeout in seconds
	Timeout int

	MaxTokens   int
	Temperature float32

	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns default LLM configuration
func DefaultConfig() Config {
	return Config{
		Provider:    "",
		Timeout:     100,
		MaxTokens:   2000,
		Temperature: 0.7,
	}
}

func (c Config) maxTokens(req CompletionRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 2000
}

func (c Config) temperature(req CompletionRequest) float32 {
	if req.Temperature > 0 {
		return req.Temperature
	}
	return c.Temperature
}

func (c Config) model(req CompletionRequest, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if c.Model != "" {
		return c.Model
	}
	return fallback
}
