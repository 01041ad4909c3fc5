package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/util"
)

const (
	deepseekBaseURL = "https://api.deepseek.com/v1"
	deepseekModel   = "deepseek-chat"
)

// OpenAIProvider implements the Provider interface for OpenAI-compatible chat APIs.
// DeepSeek is served by the same client with its own endpoint.
type OpenAIProvider struct {
	client *openai.Client
	config Config
	name   string
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	return newOpenAICompatible("openai", config)
}

// NewDeepSeekProvider creates a provider for the DeepSeek chat API
func NewDeepSeekProvider(config Config) (*OpenAIProvider, error) {
	if config.BaseURL == "" {
		config.BaseURL = deepseekBaseURL
	}
	if config.Model == "" {
		config.Model = deepseekModel
	}
	return newOpenAICompatible("deepseek", config)
}

func newOpenAICompatible(name string, config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy),
		},
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		name:   name,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Complete generates a reply using the Chat Completions API
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	modelName := p.config.model(req, openai.GPT4oMini)

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 100 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openAIRole(m.Role),
			Content: m.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model:       modelName,
		Messages:    messages,
		MaxTokens:   p.config.maxTokens(req),
		Temperature: p.config.temperature(req),
	})
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", p.name)
	}

	return &CompletionResponse{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

func openAIRole(role string) string {
	switch role {
	case model.RoleSystem:
		return openai.ChatMessageRoleSystem
	case model.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
