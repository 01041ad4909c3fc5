package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/medqa/internal/model"
)

func chatMessages() []model.Message {
	return []model.Message{
		{Role: model.RoleSystem, Content: "你是一个专业的医疗助手"},
		{Role: model.RoleUser, Content: "感冒怎么办"},
	}
}

func TestOpenAIProvider_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != openai.ChatMessageRoleSystem {
			t.Errorf("Unexpected messages: %+v", req.Messages)
		}
		if req.MaxTokens != 2000 {
			t.Errorf("Expected max tokens 2000, got %d", req.MaxTokens)
		}

		resp := openai.ChatCompletionResponse{
			ID:    "chatcmpl-123",
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "  多喝水，注意休息。 "}},
			},
			Usage: openai.Usage{TotalTokens: 100},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		Timeout:   5,
		MaxTokens: 2000,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Complete(context.Background(), CompletionRequest{Messages: chatMessages()})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Text != "多喝水，注意休息。" {
		t.Errorf("Unexpected text: %q", resp.Text)
	}
	if resp.TokensUsed != 100 {
		t.Errorf("Unexpected token usage: %d", resp.TokensUsed)
	}
}

func TestOpenAIProvider_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Complete(context.Background(), CompletionRequest{Messages: chatMessages()}); err == nil {
		t.Error("Expected error for empty choices")
	}
}

func TestOpenAIProvider_RequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Error("Expected error without API key")
	}
}

func TestDeepSeekProvider_Defaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "deepseek-chat" {
			t.Errorf("Expected model deepseek-chat, got %s", req.Model)
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Model:   req.Model,
			Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "好的"}}},
		})
	}))
	defer server.Close()

	provider, err := NewDeepSeekProvider(Config{APIKey: "k", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if provider.Name() != "deepseek" {
		t.Errorf("Expected name deepseek, got %s", provider.Name())
	}

	resp, err := provider.Complete(context.Background(), CompletionRequest{Messages: chatMessages()})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Model != "deepseek-chat" {
		t.Errorf("Unexpected model: %s", resp.Model)
	}

	// Without an override the public endpoint is used
	p2, err := NewDeepSeekProvider(Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if p2.config.BaseURL != deepseekBaseURL {
		t.Errorf("Unexpected base URL: %s", p2.config.BaseURL)
	}
}
