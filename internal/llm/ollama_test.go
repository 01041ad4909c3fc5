package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaProvider_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("Expected path /api/chat, got %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("Expected non-streaming request")
		}
		if len(req.Messages) != 2 {
			t.Errorf("Expected 2 messages, got %d", len(req.Messages))
		}

		resp := ollamaResponse{
			Model:           "qwen2.5",
			Message:         ollamaMessage{Role: "assistant", Content: "建议多休息。"},
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       20,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "qwen2.5", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Complete(context.Background(), CompletionRequest{Messages: chatMessages()})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Text != "建议多休息。" {
		t.Errorf("Unexpected text: %s", resp.Text)
	}
	if resp.TokensUsed != 30 {
		t.Errorf("Unexpected token usage: %d", resp.TokensUsed)
	}
}

func TestOllamaProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "model not loaded"}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "qwen2.5", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Complete(context.Background(), CompletionRequest{Messages: chatMessages()})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestOllamaProvider_RequiresModel(t *testing.T) {
	provider, err := NewOllamaProvider(Config{})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if _, err := provider.Complete(context.Background(), CompletionRequest{Messages: chatMessages()}); err == nil {
		t.Error("Expected error without a model")
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL + "/"})
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be available")
	}

	server.Close()
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be unavailable after shutdown")
	}
}
