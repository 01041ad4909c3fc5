package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/medqa/internal/metrics"
	"github.com/ppiankov/medqa/internal/worker"
)

type stubProvider struct {
	err error
}

func (s *stubProvider) Name() string                      { return "stub" }
func (s *stubProvider) IsAvailable(context.Context) bool { return true }
func (s *stubProvider) Complete(context.Context, CompletionRequest) (*CompletionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &CompletionResponse{Text: "ok"}, nil
}

func TestInstrumented_RecordsOutcome(t *testing.T) {
	m := metrics.NewCollector("test")
	p := Instrument(&stubProvider{}, worker.NewLimiter(0, 0), m)

	resp, err := p.Complete(context.Background(), CompletionRequest{})
	if err != nil || resp.Text != "ok" {
		t.Fatalf("Complete = %v, %v", resp, err)
	}

	failing := Instrument(&stubProvider{err: errors.New("boom")}, nil, m)
	if _, err := failing.Complete(context.Background(), CompletionRequest{}); err == nil {
		t.Error("Expected error")
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`test_llm_requests_total{provider="stub",status="ok"} 1`,
		`test_llm_requests_total{provider="stub",status="error"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestInstrumented_ContextCancelledWhileWaiting(t *testing.T) {
	limiter := worker.NewLimiter(0.001, 1)
	limiter.Allow(limiterKey)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Instrument(&stubProvider{}, limiter, nil)
	if _, err := p.Complete(ctx, CompletionRequest{}); err == nil {
		t.Error("Expected context error")
	}
}
