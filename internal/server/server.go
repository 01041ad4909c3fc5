// Package server exposes the question engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/medqa/internal/diagnose"
	"github.com/ppiankov/medqa/internal/dialog"
	"github.com/ppiankov/medqa/internal/metrics"
	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/pipeline"
	"github.com/ppiankov/medqa/internal/reason"
)

const (
	requestIDHeader = "X-Request-ID"
	shutdownTimeout = 5 * time.Second
)

// Engine answers questions. *pipeline.Pipeline satisfies it.
type Engine interface {
	Chat(ctx context.Context, question string, conv *model.ConversationContext) model.ChatResult
	Ask(ctx context.Context, question string, conv *model.ConversationContext) model.ChatResult
	Diagnose(ctx context.Context, symptoms []string) ([]model.Diagnosis, error)
	CommonSymptoms(ctx context.Context, limit int) ([]string, error)
	Profile(ctx context.Context, disease string) (*model.DiseaseProfile, error)
}

// Mode selects the answering path of a chat request
const (
	ModeRule = "rule"
	ModeLLM  = "llm"
)

// ChatRequest is the body of POST /v1/chat. Without a session id the
// question is answered without conversation context.
type ChatRequest struct {
	Question  string `json:"question" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
	Mode      string `json:"mode,omitempty" binding:"omitempty,oneof=rule llm"`
}

// ChatResponse carries the answer, the terminal rendering with process
// hints, and the process metadata
type ChatResponse struct {
	SessionID      string                `json:"session_id,omitempty"`
	Answer         string                `json:"answer"`
	Display        string                `json:"display"`
	Classification *model.Classification `json:"classification,omitempty"`
	Process        model.ProcessInfo     `json:"process"`
}

// DiagnoseRequest is the body of POST /v1/diagnose
type DiagnoseRequest struct {
	Symptoms []string `json:"symptoms" binding:"required,min=1,max=20"`
}

// DiagnoseResponse lists candidate diseases, best match first
type DiagnoseResponse struct {
	Diagnoses []model.Diagnosis `json:"diagnoses"`
}

// SymptomsResponse lists frequently recorded symptoms
type SymptomsResponse struct {
	Symptoms []string `json:"symptoms"`
}

// ErrorResponse is returned for every non-2xx status
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Server routes HTTP requests to the engine
type Server struct {
	engine   Engine
	sessions *Sessions
	metrics  *metrics.Collector
	logger   *zap.Logger
	router   *gin.Engine
}

// New builds the router. m may be nil.
func New(engine Engine, sessions *Sessions, m *metrics.Collector, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessions == nil {
		sessions = NewSessions(DefaultSessionTTL)
	}
	s := &Server{
		engine:   engine,
		sessions: sessions,
		metrics:  m,
		logger:   logger.With(zap.String("component", "server")),
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestID, s.observe)

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := router.Group("/v1")
	v1.POST("/chat", s.handleChat)
	v1.POST("/diagnose", s.handleDiagnose)
	v1.GET("/symptoms/common", s.handleCommonSymptoms)
	v1.GET("/diseases/:name", s.handleProfile)
	v1.GET("/sessions/:id", s.handleGetSession)
	v1.DELETE("/sessions/:id", s.handleDeleteSession)

	s.router = router
	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, cfg model.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) requestID(c *gin.Context) {
	id := c.GetHeader(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDHeader, id)
	c.Header(requestIDHeader, id)
	c.Next()
}

func (s *Server) observe(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	elapsed := time.Since(start)
	s.metrics.ObserveHTTP(route, c.Writer.Status(), elapsed)
	s.logger.Debug("request",
		zap.String("request_id", c.GetString(requestIDHeader)),
		zap.String("method", c.Request.Method),
		zap.String("route", route),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("elapsed", elapsed))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.sessions.Len()})
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	answer := s.engine.Chat
	if req.Mode == ModeLLM {
		answer = s.engine.Ask
	}

	var res model.ChatResult
	if req.SessionID == "" {
		res = answer(c.Request.Context(), req.Question, nil)
	} else {
		sess := s.sessions.acquire(req.SessionID)
		conv := sess.conv
		res = answer(c.Request.Context(), req.Question, &conv)
		sess.conv = dialog.Record(conv, req.Question, res)
		sess.release()
	}

	s.logger.Info("chat",
		zap.String("request_id", c.GetString(requestIDHeader)),
		zap.String("engine_request_id", res.Process.RequestID),
		zap.String("method", string(res.Process.Method)),
		zap.String("outcome", string(res.Process.Outcome)))

	c.JSON(http.StatusOK, ChatResponse{
		SessionID:      req.SessionID,
		Answer:         res.Answer,
		Display:        pipeline.Render(res),
		Classification: res.Classification,
		Process:        res.Process,
	})
}

func (s *Server) handleDiagnose(c *gin.Context) {
	var req DiagnoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	diagnoses, err := s.engine.Diagnose(c.Request.Context(), req.Symptoms)
	switch {
	case errors.Is(err, diagnose.ErrNoSymptoms):
		s.badRequest(c, err)
		return
	case err != nil:
		s.graphError(c, err)
		return
	}
	if diagnoses == nil {
		diagnoses = []model.Diagnosis{}
	}
	c.JSON(http.StatusOK, DiagnoseResponse{Diagnoses: diagnoses})
}

func (s *Server) handleCommonSymptoms(c *gin.Context) {
	limit := diagnose.DefaultCommonLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer", Code: "INVALID_PARAMETER"})
			return
		}
		limit = n
	}

	symptoms, err := s.engine.CommonSymptoms(c.Request.Context(), limit)
	if err != nil {
		s.graphError(c, err)
		return
	}
	if symptoms == nil {
		symptoms = []string{}
	}
	c.JSON(http.StatusOK, SymptomsResponse{Symptoms: symptoms})
}

func (s *Server) handleProfile(c *gin.Context) {
	profile, err := s.engine.Profile(c.Request.Context(), c.Param("name"))
	switch {
	case errors.Is(err, reason.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NOT_FOUND"})
	case err != nil:
		s.graphError(c, err)
	default:
		c.JSON(http.StatusOK, profile)
	}
}

func (s *Server) handleGetSession(c *gin.Context) {
	conv, ok := s.sessions.Context(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown session", Code: "NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	s.sessions.Reset(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (s *Server) badRequest(c *gin.Context, err error) {
	s.logger.Debug("invalid request", zap.String("request_id", c.GetString(requestIDHeader)), zap.Error(err))
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
}

func (s *Server) graphError(c *gin.Context, err error) {
	s.logger.Warn("graph request failed", zap.String("request_id", c.GetString(requestIDHeader)), zap.Error(err))
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: string(model.ErrorGraphUnavailable)})
}
