// Package chi implements the HTTP API on top of the chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pitchlens/pitchlens/internal/config"
	"github.com/pitchlens/pitchlens/internal/domain"
	healthuc "github.com/pitchlens/pitchlens/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the retrieval and analysis API.
type Server struct {
	retrieval     Retriever
	analysis      Analyzer
	judge         Judge
	health        HealthChecker
	retrievalCfg  config.RetrievalConfig
	prompts       config.Prompts
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	retrieval Retriever,
	analysis Analyzer,
	judge Judge,
	health HealthChecker,
	retrievalCfg config.RetrievalConfig,
	prompts config.Prompts,
	logger *zap.Logger,
) *Server {
	s := &Server{
		retrieval:    retrieval,
		analysis:     analysis,
		judge:        judge,
		health:       health,
		retrievalCfg: retrievalCfg,
		prompts:      prompts,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrIndexNotReady, http.StatusServiceUnavailable, ErrorCodeIndexNotReady),
		sentinelHandler(domain.ErrEncoding, http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
		sentinelHandler(domain.ErrCompletionProviderError, http.StatusBadGateway, ErrorCodeCompletionProviderError),
	}
	return s
}

// Routes registers all API endpoints on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.GetHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/knowledge/topics", s.ListTopics)
		r.Post("/knowledge/search", s.SearchKnowledge)
		r.Post("/analyze/text", s.AnalyzeText)
		r.Post("/evaluate", s.EvaluateAnalysis)
		r.Get("/config/prompts", s.GetPromptConfig)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

// ListTopics handles GET /v1/knowledge/topics.
func (s *Server) ListTopics(w http.ResponseWriter, _ *http.Request) {
	topics := s.retrieval.ListTopics()
	writeJSON(w, http.StatusOK, TopicsResponse{Topics: topics, Count: len(topics)})
}

// GetPromptConfig handles GET /v1/config/prompts. It exposes the loaded
// prompt catalog for operators to verify which templates a deployment runs.
func (s *Server) GetPromptConfig(w http.ResponseWriter, _ *http.Request) {
	if len(s.prompts) == 0 {
		writeError(w, http.StatusServiceUnavailable, ErrorCodeInternal, "Prompt configuration not loaded")
		return
	}

	out := make(map[string]PromptInfo, len(s.prompts))
	for name, p := range s.prompts {
		out[name] = PromptInfo{
			SystemPrompt:       p.SystemPrompt,
			UserPromptTemplate: p.UserPromptTemplate,
			Model: PromptModelInfo{
				Model:           p.Model.Model,
				MaxOutputTokens: p.Model.MaxOutputTokens,
				Temperature:     p.Model.Temperature,
			},
		}
	}
	writeJSON(w, http.StatusOK, PromptsResponse{Prompts: out})
}

// SearchKnowledge handles POST /v1/knowledge/search.
func (s *Server) SearchKnowledge(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "Query is required")
		return
	}

	topK := req.TopK
	if topK == 0 {
		topK = s.retrievalCfg.DefaultTopK
	}
	if topK < 0 || topK > s.retrievalCfg.MaxTopK {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			"top_k must be between 1 and "+strconv.Itoa(s.retrievalCfg.MaxTopK))
		return
	}

	minScore := s.retrievalCfg.DefaultMinScore
	if req.SimilarityThreshold != nil {
		minScore = *req.SimilarityThreshold
	}

	matches, err := s.retrieval.Retrieve(r.Context(), req.Query, topK, minScore)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if matches == nil {
		matches = []domain.Match{}
	}

	writeJSON(w, http.StatusOK, SearchResponse{Matches: matches, Count: len(matches)})
}

// AnalyzeText handles POST /v1/analyze/text.
func (s *Server) AnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.analysis.Analyze(r.Context(), req.Content)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// EvaluateAnalysis handles POST /v1/evaluate.
func (s *Server) EvaluateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	eval, err := s.judge.Evaluate(r.Context(), req.Content, req.Analysis)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, eval)
}

// handleDomainError maps domain sentinels to HTTP responses. Unknown errors
// are logged and returned as an opaque 500.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}

	s.logger.Error("Unhandled domain error",
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidArgument,
		domain.ErrIndexNotReady,
		domain.ErrEncoding,
		domain.ErrEmbeddingProviderError,
		domain.ErrCompletionProviderError,
	}
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return err.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}
