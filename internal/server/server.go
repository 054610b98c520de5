// Package server exposes a thin HTTP surface for running a single case
// through the pipeline. It exists for interactive poking and demos; sweeps
// go through the experiment orchestrator, not this handler.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ahrav/go-prompteval/internal/domain"
	"github.com/ahrav/go-prompteval/internal/llm"
	"github.com/ahrav/go-prompteval/internal/pipeline"
)

// adhocDomain labels cases submitted over HTTP, which carry no sweep domain.
const adhocDomain = "adhoc"

// Runner executes one case through the pipeline.
type Runner interface {
	Run(ctx context.Context, c domain.Case) (*domain.PipelineResult, error)
}

// Server handles single-case pipeline requests. It is safe for concurrent
// use; each request runs its own case.
type Server struct {
	runner Runner
	logger *slog.Logger
}

// New builds a server around a configured pipeline runner.
func New(runner Runner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{runner: runner, logger: logger.With("component", "server")}
}

// Handler returns the route table for the HTTP surface.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /llm", s.handleRun)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

type runRequest struct {
	Prompt    string `json:"prompt"`
	Technique string `json:"technique,omitempty"`
	Domain    string `json:"domain,omitempty"`
}

type runResponse struct {
	Case   domain.Case            `json:"case"`
	Result *domain.PipelineResult `json:"result,omitempty"`
	Status domain.Status          `json:"status"`
	Error  string                 `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "prompt is required"})
		return
	}

	technique := domain.TechniqueBaseline
	if req.Technique != "" {
		var err error
		technique, err = domain.ParseTechnique(req.Technique)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}

	c := domain.Case{
		Domain:    req.Domain,
		Prompt:    req.Prompt,
		Technique: technique,
	}
	if c.Domain == "" {
		c.Domain = adhocDomain
	}

	result, err := s.runner.Run(r.Context(), c)
	if err != nil {
		status := pipeline.FailureStatus(err)
		s.logger.Warn("request case failed",
			"technique", string(technique),
			"status", string(status),
			"error", err)

		resp := runResponse{Case: c, Result: result, Status: status, Error: err.Error()}
		writeJSON(w, httpStatusFor(err), resp)
		return
	}

	writeJSON(w, http.StatusOK, runResponse{Case: c, Result: result, Status: domain.StatusOK})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// httpStatusFor maps a pipeline failure to a response status. Parse failures
// and unknown provider errors are upstream faults from the caller's
// perspective; rate limits and auth problems keep their conventional codes.
func httpStatusFor(err error) int {
	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		switch perr.Type {
		case llm.ErrorTypeAuthentication:
			return http.StatusBadGateway
		case llm.ErrorTypeRateLimit:
			return http.StatusTooManyRequests
		}
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("encode response", "error", err)
	}
}
