// Package web exposes the pipeline over HTTP for callers that embed merkit
// in a service: POST a context pack, get a MER; POST a MER, get a schema.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/merkit/merkit/internal/mer"
	"github.com/merkit/merkit/internal/pipeline"
	"github.com/merkit/merkit/internal/projector/prisma"
)

// Server wires the pipeline into an HTTP handler.
type Server struct {
	pipeline *pipeline.Pipeline
	log      *zap.Logger
}

// NewServer creates the HTTP surface around a pipeline.
func NewServer(p *pipeline.Pipeline, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{pipeline: p, log: log}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Post("/v1/mer", s.handleGenerateMER)
	r.Post("/v1/schema", s.handleGenerateSchema)
	r.Post("/v1/validate", s.handleValidate)
	r.Get("/healthz", s.handleHealth)

	return r
}

// ListenAndServe runs the server with conservative timeouts. Completion
// calls dominate request latency, so the write timeout is generous.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	s.log.Info("listening", zap.String("addr", addr))
	return srv.ListenAndServe()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) handleGenerateMER(w http.ResponseWriter, r *http.Request) {
	var pack mer.ContextPack
	if err := json.NewDecoder(r.Body).Decode(&pack); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid context pack: "+err.Error())
		return
	}

	m, err := s.pipeline.GenerateMER(r.Context(), &pack)
	if err != nil {
		var verr *pipeline.ValidationError
		if errors.As(err, &verr) {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleGenerateSchema(w http.ResponseWriter, r *http.Request) {
	var m mer.MER
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid MER: "+err.Error())
		return
	}

	if err := pipeline.Validate(&m); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(prisma.Project(&m)))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var m mer.MER
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid MER: "+err.Error())
		return
	}

	if err := pipeline.Validate(&m); err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"valid":    true,
		"warnings": pipeline.Lint(&m),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
