// Package server exposes the GitHub proxy and the dashboard over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/naka-gawa/release-cadence/internal/domain"
	"github.com/naka-gawa/release-cadence/internal/gateway"
	"github.com/naka-gawa/release-cadence/internal/usecase"
)

// DashboardBuilder produces the aggregated report served on /api/dashboard.
type DashboardBuilder interface {
	Build(ctx context.Context, token string, months int) (*domain.Report, error)
}

// Server holds the HTTP handlers. The server-side token is passed in
// explicitly and may be empty.
type Server struct {
	fetcher   gateway.Fetcher
	dashboard DashboardBuilder
	token     string
	logger    *zap.Logger
}

// New creates a Server.
func New(fetcher gateway.Fetcher, dashboard DashboardBuilder, token string, logger *zap.Logger) *Server {
	return &Server{
		fetcher:   fetcher,
		dashboard: dashboard,
		token:     token,
		logger:    logger,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		s.requestLogger,
		s.recoverer,
	)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/github/releases", s.proxy("releases", s.fetcher.FetchReleases))
		r.Post("/github/issues/bugs", s.proxy("bug issues", s.fetcher.FetchBugIssues))
		r.Get("/dashboard", s.handleDashboard)
	})
	return r
}

// maxRequestBytes caps proxy request bodies.
const maxRequestBytes = 1 << 20

type proxyRequest struct {
	Repo  string `json:"repo"`
	Owner string `json:"owner"`
	Token string `json:"token,omitempty"`
}

type fetchFunc func(ctx context.Context, token, owner, repo string) ([]json.RawMessage, error)

// proxy returns every page of an upstream listing as one array, unchanged.
func (s *Server) proxy(what string, fetch fetchFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req proxyRequest
		body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Repo == "" || req.Owner == "" {
			writeError(w, http.StatusBadRequest, "repo and owner are required")
			return
		}

		token := s.resolveToken(req.Token)
		if token == "" {
			s.logger.Warn("no GitHub token available", zap.String("path", r.URL.Path))
			writeError(w, http.StatusInternalServerError, domain.ErrTokenNotConfigured.Error())
			return
		}

		items, err := fetch(r.Context(), token, req.Owner, req.Repo)
		if err != nil {
			s.logger.Error("upstream fetch failed", zap.String("what", what), zap.String("repo", req.Owner+"/"+req.Repo), zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	months := 0
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > usecase.MaxWindowMonths {
			writeError(w, http.StatusBadRequest, usecase.ErrInvalidWindow.Error())
			return
		}
		months = n
	}

	token := s.resolveToken("")
	if token == "" {
		writeError(w, http.StatusInternalServerError, domain.ErrTokenNotConfigured.Error())
		return
	}

	report, err := s.dashboard.Build(r.Context(), token, months)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Error("dashboard failed", zap.Error(err))
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// resolveToken prefers the caller's token over the server's.
func (s *Server) resolveToken(requestToken string) string {
	if requestToken != "" {
		return requestToken
	}
	return s.token
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("panic recovered", zap.Any("panic", rec))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
