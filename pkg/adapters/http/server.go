package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/tinct"
	"github.com/aretw0/tinct/pkg/ports"
	"github.com/aretw0/tinct/pkg/template"
)

// Engine is the subset of *tinct.Engine the server needs.
type Engine interface {
	Render(ctx context.Context, name string, data any, opts ...tinct.RenderOption) (string, error)
	RenderString(ctx context.Context, src string, data any, opts ...tinct.RenderOption) (string, error)
	List(ctx context.Context) ([]string, error)
	Watch(ctx context.Context) (<-chan struct{}, error)
}

var _ Engine = (*tinct.Engine)(nil)

// Server exposes an Engine over HTTP.
type Server struct {
	Engine   Engine
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics serves the gatherer's metrics on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// RenderRequest is the body of POST /render. Template holds the source text.
type RenderRequest struct {
	Template string            `json:"template"`
	Data     any               `json:"data,omitempty"`
	Formats  map[string]string `json:"formats,omitempty"`
}

// RenderNamedRequest is the body of POST /templates/{name}/render.
type RenderNamedRequest struct {
	Data    any               `json:"data,omitempty"`
	Formats map[string]string `json:"formats,omitempty"`
}

// RenderResponse carries the rendered output.
type RenderResponse struct {
	Output string `json:"output"`
}

// ErrorResponse is written for every failed request. Line and Column are set
// for parse errors only.
type ErrorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	Line   *int   `json:"line,omitempty"`
	Column *int   `json:"column,omitempty"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{Engine: engine, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/templates", s.ListTemplates)
	r.Post("/render", s.Render)
	r.Post("/templates/{name}/render", s.RenderNamed)
	r.Post("/render/*", s.RenderNamed)
	r.Get("/events", s.SubscribeEvents)

	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "tinct-http",
		"version": strings.TrimSpace(tinct.Version),
	})
}

// ListTemplates handles the GET /templates request.
func (s *Server) ListTemplates(w http.ResponseWriter, r *http.Request) {
	names, err := s.Engine.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"templates": names})
}

// Render handles the POST /render request.
func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	var body RenderRequest
	if !s.decode(w, r, &body) {
		return
	}
	out, err := s.Engine.RenderString(r.Context(), body.Template, body.Data, overrides(body.Formats)...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, RenderResponse{Output: out})
}

// RenderNamed handles POST /templates/{name}/render and POST /render/{name...}.
// Nested names ("sub/a") use the second form or an escaped segment ("sub%2Fa").
func (s *Server) RenderNamed(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "name")
	if raw == "" {
		raw = chi.URLParam(r, "*")
	}
	name, err := url.PathUnescape(raw)
	if err != nil || name == "" {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid template name %q", raw)})
		return
	}
	var body RenderNamedRequest
	if !s.decode(w, r, &body) {
		return
	}
	out, err := s.Engine.Render(r.Context(), name, body.Data, overrides(body.Formats)...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, RenderResponse{Output: out})
}

// SubscribeEvents handles the GET /events request (SSE). A "reload" event is
// sent whenever the template source changes.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	events, err := s.Engine.Watch(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Watch error: %v", err), http.StatusNotImplemented)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: reload\ndata: templates changed\n\n")
			flusher.Flush()
		}
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := errorResponse(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("Request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func errorResponse(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Error: err.Error()}

	var perr *template.ParseError
	var rerr *template.RenderError
	var cerr *template.ConvertError
	switch {
	case errors.Is(err, ports.ErrTemplateNotFound):
		return http.StatusNotFound, resp
	case errors.As(err, &perr):
		resp.Kind = perr.Kind.String()
		resp.Line = &perr.Line
		resp.Column = &perr.Column
		return http.StatusUnprocessableEntity, resp
	case errors.As(err, &rerr):
		resp.Kind = rerr.Kind.String()
		return http.StatusUnprocessableEntity, resp
	case errors.As(err, &cerr):
		return http.StatusBadRequest, resp
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, resp
	}
	return http.StatusInternalServerError, resp
}

func overrides(formats map[string]string) []tinct.RenderOption {
	opts := make([]tinct.RenderOption, 0, len(formats))
	for typeName, format := range formats {
		opts = append(opts, tinct.Override(typeName, format))
	}
	return opts
}
