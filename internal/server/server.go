// Package server exposes a pipeline session over HTTP.
//
// Routes:
//
//	GET  /healthz            liveness and asset status
//	POST /generate           JSON options in, image out (?format=dataurl for JSON)
//	GET  /history?limit=n    recent generations, newest first
//
// Errors are JSON objects {"code": ..., "message": ...}. Request problems map
// to 400, a worker that is still loading or failed to load to 503, anything
// else to 500.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stickerwall/pkg/errors"
	"github.com/matzehuels/stickerwall/pkg/history"
	"github.com/matzehuels/stickerwall/pkg/pipeline"
)

// maxBodyBytes bounds a /generate request body.
const maxBodyBytes = 1 << 20

// Generator produces wallpapers. *pipeline.Session satisfies it.
type Generator interface {
	Generate(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)
	Status() (ready bool, images int, err error)
}

// Option configures a Server.
type Option func(*Server)

// WithHistory serves /history from store.
func WithHistory(store history.Store) Option { return func(s *Server) { s.history = store } }

// WithDefaults sets the options a request body is merged onto.
func WithDefaults(opts pipeline.Options) Option { return func(s *Server) { s.defaults = opts } }

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// Server is an http.Handler over a Generator.
type Server struct {
	gen      Generator
	history  history.Store
	defaults pipeline.Options
	logger   *log.Logger
	router   chi.Router
}

var _ http.Handler = (*Server)(nil)

// New returns a server for gen.
func New(gen Generator, opts ...Option) *Server {
	s := &Server{gen: gen}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/generate", s.handleGenerate)
	r.Get("/history", s.handleHistory)
	return r
}

// =============================================================================
// Handlers
// =============================================================================

type healthResponse struct {
	Status string `json:"status"`
	Ready  bool   `json:"ready"`
	Images int    `json:"images"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ready, images, err := s.gen.Status()
	resp := healthResponse{Status: "ok", Ready: ready, Images: images}
	if err != nil {
		resp.Error = errors.UserMessage(err)
	}
	writeJSON(w, http.StatusOK, resp)
}

type dataURLResponse struct {
	ID         string `json:"id"`
	DataURL    string `json:"data_url"`
	Seed       uint64 `json:"seed"`
	Placements int    `json:"placements"`
	Cached     bool   `json:"cached"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && err != io.EOF {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	opts := req.WithDefaults(s.defaults)

	res, err := s.gen.Generate(r.Context(), opts)
	if err != nil {
		s.logger.Warn("generate failed", "request_id", middleware.GetReqID(r.Context()), "err", err)
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "dataurl" {
		writeJSON(w, http.StatusOK, dataURLResponse{
			ID:         res.ID,
			DataURL:    res.Artifact.DataURL,
			Seed:       res.Seed,
			Placements: len(res.Placements),
			Cached:     res.CacheInfo.Hit,
		})
		return
	}

	h := w.Header()
	h.Set("Content-Type", res.Artifact.MIME)
	h.Set("Content-Length", strconv.Itoa(len(res.Artifact.Blob)))
	h.Set("X-Request-ID", res.ID)
	h.Set("X-Placements", strconv.Itoa(len(res.Placements)))
	h.Set("X-Seed", strconv.FormatUint(res.Seed, 10))
	h.Set("X-Cache", cacheStatus(res.CacheInfo))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifact.Blob)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := history.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "limit must be a positive integer (got %q)", v))
			return
		}
		limit = n
	}

	records := []history.Record{}
	if s.history != nil {
		got, err := s.history.Recent(r.Context(), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		records = append(records, got...)
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

// =============================================================================
// Middleware
// =============================================================================

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch {
	case errors.IsClientError(code):
		return http.StatusBadRequest
	case code == errors.ErrCodeSurfaceNotReady, code == errors.ErrCodeAssetLoad:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func cacheStatus(c pipeline.CacheInfo) string {
	switch {
	case c.Hit:
		return "HIT"
	case c.Key == "":
		return "BYPASS"
	}
	return "MISS"
}
