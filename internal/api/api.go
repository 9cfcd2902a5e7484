// Package api serves projects, exports and the element library over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gogpu/studio/document"
	"github.com/gogpu/studio/export"
	"github.com/gogpu/studio/internal/config"
	"github.com/gogpu/studio/internal/logging"
	"github.com/gogpu/studio/render"
	"github.com/gogpu/studio/store"
)

// MaxBodySize bounds request bodies.
const MaxBodySize = 32 << 20

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	store    *store.Store
	cfg      *config.Config
	renderer *render.Renderer
}

// New creates a Server. A nil cfg uses config.Default and a nil renderer
// uses render.Default.
func New(st *store.Store, cfg *config.Config, r *render.Renderer) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if r == nil {
		r = render.Default()
	}
	return &Server{store: st, cfg: cfg, renderer: r}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLog)

	r.Get("/health", s.handleHealth)

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", s.handleListProjects)
		r.Post("/", s.handleCreateProject)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetProject)
			r.Put("/", s.handleUpdateProject)
			r.Delete("/", s.handleDeleteProject)
			r.Get("/thumbnail", s.handleThumbnail)
			r.Post("/export", s.handleExport)
			r.Post("/batch", s.handleBatch)
		})
	})

	r.Route("/library", func(r chi.Router) {
		r.Get("/", s.handleListLibrary)
		r.Post("/", s.handleAddLibrary)
		r.Get("/{id}", s.handleGetLibrary)
		r.Delete("/{id}", s.handleDeleteLibrary)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLog logs every request through the shared slog logger.
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Logger().Debug("api: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errorStatus(err)
	if code == http.StatusInternalServerError {
		logging.Logger().Warn("api: internal error", "err", err)
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// badRequest marks an error as the client's fault.
type badRequest struct{ error }

func (e badRequest) Unwrap() error { return e.error }

func errorStatus(err error) int {
	var ve *document.ValidationError
	var se *document.SerializationError
	var br badRequest
	var mbe *http.MaxBytesError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &ve), errors.As(err, &se), errors.As(err, &br),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, export.ErrBadQuality),
		errors.Is(err, export.ErrNoRatios),
		errors.Is(err, export.ErrBadRatio),
		errors.Is(err, render.ErrBadScale),
		errors.Is(err, render.ErrEmptyRegion),
		errors.Is(err, render.ErrTooLarge):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
