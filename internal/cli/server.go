package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/session"
)

const (
	// sessionHeader carries the viewer session id in both directions.
	sessionHeader = "X-Kintree-Session"

	// sessionCookie is the browser equivalent of sessionHeader.
	sessionCookie = "kintree_session"
)

// server is the HTTP shell. Each viewer gets its own layout session; the
// dataset is shared and read-only.
type server struct {
	doc    *family.Document
	opts   pipeline.Options
	runner *pipeline.Runner
	store  session.Store
	ttl    time.Duration
	logger *log.Logger

	mu      sync.Mutex
	viewers map[string]*viewer
}

// viewer is one viewer's layout session. Requests of the same viewer are
// serialized by mu.
type viewer struct {
	mu   sync.Mutex
	meta *session.Session
	sess *pipeline.Session
}

func newServer(doc *family.Document, opts pipeline.Options, runner *pipeline.Runner, store session.Store, logger *log.Logger) *server {
	return &server{
		doc:     doc,
		opts:    opts,
		runner:  runner,
		store:   store,
		ttl:     session.DefaultTTL,
		logger:  logger,
		viewers: make(map[string]*viewer),
	}
}

// routes builds the router.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.hooksMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/layout", s.withViewer(s.handleLayout))
		r.Get("/layout.svg", s.withViewer(s.handleLayoutSVG))
		r.Post("/toggle/{id}", s.withViewer(s.handleToggle))
		r.Post("/focus/{id}", s.withViewer(s.handleFocus))
		r.Post("/expand-all", s.withViewer(s.handleExpandAll))
		r.Post("/collapse-all", s.withViewer(s.handleCollapseAll))
		r.Post("/reset", s.withViewer(s.handleReset))
		r.Get("/people/{id}", s.withViewer(s.handlePerson))
		r.Get("/search", s.withViewer(s.handleSearch))
		r.Get("/diagnostics", s.withViewer(s.handleDiagnostics))
	})
	return r
}

// =============================================================================
// Middleware
// =============================================================================

// hooksMiddleware reports each request to the HTTP hooks and logs it.
func (s *server) hooksMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, rw.status, elapsed)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", elapsed.Round(time.Millisecond))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type viewerHandler func(w http.ResponseWriter, r *http.Request, v *viewer)

// withViewer resolves the viewer session of the request, creating one when
// the request carries no id or an unknown one, and holds its lock for the
// duration of the handler.
func (s *server) withViewer(h viewerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := s.viewer(r.Context(), sessionID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set(sessionHeader, v.meta.ID)
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    v.meta.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		v.mu.Lock()
		defer v.mu.Unlock()
		h(w, r, v)

		v.meta.View = v.sess.Snapshot()
		v.meta.Touch(s.ttl)
		if err := s.store.Set(r.Context(), v.meta); err != nil {
			s.logger.Warn("cannot store session", "id", v.meta.ID, "error", err)
		}
	}
}

func sessionID(r *http.Request) string {
	if id := r.Header.Get(sessionHeader); id != "" {
		return id
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// viewer returns the live session for id, or a new one.
func (s *server) viewer(ctx context.Context, id string) (*viewer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" && session.ValidateID(id) == nil {
		if v, ok := s.viewers[id]; ok {
			return v, nil
		}
	}

	sess, err := pipeline.Load(ctx, s.doc, s.opts)
	if err != nil {
		return nil, err
	}
	v := &viewer{meta: session.New(sess.DatasetHash(), s.ttl), sess: sess}
	v.meta.View = sess.Snapshot()
	if err := s.store.Set(ctx, v.meta); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "store session")
	}
	s.viewers[v.meta.ID] = v
	s.logger.Debug("new viewer", "id", v.meta.ID, "viewers", len(s.viewers))
	return v, nil
}

// cleanup drops expired sessions from the store and forgets their viewers.
func (s *server) cleanup(ctx context.Context) {
	if err := s.store.Cleanup(ctx); err != nil {
		s.logger.Warn("session cleanup failed", "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.viewers {
		if sess, err := s.store.Get(ctx, id); err == nil && sess == nil {
			delete(s.viewers, id)
		}
	}
}

// cleanupLoop runs cleanup every interval until ctx is done.
func (s *server) cleanupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup(ctx)
		}
	}
}

// =============================================================================
// Handlers
// =============================================================================

// GET /api/layout
func (s *server) handleLayout(w http.ResponseWriter, r *http.Request, v *viewer) {
	writeJSON(w, http.StatusOK, s.layout(r.Context(), v))
}

// GET /api/layout.svg
func (s *server) handleLayoutSVG(w http.ResponseWriter, r *http.Request, v *viewer) {
	result, err := s.runner.ExecuteSession(r.Context(), v.sess, pipeline.RenderOptions{
		Formats:  []string{pipeline.FormatSVG},
		Detailed: r.URL.Query().Get("detailed") == "true",
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(result.Artifacts[pipeline.FormatSVG])
}

// POST /api/toggle/{id}
func (s *server) handleToggle(w http.ResponseWriter, r *http.Request, v *viewer) {
	expanded, err := v.sess.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"expanded": expanded,
		"layout":   s.layout(r.Context(), v),
	})
}

// POST /api/focus/{id}
func (s *server) handleFocus(w http.ResponseWriter, r *http.Request, v *viewer) {
	opened, err := v.sess.Focus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if opened == nil {
		opened = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"opened": opened,
		"layout": s.layout(r.Context(), v),
	})
}

// POST /api/expand-all
func (s *server) handleExpandAll(w http.ResponseWriter, r *http.Request, v *viewer) {
	v.sess.ExpandAll(r.Context())
	writeJSON(w, http.StatusOK, s.layout(r.Context(), v))
}

// POST /api/collapse-all
func (s *server) handleCollapseAll(w http.ResponseWriter, r *http.Request, v *viewer) {
	v.sess.CollapseAll(r.Context())
	writeJSON(w, http.StatusOK, s.layout(r.Context(), v))
}

// POST /api/reset
func (s *server) handleReset(w http.ResponseWriter, r *http.Request, v *viewer) {
	v.sess.ResetView()
	v.sess.ClearFocus()
	writeJSON(w, http.StatusOK, s.layout(r.Context(), v))
}

// GET /api/people/{id}
func (s *server) handlePerson(w http.ResponseWriter, r *http.Request, v *viewer) {
	d, err := v.sess.Details(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// GET /api/search?q=
func (s *server) handleSearch(w http.ResponseWriter, r *http.Request, v *viewer) {
	matches, err := v.sess.Search(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]pipeline.Relative, 0, len(matches))
	for _, p := range matches {
		out = append(out, pipeline.Relative{ID: p.ID, Name: p.DisplayName(), Years: p.Years()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"people": out})
}

// GET /api/diagnostics
func (s *server) handleDiagnostics(w http.ResponseWriter, r *http.Request, v *viewer) {
	diags := v.sess.Diagnostics()
	if diags == nil {
		diags = []family.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"diagnostics": diags})
}

func (s *server) layout(ctx context.Context, v *viewer) render.Layout {
	l, _ := s.runner.SessionLayout(ctx, v.sess)
	return l
}

// =============================================================================
// Responses
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps error codes to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeUnsupported, errors.ErrCodeDuplicateID:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeUnknownNode, errors.ErrCodeSessionNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeNotExpandable:
		status = http.StatusConflict
	}
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(code),
	})
}
