// Package preview runs a local HTTP server for iterating on layout configs:
// it renders the current stylesheet, exposes the detected areas and the
// reconciled section list, and accepts simulated state snapshots.
package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tbuckley/gridkit/internal/config"
	"github.com/tbuckley/gridkit/internal/gridarea"
	"github.com/tbuckley/gridkit/internal/logger"
	"github.com/tbuckley/gridkit/internal/template"
	"github.com/tbuckley/gridkit/internal/view"
)

// Server serves one configuration document for interactive preview. The
// snapshot is mutable via POST /state; the document is fixed at construction.
type Server struct {
	doc    *config.Document
	log    *logger.Logger
	router chi.Router

	mu   sync.RWMutex
	snap template.Snapshot
}

// NewServer builds a preview server for the given document.
func NewServer(doc *config.Document, log *logger.Logger) *Server {
	s := &Server{
		doc:  doc,
		log:  log.WithComponent("preview"),
		snap: template.Snapshot{},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleIndex)
	r.Get("/css", s.handleCSS)
	r.Get("/areas", s.handleAreas)
	r.Get("/sections", s.handleSections)
	r.Post("/state", s.handleState)
	s.router = r

	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks until the context is canceled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.WithFields(map[string]any{"addr": addr}).Info("preview server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// selectedView resolves the ?view= query parameter, defaulting to 0.
func (s *Server) selectedView(r *http.Request) (*config.View, error) {
	index := 0
	if raw := r.URL.Query().Get("view"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &index); err != nil {
			return nil, fmt.Errorf("invalid view index %q", raw)
		}
	}
	if index < 0 || index >= len(s.doc.Views) {
		return nil, fmt.Errorf("view index %d out of range", index)
	}
	return &s.doc.Views[index], nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>gridkit preview</title>
<link rel="stylesheet" href="/css">
</head>
<body>
<div id="root"></div>
</body>
</html>
`)
}

func (s *Server) handleCSS(w http.ResponseWriter, r *http.Request) {
	v, err := s.selectedView(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()

	sections := v.Sections
	if v.Layout != nil {
		areas := gridarea.DetectAllAreas(v.Layout.TemplateAreas)
		sections = gridarea.EnsureSections(areas, sections)
	}

	css := view.BuildStylesheet(v.Layout, sections, template.NewEvaluator(), snap)

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	fmt.Fprint(w, css)
}

func (s *Server) handleAreas(w http.ResponseWriter, r *http.Request) {
	v, err := s.selectedView(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var areas []string
	if v.Layout != nil {
		areas = gridarea.DetectAllAreas(v.Layout.TemplateAreas)
	}
	if areas == nil {
		areas = []string{}
	}
	s.writeJSON(w, map[string]any{"areas": areas})
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	v, err := s.selectedView(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sections := v.Sections
	if v.Layout != nil {
		areas := gridarea.DetectAllAreas(v.Layout.TemplateAreas)
		sections = gridarea.EnsureSections(areas, sections)
	}
	if sections == nil {
		sections = []config.Section{}
	}
	s.writeJSON(w, map[string]any{"sections": sections})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var snap template.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		http.Error(w, fmt.Sprintf("invalid state snapshot: %v", err), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.log.WithFields(map[string]any{"entities": len(snap)}).Debug("state snapshot replaced")
	s.writeJSON(w, map[string]any{"entities": len(snap)})
}

func (s *Server) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error(err, "failed to encode response")
	}
}
