package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/tutorforge/internal/logger"
)

// maxRequestBody bounds convert request bodies.
const maxRequestBody = 10 << 20

// Server is the HTTP API.
type Server struct {
	ports  *Ports
	router *chi.Mux
}

// NewServer creates a server with every route registered.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{ports: ports, router: chi.NewRouter()}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
		r.Get("/knowledge", s.handleKnowledgeQuery)
		r.Post("/knowledge/index", s.handleKnowledgeIndex)
		r.Get("/styles", s.handleStyles)
	})
	if ports.ArtifactDir != "" {
		fs := http.StripPrefix("/artifacts/", http.FileServer(artifactFS{http.Dir(ports.ArtifactDir)}))
		s.router.Handle("/artifacts/*", fs)
	}

	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// requestLogger logs each request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond),
			middleware.GetReqID(r.Context()))
	})
}

// artifactFS hides dotfiles such as in-progress temp files.
type artifactFS struct {
	fs http.FileSystem
}

func (a artifactFS) Open(name string) (http.File, error) {
	for _, part := range splitPath(name) {
		if len(part) > 0 && part[0] == '.' {
			return nil, fs.ErrNotExist
		}
	}
	return a.fs.Open(name)
}
