// Package server exposes the package index and the estimation pipeline
// over HTTP.
//
// The index is loaded once by the caller and shared read-only by every
// request; resolutions are computed per request.
//
// # Routes
//
//	GET  /healthz           index statistics and build version
//	GET  /profiles          configured profiles
//	GET  /profiles/{name}   one profile
//	GET  /packages/{name}   record or providers of a package name
//	POST /resolve           {"packages": [...]} -> install closure
//	POST /estimate          {"profiles": [...]} -> report rows
//
// Errors are JSON objects carrying the pkg/errors code:
//
//	{"error": {"code": "PROFILE_NOT_FOUND", "message": "..."}, "request_id": "..."}
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stacksize/pkg/apt"
	"github.com/matzehuels/stacksize/pkg/artifact"
	"github.com/matzehuels/stacksize/pkg/errors"
	"github.com/matzehuels/stacksize/pkg/pipeline"
	"github.com/matzehuels/stacksize/pkg/profile"
	"github.com/matzehuels/stacksize/pkg/source"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Config wires a Server to an already loaded index.
type Config struct {
	Index  *apt.Index
	Stats  pipeline.Stats
	Source source.Source

	Profiles  []profile.Profile   // default: profile.Defaults()
	Artifacts artifact.SizeSource // default: artifact.DefaultStatic()
	Runner    *pipeline.Runner    // default: uncached runner
	Strict    bool

	Logger *log.Logger

	// RequestTimeout bounds each request (default 30s).
	RequestTimeout time.Duration
}

// Server serves the HTTP API.
type Server struct {
	cfg    Config
	router chi.Router
}

// New validates cfg and builds the router.
func New(cfg Config) (*Server, error) {
	if cfg.Index == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "server needs a loaded package index")
	}
	if cfg.Source == nil {
		return nil, errors.New(errors.ErrCodeInvalidSource, "server needs the index source")
	}
	if len(cfg.Profiles) == 0 {
		cfg.Profiles = profile.Defaults()
	}
	if cfg.Artifacts == nil {
		cfg.Artifacts = artifact.DefaultStatic()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	s := &Server{cfg: cfg}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", s.handleProfiles)
		r.Get("/{name}", s.handleProfile)
	})
	r.Get("/packages/{name}", s.handlePackage)
	r.Post("/resolve", s.handleResolve)
	r.Post("/estimate", s.handleEstimate)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{
			Error:     errorDetail{Code: errors.ErrCodeUnsupported, Message: r.Method + " not allowed on " + r.URL.Path},
			RequestID: RequestIDFrom(r.Context()),
		})
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", addr, "packages", s.cfg.Index.Len())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
