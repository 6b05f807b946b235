// Package devserver is a self-contained implementation of the publications API
// for local development and end-to-end tests.
package devserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tesso57/pubdesk/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// Options configure request logging.
type Options struct {
	// LogWriter receives one line per request. Nil disables request logs.
	LogWriter io.Writer
	LogJSON   bool
}

// Server serves the publications API from a Store.
type Server struct {
	store  *Store
	router chi.Router
	log    zerolog.Logger
}

// New builds the router around store.
func New(store *Store, opts Options) *Server {
	s := &Server{store: store, log: logging.NewLogger("devserver")}

	r := chi.NewRouter()
	if opts.LogWriter != nil {
		httpLogger := httplog.NewLogger("pubdesk", httplog.Options{
			Writer:  opts.LogWriter,
			JSON:    opts.LogJSON,
			Concise: !opts.LogJSON,
		})
		r.Use(httplog.RequestLogger(httpLogger))
	}
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)

		r.Get("/public", s.handleListPublic)
		r.Get("/public/{id}", s.handleGetPublic)

		r.Route("/publications", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/", s.handleList)
			r.Post("/", s.handleCreate)
			r.Post("/bulk-delete", s.handleBulk(true))
			r.Post("/bulk-undo", s.handleBulk(false))
			r.Delete("/undo/{id}", s.handleDelete(false))
			r.Get("/{id}", s.handleGet)
			r.Put("/{id}", s.handleUpdate)
			r.Delete("/{id}", s.handleDelete(true))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("address", addr).Msg("server starting")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info().Msg("server stopped")
	return nil
}
