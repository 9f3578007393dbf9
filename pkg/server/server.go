// Package server is the logdeck data service: a small REST API over an
// ingested SQLite database plus an optional static page that browses it.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/eapache/go-resiliency/retrier"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/logdeck/logdeck/pkg/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// Listen is the host:port the HTTP server binds to.
	Listen string
	// Database is the path of the SQLite file to serve.
	Database string
	// WebDir optionally serves static files at the site root.
	WebDir string
	// OpenBrowser launches the system browser once the service answers.
	OpenBrowser bool
}

type Server struct {
	opts  Options
	store *Store
}

func New(opts Options) (*Server, error) {
	store, err := OpenStore(opts.Database)
	if err != nil {
		return nil, err
	}
	return &Server{opts: opts, store: store}, nil
}

func (s *Server) Close() error {
	return s.store.Close()
}

// Router builds the HTTP routes. Exposed separately so tests can drive the
// handlers without a listening socket.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/api/logs", s.handleLogs)
	r.Get("/api/tables/{logID}", s.handleTables)
	r.Get("/api/data/{tableName}", s.handleData)
	r.Get("/api/export/{tableName}", s.handleExport)

	if s.opts.WebDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.opts.WebDir)))
	}
	return r
}

// Serve runs the HTTP server until ctx is canceled, then shuts down
// gracefully with a bounded drain.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("listen", s.opts.Listen).Str("database", s.opts.Database).Msg("serving")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "http server failed")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown failed")
	})
	if s.opts.OpenBrowser {
		g.Go(func() error {
			s.openWhenReady(ctx)
			return nil
		})
	}
	return g.Wait()
}

// openWhenReady probes the log list endpoint until the server answers,
// then opens the browser at the site root. Never fails the server.
func (s *Server) openWhenReady(ctx context.Context) {
	base := "http://" + s.opts.Listen
	if strings.HasPrefix(s.opts.Listen, ":") {
		base = "http://127.0.0.1" + s.opts.Listen
	}
	probe := base + "/api/logs"

	client := &http.Client{Timeout: time.Second}
	r := retrier.New(retrier.ConstantBackoff(20, 250*time.Millisecond), nil)
	err := r.RunCtx(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, probe, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		return resp.Body.Close()
	})
	if err != nil {
		log.Warn().Err(err).Str("url", probe).Msg("service not reachable, skipping browser launch")
		return
	}

	if err := utils.OpenBrowser(base); err != nil {
		log.Warn().Err(err).Msg("can't open browser")
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
