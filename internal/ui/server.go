// Package ui serves the grid as a web page. Every browser session gets its
// own view state over one shared record source, kept in sync over SSE.
package ui

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	gridFeature "github.com/leapstack-labs/gridview/internal/ui/features/grid"
	"github.com/leapstack-labs/gridview/internal/ui/metrics"
	"github.com/leapstack-labs/gridview/internal/ui/notifier"
	"github.com/leapstack-labs/gridview/internal/ui/router"
	"github.com/leapstack-labs/gridview/pkg/grid"
	"golang.org/x/sync/errgroup"
)

// sweepInterval is how often idle sessions are looked for.
const sweepInterval = time.Minute

// Server is the main UI server.
type Server struct {
	source       grid.RecordSource
	sessionStore *sessions.CookieStore
	registry     *gridFeature.Registry
	notifier     *notifier.Notifier
	metrics      *metrics.Metrics
	port         int
	watch        func(ctx context.Context) error
	sessionTTL   time.Duration
	logger       *slog.Logger
	isDev        bool
}

// Config holds configuration for the UI server.
type Config struct {
	// Source is shared by every session. It should already be loaded.
	Source  grid.RecordSource
	Columns []grid.Column
	Options []grid.Option
	// Watch, when set, runs for the server's lifetime and reloads Source
	// on change.
	Watch         func(ctx context.Context) error
	Port          int
	SessionSecret string
	SessionTTL    time.Duration
	Metrics       bool
	Logger        *slog.Logger
	IsDev         bool
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		logger.Warn("no session secret configured, sessions will not survive a restart")
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
	}
	sessionStore := sessions.NewCookieStore(secret)
	sessionStore.MaxAge(86400) // 1 day
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = gridFeature.DefaultSessionTTL
	}

	s := &Server{
		source:       cfg.Source,
		sessionStore: sessionStore,
		notifier:     notifier.New(),
		port:         cfg.Port,
		watch:        cfg.Watch,
		sessionTTL:   ttl,
		logger:       logger,
		isDev:        cfg.IsDev,
	}
	if cfg.Metrics {
		s.metrics = metrics.New()
	}

	columns, opts := cfg.Columns, cfg.Options
	s.registry = gridFeature.NewRegistry(func() *grid.Grid {
		g := grid.New(columns, opts...)
		g.Attach(s.source)
		return g
	}, s.notifier.Publish)
	s.registry.OnCount(s.metrics.SetSessions)

	return s
}

// Handler returns the UI's HTTP handler.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
	)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	if s.isDev {
		r.Use(middleware.Logger)
	}

	if err := router.SetupRoutes(r, s.registry, s.source, s.sessionStore, s.notifier, s.metrics, s.logger, s.isDev); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	unsubscribe := s.source.Subscribe(s.observeSource)
	defer unsubscribe()

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch != nil {
		eg.Go(func() error {
			if err := s.watch(egctx); err != nil && !errors.Is(err, context.Canceled) {
				// Serving continues without reloads.
				s.logger.Error("stopped watching source", "error", err)
			}
			return nil
		})
	}

	eg.Go(func() error {
		return s.registry.Run(egctx, s.sessionTTL, sweepInterval)
	})

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// observeSource logs and counts source loads.
func (s *Server) observeSource(ev grid.SourceEvent) {
	switch ev.Kind {
	case grid.SourceSync:
		s.metrics.Fetch("ok")
		s.logger.Debug("source loaded", "records", len(ev.Records), "sessions", s.registry.Len())
	case grid.SourceError:
		s.metrics.Fetch("error")
		s.logger.Warn("source load failed", "error", ev.Err)
	case grid.SourceWriteError:
		s.logger.Warn("source write failed", "error", ev.Err)
	}
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}
