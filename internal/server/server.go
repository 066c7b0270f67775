// Package server serves the browser chat widget: an embedded page, a small
// JSON API over mounted conversations, and a websocket of controller events.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/pulse-chat/pulse/internal/constants"
)

// Options configure a Server.
type Options struct {
	// Addr is the host:port to listen on.
	Addr string

	// Controllers builds the controller for each mounted conversation.
	Controllers ControllerFactory

	Page Page

	// IdleTimeout unmounts unwatched conversations; zero disables it.
	IdleTimeout   time.Duration
	SweepInterval time.Duration

	Logger zerolog.Logger
}

// Server is the browser widget HTTP server.
type Server struct {
	opts       Options
	store      *Store
	page       []byte
	handler    http.Handler
	httpServer *http.Server
	logger     zerolog.Logger

	// turns tracks replies resolving in the background.
	turns conc.WaitGroup

	closing   chan struct{}
	closeOnce sync.Once
}

// New creates a Server. It does not listen until Serve or Run is called.
func New(opts Options) (*Server, error) {
	if opts.Controllers == nil {
		return nil, errors.New("server: controller factory is required")
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = constants.DefaultSweepInterval
	}

	page, err := renderPage(opts.Page)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger.With().Str("component", "server").Logger()
	s := &Server{
		opts:    opts,
		store:   NewStore(opts.Controllers, opts.Logger),
		page:    page,
		logger:  logger,
		closing: make(chan struct{}),
	}
	s.handler = s.routes()
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           h2c.NewHandler(s.handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLog(s.opts.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api/conversations", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDelete)

			r.Group(func(r chi.Router) {
				r.Use(s.withSession)
				r.Get("/", s.handleGet)
				r.Post("/messages", s.handleSubmit)
				r.Put("/input", s.handleInput)
				r.Delete("/error", s.handleDismiss)
				r.Get("/events", s.handleEvents)
			})
		})
	})

	return r
}

// Handler returns the router without the h2c wrapper.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Store returns the mounted conversations.
func (s *Server) Store() *Store {
	return s.store
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve runs the HTTP server and the idle sweeper on ln until ctx is done or
// the server fails, then shuts down within shutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Starting widget server")

	var (
		wg       conc.WaitGroup
		serveErr error
	)
	wg.Go(func() {
		s.store.RunSweeper(ctx, s.opts.IdleTimeout, s.opts.SweepInterval)
	})
	wg.Go(func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
			cancel()
		}
	})

	<-ctx.Done()

	stopCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	stopErr := s.Stop(stopCtx)
	wg.Wait()

	if serveErr != nil {
		return fmt.Errorf("widget server failed: %w", serveErr)
	}
	return stopErr
}

// Stop closes event sockets, stops accepting requests and waits for replies
// still resolving, all bounded by ctx.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping widget server")
	s.closeOnce.Do(func() { close(s.closing) })

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down widget server: %w", err)
	}

	settled := make(chan struct{})
	go func() {
		s.turns.Wait()
		close(settled)
	}()

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Shutdown timed out with replies still outstanding")
		return ctx.Err()
	}
}
