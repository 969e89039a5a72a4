// Package server runs the accept loop and the per-connection request
// cycle: buffer, parse, dispatch, respond, and keep or close.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/logger"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/middleware"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/network"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/router"
)

// Observer receives connection lifecycle events.
type Observer interface {
	ConnectionOpened()
	ConnectionClosed(reason string)
	ParseFailed(reason string)
}

type nopObserver struct{}

func (nopObserver) ConnectionOpened()       {}
func (nopObserver) ConnectionClosed(string) {}
func (nopObserver) ParseFailed(string)      {}

// Option configures a Server.
type Option func(*Server)

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(s *Server) { s.observer = o }
}

// WithChain sets the middleware chain run before routing.
func WithChain(c *middleware.Chain) Option {
	return func(s *Server) { s.chain = c }
}

// Server accepts connections and serves each on its own goroutine.
type Server struct {
	cfg      Config
	router   *router.Router
	chain    *middleware.Chain
	log      logger.Logger
	observer Observer

	listener *network.Listener
	ready    chan struct{}
	shutdown atomic.Bool

	mu    sync.Mutex
	conns map[*network.TCPConn]struct{}
	wg    sync.WaitGroup
}

// New returns a server dispatching to rt.
func New(cfg Config, rt *router.Router, log logger.Logger, opts ...Option) *Server {
	cfg.SetDefaults()
	s := &Server{
		cfg:      cfg,
		router:   rt,
		chain:    middleware.NewChain(),
		log:      log,
		observer: nopObserver{},
		listener: network.NewListener(cfg.Address),
		ready:    make(chan struct{}),
		conns:    make(map[*network.TCPConn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address once Ready is closed.
func (s *Server) Addr() string {
	return s.listener.Addr()
}

// ListenAndServe binds the listener and accepts until ctx is cancelled or
// Shutdown is called. It does not wait for open connections.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.listener.Listen(); err != nil {
		return err
	}
	close(s.ready)

	s.log.Info("HTTP server listening",
		logger.String("address", s.listener.Addr()),
		logger.Int("max_message_size", s.cfg.MaxMessageSize),
		logger.Bool("keep_alive", s.cfg.KeepAlive.Enabled),
	)
	for _, r := range s.router.Routes() {
		s.log.Debug("Route registered", logger.String("route", r))
	}

	stop := context.AfterFunc(ctx, func() { _ = s.listener.Close() })
	defer stop()

	// in-flight requests outlive the accept loop; Shutdown bounds them
	connCtx := context.WithoutCancel(ctx)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, network.ErrConnectionClosed) {
				return nil
			}
			s.log.Warn("Accept failed", logger.Error(err))
			continue
		}
		if !s.track(conn) {
			_ = conn.Close()
			continue
		}
		go func() {
			defer s.untrack(conn)
			s.ServeConn(connCtx, conn)
		}()
	}
}

func (s *Server) track(conn *network.TCPConn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown.Load() {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn *network.TCPConn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	s.wg.Done()
}

// Shutdown stops accepting, wakes idle connections and waits for
// in-flight requests. Connections still open when ctx ends are destroyed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdown.Store(true)
	for conn := range s.conns {
		conn.Interrupt()
	}
	s.mu.Unlock()

	if err := s.listener.Close(); err != nil {
		s.log.Warn("Closing listener failed", logger.Error(err))
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		for conn := range s.conns {
			_ = conn.Destroy()
		}
		s.mu.Unlock()
		return fmt.Errorf("shutdown: %w", ctx.Err())
	}
}

// ActiveConnections returns the number of open connections.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}
