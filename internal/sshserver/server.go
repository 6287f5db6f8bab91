// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"

	"github.com/zensh/zensh/internal/testutil"
	"github.com/zensh/zensh/pkg/shell"
)

type (
	// Server serves shell sessions over SSH.
	Server struct {
		cfg      Config
		registry *shell.Registry
		session  shell.Options
		clock    testutil.Clock
		logger   *log.Logger

		mu       sync.Mutex
		state    State
		lastErr  error
		srv      *ssh.Server
		listener net.Listener
		addr     string
		done     chan struct{}
		errCh    chan error
		wg       sync.WaitGroup

		tokenMu sync.RWMutex
		tokens  map[TokenValue]*Token
	}

	// Option customizes a Server.
	Option func(*Server)
)

// WithClock sets the clock used for token expiry and prompts.
func WithClock(clock testutil.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithLogger sets the logger used for lifecycle and session events.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New creates a server over reg. The session options are a template for
// every session's evaluator: streams and the line source are filled in per
// session, everything else is shared. Call Start to accept connections.
func New(cfg Config, reg *shell.Registry, session shell.Options, opts ...Option) *Server {
	d := DefaultConfig()
	if cfg.Host == "" {
		cfg.Host = d.Host
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = d.TokenTTL
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = d.ShutdownTimeout
	}
	if cfg.StartupTimeout == 0 {
		cfg.StartupTimeout = d.StartupTimeout
	}

	s := &Server{
		cfg:      cfg,
		registry: reg,
		session:  session,
		clock:    testutil.RealClock{},
		logger:   log.Default(),
		done:     make(chan struct{}),
		errCh:    make(chan error, 1),
		tokens:   make(map[TokenValue]*Token),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithPrefix("ssh")
	return s
}

// Start opens the listener and begins serving in the background. It
// returns once connections are accepted or startup failed.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateCreated {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w (state: %s)", ErrAlreadyStarted, state)
	}
	if err := ctx.Err(); err != nil {
		s.state = StateFailed
		s.lastErr = err
		s.mu.Unlock()
		return err
	}
	if err := s.cfg.Validate(); err != nil {
		s.state = StateFailed
		s.lastErr = err
		s.mu.Unlock()
		return err
	}
	s.state = StateStarting
	s.mu.Unlock()

	startupCtx, cancel := context.WithTimeout(ctx, s.cfg.StartupTimeout)
	defer cancel()

	addr := net.JoinHostPort(s.cfg.Host.String(), strconv.Itoa(s.cfg.Port))
	var lc net.ListenConfig
	listener, err := lc.Listen(startupCtx, "tcp", addr)
	if err != nil {
		return s.fail(fmt.Errorf("failed to listen on %s: %w", addr, err))
	}

	options := []ssh.Option{
		wish.WithAddress(listener.Addr().String()),
		wish.WithPublicKeyAuth(s.publicKeyHandler),
		wish.WithPasswordAuth(s.passwordHandler),
		wish.WithMiddleware(
			s.sessionMiddleware(),
			s.loggingMiddleware(),
		),
	}
	if s.cfg.HostKeyPath != "" {
		options = append(options, wish.WithHostKeyPath(s.cfg.HostKeyPath))
	}
	srv, err := wish.NewServer(options...)
	if err != nil {
		_ = listener.Close()
		return s.fail(fmt.Errorf("failed to create SSH server: %w", err))
	}

	s.mu.Lock()
	s.srv = srv
	s.listener = listener
	s.addr = listener.Addr().String()
	s.state = StateRunning
	s.mu.Unlock()

	started := make(chan struct{})
	s.wg.Add(2)
	go s.serve(srv, listener, started)
	go s.cleanupExpiredTokens()

	select {
	case <-started:
	case <-startupCtx.Done():
		_ = s.Stop()
		return s.fail(fmt.Errorf("startup timeout: %w", startupCtx.Err()))
	}

	s.logger.Info("SSH server started", "address", s.addr)
	return nil
}

// Stop shuts the server down, waiting up to the shutdown timeout for open
// sessions before closing them. Calling it again, or on a server that never
// started, is a no-op.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return nil
	}
	s.state = StateStopping
	srv, listener := s.srv, s.listener
	s.mu.Unlock()

	close(s.done)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("sessions still open after shutdown timeout, closing them")
		err = srv.Close()
	}
	if errors.Is(err, ssh.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
		err = nil
	}
	// Serve may not have registered the listener with srv yet, in which
	// case Shutdown leaves Accept blocked.
	_ = listener.Close()
	s.wg.Wait()

	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()
	s.logger.Info("SSH server stopped")
	return err
}

// Err delivers a serve failure after Start succeeded.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the error that moved the server to StateFailed.
func (s *Server) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// IsRunning reports whether connections are being accepted.
func (s *Server) IsRunning() bool {
	return s.State() == StateRunning
}

// Address returns the bound host:port, or "" before a successful Start.
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Port returns the bound port, or 0 before a successful Start.
func (s *Server) Port() int {
	_, portStr, err := net.SplitHostPort(s.Address())
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0
	}
	return port
}

// Host returns the configured bind address.
func (s *Server) Host() HostAddress {
	return s.cfg.Host
}

func (s *Server) fail(err error) error {
	s.mu.Lock()
	s.state = StateFailed
	s.lastErr = err
	s.mu.Unlock()
	s.logger.Error("SSH server failed", "error", err)
	return err
}

func (s *Server) serve(srv *ssh.Server, listener net.Listener, started chan<- struct{}) {
	defer s.wg.Done()

	close(started)
	err := srv.Serve(listener)
	if err == nil || errors.Is(err, ssh.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
		return
	}
	err = fmt.Errorf("serve error: %w", err)
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	select {
	case s.errCh <- err:
	default:
	}
}
