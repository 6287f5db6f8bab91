// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/google/uuid"

	"github.com/zensh/zensh/internal/lineinput"
	"github.com/zensh/zensh/pkg/shell"
)

type sessionIDKey struct{}

// loggingMiddleware tags the session with an ID and logs its lifetime.
func (s *Server) loggingMiddleware() wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			id := uuid.NewString()
			sess.Context().SetValue(sessionIDKey{}, id)

			label := ""
			if token, ok := sess.Context().Value(tokenContextKey).(*Token); ok {
				label = token.Label
			}
			logger := s.logger.With("session", id)
			logger.Info("session opened", "user", sess.User(), "remote", sess.RemoteAddr(), "token", label)
			next(sess)
			logger.Info("session closed")
		}
	}
}

// sessionMiddleware runs the shell for the session and ends the chain.
func (s *Server) sessionMiddleware() wish.Middleware {
	return func(ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			code := s.runSession(sess)
			if err := sess.Exit(code); err != nil {
				s.logger.Debug("failed to send exit status", "error", err)
			}
		}
	}
}

func (s *Server) runSession(sess ssh.Session) int {
	ctx := sess.Context()
	var fields []any
	if id, ok := ctx.Value(sessionIDKey{}).(string); ok {
		fields = append(fields, "session", id)
	}
	logger := s.logger.With(fields...)

	opts := s.session
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	// A copy per session keeps loglevel from reaching the server logger.
	opts.Logger = opts.Logger.With(fields...)

	// The raw command keeps the client's quoting for the shell tokenizer.
	if command := sess.RawCommand(); strings.TrimSpace(command) != "" {
		opts.Stdout = sess
		opts.Stderr = sess.Stderr()
		eval := shell.NewEvaluator(s.registry, opts)
		return s.exitCode(logger, eval.Execute(ctx, command))
	}

	var lines shell.LineSource
	if ptyReq, windows, isPty := sess.Pty(); isPty {
		terminal := lineinput.NewTerminal(sess, lineinput.Options{Clock: s.clock, Complete: s.registry.Completions})
		_ = terminal.SetSize(ptyReq.Window.Width, ptyReq.Window.Height)
		go func() {
			for win := range windows {
				_ = terminal.SetSize(win.Width, win.Height)
			}
		}()
		opts.Stdout = terminal
		opts.Stderr = terminal
		lines = terminal
	} else {
		opts.Stdout = sess
		opts.Stderr = sess.Stderr()
		lines = lineinput.NewScanner(sess, nil, lineinput.Options{Clock: s.clock})
	}
	opts.Lines = lines

	eval := shell.NewEvaluator(s.registry, opts)
	return s.exitCode(logger, eval.Run(ctx, lines))
}

// exitCode maps the outcome of a session to the SSH exit status.
func (s *Server) exitCode(logger *log.Logger, err error) int {
	if err == nil {
		return 0
	}
	var exit *shell.ExitRequest
	if errors.As(err, &exit) {
		return exit.Code
	}
	var evalErr *shell.EvalError
	if !errors.As(err, &evalErr) {
		logger.Warn("session ended with error", "error", err)
	}
	return 1
}
