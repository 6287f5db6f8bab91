// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/charmbracelet/ssh"
)

const tokenCleanupInterval = 5 * time.Minute

type contextKey string

const tokenContextKey contextKey = "token"

// GenerateToken issues a token valid for the configured TTL. The label
// identifies who the token was issued to and shows up in session logs.
func (s *Server) GenerateToken(label string) (*Token, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := s.clock.Now()
	token := &Token{
		Value:     TokenValue(hex.EncodeToString(raw)),
		Label:     label,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
	}

	s.tokenMu.Lock()
	s.tokens[token.Value] = token
	s.tokenMu.Unlock()

	s.logger.Debug("generated token", "label", label, "expires", token.ExpiresAt)
	return token, nil
}

// ValidateToken returns the token when it exists and has not expired.
// Expired tokens are revoked on sight.
func (s *Server) ValidateToken(value TokenValue) (*Token, bool) {
	if value.Validate() != nil {
		return nil, false
	}

	s.tokenMu.RLock()
	token, exists := s.tokens[value]
	s.tokenMu.RUnlock()
	if !exists {
		return nil, false
	}

	if s.clock.Now().After(token.ExpiresAt) {
		s.RevokeToken(value)
		return nil, false
	}
	return token, true
}

// RevokeToken invalidates a token.
func (s *Server) RevokeToken(value TokenValue) {
	s.tokenMu.Lock()
	delete(s.tokens, value)
	s.tokenMu.Unlock()
}

// RevokeTokensFor invalidates every token issued under label.
func (s *Server) RevokeTokensFor(label string) {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()

	for value, token := range s.tokens {
		if token.Label == label {
			delete(s.tokens, value)
		}
	}
}

// ConnectionInfo issues a token for label and returns what a client needs
// to connect. The server must be running.
func (s *Server) ConnectionInfo(label string) (*ConnectionInfo, error) {
	if state := s.State(); state != StateRunning {
		return nil, fmt.Errorf("%w (state: %s)", ErrNotRunning, state)
	}

	token, err := s.GenerateToken(label)
	if err != nil {
		return nil, err
	}
	return &ConnectionInfo{
		Host:     s.cfg.Host,
		Port:     s.Port(),
		User:     DefaultUser,
		Token:    token.Value,
		ExpireAt: token.ExpiresAt,
	}, nil
}

func (s *Server) cleanupExpiredTokens() {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C():
			if pruned := s.pruneExpiredTokens(); pruned > 0 {
				s.logger.Debug("pruned expired tokens", "count", pruned)
			}
		}
	}
}

func (s *Server) pruneExpiredTokens() int {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()

	now := s.clock.Now()
	pruned := 0
	for value, token := range s.tokens {
		if now.After(token.ExpiresAt) {
			delete(s.tokens, value)
			pruned++
		}
	}
	return pruned
}

func (s *Server) passwordHandler(ctx ssh.Context, password string) bool {
	token, valid := s.ValidateToken(TokenValue(password))
	if !valid {
		s.logger.Warn("invalid token authentication attempt", "user", ctx.User(), "remote", ctx.RemoteAddr())
		return false
	}

	ctx.SetValue(tokenContextKey, token)
	s.logger.Debug("token authentication successful", "label", token.Label)
	return true
}

// publicKeyHandler rejects every key; only tokens authenticate.
func (s *Server) publicKeyHandler(ssh.Context, ssh.PublicKey) bool {
	return false
}
