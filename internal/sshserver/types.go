// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// StateCreated is the state of a server that was never started.
	StateCreated State = iota
	// StateStarting is the state while the listener is being opened.
	StateStarting
	// StateRunning is the state while connections are accepted.
	StateRunning
	// StateStopping is the state while Stop drains sessions.
	StateStopping
	// StateStopped is the terminal state after a clean Stop.
	StateStopped
	// StateFailed is the terminal state after a start or serve failure.
	StateFailed
)

// DefaultUser is the user name printed in connection info. Any user name is
// accepted as long as the token is valid.
const DefaultUser = "zensh"

var (
	// ErrInvalidHostAddress is the sentinel error wrapped by InvalidHostAddressError.
	ErrInvalidHostAddress = errors.New("invalid host address")
	// ErrInvalidTokenValue is the sentinel error wrapped by InvalidTokenValueError.
	ErrInvalidTokenValue = errors.New("invalid token value")
	// ErrInvalidSSHConfig is the sentinel error wrapped by InvalidSSHConfigError.
	ErrInvalidSSHConfig = errors.New("invalid SSH server config")
	// ErrNotRunning is returned by operations that need a running server.
	ErrNotRunning = errors.New("SSH server is not running")
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("SSH server already started")
)

type (
	// State is the lifecycle state of a Server.
	State int32

	// HostAddress is the address the server binds to.
	HostAddress string

	// TokenValue is an issued authentication token, used as the SSH password.
	TokenValue string

	// Config holds the server settings.
	Config struct {
		// Host is the bind address. Default 127.0.0.1.
		Host HostAddress
		// Port is the TCP port; 0 picks a free one.
		Port int
		// HostKeyPath is a PEM host key, generated on first use when missing.
		// Empty means an ephemeral key per process.
		HostKeyPath string
		// TokenTTL is how long an issued token stays valid.
		TokenTTL time.Duration
		// ShutdownTimeout bounds how long Stop waits for open sessions.
		ShutdownTimeout time.Duration
		// StartupTimeout bounds how long Start waits for the listener.
		StartupTimeout time.Duration
	}

	// Token is an issued credential.
	Token struct {
		Value     TokenValue
		Label     string
		CreatedAt time.Time
		ExpiresAt time.Time
	}

	// ConnectionInfo is what a client needs to open a session.
	ConnectionInfo struct {
		Host     HostAddress
		Port     int
		User     string
		Token    TokenValue
		ExpireAt time.Time
	}

	// InvalidHostAddressError is returned for an empty or blank host.
	InvalidHostAddressError struct {
		Value HostAddress
	}

	// InvalidTokenValueError is returned for an empty or blank token.
	InvalidTokenValueError struct {
		Value TokenValue
	}

	// InvalidSSHConfigError collects the field errors of a Config.
	InvalidSSHConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            2222,
		TokenTTL:        time.Hour,
		ShutdownTimeout: 10 * time.Second,
		StartupTimeout:  5 * time.Second,
	}
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if err := c.Host.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range", c.Port))
	}
	if c.TokenTTL < 0 {
		errs = append(errs, fmt.Errorf("token TTL %s is negative", c.TokenTTL))
	}
	if len(errs) > 0 {
		return &InvalidSSHConfigError{FieldErrors: errs}
	}
	return nil
}

// String returns the string representation of the HostAddress.
func (h HostAddress) String() string { return string(h) }

// Validate returns an InvalidHostAddressError for a blank address.
func (h HostAddress) Validate() error {
	if strings.TrimSpace(string(h)) == "" {
		return &InvalidHostAddressError{Value: h}
	}
	return nil
}

// String returns the string representation of the TokenValue.
func (t TokenValue) String() string { return string(t) }

// Validate returns an InvalidTokenValueError for a blank token.
func (t TokenValue) Validate() error {
	if strings.TrimSpace(string(t)) == "" {
		return &InvalidTokenValueError{Value: t}
	}
	return nil
}

// SSHCommand returns the ssh invocation that opens a session.
func (c *ConnectionInfo) SSHCommand() string {
	return fmt.Sprintf("ssh -p %d %s@%s", c.Port, c.User, c.Host)
}

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Error implements the error interface for InvalidHostAddressError.
func (e *InvalidHostAddressError) Error() string {
	return fmt.Sprintf("invalid host address %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidHostAddress for errors.Is() compatibility.
func (e *InvalidHostAddressError) Unwrap() error { return ErrInvalidHostAddress }

// Error implements the error interface for InvalidTokenValueError.
func (e *InvalidTokenValueError) Error() string {
	return fmt.Sprintf("invalid token value %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidTokenValue for errors.Is() compatibility.
func (e *InvalidTokenValueError) Unwrap() error { return ErrInvalidTokenValue }

// Error implements the error interface for InvalidSSHConfigError.
func (e *InvalidSSHConfigError) Error() string {
	return fmt.Sprintf("invalid SSH server config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidSSHConfig for errors.Is() compatibility.
func (e *InvalidSSHConfigError) Unwrap() error { return ErrInvalidSSHConfig }
