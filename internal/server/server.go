// Package server exposes the browser and the converter over SSH.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gliderlabs/ssh"

	"github.com/atomicstack/hn-over-ssh/internal/logging/events"
)

// Options configure the SSH listener.
type Options struct {
	Addr string
	// HostKeyFile is a PEM private key. Empty generates an ephemeral key.
	HostKeyFile string
	IdleTimeout time.Duration
	// AuthUser and AuthPass enable password authentication when both are set.
	AuthUser string
	AuthPass string
}

// Server is an SSH server running one handler per session.
type Server struct {
	srv  *ssh.Server
	mode string
}

// New builds a server that runs h for every session. mode is only used in log
// output.
func New(opts Options, mode string, h Handler) (*Server, error) {
	srv := &ssh.Server{
		Addr:        opts.Addr,
		Handler:     h.sshHandler(mode),
		IdleTimeout: opts.IdleTimeout,
	}
	if opts.HostKeyFile != "" {
		if err := srv.SetOption(ssh.HostKeyFile(opts.HostKeyFile)); err != nil {
			return nil, fmt.Errorf("load host key %s: %w", opts.HostKeyFile, err)
		}
	}
	if opts.AuthUser != "" || opts.AuthPass != "" {
		srv.PasswordHandler = passwordHandler(opts.AuthUser, opts.AuthPass)
	}
	return &Server{srv: srv, mode: mode}, nil
}

// ListenAndServe listens on the configured address. It returns nil once the
// server is shut down.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. It returns nil once the server is shut
// down.
func (s *Server) Serve(ln net.Listener) error {
	events.App.Listen(ln.Addr().String(), s.mode)
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return fmt.Errorf("serve ssh: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for open sessions until ctx
// is done, then closes whatever remains.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		if cerr := s.srv.Close(); cerr != nil && !errors.Is(cerr, ssh.ErrServerClosed) {
			return fmt.Errorf("close ssh server: %w", cerr)
		}
		if !errors.Is(err, ssh.ErrServerClosed) && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("shutdown ssh server: %w", err)
		}
	}
	return nil
}

func passwordHandler(user, pass string) ssh.PasswordHandler {
	return func(ctx ssh.Context, password string) bool {
		userOK := subtle.ConstantTimeCompare([]byte(ctx.User()), []byte(user))
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(pass))
		return userOK&passOK == 1
	}
}
