// Package server exposes a read-only HTTP status API over the task engine.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"devbot/internal/lifecycle"
	"devbot/internal/models"
)

const (
	allowRemoteEnvKey = "DEVBOT_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// TaskReader is the read side of the task engine.
type TaskReader interface {
	List(ctx context.Context, guildID models.Snowflake, filter lifecycle.Filter) ([]models.Task, error)
	Get(ctx context.Context, guildID models.Snowflake, taskID int) (models.Task, error)
	Board(ctx context.Context, guildID models.Snowflake) (lifecycle.Board, error)
}

// Server wraps HTTP handlers for the status API.
type Server struct {
	addr      string
	reader    TaskReader
	tokenHash string
	logger    *slog.Logger
}

// New creates a server. An empty tokenHash leaves /v1 unauthenticated.
func New(addr string, reader TaskReader, tokenHash string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:      addr,
		reader:    reader,
		tokenHash: strings.TrimSpace(tokenHash),
		logger:    logger.With("component", "http"),
	}
}

// Handler returns the fully wrapped route tree.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.log().Info("starting server", "addr", s.addr, "auth", s.tokenHash != "")
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log().Info("server stopped")
	return nil
}

// ListenAddr converts a configured address or base URL into a listen address.
func ListenAddr(addr string) (string, error) {
	if addr == "" {
		return "", fmt.Errorf("http address is required")
	}
	if u, err := url.Parse(addr); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(addr)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return addr, nil
}

func isAllowedListenHost(host string) bool {
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
