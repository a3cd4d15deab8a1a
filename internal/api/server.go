// Package api exposes a local control surface over the client state: health,
// session status, the run journal, and the candidate segments of the last
// generation. It binds to loopback only and is guarded by a locally generated
// token stored alongside the session.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/RaufunNazin/Highlighter/internal/auth"
	"github.com/RaufunNazin/Highlighter/internal/gateway"
	"github.com/RaufunNazin/Highlighter/internal/runs"
	"github.com/RaufunNazin/Highlighter/internal/session"
)

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Port      int
	Store     *session.Store
	Journal   *runs.Repository
	Gateway   *gateway.Client
	Auth      *auth.Flow
	Logger    *slog.Logger
	StartTime time.Time
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting control API", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down control API")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
