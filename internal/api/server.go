package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/renderdeck/renderdeck-agent/internal/exporter"
	"github.com/renderdeck/renderdeck-agent/internal/host"
	"github.com/renderdeck/renderdeck-agent/internal/settings"
)

// ExportService is the slice of the exporter the panel talks to.
type ExportService interface {
	Export(ctx context.Context) (*exporter.Result, error)
	IsRunning() bool
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Port      int
	Exporter  ExportService
	Settings  settings.Store
	Repo      exporter.Repository
	Probe     *host.CachedProbe
	Logger    *slog.Logger
	StartTime time.Time
	Version   string
	DeviceID  string
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
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
