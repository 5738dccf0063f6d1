package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cleroux/pi-xmas-hat/internal/adapter/metrics"
	"github.com/cleroux/pi-xmas-hat/internal/broadcast"
	"github.com/cleroux/pi-xmas-hat/internal/platform/config"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type panelService interface {
	ShowPreset(ctx context.Context, id int) error
	ShowMessage(ctx context.Context, text string) error
	CurrentSVG(ctx context.Context) (string, error)
	PresetSVG(id int) (string, error)
}

type updateSource interface {
	Subscribe() *broadcast.Subscription
	Unsubscribe(sub *broadcast.Subscription)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	clock  clockwork.Clock

	panel   panelService
	updates updateSource

	registry      *prometheus.Registry
	httpMetrics   *metrics.HTTPMetrics
	streamMetrics *metrics.StreamMetrics

	upgrader     websocket.Upgrader
	healthChecks []HealthCheck
	startTime    time.Time
}

// NewServer builds the echo server and registers all routes. reg may be nil,
// in which case /metrics is not served and no HTTP metrics are recorded.
func NewServer(cfg *config.Config, panel panelService, updates updateSource, clock clockwork.Clock, reg *prometheus.Registry, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		clock:        clock,
		panel:        panel,
		updates:      updates,
		registry:     reg,
		healthChecks: healthChecks,
		startTime:    clock.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     newCheckOrigin(cfg.AllowedOrigins, cfg.IsDevelopment()),
		},
	}
	if reg != nil {
		srv.httpMetrics = metrics.NewHTTPMetrics(reg)
		srv.streamMetrics = metrics.NewStreamMetrics(reg)
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

func (s *Server) streamOpened(transport string) {
	if s.streamMetrics != nil {
		s.streamMetrics.ActiveConnections.WithLabelValues(transport).Inc()
	}
}

func (s *Server) streamClosed(transport string) {
	if s.streamMetrics != nil {
		s.streamMetrics.ActiveConnections.WithLabelValues(transport).Dec()
	}
}

func (s *Server) streamSent(transport string) {
	if s.streamMetrics != nil {
		s.streamMetrics.MessagesSent.WithLabelValues(transport).Inc()
	}
}
