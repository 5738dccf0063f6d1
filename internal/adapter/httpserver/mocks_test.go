package httpserver

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/cleroux/pi-xmas-hat/internal/adapter/metrics"
	"github.com/cleroux/pi-xmas-hat/internal/broadcast"
	"github.com/cleroux/pi-xmas-hat/internal/domain"
	"github.com/cleroux/pi-xmas-hat/internal/platform/config"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

const testPresetCount = 25

// --- mockPanelService ---

type mockPanelService struct {
	mu sync.Mutex

	showPresetFn  func(ctx context.Context, id int) error
	showMessageFn func(ctx context.Context, text string) error
	currentSVGFn  func(ctx context.Context) (string, error)
	presetSVGFn   func(id int) (string, error)

	presetCalls []int
	messages    []string
}

func (m *mockPanelService) ShowPreset(ctx context.Context, id int) error {
	if id < 0 || id >= testPresetCount {
		return fmt.Errorf("preset %d: %w", id, domain.ErrInvalidPreset)
	}
	m.mu.Lock()
	m.presetCalls = append(m.presetCalls, id)
	m.mu.Unlock()
	if m.showPresetFn != nil {
		return m.showPresetFn(ctx, id)
	}
	return nil
}

func (m *mockPanelService) ShowMessage(ctx context.Context, text string) error {
	m.mu.Lock()
	m.messages = append(m.messages, text)
	m.mu.Unlock()
	if m.showMessageFn != nil {
		return m.showMessageFn(ctx, text)
	}
	return nil
}

func (m *mockPanelService) CurrentSVG(ctx context.Context) (string, error) {
	if m.currentSVGFn != nil {
		return m.currentSVGFn(ctx)
	}
	return "<svg></svg>", nil
}

func (m *mockPanelService) PresetSVG(id int) (string, error) {
	if id < 0 || id >= testPresetCount {
		return "", fmt.Errorf("preset %d: %w", id, domain.ErrInvalidPreset)
	}
	if m.presetSVGFn != nil {
		return m.presetSVGFn(id)
	}
	return fmt.Sprintf("<svg>%d</svg>", id), nil
}

func (m *mockPanelService) presets() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.presetCalls...)
}

func (m *mockPanelService) sentMessages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

// --- test server ---

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:            "test",
		Port:              "0",
		MutationRateLimit: 1000,
		MutationRateBurst: 1000,
	}
}

func newTestServer(t *testing.T, panel panelService, opts ...func(*Server)) *Server {
	t.Helper()

	srv := &Server{
		echo:     echo.New(),
		config:   testConfig(),
		clock:    clockwork.NewFakeClock(),
		panel:    panel,
		updates:  broadcast.NewBroadcaster(nil),
		upgrader: websocket.Upgrader{CheckOrigin: newCheckOrigin(nil, false)},
	}

	for _, opt := range opts {
		opt(srv)
	}
	srv.startTime = srv.clock.Now()

	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func withUpdates(updates updateSource) func(*Server) {
	return func(s *Server) {
		s.updates = updates
	}
}

func withClock(clock clockwork.Clock) func(*Server) {
	return func(s *Server) {
		s.clock = clock
	}
}

func withConfig(cfg *config.Config) func(*Server) {
	return func(s *Server) {
		s.config = cfg
	}
}

func withRegistry(reg *prometheus.Registry) func(*Server) {
	return func(s *Server) {
		s.registry = reg
		s.httpMetrics = metrics.NewHTTPMetrics(reg)
		s.streamMetrics = metrics.NewStreamMetrics(reg)
	}
}
