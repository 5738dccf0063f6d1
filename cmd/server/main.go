package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cleroux/pi-xmas-hat/internal/adapter/httpserver"
	"github.com/cleroux/pi-xmas-hat/internal/adapter/matrix"
	"github.com/cleroux/pi-xmas-hat/internal/adapter/metrics"
	"github.com/cleroux/pi-xmas-hat/internal/app"
	"github.com/cleroux/pi-xmas-hat/internal/broadcast"
	"github.com/cleroux/pi-xmas-hat/internal/domain"
	"github.com/cleroux/pi-xmas-hat/internal/platform/config"
	"github.com/cleroux/pi-xmas-hat/internal/platform/logging"
	"github.com/cleroux/pi-xmas-hat/internal/platform/version"
	"github.com/cleroux/pi-xmas-hat/internal/preset"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupPresets(cfg *config.Config) *preset.Catalog {
	catalog, err := preset.Load(cfg.PresetsFile)
	if err != nil {
		slog.Error("Failed to load preset catalog", "path", cfg.PresetsFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Preset catalog loaded", "presets", catalog.Len(), "custom", cfg.PresetsFile != "")
	return catalog
}

func healthChecks(display *matrix.Guarded, presets domain.PresetSource) []httpserver.HealthCheck {
	return []httpserver.HealthCheck{
		{
			Name: "display",
			Check: func(ctx context.Context) error {
				if display.Open() {
					return errors.New("display circuit breaker open")
				}
				_, err := display.Frame(ctx)
				return err
			},
		},
		{
			Name: "presets",
			Check: func(context.Context) error {
				if presets.Len() != preset.Size {
					return fmt.Errorf("catalog has %d presets, want %d", presets.Len(), preset.Size)
				}
				return nil
			},
		},
	}
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().String())

	catalog := setupPresets(cfg)

	reg := metrics.NewRegistry(version.Get())

	displayMetrics := metrics.NewDisplayMetrics(reg)
	emulator := matrix.NewEmulator(clock, cfg.LowLight)
	slog.Info("Display initialized", "driver", "emulator", "low_light", emulator.LowLight())
	display := matrix.NewGuarded(
		emulator,
		matrix.GuardSettings{FailureThreshold: cfg.DisplayBreakerThreshold, Delay: cfg.DisplayBreakerDelay},
		displayMetrics,
	)
	broadcaster := broadcast.NewBroadcaster(metrics.NewBroadcastMetrics(reg))
	coalescer := app.NewCoalescer(display, broadcaster, clock, cfg.TickInterval, metrics.NewCoalescerMetrics(reg))
	panel := app.NewService(display, catalog, coalescer, clock, cfg.ScrollSpeed, displayMetrics)

	srv := httpserver.NewServer(cfg, panel, broadcaster, clock, reg, healthChecks(display, catalog))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		coalescer.Run(gctx)
		return nil
	})

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutdown signal received, cleaning up...")

		// Open update streams only return once their subscription ends.
		broadcaster.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
	slog.Info("Shutdown complete")
}
