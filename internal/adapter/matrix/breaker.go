package matrix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cleroux/pi-xmas-hat/internal/adapter/metrics"
	"github.com/cleroux/pi-xmas-hat/internal/domain"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
)

// Guarded protects a Display with a circuit breaker. After FailureThreshold
// consecutive peripheral failures the breaker opens: writes fail fast with
// circuitbreaker.ErrOpen and reads serve the last known frame. After Delay one
// trial call is let through.
type Guarded struct {
	inner domain.Display
	cb    circuitbreaker.CircuitBreaker[any]

	mu        sync.RWMutex
	lastFrame domain.Frame
	hasFrame  bool
}

var _ domain.Display = (*Guarded)(nil)

// GuardSettings configures the breaker.
type GuardSettings struct {
	FailureThreshold uint
	Delay            time.Duration
}

// DefaultGuardSettings trips after five consecutive failures and retries after 30s.
var DefaultGuardSettings = GuardSettings{FailureThreshold: 5, Delay: 30 * time.Second}

// NewGuarded wraps inner. m may be nil.
func NewGuarded(inner domain.Display, settings GuardSettings, m *metrics.DisplayMetrics) *Guarded {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = DefaultGuardSettings.FailureThreshold
	}
	if settings.Delay <= 0 {
		settings.Delay = DefaultGuardSettings.Delay
	}

	cb := circuitbreaker.NewBuilder[any]().
		WithFailureThreshold(settings.FailureThreshold).
		WithDelay(settings.Delay).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "display",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			if m != nil {
				m.BreakerTransitions.WithLabelValues(e.NewState.String()).Inc()
				m.BreakerState.Set(stateToFloat(e.NewState))
			}
		}).
		Build()

	return &Guarded{inner: inner, cb: cb}
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

func (g *Guarded) SetFrame(ctx context.Context, frame domain.Frame) error {
	if err := g.guard(func() error { return g.inner.SetFrame(ctx, frame) }); err != nil {
		return err
	}
	g.remember(frame)
	return nil
}

// Frame reads through to the peripheral. While the breaker is open it returns
// the last frame seen instead, and fails only if there is none.
func (g *Guarded) Frame(ctx context.Context) (domain.Frame, error) {
	if !g.cb.TryAcquirePermit() {
		g.mu.RLock()
		defer g.mu.RUnlock()
		if g.hasFrame {
			slog.DebugContext(ctx, "Circuit breaker open, serving last frame")
			return g.lastFrame, nil
		}
		return domain.Frame{}, fmt.Errorf("display circuit breaker open: %w", circuitbreaker.ErrOpen)
	}

	frame, err := g.inner.Frame(ctx)
	g.record(err)
	if err != nil {
		return domain.Frame{}, err
	}
	g.remember(frame)
	return frame, nil
}

func (g *Guarded) SetRotation(ctx context.Context, degrees int) error {
	return g.guard(func() error { return g.inner.SetRotation(ctx, degrees) })
}

func (g *Guarded) ScrollText(ctx context.Context, text string, speed time.Duration, color domain.Pixel) error {
	return g.guard(func() error { return g.inner.ScrollText(ctx, text, speed, color) })
}

// Open reports whether the breaker currently rejects calls.
func (g *Guarded) Open() bool {
	return g.cb.IsOpen()
}

func (g *Guarded) guard(call func() error) error {
	if !g.cb.TryAcquirePermit() {
		return fmt.Errorf("display circuit breaker open: %w", circuitbreaker.ErrOpen)
	}
	err := call()
	g.record(err)
	return err
}

// record counts peripheral failures only. Caller mistakes and cancellations
// say nothing about the hardware.
func (g *Guarded) record(err error) {
	switch {
	case err == nil,
		errors.Is(err, domain.ErrInvalidRotation),
		errors.Is(err, domain.ErrInvalidSpeed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		g.cb.RecordSuccess()
	default:
		g.cb.RecordError(err)
	}
}

func (g *Guarded) remember(frame domain.Frame) {
	g.mu.Lock()
	g.lastFrame = frame
	g.hasFrame = true
	g.mu.Unlock()
}
