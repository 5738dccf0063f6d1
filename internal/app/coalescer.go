package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cleroux/pi-xmas-hat/internal/adapter/metrics"
	"github.com/cleroux/pi-xmas-hat/internal/broadcast"
	"github.com/cleroux/pi-xmas-hat/internal/domain"
	"github.com/cleroux/pi-xmas-hat/internal/platform/correlation"
	"github.com/cleroux/pi-xmas-hat/internal/render"
	"github.com/jonboulle/clockwork"
)

// DefaultTickInterval bounds display broadcasts to one frame per second.
const DefaultTickInterval = time.Second

// Announcer receives coalesced display frames.
type Announcer interface {
	Announce(msg broadcast.Message)
}

// Coalescer turns display mutations into at most one broadcast per category
// per tick. Mutation paths only flip flags; the tick reads whatever the display
// shows at that moment, so bursts between ticks collapse into one frame.
type Coalescer struct {
	display   domain.Display
	announcer Announcer
	clock     clockwork.Clock
	interval  time.Duration
	metrics   *metrics.CoalescerMetrics

	imageDirty atomic.Bool
	// scrolling counts messages whose scroll has not finished yet.
	scrolling atomic.Int32
}

// NewCoalescer creates a coalescer. A non-positive interval falls back to
// DefaultTickInterval. m may be nil.
func NewCoalescer(display domain.Display, announcer Announcer, clock clockwork.Clock, interval time.Duration, m *metrics.CoalescerMetrics) *Coalescer {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Coalescer{
		display:   display,
		announcer: announcer,
		clock:     clock,
		interval:  interval,
		metrics:   m,
	}
}

// MarkImageDirty records that a static image was drawn.
func (c *Coalescer) MarkImageDirty() {
	c.imageDirty.Store(true)
}

// MarkMessageDirty records that a message scroll has started. Each call must
// be paired with one ClearMessageDirty.
func (c *Coalescer) MarkMessageDirty() {
	c.scrolling.Add(1)
}

// ClearMessageDirty is called by the message path once its scroll has finished.
// The message category stays dirty while any other scroll is still pending.
// The tick never clears it itself.
func (c *Coalescer) ClearMessageDirty() {
	for {
		n := c.scrolling.Load()
		if n <= 0 || c.scrolling.CompareAndSwap(n, n-1) {
			return
		}
	}
}

// Run ticks until ctx is cancelled. Tick errors are logged and the loop keeps going.
func (c *Coalescer) Run(ctx context.Context) {
	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Coalescer started", "interval", c.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Coalescer stopped")
			return
		case <-ticker.Chan():
			tickCtx := correlation.WithID(ctx, correlation.NewID())
			if err := c.Tick(tickCtx); err != nil {
				slog.WarnContext(tickCtx, "Coalescer: tick failed", "error", err)
			}
		}
	}
}

// Tick broadcasts the current display state for every dirty category.
// A display read error aborts the tick and leaves the flag set.
func (c *Coalescer) Tick(ctx context.Context) error {
	start := c.clock.Now()
	if c.metrics != nil {
		c.metrics.Ticks.Inc()
		defer func() { c.metrics.TickDuration.Observe(c.clock.Since(start).Seconds()) }()
	}

	if c.imageDirty.Swap(false) {
		frame, err := c.display.Frame(ctx)
		if err != nil {
			c.imageDirty.Store(true)
			c.recordError()
			return fmt.Errorf("read display for image update: %w", err)
		}
		c.announce(ctx, "image", frame)
	}

	if c.scrolling.Load() > 0 {
		frame, err := c.display.Frame(ctx)
		if err != nil {
			c.recordError()
			return fmt.Errorf("read display for message update: %w", err)
		}
		c.announce(ctx, "message", frame.RotateForMessage())
	}

	return nil
}

func (c *Coalescer) announce(ctx context.Context, category string, frame domain.Frame) {
	c.announcer.Announce(broadcast.Message{Data: render.SVG(frame)})
	if c.metrics != nil {
		c.metrics.Broadcasts.WithLabelValues(category).Inc()
	}
	slog.DebugContext(ctx, "Coalescer: broadcast frame", "category", category, "lit_pixels", frame.NonBlack())
}

func (c *Coalescer) recordError() {
	if c.metrics != nil {
		c.metrics.TickErrors.Inc()
	}
}
