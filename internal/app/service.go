package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cleroux/pi-xmas-hat/internal/adapter/metrics"
	"github.com/cleroux/pi-xmas-hat/internal/domain"
	"github.com/cleroux/pi-xmas-hat/internal/render"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

const (
	// displayRotation matches how the matrix is mounted.
	displayRotation = 180
	// DefaultScrollSpeed is the delay between scroll columns.
	DefaultScrollSpeed = 200 * time.Millisecond
)

var messageColor = domain.Pixel{R: 200}

// dirtyMarker is the part of the Coalescer that mutation paths touch.
type dirtyMarker interface {
	MarkImageDirty()
	MarkMessageDirty()
	ClearMessageDirty()
}

// Service is the application layer between the HTTP edge and the display.
type Service struct {
	display     domain.Display
	presets     domain.PresetSource
	updates     dirtyMarker
	clock       clockwork.Clock
	scrollSpeed time.Duration
	metrics     *metrics.DisplayMetrics
	reads       singleflight.Group
}

// NewService creates the application service. m may be nil.
func NewService(display domain.Display, presets domain.PresetSource, updates dirtyMarker, clock clockwork.Clock, scrollSpeed time.Duration, m *metrics.DisplayMetrics) *Service {
	if scrollSpeed <= 0 {
		scrollSpeed = DefaultScrollSpeed
	}
	return &Service{
		display:     display,
		presets:     presets,
		updates:     updates,
		clock:       clock,
		scrollSpeed: scrollSpeed,
		metrics:     m,
	}
}

// ShowPreset draws preset id on the display and schedules an image update.
// Unknown ids return domain.ErrInvalidPreset without touching the display.
func (s *Service) ShowPreset(ctx context.Context, id int) error {
	preset, err := s.presets.Get(id)
	if err != nil {
		return err
	}

	if err := s.display.SetRotation(ctx, displayRotation); err != nil {
		s.recordMutation("image", err)
		return fmt.Errorf("set rotation: %w", err)
	}
	if err := s.display.SetFrame(ctx, preset.Frame); err != nil {
		s.recordMutation("image", err)
		return fmt.Errorf("set frame: %w", err)
	}

	s.updates.MarkImageDirty()
	s.recordMutation("image", nil)
	slog.DebugContext(ctx, "Preset displayed", "preset", id)
	return nil
}

// ShowMessage scrolls text across the display and returns once it has
// finished. The message category stays dirty for the whole scroll so every
// tick in between broadcasts the frame currently showing. Overlapping calls
// are counted, so a queued scroll keeps it dirty after an earlier one ends.
// Once the scroll returns the image category is marked so the settled frame
// is broadcast. The scroll is detached from ctx cancellation: a client
// hanging up does not stop the display mid-text.
func (s *Service) ShowMessage(ctx context.Context, text string) error {
	ctx = context.WithoutCancel(ctx)

	if err := s.display.SetRotation(ctx, displayRotation); err != nil {
		s.recordMutation("message", err)
		return fmt.Errorf("set rotation: %w", err)
	}

	s.updates.MarkMessageDirty()
	defer func() {
		s.updates.ClearMessageDirty()
		s.updates.MarkImageDirty()
	}()

	start := s.clock.Now()
	err := s.display.ScrollText(ctx, text+" ", s.scrollSpeed, messageColor)
	s.recordMutation("message", err)
	if err != nil {
		return fmt.Errorf("scroll text: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ScrollDuration.Observe(s.clock.Since(start).Seconds())
	}
	slog.DebugContext(ctx, "Message displayed", "length", len(text), "duration", s.clock.Since(start))
	return nil
}

// CurrentSVG renders what the display shows right now. Concurrent callers
// share one display read.
func (s *Service) CurrentSVG(ctx context.Context) (string, error) {
	v, err, _ := s.reads.Do("frame", func() (any, error) {
		frame, err := s.display.Frame(ctx)
		if err != nil {
			return nil, fmt.Errorf("read display: %w", err)
		}
		return render.SVG(frame), nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// PresetSVG renders preset id without touching the display.
func (s *Service) PresetSVG(id int) (string, error) {
	preset, err := s.presets.Get(id)
	if err != nil {
		return "", err
	}
	return render.SVG(preset.Frame), nil
}

func (s *Service) recordMutation(kind string, err error) {
	if s.metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	s.metrics.Mutations.WithLabelValues(kind, result).Inc()
}
