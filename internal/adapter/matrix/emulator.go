// Package matrix provides an in-memory 8x8 LED matrix that satisfies
// domain.Display. It stands in for the hardware when none is attached and
// backs the tests.
package matrix

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/cleroux/pi-xmas-hat/internal/domain"
	"github.com/jonboulle/clockwork"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Emulator is a software LED matrix.
type Emulator struct {
	clock clockwork.Clock

	mu       sync.Mutex
	frame    domain.Frame
	rotation int
	lowLight bool

	// scrollMu serialises scrolls the way a single hardware bus would.
	scrollMu sync.Mutex
}

// NewEmulator creates a blank matrix.
func NewEmulator(clock clockwork.Clock, lowLight bool) *Emulator {
	return &Emulator{clock: clock, lowLight: lowLight}
}

func (e *Emulator) SetFrame(_ context.Context, frame domain.Frame) error {
	e.mu.Lock()
	e.frame = frame
	e.mu.Unlock()
	return nil
}

func (e *Emulator) Frame(_ context.Context) (domain.Frame, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame, nil
}

func (e *Emulator) SetRotation(_ context.Context, degrees int) error {
	switch degrees {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("%w: got %d", domain.ErrInvalidRotation, degrees)
	}

	e.mu.Lock()
	e.rotation = degrees
	e.mu.Unlock()
	return nil
}

// LowLight reports whether the matrix runs dimmed.
func (e *Emulator) LowLight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lowLight
}

// ScrollText scrolls text across the matrix right to left, one column per
// speed, and returns when the text has left the display. Frames written while
// scrolling are in text orientation, a quarter turn from image orientation;
// Frame.RotateForMessage brings them upright.
func (e *Emulator) ScrollText(ctx context.Context, text string, speed time.Duration, color domain.Pixel) error {
	if speed <= 0 {
		return fmt.Errorf("%w: got %v", domain.ErrInvalidSpeed, speed)
	}

	e.scrollMu.Lock()
	defer e.scrollMu.Unlock()

	columns := textColumns(text)
	slog.DebugContext(ctx, "Scrolling text", "length", len(text), "columns", len(columns), "speed", speed)

	for offset := 0; offset+domain.MatrixWidth <= len(columns); offset++ {
		var upright domain.Frame
		for x := range domain.MatrixWidth {
			col := columns[offset+x]
			for y := range domain.MatrixHeight {
				if col&(1<<y) != 0 {
					upright.Set(x, y, color)
				}
			}
		}

		e.mu.Lock()
		e.frame = toTextOrientation(upright)
		e.mu.Unlock()

		select {
		case <-ctx.Done():
			return fmt.Errorf("scroll interrupted: %w", ctx.Err())
		case <-e.clock.After(speed):
		}
	}
	return nil
}

// toTextOrientation is the inverse of Frame.RotateForMessage.
func toTextOrientation(f domain.Frame) domain.Frame {
	return f.RotateForMessage().RotateForMessage().RotateForMessage()
}

// glyph rows [glyphTop, glyphTop+8) of basicfont's 7x13 face cover the cap
// height and the baseline.
const glyphTop = 3

// textColumns rasterises text into one bitmask per column, bit y set when row
// y is lit. The text is padded with a blank screen on both sides so it enters
// and leaves the display fully.
func textColumns(text string) []uint8 {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()

	img := image.NewAlpha(image.Rect(0, 0, width, face.Height))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)

	columns := make([]uint8, 0, width+2*domain.MatrixWidth)
	columns = append(columns, make([]uint8, domain.MatrixWidth)...)
	for x := range width {
		var col uint8
		for y := range domain.MatrixHeight {
			if img.AlphaAt(x, glyphTop+y).A > 0x7f {
				col |= 1 << y
			}
		}
		columns = append(columns, col)
	}
	columns = append(columns, make([]uint8, domain.MatrixWidth)...)
	return columns
}
