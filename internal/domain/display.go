package domain

import (
	"context"
	"time"
)

// Display is the LED matrix peripheral. Calls are synchronous; ScrollText
// returns only after the whole message has scrolled past.
type Display interface {
	SetFrame(ctx context.Context, frame Frame) error
	Frame(ctx context.Context) (Frame, error)
	SetRotation(ctx context.Context, degrees int) error
	ScrollText(ctx context.Context, text string, speed time.Duration, color Pixel) error
}

// Preset is one entry of the preset image catalog.
type Preset struct {
	ID    int
	Frame Frame
}

// PresetSource resolves preset images by index.
type PresetSource interface {
	Get(id int) (Preset, error)
	Len() int
}
