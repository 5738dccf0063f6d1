package domain

import "fmt"

const (
	// MatrixWidth and MatrixHeight describe the 8x8 LED matrix.
	MatrixWidth  = 8
	MatrixHeight = 8
	// FrameSize is the number of pixels in a frame.
	FrameSize = MatrixWidth * MatrixHeight
)

// Pixel is a single RGB LED value.
type Pixel struct {
	R, G, B uint8
}

// IsBlack reports whether the pixel is switched off.
func (p Pixel) IsBlack() bool {
	return p.R == 0 && p.G == 0 && p.B == 0
}

// Frame is the full display buffer, row-major with the origin at the top left.
type Frame [FrameSize]Pixel

// At returns the pixel at column x, row y.
func (f Frame) At(x, y int) Pixel {
	return f[y*MatrixWidth+x]
}

// Set writes the pixel at column x, row y.
func (f *Frame) Set(x, y int, p Pixel) {
	f[y*MatrixWidth+x] = p
}

// RotateForMessage returns the frame re-oriented from the scrolling-text
// orientation into the static-image orientation. Columns are read from the
// last one backward, each column top to bottom, and laid out as rows.
func (f Frame) RotateForMessage() Frame {
	var out Frame
	i := 0
	for x := MatrixWidth - 1; x >= 0; x-- {
		for y := range MatrixHeight {
			out[i] = f[y*MatrixWidth+x]
			i++
		}
	}
	return out
}

// NonBlack counts the lit pixels in the frame.
func (f Frame) NonBlack() int {
	n := 0
	for _, p := range f {
		if !p.IsBlack() {
			n++
		}
	}
	return n
}

// ColorCode is a single-letter palette entry used by the preset catalog.
type ColorCode byte

const (
	ColorRed    ColorCode = 'r'
	ColorOrange ColorCode = 'o'
	ColorYellow ColorCode = 'y'
	ColorGreen  ColorCode = 'g'
	ColorBlue   ColorCode = 'b'
	ColorIndigo ColorCode = 'i'
	ColorViolet ColorCode = 'v'
	ColorBrown  ColorCode = 'n'
	ColorWhite  ColorCode = 'w'
	ColorEmpty  ColorCode = 'e'
)

// Palette maps every valid colour code to its LED value.
var Palette = map[ColorCode]Pixel{
	ColorRed:    {255, 0, 0},
	ColorOrange: {255, 165, 0},
	ColorYellow: {255, 255, 0},
	ColorGreen:  {0, 128, 0},
	ColorBlue:   {0, 0, 255},
	ColorIndigo: {75, 0, 130},
	ColorViolet: {230, 130, 238},
	ColorBrown:  {135, 80, 22},
	ColorWhite:  {255, 255, 255},
	ColorEmpty:  {0, 0, 0},
}

// ParseColorCode looks up a palette entry.
func ParseColorCode(s string) (Pixel, error) {
	if len(s) != 1 {
		return Pixel{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	p, ok := Palette[ColorCode(s[0])]
	if !ok {
		return Pixel{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	return p, nil
}
