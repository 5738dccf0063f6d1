// Package render turns frames into SVG markup for browsers.
package render

import (
	"fmt"
	"strings"

	"github.com/cleroux/pi-xmas-hat/internal/domain"
)

const (
	// ContentType is the media type of the rendered markup.
	ContentType = "image/svg+xml"

	pixelSize = 10
)

// SVG renders the frame as an 80x80 SVG document. Black pixels are skipped
// so they show up transparent.
func SVG(frame domain.Frame) string {
	var sb strings.Builder
	sb.Grow(64 + domain.FrameSize*80)

	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`,
		domain.MatrixWidth*pixelSize, domain.MatrixHeight*pixelSize)

	for y := range domain.MatrixHeight {
		for x := range domain.MatrixWidth {
			p := frame.At(x, y)
			if p.IsBlack() {
				continue
			}
			fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" style="fill:rgb(%d,%d,%d)" />`,
				x*pixelSize, y*pixelSize, pixelSize, pixelSize, p.R, p.G, p.B)
		}
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}
