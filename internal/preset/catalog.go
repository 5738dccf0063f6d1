// Package preset loads the catalog of preset images shown on the matrix.
//
// The catalog is line oriented: one preset per line, each line holding exactly
// 64 comma-separated colour codes in row-major order.
package preset

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cleroux/pi-xmas-hat/internal/domain"
)

// Size is the number of presets a catalog must contain.
const Size = 25

//go:embed images.txt
var defaultCatalog []byte

// Catalog is an immutable, index-addressable list of presets.
type Catalog struct {
	presets []domain.Preset
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(bytes.NewReader(defaultCatalog))
}

// Load reads a catalog from path, falling back to the embedded catalog when
// path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open preset catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	cat, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Parse reads a catalog. Blank lines are ignored.
func Parse(r io.Reader) (*Catalog, error) {
	var presets []domain.Preset

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		frame, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		presets = append(presets, domain.Preset{ID: len(presets), Frame: frame})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read preset catalog: %w", err)
	}

	if len(presets) != Size {
		return nil, fmt.Errorf("preset catalog must contain %d images, got %d", Size, len(presets))
	}

	return &Catalog{presets: presets}, nil
}

// ParseLine converts one catalog line into a frame.
func ParseLine(line string) (domain.Frame, error) {
	var frame domain.Frame

	codes := strings.Split(line, ",")
	if len(codes) != domain.FrameSize {
		return frame, fmt.Errorf("expected %d colour codes, got %d", domain.FrameSize, len(codes))
	}

	for i, code := range codes {
		p, err := domain.ParseColorCode(code)
		if err != nil {
			return frame, fmt.Errorf("column %d: %w", i+1, err)
		}
		frame[i] = p
	}
	return frame, nil
}

// Get returns the preset with the given index.
func (c *Catalog) Get(id int) (domain.Preset, error) {
	if id < 0 || id >= len(c.presets) {
		return domain.Preset{}, fmt.Errorf("%w: %d", domain.ErrInvalidPreset, id)
	}
	return c.presets[id], nil
}

// Len returns the number of presets.
func (c *Catalog) Len() int {
	return len(c.presets)
}
