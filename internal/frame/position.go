package frame

import (
	"fmt"
	"strings"
)

// PixelCenter selects where a pixel's centre lies relative to its integer
// coordinate.
type PixelCenter int

const (
	TopLeft PixelCenter = iota // pixel (x, y) is centred at (x, y)
	Center                     // pixel (x, y) is centred at (x+0.5, y+0.5)
)

func (pc PixelCenter) String() string {
	switch pc {
	case TopLeft:
		return "top-left"
	case Center:
		return "center"
	default:
		return "unknown"
	}
}

// ParsePixelCenter maps user input to a pixel centre convention.
func ParsePixelCenter(name string) (PixelCenter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "top-left", "topleft", "tl":
		return TopLeft, nil
	case "center", "centre", "c":
		return Center, nil
	default:
		return TopLeft, fmt.Errorf("unknown pixel center %q", name)
	}
}

// Shift converts a coordinate into the top-left convention.
func (pc PixelCenter) Shift(v float64) float64 {
	if pc == Center {
		return v - 0.5
	}
	return v
}

// Position is a sub-pixel location in a frame.
type Position struct {
	X, Y float64
}

// Pos is shorthand for Position{X: x, Y: y}.
func Pos(x, y float64) Position {
	return Position{X: x, Y: y}
}

func (p Position) Add(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func (p Position) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// MirrorIndex reflects a coordinate that lies at most dim positions outside
// [0, dim) back into the range. The border pixel is repeated, so -1 maps to 0
// and dim maps to dim-1.
func MirrorIndex(c, dim int) int {
	if c < 0 {
		return -c - 1
	}
	if c >= dim {
		return dim - (c - dim) - 1
	}
	return c
}
