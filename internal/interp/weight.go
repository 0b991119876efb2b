package interp

import (
	"math"

	"github.com/cwbudde/patchmatch/internal/frame"
)

// Fixed-point layout: every axis factor lies in [0, WeightScale] and the four
// corner products of a pixel sum to 1<<weightShift.
const (
	WeightScale = 128
	weightShift = 14
	weightRound = 1 << (weightShift - 1)
)

// FractionWeight converts a fractional offset in [0, 1] into the weight of
// the right (or bottom) neighbour.
func FractionWeight(t float64) uint32 {
	return uint32(t*WeightScale + 0.5)
}

// Anchor floors p after the pixel-centre shift and returns the integer
// coordinate together with the weight of the next pixel along that axis.
func Anchor(p float64, pc frame.PixelCenter) (int, uint32) {
	s := pc.Shift(p)
	i := math.Floor(s)
	return int(i), FractionWeight(s - i)
}

// Factors holds the four corner weights of one bilinear sample.
type Factors struct {
	TL, TR, BL, BR uint32
}

// NewFactors expands the right and bottom axis weights into corner products.
func NewFactors(right, bottom uint32) Factors {
	left := WeightScale - right
	top := WeightScale - bottom
	return Factors{
		TL: left * top,
		TR: right * top,
		BL: left * bottom,
		BR: right * bottom,
	}
}

// Blend interpolates one channel value from its four neighbours.
func (f Factors) Blend(tl, tr, bl, br uint8) uint8 {
	return uint8((uint32(tl)*f.TL + uint32(tr)*f.TR + uint32(bl)*f.BL + uint32(br)*f.BR + weightRound) >> weightShift)
}
