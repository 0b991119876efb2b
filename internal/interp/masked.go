package interp

import (
	"math"

	"github.com/cwbudde/patchmatch/internal/frame"
)

// PixelWithMask interpolates one pixel at pos (any position) into dst and
// returns the resulting mask value. A neighbour contributes only when it lies
// inside the frame and its mask byte equals validValue; the weights of the
// contributing neighbours are renormalised to their sum. When no neighbour
// with a non-zero weight remains, dst is left untouched and the complement
// 0xFF-validValue is returned.
func PixelWithMask(dst []uint8, src frame.View, mask frame.Mask, pos frame.Position, pc frame.PixelCenter, validValue uint8) uint8 {
	invalid := frame.ValidMaskValue(validValue)

	sx := pc.Shift(pos.X)
	sy := pc.Shift(pos.Y)
	left := int(math.Floor(sx))
	top := int(math.Floor(sy))

	if left < -1 || top < -1 || left >= src.Width || top >= src.Height {
		return invalid
	}

	f := NewFactors(FractionWeight(sx-float64(left)), FractionWeight(sy-float64(top)))

	var (
		offsets [4]int
		weights [4]uint32
		taps    int
		sum     uint32
	)
	add := func(x, y int, w uint32) {
		if x < 0 || y < 0 || x >= src.Width || y >= src.Height || mask.At(x, y) != validValue {
			return
		}
		offsets[taps] = src.Offset(x, y)
		weights[taps] = w
		taps++
		sum += w
	}
	add(left, top, f.TL)
	add(left+1, top, f.TR)
	add(left, top+1, f.BL)
	add(left+1, top+1, f.BR)

	if sum == 0 {
		return invalid
	}

	for n := 0; n < src.Channels; n++ {
		var acc uint32
		for i := 0; i < taps; i++ {
			acc += uint32(src.Data[offsets[i]+n]) * weights[i]
		}
		dst[n] = uint8((acc + sum/2) / sum)
	}
	return validValue
}

// PatchWithMask samples a width x height patch whose centre is pos, cell by
// cell with PixelWithMask. dstMask receives one byte per cell.
func PatchWithMask(dst, dstMask []uint8, src frame.View, mask frame.Mask, pos frame.Position, width, height int, pc frame.PixelCenter, validValue uint8) {
	left := pos.X - float64(width-1)*0.5
	top := pos.Y - float64(height-1)*0.5
	ch := src.Channels

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			p := frame.Position{X: left + float64(x), Y: top + float64(y)}
			dstMask[i] = PixelWithMask(dst[i*ch:i*ch+ch], src, mask, p, pc, validValue)
		}
	}
}
