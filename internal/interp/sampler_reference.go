package interp

import "github.com/cwbudde/patchmatch/internal/frame"

// sampleReference is the canonical per-cell loop. src starts at the patch's
// top-left anchor pixel; stride is the frame stride in elements.
func sampleReference(dst, src []uint8, stride, channels, width, height int, f Factors) {
	out := 0
	for y := 0; y < height; y++ {
		row := y * stride
		for x := 0; x < width; x++ {
			tl := row + x*channels
			bl := tl + stride
			for n := 0; n < channels; n++ {
				dst[out] = f.Blend(src[tl+n], src[tl+channels+n], src[bl+n], src[bl+channels+n])
				out++
			}
		}
	}
}

// SquarePatchReference samples a patchSize x patchSize patch centred at pos
// with the reference kernel, whichever backend is active.
func SquarePatchReference(dst []uint8, src frame.View, pos frame.Position, patchSize int, pc frame.PixelCenter) {
	Patch(dst, src, pos, patchSize, patchSize, pc)
}

// Patch samples a width x height patch centred at pos. Both sizes must be
// odd. The same fractional weights are used for every cell.
func Patch(dst []uint8, src frame.View, pos frame.Position, width, height int, pc frame.PixelCenter) {
	left, fx := Anchor(pos.X, pc)
	top, fy := Anchor(pos.Y, pc)
	left -= width / 2
	top -= height / 2

	if frame.DebugChecks {
		frame.Assertf(width%2 == 1 && height%2 == 1, "patch %dx%d must have odd sizes", width, height)
		frame.Assertf(left >= 0 && top >= 0 && left+width < src.Width && top+height < src.Height,
			"patch %dx%d at %v leaves the %dx%d frame", width, height, pos, src.Width, src.Height)
		frame.Assertf(len(dst) >= width*height*src.Channels, "patch buffer too small")
	}

	sampleReference(dst, src.Data[src.Offset(left, top):], src.StrideElements(), src.Channels, width, height, NewFactors(fx, fy))
}
