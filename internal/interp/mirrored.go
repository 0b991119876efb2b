package interp

import (
	"math"

	"github.com/cwbudde/patchmatch/internal/frame"
)

// SquarePatchMirroredBorder samples a patchSize x patchSize patch centred at
// pos (top-left pixel centre) where pos may lie anywhere in [0, width) x
// [0, height). Taps that fall outside the frame are mirrored back into it.
// Patches that stay inside the frame take the regular sampler.
func SquarePatchMirroredBorder(dst []uint8, src frame.View, pos frame.Position, patchSize int) {
	fx := math.Floor(pos.X)
	fy := math.Floor(pos.Y)
	left := int(fx) - patchSize/2
	top := int(fy) - patchSize/2

	if frame.DebugChecks {
		frame.Assertf(pos.X >= 0 && pos.Y >= 0 && pos.X < float64(src.Width) && pos.Y < float64(src.Height),
			"position %v outside the %dx%d frame", pos, src.Width, src.Height)
		frame.Assertf(patchSize%2 == 1 && patchSize <= src.Width && patchSize <= src.Height,
			"patch size %d invalid for a %dx%d frame", patchSize, src.Width, src.Height)
	}

	if left >= 0 && top >= 0 && left+patchSize < src.Width && top+patchSize < src.Height {
		SquarePatch(dst, src, pos, patchSize, frame.TopLeft)
		return
	}

	f := NewFactors(FractionWeight(pos.X-fx), FractionWeight(pos.Y-fy))
	sampleMirrored(dst, src, left, top, patchSize, f)
}

func sampleMirrored(dst []uint8, src frame.View, left, top, patchSize int, f Factors) {
	ch := src.Channels
	out := 0
	for y := 0; y < patchSize; y++ {
		y0 := frame.MirrorIndex(top+y, src.Height)
		y1 := frame.MirrorIndex(top+y+1, src.Height)
		for x := 0; x < patchSize; x++ {
			x0 := frame.MirrorIndex(left+x, src.Width)
			x1 := frame.MirrorIndex(left+x+1, src.Width)

			tl := src.Offset(x0, y0)
			tr := src.Offset(x1, y0)
			bl := src.Offset(x0, y1)
			br := src.Offset(x1, y1)
			for n := 0; n < ch; n++ {
				dst[out] = f.Blend(src.Data[tl+n], src.Data[tr+n], src.Data[bl+n], src.Data[br+n])
				out++
			}
		}
	}
}
