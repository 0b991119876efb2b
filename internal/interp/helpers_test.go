package interp

import (
	"math"
	"math/rand"

	"github.com/cwbudde/patchmatch/internal/frame"
)

// randomView creates a frame with random pixels and random padding bytes.
func randomView(rng *rand.Rand, width, height, channels, padding int) frame.View {
	stride := width*channels + padding
	data := make([]uint8, stride*height)
	for i := range data {
		data[i] = uint8(rng.Intn(256))
	}
	return frame.View{Data: data, Width: width, Height: height, Channels: channels, PaddingElements: padding}
}

// withPadding copies v into a new buffer whose padding bytes are all fill.
func withPadding(v frame.View, fill uint8) frame.View {
	out := v
	out.Data = make([]uint8, len(v.Data))
	for i := range out.Data {
		out.Data[i] = fill
	}
	for y := 0; y < v.Height; y++ {
		copy(out.Row(y), v.Row(y))
	}
	return out
}

// randomPosition returns a position in the regular sampler's valid range.
func randomPosition(rng *rand.Rand, v frame.View, patchSize int, pc frame.PixelCenter) frame.Position {
	half := float64(patchSize / 2)
	shift := 0.0
	if pc == frame.Center {
		shift = 0.5
	}
	x := half + rng.Float64()*(float64(v.Width)-2*half-1)
	y := half + rng.Float64()*(float64(v.Height)-2*half-1)
	// keep strictly inside the exclusive bound
	x = math.Min(x, float64(v.Width)-half-1-1e-6)
	y = math.Min(y, float64(v.Height)-half-1-1e-6)
	return frame.Position{X: x + shift, Y: y + shift}
}

// naivePixel interpolates one channel value from scratch, without Factors.
func naivePixel(v frame.View, x0, y0, x1, y1 int, fx, fy uint32, n int) uint8 {
	fxl := 128 - fx
	fyt := 128 - fy
	tl := uint32(v.Data[v.Offset(x0, y0)+n])
	tr := uint32(v.Data[v.Offset(x1, y0)+n])
	bl := uint32(v.Data[v.Offset(x0, y1)+n])
	br := uint32(v.Data[v.Offset(x1, y1)+n])
	top := tl*fxl + tr*fx
	bottom := bl*fxl + br*fx
	return uint8((top*fyt + bottom*fy + 8192) / 16384)
}

// naiveSquarePatch re-implements square patch sampling cell by cell.
func naiveSquarePatch(v frame.View, pos frame.Position, patchSize int, pc frame.PixelCenter) []uint8 {
	sx, sy := pos.X, pos.Y
	if pc == frame.Center {
		sx -= 0.5
		sy -= 0.5
	}
	ix := int(math.Floor(sx))
	iy := int(math.Floor(sy))
	fx := uint32((sx-float64(ix))*128 + 0.5)
	fy := uint32((sy-float64(iy))*128 + 0.5)

	out := make([]uint8, 0, patchSize*patchSize*v.Channels)
	for y := iy - patchSize/2; y <= iy+patchSize/2; y++ {
		for x := ix - patchSize/2; x <= ix+patchSize/2; x++ {
			for n := 0; n < v.Channels; n++ {
				out = append(out, naivePixel(v, x, y, x+1, y+1, fx, fy, n))
			}
		}
	}
	return out
}

// naiveMirroredPatch re-implements mirrored-border sampling.
func naiveMirroredPatch(v frame.View, pos frame.Position, patchSize int) []uint8 {
	mirror := func(c, dim int) int {
		if c < 0 {
			return -c - 1
		}
		if c >= dim {
			return dim - (c - dim) - 1
		}
		return c
	}

	patchLeft := pos.X - float64(patchSize/2)
	patchTop := pos.Y - float64(patchSize/2)
	left := int(patchLeft)
	if patchLeft < 0 && float64(left) != patchLeft {
		left--
	}
	top := int(patchTop)
	if patchTop < 0 && float64(top) != patchTop {
		top--
	}
	fx := uint32((pos.X-float64(int(pos.X)))*128 + 0.5)
	fy := uint32((pos.Y-float64(int(pos.Y)))*128 + 0.5)

	out := make([]uint8, 0, patchSize*patchSize*v.Channels)
	for y := 0; y < patchSize; y++ {
		for x := 0; x < patchSize; x++ {
			x0 := mirror(left+x, v.Width)
			x1 := mirror(left+x+1, v.Width)
			y0 := mirror(top+y, v.Height)
			y1 := mirror(top+y+1, v.Height)
			for n := 0; n < v.Channels; n++ {
				out = append(out, naivePixel(v, x0, y0, x1, y1, fx, fy, n))
			}
		}
	}
	return out
}
