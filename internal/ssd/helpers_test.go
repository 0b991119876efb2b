package ssd

import (
	"math/rand"

	"github.com/cwbudde/patchmatch/internal/frame"
)

// randomView creates a frame with random pixels and random padding bytes.
func randomView(rng *rand.Rand, width, height, channels, padding int) frame.View {
	return rangeView(rng, width, height, channels, padding, 256)
}

// rangeView creates a frame with pixel values in [0, limit).
func rangeView(rng *rand.Rand, width, height, channels, padding, limit int) frame.View {
	stride := width*channels + padding
	data := make([]uint8, stride*height)
	for i := range data {
		data[i] = uint8(rng.Intn(limit))
	}
	return frame.View{Data: data, Width: width, Height: height, Channels: channels, PaddingElements: padding}
}

// offsetView returns a copy of v with delta added to every pixel value.
func offsetView(v frame.View, delta uint8) frame.View {
	out := v
	out.Data = make([]uint8, len(v.Data))
	for i, p := range v.Data {
		out.Data[i] = p + delta
	}
	return out
}

// randomMask marks roughly invalidRatio of all pixels with maskValue.
func randomMask(rng *rand.Rand, width, height, padding int, maskValue uint8, invalidRatio float64) frame.Mask {
	stride := width + padding
	data := make([]uint8, stride*height)
	for i := range data {
		if rng.Float64() < invalidRatio {
			data[i] = maskValue
		} else {
			data[i] = 0xFF - maskValue
		}
	}
	return frame.Mask{Data: data, Width: width, Height: height, PaddingElements: padding}
}

func randomPosition(rng *rand.Rand, v frame.View, patchSize int) frame.Position {
	half := float64(patchSize / 2)
	x := half + rng.Float64()*(float64(v.Width)-2*half-1)*0.999
	y := half + rng.Float64()*(float64(v.Height)-2*half-1)*0.999
	return frame.Pos(x, y)
}

func sqrDiff(a, b uint8) uint32 {
	d := int32(a) - int32(b)
	return uint32(d * d)
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

// maskWithPadding copies m into a new buffer whose padding bytes are all fill.
func maskWithPadding(m frame.Mask, fill uint8) frame.Mask {
	out := m
	out.Data = make([]uint8, len(m.Data))
	for i := range out.Data {
		out.Data[i] = fill
	}
	stride := m.StrideElements()
	for y := 0; y < m.Height; y++ {
		copy(out.Data[y*stride:y*stride+m.Width], m.Data[y*stride:y*stride+m.Width])
	}
	return out
}
