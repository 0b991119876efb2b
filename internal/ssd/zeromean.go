package ssd

import (
	"image"

	"github.com/cwbudde/patchmatch/internal/frame"
	"github.com/cwbudde/patchmatch/internal/interp"
)

// Zero-mean SSD removes the per-channel mean of each patch before comparing,
// making the cost invariant to a constant brightness offset. Means are
// rounded to the nearest integer: (sum + pixels/2) / pixels.

const inlineChannels = 8

// meanSums accumulates per-channel sums of a packed buffer.
func meanSums(buf []uint8, channels int, sums []uint32) {
	for i := 0; i < len(buf); i += channels {
		for n := 0; n < channels; n++ {
			sums[n] += uint32(buf[i+n])
		}
	}
}

func roundedMean(sum, pixels uint32) int32 {
	return int32((sum + pixels/2) / pixels)
}

// ZeroMeanBuffer returns the zero-mean SSD of two equal-length packed
// buffers with the given channel count.
func ZeroMeanBuffer(a, b []uint8, channels int) uint32 {
	var inlineA, inlineB [inlineChannels]uint32
	sumsA, sumsB := inlineA[:], inlineB[:]
	if channels > inlineChannels {
		sumsA = make([]uint32, channels)
		sumsB = make([]uint32, channels)
	}
	sumsA, sumsB = sumsA[:channels], sumsB[:channels]

	meanSums(a, channels, sumsA)
	meanSums(b[:len(a)], channels, sumsB)

	pixels := uint32(len(a) / channels)
	var inlineDiff [inlineChannels]int32
	diff := inlineDiff[:]
	if channels > inlineChannels {
		diff = make([]int32, channels)
	}
	for n := 0; n < channels; n++ {
		diff[n] = roundedMean(sumsB[n], pixels) - roundedMean(sumsA[n], pixels)
	}

	var ssd uint32
	for i := 0; i < len(a); i += channels {
		for n := 0; n < channels; n++ {
			d := int32(a[i+n]) - int32(b[i+n]) + diff[n]
			ssd += uint32(d * d)
		}
	}
	return ssd
}

// ZeroMeanSubPixel is the zero-mean counterpart of SubPixel.
func ZeroMeanSubPixel(a, b frame.View, posA, posB frame.Position, patchSize int) uint32 {
	n := interp.PatchElements(patchSize, a.Channels)
	scratch := getScratch(2 * n)
	defer putScratch(scratch)
	buf := *scratch

	interp.SquarePatch(buf[:n], a, posA, patchSize, frame.TopLeft)
	interp.SquarePatch(buf[n:], b, posB, patchSize, frame.TopLeft)
	return ZeroMeanBuffer(buf[:n], buf[n:], a.Channels)
}

// ZeroMeanPixelSubPixel is the zero-mean counterpart of PixelSubPixel.
func ZeroMeanPixelSubPixel(a, b frame.View, centerA image.Point, posB frame.Position, patchSize int) uint32 {
	n := interp.PatchElements(patchSize, a.Channels)
	scratch := getScratch(2 * n)
	defer putScratch(scratch)
	buf := *scratch

	CopyPatch(buf[:n], a, centerA, patchSize)
	interp.SquarePatch(buf[n:], b, posB, patchSize, frame.TopLeft)
	return ZeroMeanBuffer(buf[:n], buf[n:], a.Channels)
}

// ZeroMeanPatchBuffer is the zero-mean counterpart of PatchBuffer.
func ZeroMeanPatchBuffer(a frame.View, posA frame.Position, patchSize int, buf []uint8) uint32 {
	n := interp.PatchElements(patchSize, a.Channels)
	scratch := getScratch(n)
	defer putScratch(scratch)

	interp.SquarePatch(*scratch, a, posA, patchSize, frame.TopLeft)
	return ZeroMeanBuffer(*scratch, buf[:n], a.Channels)
}

// ZeroMeanMirroredBorderBuffer is the zero-mean counterpart of MirroredBorderBuffer.
func ZeroMeanMirroredBorderBuffer(a frame.View, posA frame.Position, patchSize int, buf []uint8) uint32 {
	n := interp.PatchElements(patchSize, a.Channels)
	scratch := getScratch(n)
	defer putScratch(scratch)

	interp.SquarePatchMirroredBorder(*scratch, a, posA, patchSize)
	return ZeroMeanBuffer(*scratch, buf[:n], a.Channels)
}

// ZeroMeanPatch returns the zero-mean SSD of two pixel-accurate patches that
// lie inside their frames.
func ZeroMeanPatch(a, b frame.View, centerA, centerB image.Point, patchSize int) uint32 {
	n := interp.PatchElements(patchSize, a.Channels)
	scratch := getScratch(2 * n)
	defer putScratch(scratch)
	buf := *scratch

	CopyPatch(buf[:n], a, centerA, patchSize)
	CopyPatch(buf[n:], b, centerB, patchSize)
	return ZeroMeanBuffer(buf[:n], buf[n:], a.Channels)
}

// ZeroMeanPatchMirroredBorder returns the zero-mean SSD of two
// pixel-accurate patches whose centres may be anywhere inside their frames;
// pixels outside a frame are mirrored back into it.
func ZeroMeanPatchMirroredBorder(a, b frame.View, centerA, centerB image.Point, patchSize int) uint32 {
	n := interp.PatchElements(patchSize, a.Channels)
	scratch := getScratch(2 * n)
	defer putScratch(scratch)
	buf := *scratch

	copyMirroredPatch(buf[:n], a, centerA, patchSize)
	copyMirroredPatch(buf[n:], b, centerB, patchSize)
	return ZeroMeanBuffer(buf[:n], buf[n:], a.Channels)
}

func copyMirroredPatch(dst []uint8, src frame.View, center image.Point, patchSize int) {
	half := patchSize / 2
	ch := src.Channels
	out := 0
	for y := center.Y - half; y <= center.Y+half; y++ {
		my := frame.MirrorIndex(y, src.Height)
		for x := center.X - half; x <= center.X+half; x++ {
			o := src.Offset(frame.MirrorIndex(x, src.Width), my)
			copy(dst[out:out+ch], src.Data[o:o+ch])
			out += ch
		}
	}
}

// ZeroMeanWithMask is the zero-mean counterpart of WithMask for a square
// patch centred at centerA and centerB. See ZeroMeanWithMaskRegion.
func ZeroMeanWithMask(a, b frame.View, maskA, maskB frame.Mask, centerA, centerB image.Point, patchSize int, maskValue uint8) Masked {
	half := patchSize / 2
	originA := image.Pt(centerA.X-half, centerA.Y-half)
	originB := image.Pt(centerB.X-half, centerB.Y-half)
	return ZeroMeanWithMaskRegion(a, b, maskA, maskB, originA, originB, patchSize, patchSize, maskValue)
}

// ZeroMeanWithMaskRegion compares a width x height region whose top-left
// corners are originA and originB. The origins may lie outside the frames;
// the region is clamped to the part that lies inside both. Pixel pairs where
// either mask equals maskValue are ignored. Means are taken over the pairs
// that remain, so both patches see the same pixel set. An empty overlap
// yields Masked{0, 0}.
func ZeroMeanWithMaskRegion(a, b frame.View, maskA, maskB frame.Mask, originA, originB image.Point, width, height int, maskValue uint8) Masked {
	x0 := max(0, -originA.X, -originB.X)
	y0 := max(0, -originA.Y, -originB.Y)
	x1 := min(width, a.Width-originA.X, b.Width-originB.X)
	y1 := min(height, a.Height-originA.Y, b.Height-originB.Y)
	if x0 >= x1 || y0 >= y1 {
		return Masked{}
	}

	ch := a.Channels
	var inlineA, inlineB [inlineChannels]uint32
	sumsA, sumsB := inlineA[:], inlineB[:]
	if ch > inlineChannels {
		sumsA = make([]uint32, ch)
		sumsB = make([]uint32, ch)
	}

	var pixels uint32
	for y := y0; y < y1; y++ {
		ya, yb := originA.Y+y, originB.Y+y
		for x := x0; x < x1; x++ {
			xa, xb := originA.X+x, originB.X+x
			if maskA.At(xa, ya) == maskValue || maskB.At(xb, yb) == maskValue {
				continue
			}
			pa := a.Data[a.Offset(xa, ya):]
			pb := b.Data[b.Offset(xb, yb):]
			for n := 0; n < ch; n++ {
				sumsA[n] += uint32(pa[n])
				sumsB[n] += uint32(pb[n])
			}
			pixels++
		}
	}
	if pixels == 0 {
		return Masked{}
	}

	var inlineDiff [inlineChannels]int32
	diff := inlineDiff[:]
	if ch > inlineChannels {
		diff = make([]int32, ch)
	}
	for n := 0; n < ch; n++ {
		diff[n] = roundedMean(sumsB[n], pixels) - roundedMean(sumsA[n], pixels)
	}

	var ssd uint32
	for y := y0; y < y1; y++ {
		ya, yb := originA.Y+y, originB.Y+y
		for x := x0; x < x1; x++ {
			xa, xb := originA.X+x, originB.X+x
			if maskA.At(xa, ya) == maskValue || maskB.At(xb, yb) == maskValue {
				continue
			}
			pa := a.Data[a.Offset(xa, ya):]
			pb := b.Data[b.Offset(xb, yb):]
			for n := 0; n < ch; n++ {
				d := int32(pa[n]) - int32(pb[n]) + diff[n]
				ssd += uint32(d * d)
			}
		}
	}
	return Masked{SSD: ssd, ValidPixels: pixels}
}
