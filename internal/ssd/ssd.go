// Package ssd computes sum-of-squared-differences (SSD) and zero-mean SSD
// costs between image patches. Sub-pixel patches are sampled with package
// interp using the top-left pixel centre; pixel-accurate patches are read
// from the frames directly.
//
// All functions are reentrant. Inputs are contracts: positions outside the
// documented ranges panic through slice bounds checks, or through assertions
// when built with the patchdebug tag. The *Checked variants validate first
// and return errors instead.
package ssd

import (
	"image"
	"sync"

	"github.com/cwbudde/patchmatch/internal/frame"
	"github.com/cwbudde/patchmatch/internal/interp"
)

// scratchPool holds patch buffers for operations that sample internally.
var scratchPool = sync.Pool{
	New: func() any {
		b := make([]uint8, 0, 2*interp.PatchElements(15, 4))
		return &b
	},
}

func getScratch(n int) *[]uint8 {
	p := scratchPool.Get().(*[]uint8)
	if cap(*p) < n {
		*p = make([]uint8, n)
	}
	*p = (*p)[:n]
	return p
}

func putScratch(p *[]uint8) {
	scratchPool.Put(p)
}

// SubPixel returns the SSD between the patch of a centred at posA and the
// patch of b centred at posB. Both positions must lie in the sampler's valid
// range and both frames must have the same channel count.
func SubPixel(a, b frame.View, posA, posB frame.Position, patchSize int) uint32 {
	if frame.DebugChecks {
		frame.Assertf(a.Channels == b.Channels, "channel mismatch %d != %d", a.Channels, b.Channels)
	}

	n := interp.PatchElements(patchSize, a.Channels)
	scratch := getScratch(2 * n)
	defer putScratch(scratch)
	buf := *scratch

	interp.SquarePatch(buf[:n], a, posA, patchSize, frame.TopLeft)
	interp.SquarePatch(buf[n:], b, posB, patchSize, frame.TopLeft)
	return Buffer(buf[:n], buf[n:])
}

// PixelSubPixel returns the SSD between the pixel-accurate patch of a
// centred at centerA and the sub-pixel patch of b centred at posB.
func PixelSubPixel(a, b frame.View, centerA image.Point, posB frame.Position, patchSize int) uint32 {
	if frame.DebugChecks {
		frame.Assertf(a.Channels == b.Channels, "channel mismatch %d != %d", a.Channels, b.Channels)
	}

	n := interp.PatchElements(patchSize, a.Channels)
	scratch := getScratch(2 * n)
	defer putScratch(scratch)
	buf := *scratch

	CopyPatch(buf[:n], a, centerA, patchSize)
	interp.SquarePatch(buf[n:], b, posB, patchSize, frame.TopLeft)
	return Buffer(buf[:n], buf[n:])
}

// PatchBuffer returns the SSD between the sub-pixel patch of a centred at
// posA and a caller-provided patch buffer with the same layout.
func PatchBuffer(a frame.View, posA frame.Position, patchSize int, buf []uint8) uint32 {
	n := interp.PatchElements(patchSize, a.Channels)
	scratch := getScratch(n)
	defer putScratch(scratch)

	interp.SquarePatch(*scratch, a, posA, patchSize, frame.TopLeft)
	return Buffer(*scratch, buf[:n])
}

// MirroredBorderBuffer is PatchBuffer for positions anywhere in the frame;
// pixels outside the frame are mirrored back into it.
func MirroredBorderBuffer(a frame.View, posA frame.Position, patchSize int, buf []uint8) uint32 {
	n := interp.PatchElements(patchSize, a.Channels)
	scratch := getScratch(n)
	defer putScratch(scratch)

	interp.SquarePatchMirroredBorder(*scratch, a, posA, patchSize)
	return Buffer(*scratch, buf[:n])
}

// CopyPatch copies the pixel-accurate patchSize x patchSize patch centred
// at center into dst. The patch must lie inside the frame.
func CopyPatch(dst []uint8, src frame.View, center image.Point, patchSize int) {
	half := patchSize / 2
	if frame.DebugChecks {
		frame.Assertf(center.X >= half && center.Y >= half && center.X+half < src.Width && center.Y+half < src.Height,
			"patch of size %d at %v leaves the %dx%d frame", patchSize, center, src.Width, src.Height)
	}

	rowLen := patchSize * src.Channels
	for y := 0; y < patchSize; y++ {
		o := src.Offset(center.X-half, center.Y-half+y)
		copy(dst[y*rowLen:(y+1)*rowLen], src.Data[o:o+rowLen])
	}
}

// Patch returns the SSD between two pixel-accurate patches, read in place.
func Patch(a, b frame.View, centerA, centerB image.Point, patchSize int) uint32 {
	half := patchSize / 2
	rowLen := patchSize * a.Channels

	var sum uint32
	for y := 0; y < patchSize; y++ {
		oa := a.Offset(centerA.X-half, centerA.Y-half+y)
		ob := b.Offset(centerB.X-half, centerB.Y-half+y)
		sum += bufferSSD(a.Data[oa:oa+rowLen], b.Data[ob:ob+rowLen])
	}
	return sum
}
