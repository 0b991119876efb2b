package ssd

import (
	"image"
	"math"

	"github.com/cwbudde/patchmatch/internal/frame"
	"github.com/cwbudde/patchmatch/internal/interp"
)

// InvalidSSD is returned by WithRejectingMask when a correspondence is invalid.
const InvalidSSD = math.MaxUint32

// Masked is the result of a masked comparison.
type Masked struct {
	SSD         uint32
	ValidPixels uint32
}

// Rejected reports whether the comparison was aborted.
func (m Masked) Rejected() bool {
	return m.SSD == InvalidSSD && m.ValidPixels == 0
}

// overlap clamps a square patch around two centres to the part that lies
// inside both frames and returns the extents on each side of the centres.
func overlap(wa, ha, wb, hb int, ca, cb image.Point, half int) (left, top, right, bottom int) {
	left = min(ca.X, half, cb.X)
	top = min(ca.Y, half, cb.Y)
	right = min(wa-ca.X-1, half, wb-cb.X-1)
	bottom = min(ha-ca.Y-1, half, hb-cb.Y-1)
	return left, top, right, bottom
}

// WithMask compares two pixel-accurate patches that may be cut by the frame
// borders. The patch is clamped to the region that lies inside both frames;
// a pixel pair counts when neither mask carries maskValue. Centres must lie
// inside their frames.
func WithMask(a, b frame.View, maskA, maskB frame.Mask, centerA, centerB image.Point, patchSize int, maskValue uint8) Masked {
	left, top, right, bottom := overlap(a.Width, a.Height, b.Width, b.Height, centerA, centerB, patchSize/2)
	ch := a.Channels

	var res Masked
	for dy := -top; dy <= bottom; dy++ {
		ya := centerA.Y + dy
		yb := centerB.Y + dy
		for dx := -left; dx <= right; dx++ {
			xa := centerA.X + dx
			xb := centerB.X + dx
			if maskA.At(xa, ya) == maskValue || maskB.At(xb, yb) == maskValue {
				continue
			}

			pa := a.Data[a.Offset(xa, ya):]
			pb := b.Data[b.Offset(xb, yb):]
			for n := 0; n < ch; n++ {
				d := int32(pa[n]) - int32(pb[n])
				res.SSD += uint32(d * d)
			}
			res.ValidPixels++
		}
	}
	return res
}

// WithRejectingMask compares the valid pixels of the patch around centerA
// with their correspondents around centerB. Pixels of the first patch that
// are outside frame a or masked with maskValue are skipped. If any remaining
// pixel's correspondent is outside frame b or masked, the comparison is
// rejected with Masked{InvalidSSD, 0}.
func WithRejectingMask(a, b frame.View, maskA, maskB frame.Mask, centerA, centerB image.Point, patchSize int, maskValue uint8) Masked {
	half := patchSize / 2
	ch := a.Channels

	var res Masked
	for dy := -half; dy <= half; dy++ {
		ya := centerA.Y + dy
		yb := centerB.Y + dy
		if ya < 0 || ya >= a.Height {
			continue
		}
		for dx := -half; dx <= half; dx++ {
			xa := centerA.X + dx
			if xa < 0 || xa >= a.Width || maskA.At(xa, ya) == maskValue {
				continue
			}

			xb := centerB.X + dx
			if !b.Contains(xb, yb) || maskB.At(xb, yb) == maskValue {
				return Masked{SSD: InvalidSSD}
			}

			pa := a.Data[a.Offset(xa, ya):]
			pb := b.Data[b.Offset(xb, yb):]
			for n := 0; n < ch; n++ {
				d := int32(pa[n]) - int32(pb[n])
				res.SSD += uint32(d * d)
			}
			res.ValidPixels++
		}
	}
	return res
}

// SubPixelWithMask compares two sub-pixel patches sampled with masked
// interpolation (pixel centres at half-integer coordinates). Positions may
// lie anywhere; cells that cannot be interpolated from unmasked pixels are
// excluded. Masks mark invalid pixels with maskValue and valid pixels with
// its complement 0xFF-maskValue.
func SubPixelWithMask(a, b frame.View, maskA, maskB frame.Mask, posA, posB frame.Position, patchSize int, maskValue uint8) Masked {
	valid := frame.ValidMaskValue(maskValue)
	cells := patchSize * patchSize
	n := cells * a.Channels

	scratch := getScratch(2*n + 2*cells)
	defer putScratch(scratch)
	buf := *scratch
	pa, pb := buf[:n], buf[n:2*n]
	ma, mb := buf[2*n:2*n+cells], buf[2*n+cells:]

	interp.PatchWithMask(pa, ma, a, maskA, posA, patchSize, patchSize, frame.Center, valid)
	interp.PatchWithMask(pb, mb, b, maskB, posB, patchSize, patchSize, frame.Center, valid)

	ch := a.Channels
	var res Masked
	for i := 0; i < cells; i++ {
		if ma[i] != valid || mb[i] != valid {
			continue
		}
		res.SSD += bufferNaive(pa[i*ch:(i+1)*ch], pb[i*ch:(i+1)*ch])
		res.ValidPixels++
	}
	return res
}
