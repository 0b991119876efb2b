// Package interp samples image patches at sub-pixel positions with
// bilinear interpolation and fixed-point weights.
//
// Three kernels produce byte-identical patches:
//   - reference: the canonical per-cell loop, any channel count
//   - unrolled:  per-channel-count kernels for 1..4 channels
//   - packed:    eight bytes per step in 64-bit words, 1..4 channels and patch sizes >= 5
//
// The backend is chosen once per process from CPU features and can be
// overridden with the PATCHMATCH_BACKEND environment variable or SetBackend.
package interp

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sys/cpu"

	"github.com/cwbudde/patchmatch/internal/frame"
)

// kernel samples a size x size patch. src begins at the top-left anchor
// pixel and must reach the pixel diagonally below the bottom-right cell.
type kernel func(dst, src []uint8, stride, size int, f Factors)

// Backend identifies a sampling kernel family.
type Backend int

const (
	BackendReference Backend = iota // per-cell loop
	BackendUnrolled                 // channel-specialised loops
	BackendPacked                   // 8 bytes per step in 64-bit lanes
)

func (b Backend) String() string {
	switch b {
	case BackendReference:
		return "reference"
	case BackendUnrolled:
		return "unrolled"
	case BackendPacked:
		return "packed"
	default:
		return "unknown"
	}
}

// ErrUnknownBackend is returned when a name does not match a known backend.
var ErrUnknownBackend = errors.New("unknown sampler backend")

// BackendEnv names the environment variable read at init.
const BackendEnv = "PATCHMATCH_BACKEND"

// ParseBackend maps user input to a backend.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "reference", "ref", "scalar":
		return BackendReference, nil
	case "unrolled", "template":
		return BackendUnrolled, nil
	case "packed", "simd", "swar":
		return BackendPacked, nil
	default:
		return BackendReference, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
}

// Backends lists every backend in order of increasing specialisation.
func Backends() []Backend {
	return []Backend{BackendReference, BackendUnrolled, BackendPacked}
}

// Dispatch table limits. Patches outside the table use a kernel chosen per call.
const (
	maxTableChannels  = 4
	maxTablePatchSize = 63
)

var (
	activeBackend Backend
	kernels       [maxTableChannels + 1][maxTablePatchSize + 1]kernel
)

func init() {
	backend := BackendUnrolled
	reason := "no vector support"
	if cpu.X86.HasSSE41 || cpu.ARM64.HasASIMD {
		backend = BackendPacked
		reason = "vector unit available"
	}

	if name := os.Getenv(BackendEnv); name != "" {
		if b, err := ParseBackend(name); err == nil {
			backend = b
			reason = "environment override"
		} else {
			slog.Warn("Ignoring sampler backend override", "env", BackendEnv, "value", name, "error", err)
		}
	}

	SetBackend(backend)
	slog.Debug("Patch sampler initialized", "backend", backend.String(), "reason", reason)
}

// SetBackend switches the sampling kernels. It must not be called while
// other goroutines are sampling.
func SetBackend(b Backend) {
	activeBackend = b
	for ch := 1; ch <= maxTableChannels; ch++ {
		for size := 1; size <= maxTablePatchSize; size++ {
			kernels[ch][size] = selectKernel(b, ch, size)
		}
	}
}

// ActiveBackend reports the backend chosen by init or SetBackend.
func ActiveBackend() Backend {
	return activeBackend
}

// Supports reports whether backend b has its own kernel for the
// configuration. Unsupported configurations fall back to the unrolled
// kernel, or to the reference kernel above four channels.
func Supports(b Backend, channels, patchSize int) bool {
	switch b {
	case BackendReference:
		return channels >= 1
	case BackendUnrolled:
		return channels >= 1 && channels <= 4
	case BackendPacked:
		return packedEligible(channels, patchSize)
	default:
		return false
	}
}

// Prebuilt closures for the common channel counts.
var (
	packedKernels    = [maxTableChannels + 1]kernel{nil, samplePacked(1), samplePacked(2), samplePacked(3), samplePacked(4)}
	referenceKernels = [maxTableChannels + 1]kernel{nil, newReferenceKernel(1), newReferenceKernel(2), newReferenceKernel(3), newReferenceKernel(4)}
)

func selectKernel(b Backend, channels, patchSize int) kernel {
	switch {
	case b == BackendPacked && packedEligible(channels, patchSize):
		return packedKernels[channels]
	case b == BackendReference:
		return referenceKernel(channels)
	default:
		return unrolledKernel(channels)
	}
}

func referenceKernel(channels int) kernel {
	if channels <= maxTableChannels {
		return referenceKernels[channels]
	}
	return newReferenceKernel(channels)
}

func newReferenceKernel(channels int) kernel {
	return func(dst, src []uint8, stride, size int, f Factors) {
		sampleReference(dst, src, stride, channels, size, size, f)
	}
}

// SquarePatch samples a patchSize x patchSize patch centred at pos into dst
// using the active backend. patchSize must be odd, dst must hold
// patchSize*patchSize*channels bytes, and pos must satisfy
// patchSize/2 <= p < dim - patchSize/2 - 1 on both axes after the pixel
// centre shift. All cells share the weights computed at the anchor.
func SquarePatch(dst []uint8, src frame.View, pos frame.Position, patchSize int, pc frame.PixelCenter) {
	left, fx := Anchor(pos.X, pc)
	top, fy := Anchor(pos.Y, pc)
	left -= patchSize / 2
	top -= patchSize / 2

	if frame.DebugChecks {
		frame.Assertf(patchSize%2 == 1, "patch size %d must be odd", patchSize)
		frame.Assertf(left >= 0 && top >= 0 && left+patchSize < src.Width && top+patchSize < src.Height,
			"patch of size %d at %v leaves the %dx%d frame", patchSize, pos, src.Width, src.Height)
		frame.Assertf(len(dst) >= patchSize*patchSize*src.Channels, "patch buffer too small")
	}

	k := lookupKernel(src.Channels, patchSize)
	k(dst, src.Data[src.Offset(left, top):], src.StrideElements(), patchSize, NewFactors(fx, fy))
}

// SquarePatchWith samples with an explicit backend, bypassing the active one.
func SquarePatchWith(b Backend, dst []uint8, src frame.View, pos frame.Position, patchSize int, pc frame.PixelCenter) {
	left, fx := Anchor(pos.X, pc)
	top, fy := Anchor(pos.Y, pc)
	left -= patchSize / 2
	top -= patchSize / 2

	k := selectKernel(b, src.Channels, patchSize)
	k(dst, src.Data[src.Offset(left, top):], src.StrideElements(), patchSize, NewFactors(fx, fy))
}

func lookupKernel(channels, patchSize int) kernel {
	if channels <= maxTableChannels && patchSize <= maxTablePatchSize {
		return kernels[channels][patchSize]
	}
	return selectKernel(activeBackend, channels, patchSize)
}
