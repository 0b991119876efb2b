package interp

import (
	"errors"
	"fmt"

	"github.com/cwbudde/patchmatch/internal/frame"
)

var (
	// ErrPatchSize is returned for even or non-positive patch sizes.
	ErrPatchSize = errors.New("invalid patch size")
	// ErrOutOfRange is returned when a patch would read outside its frame.
	ErrOutOfRange = errors.New("patch position out of range")
	// ErrBufferSize is returned when a destination buffer has the wrong length.
	ErrBufferSize = errors.New("patch buffer size mismatch")
)

// PatchElements returns the number of bytes of a square patch.
func PatchElements(patchSize, channels int) int {
	return patchSize * patchSize * channels
}

// ValidatePatchSize checks that size is odd and positive.
func ValidatePatchSize(size int) error {
	if size < 1 || size%2 == 0 {
		return fmt.Errorf("%w: %d", ErrPatchSize, size)
	}
	return nil
}

// ValidateSquarePatch checks every precondition of SquarePatch.
func ValidateSquarePatch(dstLen int, src frame.View, pos frame.Position, patchSize int, pc frame.PixelCenter) error {
	if err := src.Validate(); err != nil {
		return err
	}
	if err := ValidatePatchSize(patchSize); err != nil {
		return err
	}
	if want := PatchElements(patchSize, src.Channels); dstLen != want {
		return fmt.Errorf("%w: have %d, want %d", ErrBufferSize, dstLen, want)
	}
	if !InSampleRange(src, pos, patchSize, pc) {
		return fmt.Errorf("%w: %v with patch size %d in %dx%d frame", ErrOutOfRange, pos, patchSize, src.Width, src.Height)
	}
	return nil
}

// InSampleRange reports whether a patch centred at pos can be sampled
// without leaving the frame: patchSize/2 <= p < dim - patchSize/2 - 1 after
// the pixel centre shift.
func InSampleRange(src frame.View, pos frame.Position, patchSize int, pc frame.PixelCenter) bool {
	half := float64(patchSize / 2)
	x := pc.Shift(pos.X)
	y := pc.Shift(pos.Y)
	return x >= half && y >= half &&
		x < float64(src.Width)-half-1 && y < float64(src.Height)-half-1
}

// SquarePatchChecked validates its arguments and then samples with SquarePatch.
func SquarePatchChecked(dst []uint8, src frame.View, pos frame.Position, patchSize int, pc frame.PixelCenter) error {
	if err := ValidateSquarePatch(len(dst), src, pos, patchSize, pc); err != nil {
		return err
	}
	SquarePatch(dst, src, pos, patchSize, pc)
	return nil
}

// SquarePatchMirroredBorderChecked validates its arguments and then samples
// with SquarePatchMirroredBorder.
func SquarePatchMirroredBorderChecked(dst []uint8, src frame.View, pos frame.Position, patchSize int) error {
	if err := src.Validate(); err != nil {
		return err
	}
	if err := ValidatePatchSize(patchSize); err != nil {
		return err
	}
	if patchSize > src.Width || patchSize > src.Height {
		return fmt.Errorf("%w: %d exceeds the %dx%d frame", ErrPatchSize, patchSize, src.Width, src.Height)
	}
	if want := PatchElements(patchSize, src.Channels); len(dst) != want {
		return fmt.Errorf("%w: have %d, want %d", ErrBufferSize, len(dst), want)
	}
	if pos.X < 0 || pos.Y < 0 || pos.X >= float64(src.Width) || pos.Y >= float64(src.Height) {
		return fmt.Errorf("%w: %v outside the %dx%d frame", ErrOutOfRange, pos, src.Width, src.Height)
	}
	SquarePatchMirroredBorder(dst, src, pos, patchSize)
	return nil
}
