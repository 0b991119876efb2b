package ssd

import (
	"errors"
	"fmt"
	"image"

	"github.com/cwbudde/patchmatch/internal/frame"
	"github.com/cwbudde/patchmatch/internal/interp"
)

// ErrChannelMismatch is returned when two frames have different channel counts.
var ErrChannelMismatch = errors.New("channel count mismatch")

func validatePair(a, b frame.View) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("first frame: %w", err)
	}
	if err := b.Validate(); err != nil {
		return fmt.Errorf("second frame: %w", err)
	}
	if a.Channels != b.Channels {
		return fmt.Errorf("%w: %d != %d", ErrChannelMismatch, a.Channels, b.Channels)
	}
	return nil
}

func validateSample(v frame.View, pos frame.Position, patchSize int) error {
	if err := interp.ValidatePatchSize(patchSize); err != nil {
		return err
	}
	if !interp.InSampleRange(v, pos, patchSize, frame.TopLeft) {
		return fmt.Errorf("%w: %v with patch size %d in %dx%d frame",
			interp.ErrOutOfRange, pos, patchSize, v.Width, v.Height)
	}
	return nil
}

// SubPixelChecked validates its arguments and returns SubPixel.
func SubPixelChecked(a, b frame.View, posA, posB frame.Position, patchSize int) (uint32, error) {
	if err := validatePair(a, b); err != nil {
		return 0, err
	}
	if err := validateSample(a, posA, patchSize); err != nil {
		return 0, fmt.Errorf("first patch: %w", err)
	}
	if err := validateSample(b, posB, patchSize); err != nil {
		return 0, fmt.Errorf("second patch: %w", err)
	}
	return SubPixel(a, b, posA, posB, patchSize), nil
}

// ZeroMeanSubPixelChecked validates its arguments and returns ZeroMeanSubPixel.
func ZeroMeanSubPixelChecked(a, b frame.View, posA, posB frame.Position, patchSize int) (uint32, error) {
	if err := validatePair(a, b); err != nil {
		return 0, err
	}
	if err := validateSample(a, posA, patchSize); err != nil {
		return 0, fmt.Errorf("first patch: %w", err)
	}
	if err := validateSample(b, posB, patchSize); err != nil {
		return 0, fmt.Errorf("second patch: %w", err)
	}
	return ZeroMeanSubPixel(a, b, posA, posB, patchSize), nil
}

// PatchBufferChecked validates its arguments and returns PatchBuffer.
func PatchBufferChecked(a frame.View, posA frame.Position, patchSize int, buf []uint8) (uint32, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := validateSample(a, posA, patchSize); err != nil {
		return 0, err
	}
	if want := interp.PatchElements(patchSize, a.Channels); len(buf) != want {
		return 0, fmt.Errorf("%w: have %d, want %d", interp.ErrBufferSize, len(buf), want)
	}
	return PatchBuffer(a, posA, patchSize, buf), nil
}

// ZeroMeanPatchMirroredBorderChecked validates its arguments and returns
// ZeroMeanPatchMirroredBorder. Coordinates are mirrored once, so the patch
// may not be larger than either frame.
func ZeroMeanPatchMirroredBorderChecked(a, b frame.View, centerA, centerB image.Point, patchSize int) (uint32, error) {
	if err := validatePair(a, b); err != nil {
		return 0, err
	}
	if err := interp.ValidatePatchSize(patchSize); err != nil {
		return 0, err
	}
	for _, v := range []frame.View{a, b} {
		if patchSize > v.Width || patchSize > v.Height {
			return 0, fmt.Errorf("%w: %d exceeds the %dx%d frame", interp.ErrPatchSize, patchSize, v.Width, v.Height)
		}
	}
	if !a.Contains(centerA.X, centerA.Y) {
		return 0, fmt.Errorf("first patch: %w: %v outside the %dx%d frame", interp.ErrOutOfRange, centerA, a.Width, a.Height)
	}
	if !b.Contains(centerB.X, centerB.Y) {
		return 0, fmt.Errorf("second patch: %w: %v outside the %dx%d frame", interp.ErrOutOfRange, centerB, b.Width, b.Height)
	}
	return ZeroMeanPatchMirroredBorder(a, b, centerA, centerB, patchSize), nil
}
