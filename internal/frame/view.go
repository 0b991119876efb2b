// Package frame describes caller-owned 8-bit images and masks as strided,
// read-only views.
package frame

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrInvalidView is returned when a view's geometry is not usable.
	ErrInvalidView = errors.New("invalid frame view")
	// ErrShortBuffer indicates the backing slice cannot hold the described geometry.
	ErrShortBuffer = errors.New("frame buffer too short")
)

// View is a read-only window onto an interleaved 8-bit image with
// PaddingElements bytes at the end of every row.
type View struct {
	Data            []uint8
	Width           int
	Height          int
	Channels        int
	PaddingElements int
}

// NewView validates the geometry against data and returns the view.
func NewView(data []uint8, width, height, channels, paddingElements int) (View, error) {
	v := View{
		Data:            data,
		Width:           width,
		Height:          height,
		Channels:        channels,
		PaddingElements: paddingElements,
	}
	if err := v.Validate(); err != nil {
		return View{}, err
	}
	return v, nil
}

// Validate reports whether the view describes a usable image.
func (v View) Validate() error {
	if v.Width < 1 || v.Height < 1 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidView, v.Width, v.Height)
	}
	if v.Channels < 1 {
		return fmt.Errorf("%w: %d channels", ErrInvalidView, v.Channels)
	}
	if v.PaddingElements < 0 {
		return fmt.Errorf("%w: negative padding %d", ErrInvalidView, v.PaddingElements)
	}
	if need := v.MinLen(); len(v.Data) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(v.Data), need)
	}
	return nil
}

// StrideElements is the distance in bytes between two vertically adjacent pixels.
func (v View) StrideElements() int {
	return v.Width*v.Channels + v.PaddingElements
}

// MinLen is the smallest backing slice that holds the view. The last row
// does not need its padding.
func (v View) MinLen() int {
	return (v.Height-1)*v.StrideElements() + v.Width*v.Channels
}

// Offset returns the index of the first channel of pixel (x, y).
func (v View) Offset(x, y int) int {
	return y*v.StrideElements() + x*v.Channels
}

// Row returns the pixel bytes of row y without padding.
func (v View) Row(y int) []uint8 {
	start := y * v.StrideElements()
	return v.Data[start : start+v.Width*v.Channels]
}

// Pixel returns the channels of pixel (x, y).
func (v View) Pixel(x, y int) []uint8 {
	o := v.Offset(x, y)
	return v.Data[o : o+v.Channels]
}

// Contains reports whether the integer pixel lies inside the frame.
func (v View) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < v.Width && y < v.Height
}

// Bounds returns the frame rectangle.
func (v View) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.Width, v.Height)
}
