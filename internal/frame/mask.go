package frame

import (
	"fmt"
)

// Mask is a single-channel 8-bit view. Which byte value marks a pixel as
// invalid is chosen per call by the operation consuming the mask.
type Mask struct {
	Data            []uint8
	Width           int
	Height          int
	PaddingElements int
}

// NewMask validates the geometry against data and returns the mask.
func NewMask(data []uint8, width, height, paddingElements int) (Mask, error) {
	m := Mask{Data: data, Width: width, Height: height, PaddingElements: paddingElements}
	if err := m.View().Validate(); err != nil {
		return Mask{}, fmt.Errorf("mask: %w", err)
	}
	return m, nil
}

// View returns the mask as a one-channel frame view.
func (m Mask) View() View {
	return View{
		Data:            m.Data,
		Width:           m.Width,
		Height:          m.Height,
		Channels:        1,
		PaddingElements: m.PaddingElements,
	}
}

func (m Mask) StrideElements() int {
	return m.Width + m.PaddingElements
}

// At returns the mask byte at (x, y).
func (m Mask) At(x, y int) uint8 {
	return m.Data[y*m.StrideElements()+x]
}

func (m Mask) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// ValidMaskValue returns the complement of an invalid-pixel marker. Masked
// sub-pixel sampling reports unusable cells with the complement of the value
// it was asked to accept.
func ValidMaskValue(maskValue uint8) uint8 {
	return 0xFF - maskValue
}
