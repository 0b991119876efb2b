package frame

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// FromImage returns a view of img with the requested channel layout
// (1 = gray, 3 = RGB, 4 = non-premultiplied RGBA). Images that already use
// the layout are wrapped without copying, so the view keeps the image's row
// padding.
func FromImage(img image.Image, channels int) (View, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return View{}, fmt.Errorf("%w: empty image", ErrInvalidView)
	}

	switch channels {
	case 1:
		if g, ok := img.(*image.Gray); ok {
			return NewView(g.Pix, w, h, 1, g.Stride-w)
		}
		g := image.NewGray(image.Rect(0, 0, w, h))
		draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
		return NewView(g.Pix, w, h, 1, g.Stride-w)
	case 4:
		if n, ok := img.(*image.NRGBA); ok {
			return NewView(n.Pix, w, h, 4, n.Stride-4*w)
		}
		n := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(n, n.Bounds(), img, b.Min, draw.Src)
		return NewView(n.Pix, w, h, 4, n.Stride-4*w)
	case 3:
		data := make([]uint8, 0, w*h*3)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				data = append(data, c.R, c.G, c.B)
			}
		}
		return NewView(data, w, h, 3, 0)
	default:
		return View{}, fmt.Errorf("%w: unsupported channel count %d for image conversion", ErrInvalidView, channels)
	}
}

// MaskFromImage converts img to a one-channel mask using its luminance.
func MaskFromImage(img image.Image) (Mask, error) {
	v, err := FromImage(img, 1)
	if err != nil {
		return Mask{}, err
	}
	return Mask{Data: v.Data, Width: v.Width, Height: v.Height, PaddingElements: v.PaddingElements}, nil
}
