package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/cwbudde/patchmatch/internal/frame"
)

// loadView decodes an image file (png, jpeg, bmp, tiff, webp) into a view
// with the requested channel count.
func loadView(path string, channels int) (frame.View, error) {
	f, err := os.Open(path)
	if err != nil {
		return frame.View{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return frame.View{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	v, err := frame.FromImage(img, channels)
	if err != nil {
		return frame.View{}, fmt.Errorf("%s (%s): %w", path, format, err)
	}
	return v, nil
}

// loadMask decodes an image file into a one-channel mask.
func loadMask(path string) (frame.Mask, error) {
	f, err := os.Open(path)
	if err != nil {
		return frame.Mask{}, fmt.Errorf("failed to open mask: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return frame.Mask{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return frame.MaskFromImage(img)
}

// parsePosition parses "x,y".
func parsePosition(s string) (frame.Position, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return frame.Position{}, fmt.Errorf("position %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return frame.Position{}, fmt.Errorf("position %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return frame.Position{}, fmt.Errorf("position %q: %w", s, err)
	}
	return frame.Pos(x, y), nil
}

// parsePoint parses "x,y" into whole pixel coordinates.
func parsePoint(s string) (image.Point, error) {
	p, err := parsePosition(s)
	if err != nil {
		return image.Point{}, err
	}
	if p.X != float64(int(p.X)) || p.Y != float64(int(p.Y)) {
		return image.Point{}, fmt.Errorf("position %q: want whole pixels", s)
	}
	return image.Pt(int(p.X), int(p.Y)), nil
}
