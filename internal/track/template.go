// Package track matches image patches between frames: it extracts a
// reference patch once and searches a second frame for the sub-pixel
// position that minimises the patch cost.
package track

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/patchmatch/internal/frame"
	"github.com/cwbudde/patchmatch/internal/interp"
	"github.com/cwbudde/patchmatch/internal/ssd"
)

// Metric selects the patch cost.
type Metric int

const (
	MetricSSD      Metric = iota // sum of squared differences
	MetricZeroMean               // zero-mean SSD, insensitive to brightness offsets
)

func (m Metric) String() string {
	switch m {
	case MetricSSD:
		return "ssd"
	case MetricZeroMean:
		return "zssd"
	default:
		return "unknown"
	}
}

// ParseMetric maps user input to a metric.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ssd":
		return MetricSSD, nil
	case "zssd", "zero-mean", "zeromean":
		return MetricZeroMean, nil
	default:
		return MetricSSD, fmt.Errorf("unknown metric %q", name)
	}
}

// Template is a sampled reference patch.
type Template struct {
	Data      []uint8
	PatchSize int
	Channels  int
	Origin    frame.Position
}

// NewTemplate samples the patch of src centred at pos. Positions too close to
// the border for regular sampling use mirrored borders.
func NewTemplate(src frame.View, pos frame.Position, patchSize int) (*Template, error) {
	t := &Template{
		Data:      make([]uint8, interp.PatchElements(patchSize, src.Channels)),
		PatchSize: patchSize,
		Channels:  src.Channels,
		Origin:    pos,
	}

	if interp.InSampleRange(src, pos, patchSize, frame.TopLeft) {
		if err := interp.SquarePatchChecked(t.Data, src, pos, patchSize, frame.TopLeft); err != nil {
			return nil, fmt.Errorf("sample template: %w", err)
		}
		return t, nil
	}
	if err := interp.SquarePatchMirroredBorderChecked(t.Data, src, pos, patchSize); err != nil {
		return nil, fmt.Errorf("sample template: %w", err)
	}
	return t, nil
}

// Unreachable is the cost of positions outside the target frame.
const Unreachable = math.MaxUint32

// Cost compares the template with the patch of target centred at pos.
func (t *Template) Cost(target frame.View, pos frame.Position, m Metric) uint32 {
	if target.Channels != t.Channels {
		return Unreachable
	}

	if interp.InSampleRange(target, pos, t.PatchSize, frame.TopLeft) {
		if m == MetricZeroMean {
			return ssd.ZeroMeanPatchBuffer(target, pos, t.PatchSize, t.Data)
		}
		return ssd.PatchBuffer(target, pos, t.PatchSize, t.Data)
	}

	if pos.X < 0 || pos.Y < 0 || pos.X >= float64(target.Width) || pos.Y >= float64(target.Height) ||
		t.PatchSize > target.Width || t.PatchSize > target.Height {
		return Unreachable
	}
	if m == MetricZeroMean {
		return ssd.ZeroMeanMirroredBorderBuffer(target, pos, t.PatchSize, t.Data)
	}
	return ssd.MirroredBorderBuffer(target, pos, t.PatchSize, t.Data)
}
