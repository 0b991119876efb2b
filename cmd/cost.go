package main

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/spf13/cobra"

	"github.com/cwbudde/patchmatch/internal/frame"
	"github.com/cwbudde/patchmatch/internal/ssd"
	"github.com/cwbudde/patchmatch/internal/track"
)

var (
	costA, costB         string
	costMaskA, costMaskB string
	costChannels         int
	costAtA, costAtB     string
	costSize             int
	costMetric           string
	costMode             string
	costMaskValue        uint8
	costRejecting        bool
)

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Compare two patches with SSD or zero-mean SSD",
	Long: `Compares the patch of --a centred at --at-a with the patch of --b centred at --at-b.

Modes:
  subpixel  both positions are sub-pixel (default)
  pixel     both positions are whole pixels
  mirrored  whole pixels anywhere in the frame, borders mirrored (zssd only)

With --mask-a and --mask-b the masked variants are used; pixels whose mask
equals --mask-value are ignored (or reject the match with --rejecting).`,
	RunE: runCost,
}

func init() {
	costCmd.Flags().StringVar(&costA, "a", "", "First image path (required)")
	costCmd.Flags().StringVar(&costB, "b", "", "Second image path (required)")
	costCmd.Flags().StringVar(&costMaskA, "mask-a", "", "Mask of the first image")
	costCmd.Flags().StringVar(&costMaskB, "mask-b", "", "Mask of the second image")
	costCmd.Flags().IntVar(&costChannels, "channels", 3, "Channels to compare (1, 3, 4)")
	costCmd.Flags().StringVar(&costAtA, "at-a", "", "Centre in the first image as x,y (required)")
	costCmd.Flags().StringVar(&costAtB, "at-b", "", "Centre in the second image as x,y (required)")
	costCmd.Flags().IntVar(&costSize, "size", 5, "Patch size (odd)")
	costCmd.Flags().StringVar(&costMetric, "metric", "ssd", "Cost metric: ssd, zssd")
	costCmd.Flags().StringVar(&costMode, "mode", "subpixel", "Position mode: subpixel, pixel, mirrored")
	costCmd.Flags().Uint8Var(&costMaskValue, "mask-value", 0, "Mask value marking invalid pixels")
	costCmd.Flags().BoolVar(&costRejecting, "rejecting", false, "Reject the match when a valid pixel has no valid correspondent")

	costCmd.MarkFlagRequired("a")
	costCmd.MarkFlagRequired("b")
	costCmd.MarkFlagRequired("at-a")
	costCmd.MarkFlagRequired("at-b")
	rootCmd.AddCommand(costCmd)
}

type costOutput struct {
	Metric      string  `json:"metric"`
	Mode        string  `json:"mode"`
	Cost        uint32  `json:"cost"`
	ValidPixels *uint32 `json:"valid_pixels,omitempty"`
	Rejected    bool    `json:"rejected,omitempty"`
}

func runCost(cmd *cobra.Command, args []string) error {
	metric, err := track.ParseMetric(costMetric)
	if err != nil {
		return err
	}
	a, err := loadView(costA, costChannels)
	if err != nil {
		return err
	}
	b, err := loadView(costB, costChannels)
	if err != nil {
		return err
	}

	out := costOutput{Metric: metric.String(), Mode: costMode}
	if costMaskA != "" || costMaskB != "" {
		res, err := maskedCost(a, b, metric)
		if err != nil {
			return err
		}
		out.Cost = res.SSD
		out.ValidPixels = &res.ValidPixels
		out.Rejected = res.Rejected()
	} else {
		out.Cost, err = plainCost(a, b, metric)
		if err != nil {
			return err
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	return enc.Encode(out)
}

func plainCost(a, b frame.View, metric track.Metric) (uint32, error) {
	switch costMode {
	case "subpixel":
		posA, err := parsePosition(costAtA)
		if err != nil {
			return 0, err
		}
		posB, err := parsePosition(costAtB)
		if err != nil {
			return 0, err
		}
		if metric == track.MetricZeroMean {
			return ssd.ZeroMeanSubPixelChecked(a, b, posA, posB, costSize)
		}
		return ssd.SubPixelChecked(a, b, posA, posB, costSize)

	case "pixel", "mirrored":
		ca, err := parsePoint(costAtA)
		if err != nil {
			return 0, err
		}
		cb, err := parsePoint(costAtB)
		if err != nil {
			return 0, err
		}
		if costMode == "mirrored" {
			if metric != track.MetricZeroMean {
				return 0, fmt.Errorf("mode mirrored requires --metric zssd")
			}
			return ssd.ZeroMeanPatchMirroredBorderChecked(a, b, ca, cb, costSize)
		}
		if err := checkPixelPatch(a, ca, costSize); err != nil {
			return 0, err
		}
		if err := checkPixelPatch(b, cb, costSize); err != nil {
			return 0, err
		}
		if metric == track.MetricZeroMean {
			return ssd.ZeroMeanPatch(a, b, ca, cb, costSize), nil
		}
		return ssd.Patch(a, b, ca, cb, costSize), nil

	default:
		return 0, fmt.Errorf("unknown mode %q", costMode)
	}
}

func maskedCost(a, b frame.View, metric track.Metric) (ssd.Masked, error) {
	if costMaskA == "" || costMaskB == "" {
		return ssd.Masked{}, fmt.Errorf("masked comparison needs both --mask-a and --mask-b")
	}
	ma, err := loadMask(costMaskA)
	if err != nil {
		return ssd.Masked{}, err
	}
	mb, err := loadMask(costMaskB)
	if err != nil {
		return ssd.Masked{}, err
	}
	if ma.Width != a.Width || ma.Height != a.Height || mb.Width != b.Width || mb.Height != b.Height {
		return ssd.Masked{}, fmt.Errorf("mask sizes must match their images")
	}

	if costMode == "subpixel" {
		if metric == track.MetricZeroMean || costRejecting {
			return ssd.Masked{}, fmt.Errorf("sub-pixel masked comparison supports plain ssd only")
		}
		posA, err := parsePosition(costAtA)
		if err != nil {
			return ssd.Masked{}, err
		}
		posB, err := parsePosition(costAtB)
		if err != nil {
			return ssd.Masked{}, err
		}
		return ssd.SubPixelWithMask(a, b, ma, mb, posA, posB, costSize, costMaskValue), nil
	}

	ca, err := parsePoint(costAtA)
	if err != nil {
		return ssd.Masked{}, err
	}
	cb, err := parsePoint(costAtB)
	if err != nil {
		return ssd.Masked{}, err
	}
	if !a.Contains(ca.X, ca.Y) || !b.Contains(cb.X, cb.Y) {
		return ssd.Masked{}, fmt.Errorf("centres must lie inside the frames")
	}

	switch {
	case metric == track.MetricZeroMean:
		return ssd.ZeroMeanWithMask(a, b, ma, mb, ca, cb, costSize, costMaskValue), nil
	case costRejecting:
		return ssd.WithRejectingMask(a, b, ma, mb, ca, cb, costSize, costMaskValue), nil
	default:
		return ssd.WithMask(a, b, ma, mb, ca, cb, costSize, costMaskValue), nil
	}
}

func checkPixelPatch(v frame.View, c image.Point, size int) error {
	half := size / 2
	if size < 1 || size%2 == 0 {
		return fmt.Errorf("patch size %d must be odd", size)
	}
	if c.X < half || c.Y < half || c.X+half >= v.Width || c.Y+half >= v.Height {
		return fmt.Errorf("patch of size %d at %v leaves the %dx%d frame", size, c, v.Width, v.Height)
	}
	return nil
}
