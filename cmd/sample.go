package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwbudde/patchmatch/internal/frame"
	"github.com/cwbudde/patchmatch/internal/interp"
)

var (
	sampleImage    string
	sampleChannels int
	sampleAt       string
	sampleSize     int
	sampleCenter   string
	sampleMirrored bool
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print the interpolated patch at a sub-pixel position",
	RunE:  runSample,
}

func init() {
	sampleCmd.Flags().StringVar(&sampleImage, "image", "", "Image path (required)")
	sampleCmd.Flags().IntVar(&sampleChannels, "channels", 3, "Channels to sample (1, 3, 4)")
	sampleCmd.Flags().StringVar(&sampleAt, "at", "", "Patch centre as x,y (required)")
	sampleCmd.Flags().IntVar(&sampleSize, "size", 5, "Patch size (odd)")
	sampleCmd.Flags().StringVar(&sampleCenter, "center", "top-left", "Pixel centre convention: top-left, center")
	sampleCmd.Flags().BoolVar(&sampleMirrored, "mirrored", false, "Mirror pixels outside the frame (top-left convention only)")

	sampleCmd.MarkFlagRequired("image")
	sampleCmd.MarkFlagRequired("at")
	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, args []string) error {
	v, err := loadView(sampleImage, sampleChannels)
	if err != nil {
		return err
	}
	pos, err := parsePosition(sampleAt)
	if err != nil {
		return err
	}
	pc, err := frame.ParsePixelCenter(sampleCenter)
	if err != nil {
		return err
	}

	patch := make([]uint8, interp.PatchElements(sampleSize, v.Channels))
	if sampleMirrored {
		err = interp.SquarePatchMirroredBorderChecked(patch, v, pos, sampleSize)
	} else {
		err = interp.SquarePatchChecked(patch, v, pos, sampleSize, pc)
	}
	if err != nil {
		return err
	}

	slog.Debug("Sampled patch", "position", pos.String(), "size", sampleSize, "backend", interp.ActiveBackend().String())

	out := cmd.OutOrStdout()
	for y := 0; y < sampleSize; y++ {
		cells := make([]string, sampleSize)
		for x := 0; x < sampleSize; x++ {
			o := (y*sampleSize + x) * v.Channels
			cells[x] = formatPixel(patch[o : o+v.Channels])
		}
		fmt.Fprintln(out, strings.Join(cells, " "))
	}
	return nil
}

func formatPixel(p []uint8) string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = fmt.Sprintf("%3d", c)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
