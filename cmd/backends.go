package main

import (
	"fmt"
	"math/rand"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/patchmatch/internal/frame"
	"github.com/cwbudde/patchmatch/internal/interp"
)

var (
	backendsSize    int
	backendsBench   bool
	backendsSamples int
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List sampler backends and the patch shapes they cover",
	RunE:  runBackends,
}

func init() {
	backendsCmd.Flags().IntVar(&backendsSize, "size", 7, "Patch size to check")
	backendsCmd.Flags().BoolVar(&backendsBench, "bench", false, "Measure sampling throughput of every backend")
	backendsCmd.Flags().IntVar(&backendsSamples, "samples", 100000, "Patches sampled per backend and channel count with --bench")
	rootCmd.AddCommand(backendsCmd)
}

func backendLabel() string {
	return interp.ActiveBackend().String()
}

func runBackends(cmd *cobra.Command, args []string) error {
	if err := interp.ValidatePatchSize(backendsSize); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "BACKEND\tACTIVE\tCH1\tCH2\tCH3\tCH4\n")
	for _, b := range interp.Backends() {
		active := ""
		if b == interp.ActiveBackend() {
			active = "*"
		}
		fmt.Fprintf(tw, "%s\t%s", b, active)
		for ch := 1; ch <= 4; ch++ {
			fmt.Fprintf(tw, "\t%v", interp.Supports(b, ch, backendsSize))
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !backendsBench {
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout())
	tw = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "BACKEND\tCHANNELS\tPATCHES/S\tMPIXELS/S\n")
	for _, b := range interp.Backends() {
		for ch := 1; ch <= 4; ch++ {
			rate, err := benchBackend(b, ch, backendsSize, backendsSamples)
			if err != nil {
				return err
			}
			mpix := rate * float64(backendsSize*backendsSize) / 1e6
			fmt.Fprintf(tw, "%s\t%d\t%.0f\t%.1f\n", b, ch, rate, mpix)
		}
	}
	return tw.Flush()
}

// benchBackend samples n random patches from a synthetic frame and returns
// the number of patches per second. The frame grows with the patch so every
// size has a valid sampling range.
func benchBackend(b interp.Backend, channels, patchSize, n int) (float64, error) {
	dim := max(256, 2*patchSize+2)
	rng := rand.New(rand.NewSource(1))

	data := make([]uint8, dim*dim*channels)
	for i := range data {
		data[i] = uint8(rng.Intn(256))
	}
	v, err := frame.NewView(data, dim, dim, channels, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to create benchmark frame: %w", err)
	}

	half := patchSize / 2
	span := float64(dim - patchSize - 1)
	positions := make([]frame.Position, 1024)
	for i := range positions {
		positions[i] = frame.Pos(float64(half)+rng.Float64()*span, float64(half)+rng.Float64()*span)
	}

	dst := make([]uint8, interp.PatchElements(patchSize, channels))
	start := time.Now()
	for i := 0; i < n; i++ {
		interp.SquarePatchWith(b, dst, v, positions[i%len(positions)], patchSize, frame.TopLeft)
	}
	elapsed := time.Since(start).Seconds()
	if elapsed == 0 {
		return 0, nil
	}
	return float64(n) / elapsed, nil
}
