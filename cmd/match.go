package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cwbudde/patchmatch/internal/opt"
	"github.com/cwbudde/patchmatch/internal/report"
	"github.com/cwbudde/patchmatch/internal/track"
)

var (
	matchRef       string
	matchTarget    string
	matchChannels  int
	matchPoints    []string
	matchOffset    string
	matchSize      int
	matchMetric    string
	matchOptimizer string
	matchRadius    float64
	matchRounds    int
	matchIters     int
	matchPop       int
	matchSteps     int
	matchSeed      int64
	matchWorkers   int
	matchOut       string
	matchPatience  int
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Find sub-pixel matches of reference patches in a target image",
	Long: `Extracts a patch of --ref around every --point and searches --target for the
position with the lowest cost, starting at the point plus --offset.
Results are written as JSON lines.`,
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&matchRef, "ref", "", "Reference image path (required)")
	matchCmd.Flags().StringVar(&matchTarget, "target", "", "Target image path (required)")
	matchCmd.Flags().IntVar(&matchChannels, "channels", 3, "Channels to compare (1, 3, 4)")
	matchCmd.Flags().StringArrayVar(&matchPoints, "point", nil, "Reference position as x,y (repeatable)")
	matchCmd.Flags().StringVar(&matchOffset, "offset", "0,0", "Initial guess offset as dx,dy")
	matchCmd.Flags().IntVar(&matchSize, "size", 7, "Patch size (odd)")
	matchCmd.Flags().StringVar(&matchMetric, "metric", "ssd", "Cost metric: ssd, zssd")
	matchCmd.Flags().StringVar(&matchOptimizer, "optimizer", "grid", "Optimizer: grid, mayfly")
	matchCmd.Flags().Float64Var(&matchRadius, "radius", 2, "Half-width of the first search window in pixels")
	matchCmd.Flags().IntVar(&matchRounds, "rounds", 3, "Maximum refinement rounds")
	matchCmd.Flags().IntVar(&matchIters, "iters", 40, "Mayfly iterations per round")
	matchCmd.Flags().IntVar(&matchPop, "pop", 20, "Mayfly population size")
	matchCmd.Flags().IntVar(&matchSteps, "steps", 5, "Grid samples per axis and level")
	matchCmd.Flags().Int64Var(&matchSeed, "seed", 42, "Random seed")
	matchCmd.Flags().IntVar(&matchWorkers, "workers", 0, "Concurrent matches (0 = GOMAXPROCS)")
	matchCmd.Flags().IntVar(&matchPatience, "patience", 2, "Rounds without improvement before stopping (0 disables)")
	matchCmd.Flags().StringVar(&matchOut, "out", "-", "Output path for JSON lines ('-' for stdout)")

	matchCmd.MarkFlagRequired("ref")
	matchCmd.MarkFlagRequired("target")
	matchCmd.MarkFlagRequired("point")
	rootCmd.AddCommand(matchCmd)
}

func newOptimizer(name string) (opt.Optimizer, error) {
	switch name {
	case "grid":
		return opt.NewGrid(matchSteps, 3), nil
	case "mayfly":
		return opt.NewMayfly(matchIters, matchPop, matchSeed), nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q (want grid or mayfly)", name)
	}
}

func runMatch(cmd *cobra.Command, args []string) error {
	metric, err := track.ParseMetric(matchMetric)
	if err != nil {
		return err
	}
	optimizer, err := newOptimizer(matchOptimizer)
	if err != nil {
		return err
	}
	offset, err := parsePosition(matchOffset)
	if err != nil {
		return fmt.Errorf("--offset: %w", err)
	}

	ref, err := loadView(matchRef, matchChannels)
	if err != nil {
		return err
	}
	target, err := loadView(matchTarget, matchChannels)
	if err != nil {
		return err
	}

	reqs := make([]track.Request, 0, len(matchPoints))
	for i, s := range matchPoints {
		p, err := parsePosition(s)
		if err != nil {
			return fmt.Errorf("--point: %w", err)
		}
		reqs = append(reqs, track.Request{
			ID:        strconv.Itoa(i),
			Reference: ref,
			Target:    target,
			Source:    p,
			Guess:     p.Add(offset.X, offset.Y),
		})
	}

	config := track.RefineConfig{
		Radius:      matchRadius,
		Rounds:      matchRounds,
		Metric:      metric,
		Convergence: track.DisabledConvergenceConfig(),
	}
	if matchPatience > 0 {
		config.Convergence = track.DefaultConvergenceConfig()
		config.Convergence.Patience = matchPatience
	}

	var out io.Writer = cmd.OutOrStdout()
	if matchOut != "-" {
		f, err := os.Create(matchOut)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	rw := report.NewWriter(out)
	runID := uuid.NewString()

	matcher := track.NewMatcher(track.NewRefiner(optimizer, config), matchSize, matchWorkers)
	matcher.OnMatch = func(m track.Match) {
		entry := report.FromMatch(m, metric)
		entry.RunID = runID
		if err := rw.Write(entry); err != nil {
			slog.Error("Failed to write result", "id", m.ID, "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	slog.Info("Starting match",
		"run_id", runID,
		"points", len(reqs),
		"optimizer", matchOptimizer,
		"metric", metric.String(),
		"patch_size", matchSize,
		"backend", backendLabel())

	start := time.Now()
	results, err := matcher.MatchAll(ctx, reqs)
	if ferr := rw.Flush(); ferr != nil && err == nil {
		err = fmt.Errorf("failed to flush results: %w", ferr)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("Match interrupted")
		}
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	slog.Info("Match complete",
		"points", len(results),
		"failed", failed,
		"elapsed", time.Since(start).String())
	return nil
}
