package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/patchmatch/internal/report"
	"github.com/cwbudde/patchmatch/internal/track"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <results.jsonl>",
	Short: "Summarise a match result file",
	Long: `Reads the JSON lines written by "match --out" and prints one row per run:
the number of matches, failures and converged refinements, and the mean and
worst cost of the successful matches.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

type runStats struct {
	id        string
	matches   int
	failed    int
	converged int
	costSum   float64
	worst     uint32
}

func runSummary(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open results: %w", err)
	}
	defer f.Close()

	entries, err := report.ReadAll(f)
	if err != nil {
		return err
	}
	runs := summarize(entries)

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No results found")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "RUN\tMATCHES\tFAILED\tCONVERGED\tMEAN COST\tWORST COST\n")
	for _, r := range runs {
		mean := 0.0
		if ok := r.matches - r.failed; ok > 0 {
			mean = r.costSum / float64(ok)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.1f\t%d\n", r.id, r.matches, r.failed, r.converged, mean, r.worst)
	}
	return tw.Flush()
}

// summarize groups entries by run id in order of first appearance. Entries
// without a run id form one group named "-".
func summarize(entries []report.Entry) []*runStats {
	var runs []*runStats
	byID := make(map[string]*runStats)
	for _, e := range entries {
		id := e.RunID
		if id == "" {
			id = "-"
		}
		r, ok := byID[id]
		if !ok {
			r = &runStats{id: id}
			byID[id] = r
			runs = append(runs, r)
		}

		r.matches++
		if e.Error != "" || e.Cost == track.Unreachable {
			r.failed++
			continue
		}
		if e.Converged {
			r.converged++
		}
		r.costSum += float64(e.Cost)
		r.worst = max(r.worst, e.Cost)
	}
	return runs
}
