package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/patchmatch/internal/frame"
	"github.com/cwbudde/patchmatch/internal/interp"
	"github.com/cwbudde/patchmatch/internal/report"
)

func writeGray(t *testing.T, name string, w, h int, fill func(x, y int) uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: fill(x, y)})
		}
	}
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(args ...string) (string, error) {
	// array flags append once set, and cobra keeps flag state between runs
	matchPoints = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		want    frame.Position
		wantErr bool
	}{
		{"1,2", frame.Pos(1, 2), false},
		{" 3.25 , -0.5 ", frame.Pos(3.25, -0.5), false},
		{"1", frame.Position{}, true},
		{"1,2,3", frame.Position{}, true},
		{"a,2", frame.Position{}, true},
	}
	for _, tt := range tests {
		got, err := parsePosition(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePosition(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePosition(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint("4,7")
	if err != nil {
		t.Fatal(err)
	}
	if p != image.Pt(4, 7) {
		t.Errorf("parsePoint = %v, want (4,7)", p)
	}
	if _, err := parsePoint("4.5,7"); err == nil {
		t.Error("expected error for fractional point")
	}
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "version")
	if !strings.Contains(out, "patchmatch") {
		t.Errorf("version output %q does not name the program", out)
	}
}

func TestSampleCommand(t *testing.T) {
	path := writeGray(t, "flat.png", 16, 16, func(x, y int) uint8 { return 100 })

	out := execute(t, "sample", "--image", path, "--channels", "1", "--at", "5.5,6.25",
		"--size", "3", "--center", "top-left", "--mirrored=false")

	rows := strings.Split(strings.TrimSpace(out), "\n")
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3:\n%s", len(rows), out)
	}
	for _, row := range rows {
		if row != "[100] [100] [100]" {
			t.Errorf("row %q, want flat 100s", row)
		}
	}
}

func TestCostCommand(t *testing.T) {
	gradient := func(x, y int) uint8 { return uint8(x*8 + y*3) }
	a := writeGray(t, "a.png", 24, 24, gradient)
	b := writeGray(t, "b.png", 24, 24, gradient)

	tests := []struct {
		name   string
		args   []string
		metric string
	}{
		{"subpixel ssd", []string{"--at-a", "8.5,9.25", "--at-b", "8.5,9.25", "--metric", "ssd", "--mode", "subpixel"}, "ssd"},
		{"pixel zssd", []string{"--at-a", "10,10", "--at-b", "10,10", "--metric", "zssd", "--mode", "pixel"}, "zssd"},
		{"mirrored zssd", []string{"--at-a", "0,0", "--at-b", "0,0", "--metric", "zssd", "--mode", "mirrored"}, "zssd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"cost", "--a", a, "--b", b, "--channels", "1", "--size", "5",
				"--mask-a", "", "--mask-b", "", "--rejecting=false"}, tt.args...)
			var got costOutput
			if err := json.Unmarshal([]byte(execute(t, args...)), &got); err != nil {
				t.Fatal(err)
			}
			if got.Cost != 0 || got.Metric != tt.metric {
				t.Errorf("got %+v, want zero %s cost", got, tt.metric)
			}
		})
	}
}

func TestCostCommand_MirroredRejectsLargePatch(t *testing.T) {
	a := writeGray(t, "small.png", 6, 6, func(x, y int) uint8 { return uint8(x*40 + y) })

	for _, size := range []string{"41", "15", "7"} {
		t.Run("size"+size, func(t *testing.T) {
			_, err := run("cost", "--a", a, "--b", a, "--channels", "1", "--size", size,
				"--at-a", "2,2", "--at-b", "2,2", "--metric", "zssd", "--mode", "mirrored",
				"--mask-a", "", "--mask-b", "", "--rejecting=false")
			if !errors.Is(err, interp.ErrPatchSize) {
				t.Errorf("got %v, want ErrPatchSize", err)
			}
		})
	}

	_, err := run("cost", "--a", a, "--b", a, "--channels", "1", "--size", "3",
		"--at-a", "6,2", "--at-b", "2,2", "--metric", "zssd", "--mode", "mirrored",
		"--mask-a", "", "--mask-b", "", "--rejecting=false")
	if !errors.Is(err, interp.ErrOutOfRange) {
		t.Errorf("centre outside the frame: got %v, want ErrOutOfRange", err)
	}
}

func TestMatchCommand(t *testing.T) {
	ref := writeGray(t, "ref.png", 40, 40, func(x, y int) uint8 {
		return uint8((x*x + 3*y*y + x*y) % 251)
	})

	out := execute(t, "match", "--ref", ref, "--target", ref, "--channels", "1",
		"--point", "15,15", "--point", "20,22", "--offset", "0,0", "--size", "5",
		"--optimizer", "grid", "--rounds", "1", "--workers", "2", "--out", "-")

	entries, err := report.ReadAll(strings.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].RunID == "" || entries[0].RunID != entries[1].RunID {
		t.Errorf("run ids %q and %q, want one shared id", entries[0].RunID, entries[1].RunID)
	}
	for _, e := range entries {
		if e.Error != "" {
			t.Errorf("entry %s: %s", e.ID, e.Error)
		}
		if e.Cost != 0 {
			t.Errorf("entry %s: cost %d at (%v,%v), want exact match", e.ID, e.Cost, e.X, e.Y)
		}
	}
}

func TestBackendsCommand(t *testing.T) {
	out := execute(t, "backends", "--size", "7", "--bench=false")
	for _, name := range []string{"reference", "unrolled", "packed"} {
		if !strings.Contains(out, name) {
			t.Errorf("output misses backend %s:\n%s", name, out)
		}
	}
	if !strings.Contains(out, "*") {
		t.Errorf("output does not mark the active backend:\n%s", out)
	}
}

// TestBackendsCommand_BenchLargePatch checks that patches larger than the
// default synthetic frame are benchmarked on a frame that fits them.
func TestBackendsCommand_BenchLargePatch(t *testing.T) {
	out := execute(t, "backends", "--size", "301", "--bench", "--samples", "1")
	if !strings.Contains(out, "MPIXELS/S") {
		t.Errorf("missing benchmark table:\n%s", out)
	}
	if got := strings.Count(out, "\n"); got < 1+3+1+1+12 {
		t.Errorf("benchmark table has %d lines:\n%s", got, out)
	}
}

func TestSummaryCommand(t *testing.T) {
	ref := writeGray(t, "ref.png", 40, 40, func(x, y int) uint8 {
		return uint8((x*x + 3*y*y + x*y) % 251)
	})
	results := filepath.Join(t.TempDir(), "results.jsonl")

	execute(t, "match", "--ref", ref, "--target", ref, "--channels", "1",
		"--point", "15,15", "--point", "20,22", "--point", "1,1", "--offset", "0,0", "--size", "5",
		"--optimizer", "grid", "--rounds", "1", "--workers", "1", "--out", results)

	f, err := os.Open(results)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := report.ReadAll(f)
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	out := execute(t, "summary", results)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header and one run:\n%s", len(lines), out)
	}
	fields := strings.Fields(lines[1])
	if fields[0] != entries[0].RunID || fields[1] != "3" {
		t.Errorf("summary row %q, want run %s with 3 matches", lines[1], entries[0].RunID)
	}
}

func TestSummarize(t *testing.T) {
	entries := []report.Entry{
		{ID: "0", RunID: "a", Cost: 10, Converged: true},
		{ID: "1", RunID: "a", Cost: 30},
		{ID: "2", RunID: "a", Cost: 4294967295, Error: "out of range"},
		{ID: "0", Cost: 7},
	}
	runs := summarize(entries)
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}

	a := runs[0]
	if a.id != "a" || a.matches != 3 || a.failed != 1 || a.converged != 1 || a.costSum != 40 || a.worst != 30 {
		t.Errorf("run a = %+v", *a)
	}
	if b := runs[1]; b.id != "-" || b.matches != 1 || b.worst != 7 {
		t.Errorf("run without id = %+v", *b)
	}
}
