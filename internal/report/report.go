// Package report streams match results as JSON lines.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cwbudde/patchmatch/internal/track"
)

// Entry is one match result. Each entry is serialized as a single JSON line.
type Entry struct {
	// ID identifies the request
	ID string `json:"id"`

	// RunID groups the entries of one invocation
	RunID string `json:"run_id,omitempty"`

	// SourceX, SourceY locate the reference patch
	SourceX float64 `json:"source_x"`
	SourceY float64 `json:"source_y"`

	// X, Y locate the best match in the target frame
	X float64 `json:"x"`
	Y float64 `json:"y"`

	Cost      uint32 `json:"cost"`
	Metric    string `json:"metric"`
	Rounds    int    `json:"rounds"`
	Converged bool   `json:"converged"`

	// Error is set when the request failed
	Error string `json:"error,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// FromMatch converts a match into an entry.
func FromMatch(m track.Match, metric track.Metric) Entry {
	e := Entry{
		ID:        m.ID,
		SourceX:   m.Source.X,
		SourceY:   m.Source.Y,
		X:         m.Position.X,
		Y:         m.Position.Y,
		Cost:      m.Cost,
		Metric:    metric.String(),
		Rounds:    m.Rounds,
		Converged: m.Converged,
		Timestamp: time.Now().UTC(),
	}
	if m.Err != nil {
		e.Error = m.Err.Error()
	}
	return e
}

// Writer writes entries to an io.Writer.
// It uses buffered I/O and is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	writer *bufio.Writer
}

// NewWriter creates a writer on top of w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{writer: bufio.NewWriterSize(w, 64*1024)}
}

// Write appends an entry.
// The entry is buffered and will be written on Flush().
func (rw *Writer) Write(entry Entry) error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal report entry: %w", err)
	}
	if _, err := rw.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write report entry: %w", err)
	}
	if err := rw.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (rw *Writer) Flush() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if err := rw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush report writer: %w", err)
	}
	return nil
}

// ReadAll decodes every entry from r.
func ReadAll(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var entries []Entry
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return entries, fmt.Errorf("failed to parse report line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("failed to read report: %w", err)
	}
	return entries, nil
}
