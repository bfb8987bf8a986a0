package report

import (
	"io"
	"time"

	"github.com/mkosuda/proxyvet/internal/model"
)

// Summary is the outcome of one classification run, in the shape the
// writers render.
type Summary struct {
	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Identity is the real address the run probed against, or "unknown"
	// when the echo oracle could not be reached directly.
	Identity string `json:"identity"`

	// Sources is the number of list sources harvested. Zero when the
	// candidates came from the store instead.
	Sources int `json:"sources"`

	// Candidates is the size of the deduplicated candidate set.
	Candidates int `json:"candidates"`

	// Anonymous, Transparent, and Failed are the final tallies.
	Anonymous   int64 `json:"anonymous"`
	Transparent int64 `json:"transparent"`
	Failed      int64 `json:"failed"`

	// Relays lists the endpoints verified anonymous in this run.
	Relays []model.ProbeResult `json:"relays,omitempty"`
}

// NewSummary assembles a Summary from a run's tallies.
func NewSummary(startedAt, finishedAt time.Time, identity model.RealIdentity, sources, candidates int, counters model.CountersSnapshot) *Summary {
	return &Summary{
		StartedAt:   startedAt,
		FinishedAt:  finishedAt,
		Identity:    identity.String(),
		Sources:     sources,
		Candidates:  candidates,
		Anonymous:   counters.Anonymous,
		Transparent: counters.Transparent,
		Failed:      counters.Failed,
	}
}

// Total returns the number of candidates that received a verdict.
func (s *Summary) Total() int64 {
	return s.Anonymous + s.Transparent + s.Failed
}

// Duration returns the run's wall-clock duration.
func (s *Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Degraded reports whether the run executed without a resolved identity.
func (s *Summary) Degraded() bool {
	return s.Identity == model.IdentityUnknown.String()
}

// Writer defines the interface for report output.
// Implementations write run summaries in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the summary to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(summary *Summary) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write summaries, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(summary *Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
