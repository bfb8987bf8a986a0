package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// TextWriter outputs human-readable text summaries.
// This format is designed for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type TextWriter struct {
	baseWriter

	// verbose enables the per-relay listing in the output.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose enables verbose output with the per-relay listing.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *TextWriter) Write(summary *Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeTallies(&sb, summary)
	w.writeRelays(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the summary header with run information.
func (w *TextWriter) writeHeader(sb *strings.Builder, summary *Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         PROXYVET RUN SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Run Date:       %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:       %s\n", summary.Duration().Round(time.Millisecond)))
	if summary.Sources > 0 {
		sb.WriteString(fmt.Sprintf("Sources:        %d\n", summary.Sources))
	}
	sb.WriteString(fmt.Sprintf("Candidates:     %d\n", summary.Candidates))

	if summary.Degraded() {
		sb.WriteString("Identity:       unknown (degraded mode, header checks disabled)\n")
	} else {
		sb.WriteString(fmt.Sprintf("Identity:       %s\n", summary.Identity))
	}

	sb.WriteString("\n")
}

// writeTallies writes the classification tallies section.
func (w *TextWriter) writeTallies(sb *strings.Builder, summary *Summary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CLASSIFICATION\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  ANONYMOUS:   %d\n", summary.Anonymous))
	sb.WriteString(fmt.Sprintf("  TRANSPARENT: %d\n", summary.Transparent))
	sb.WriteString(fmt.Sprintf("  FAILED:      %d\n", summary.Failed))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:       %d candidates\n", summary.Total()))
	sb.WriteString("\n")
}

// writeRelays writes the per-relay listing. Shown only in verbose mode;
// the anonymous set can run into the hundreds.
func (w *TextWriter) writeRelays(sb *strings.Builder, summary *Summary) {
	if !w.verbose || len(summary.Relays) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ANONYMOUS RELAYS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, relay := range summary.Relays {
		sb.WriteString(fmt.Sprintf("  [+] %s\n", relay.Endpoint))
		if len(relay.OriginIPs) > 0 {
			sb.WriteString(fmt.Sprintf("      Exit: %s\n", strings.Join(relay.OriginIPs, ", ")))
		}
		if relay.Reason != "" {
			sb.WriteString(fmt.Sprintf("      Note: %s\n", relay.Reason))
		}
	}
	sb.WriteString("\n")
}
