package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeTallies(md, summary)
	w.writeRelays(md, summary)

	return len(md.String()), md.Build()
}

// writeHeader writes the summary header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *Summary) {
	md.H1("Proxyvet Run Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run Date", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.Duration().String()},
			{"Sources", strconv.Itoa(summary.Sources)},
			{"Candidates", strconv.Itoa(summary.Candidates)},
			{"Identity", w.identityText(summary)},
		},
	})
	md.PlainText("")
}

// identityText returns the identity cell, flagging degraded runs.
func (w *MarkdownWriter) identityText(summary *Summary) string {
	if summary.Degraded() {
		return "⚠️ unknown (degraded mode)"
	}
	return "`" + summary.Identity + "`"
}

// writeTallies writes the classification tally section.
func (w *MarkdownWriter) writeTallies(md *markdown.Markdown, summary *Summary) {
	md.H2("Classification")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Verdict", "Count"},
		Rows: [][]string{
			{"🟢 Anonymous", strconv.FormatInt(summary.Anonymous, 10)},
			{"🟠 Transparent", strconv.FormatInt(summary.Transparent, 10)},
			{"🔴 Failed", strconv.FormatInt(summary.Failed, 10)},
			{"**Total**", "**" + strconv.FormatInt(summary.Total(), 10) + "**"},
		},
	})
	md.PlainText("")

	if summary.Total() > 0 {
		w.writePieChart(md, summary)
	}

	if summary.Degraded() {
		md.Warningf(
			"The echo oracle could not be reached directly: identity-based checks were disabled for this run. " +
				"Relays marked anonymous here were verified by origin inspection only.",
		)
	}
}

// writePieChart writes a mermaid pie chart for the verdict distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Verdict Distribution"),
		piechart.WithShowData(true),
	)

	if summary.Anonymous > 0 {
		chart.LabelAndIntValue("Anonymous", uint64(summary.Anonymous))
	}
	if summary.Transparent > 0 {
		chart.LabelAndIntValue("Transparent", uint64(summary.Transparent))
	}
	if summary.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(summary.Failed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeRelays writes the verified relay table.
func (w *MarkdownWriter) writeRelays(md *markdown.Markdown, summary *Summary) {
	md.H2("Anonymous Relays")
	md.PlainText("")

	if len(summary.Relays) == 0 {
		md.PlainText("No relays were verified anonymous in this run.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(summary.Relays))
	for _, relay := range summary.Relays {
		rows = append(rows, []string{
			"`" + string(relay.Endpoint) + "`",
			strings.Join(relay.OriginIPs, ", "),
			relay.Reason,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Endpoint", "Exit Address", "Note"},
		Rows:   rows,
	})
	md.PlainText("")
}
