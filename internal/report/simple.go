package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/egocrawl/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors so the output can be piped to files or other tools.
type SimpleWriter struct {
	baseWriter

	// verbose adds the store file of each seed.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeSeeds(&sb, report)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         EGOCRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Site:        %s\n", report.Site)
	fmt.Fprintf(sb, "Output Dir:  %s\n", report.OutputDir)
	fmt.Fprintf(sb, "Generated:   %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "  SEEDS:     %d (%d done)\n", len(report.Seeds), report.CompletedSeeds())
	fmt.Fprintf(sb, "  VISITED:   %d\n", report.TotalVisited())
	fmt.Fprintf(sb, "  EDGES:     %d\n", report.TotalEdges())
	fmt.Fprintf(sb, "  PENDING:   %d\n", report.TotalPending())
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSeeds(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Seeds) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SEEDS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, s := range report.Seeds {
		fmt.Fprintf(sb, "  [%s] %s\n", indicator(s), s.Seed)
		fmt.Fprintf(sb, "    Status:  %s\n", seedStatus(s))
		fmt.Fprintf(sb, "    Visited: %d  Edges: %d  Hidden: %d  Pending: %d\n",
			s.Visited, s.Edges, s.HiddenConnections, s.Pending)
		if w.verbose {
			fmt.Fprintf(sb, "    Store:   %s\n", s.Store)
		}
	}
	sb.WriteString("\n")
}

// indicator returns a short visual marker for a seed.
func indicator(s model.SeedSummary) string {
	switch {
	case s.Error != "":
		return "!"
	case s.Done():
		return "+"
	case s.SeedVisited:
		return "~"
	default:
		return " "
	}
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by egocrawl\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
