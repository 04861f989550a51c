package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/egocrawl/internal/model"
)

// MarkdownWriter outputs reports in GitHub Flavored Markdown, for pasting
// into issues and notes.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeSeeds(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("egocrawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", string(report.Site)},
			{"Output Dir", "`" + report.OutputDir + "`"},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Seeds", strconv.Itoa(len(report.Seeds))},
			{"Completed seeds", strconv.Itoa(report.CompletedSeeds())},
			{"Visited profiles", strconv.Itoa(report.TotalVisited())},
			{"Edges", strconv.Itoa(report.TotalEdges())},
			{"Pending profiles", strconv.Itoa(report.TotalPending())},
		},
	})
	md.PlainText("")

	if report.TotalVisited()+report.TotalPending() > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of visited versus pending profiles.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.CrawlReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Crawl Progress"),
		piechart.WithShowData(true),
	)

	if v := report.TotalVisited(); v > 0 {
		chart.LabelAndIntValue("Visited", uint64(v))
	}
	if p := report.TotalPending(); p > 0 {
		chart.LabelAndIntValue("Pending", uint64(p))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.CrawlReport) {
	failed := 0
	for _, s := range report.Seeds {
		if s.Error != "" {
			failed++
		}
	}

	switch {
	case failed > 0:
		md.Cautionf("%d seed store(s) could not be read.", failed)
	case len(report.Seeds) == 0:
		md.Note("No seeds.")
	case report.CompletedSeeds() == len(report.Seeds):
		md.Tip("Every seed and its frontier has been visited.")
	default:
		md.Importantf("%d of %d seed(s) still have work left. Run the crawl again to resume.",
			len(report.Seeds)-report.CompletedSeeds(), len(report.Seeds))
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeSeeds(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Seeds")
	md.PlainText("")

	if len(report.Seeds) == 0 {
		md.PlainText("No seeds.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Seeds))
	for i, s := range report.Seeds {
		rows[i] = []string{
			truncateString(string(s.Seed), 60),
			seedStatus(s),
			strconv.Itoa(s.Visited),
			strconv.Itoa(s.Edges),
			strconv.Itoa(s.HiddenConnections),
			strconv.Itoa(s.Pending),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Seed", "Status", "Visited", "Edges", "Hidden", "Pending"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by egocrawl*")
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
