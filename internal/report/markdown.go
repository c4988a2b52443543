package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/aggregate"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
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

// Write outputs the full run result in Markdown format.
func (w *MarkdownWriter) Write(run *model.RunResult) (int, error) {
	md := markdown.NewMarkdown(w.output)
	summary := aggregate.Aggregate(run.Results)

	w.writeHeader(md, run)
	w.writeManagementSummary(md, run)
	w.writeScores(md, summary)
	w.writeSovereignty(md, run)
	w.writeDomains(md, run, summary)
	w.writeMissingServices(md, run)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.RunResult) {
	md.H1("Cloud Service Comparison: " + run.CSPA + " vs " + run.CSPB)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + run.RunID + "`"},
			{"Generated", run.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Services Mapped", strconv.Itoa(len(run.Items))},
			{"Pairs Compared", strconv.Itoa(len(run.Results))},
		},
	})
	md.PlainText("")
}

// writeManagementSummary writes the overarching narrative, when present.
func (w *MarkdownWriter) writeManagementSummary(md *markdown.Markdown, run *model.RunResult) {
	if run.OverallSummary == "" {
		return
	}
	md.H2("Management Summary")
	md.PlainText("")
	md.PlainText(run.OverallSummary)
	md.PlainText("")
}

// writeScores writes the per-domain and overall score table.
func (w *MarkdownWriter) writeScores(md *markdown.Markdown, summary aggregate.Summary) {
	if summary.Overall.Pairs == 0 {
		return
	}
	md.H2("Score Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(summary.DomainAverages)+1)
	for _, domain := range summary.Domains() {
		avg := summary.DomainAverages[domain]
		rows = append(rows, []string{
			domain,
			strconv.Itoa(avg.Pairs),
			formatScore(avg.Technical),
			formatScore(avg.CostEfficiency),
			formatScore(avg.Combined),
		})
	}
	rows = append(rows, []string{
		"**Overall**",
		strconv.Itoa(summary.Overall.Pairs),
		formatScore(summary.Overall.Technical),
		formatScore(summary.Overall.CostEfficiency),
		formatScore(summary.Overall.Combined),
	})

	md.Table(markdown.TableSet{
		Header: []string{"Domain", "Pairs", "Technical", "Cost Efficiency", "Combined"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSovereignty writes the per-provider sovereignty assessments.
func (w *MarkdownWriter) writeSovereignty(md *markdown.Markdown, run *model.RunResult) {
	if len(run.Sovereignty) == 0 {
		return
	}
	md.H2("Digital Sovereignty")
	md.PlainText("")

	for _, csp := range []string{run.CSPA, run.CSPB} {
		assessment, ok := run.Sovereignty[csp]
		if !ok {
			continue
		}
		md.H3(csp + " (average " + formatScore(assessment.AverageScore()) + ")")
		md.PlainText("")

		rows := make([][]string, 0, len(assessment.Controls))
		for _, ctrl := range assessment.Controls {
			rows = append(rows, []string{
				ctrl.ControlID,
				ctrl.ControlName,
				formatScore(ctrl.Score),
				ctrl.Reasoning,
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Control", "Name", "Score", "Reasoning"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeDomains writes one section per functional domain: the domain
// summary followed by the per-pair comparison details.
func (w *MarkdownWriter) writeDomains(md *markdown.Markdown, run *model.RunResult, summary aggregate.Summary) {
	for _, domain := range summary.Domains() {
		md.H2(domain)
		md.PlainText("")

		if ds := run.DomainSummaries[domain]; ds != "" {
			md.PlainText(ds)
			md.PlainText("")
		}

		for _, pair := range summary.Groups[domain] {
			md.H3(pair.Map.ServiceA + " vs " + pair.Map.ServiceB)
			md.PlainText("")

			rows := [][]string{
				{run.CSPA, pair.Map.ServiceA, pair.Map.ServiceAURL},
				{run.CSPB, pair.Map.ServiceB, pair.Map.ServiceBURL},
			}
			md.Table(markdown.TableSet{
				Header: []string{"Provider", "Service", "URL"},
				Rows:   rows,
			})
			md.PlainText("")

			if tech, ok := pair.Result.TechnicalScore(); ok {
				md.PlainText("Technical score: " + formatScore(tech))
			}
			if cost, ok := pair.Result.CostEfficiencyScore(); ok {
				md.PlainText("Cost efficiency score: " + formatScore(cost))
			}
			md.PlainText("")

			if pair.Result.Synthesis.DetailedComparison != "" {
				// The synthesis narrative is an HTML fragment, which
				// GitHub-flavored markdown renders as-is.
				md.PlainText(pair.Result.Synthesis.DetailedComparison)
				md.PlainText("")
			}
		}
	}
}

// writeMissingServices lists services with no provider-B equivalent.
func (w *MarkdownWriter) writeMissingServices(md *markdown.Markdown, run *model.RunResult) {
	missing := run.MissingServices()
	if len(missing) == 0 {
		return
	}

	md.H2("Services Without Equivalent")
	md.PlainText("")

	rows := make([][]string, 0, len(missing))
	for _, item := range missing {
		rows = append(rows, []string{item.ServiceA, item.Domain, item.ServiceAURL})
	}
	md.Table(markdown.TableSet{
		Header: []string{run.CSPA + " Service", "Domain", "URL"},
		Rows:   rows,
	})
	md.PlainText("")
}

// formatScore renders a 0-10 score with one decimal place.
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 1, 64)
}
