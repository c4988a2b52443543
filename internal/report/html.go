package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/aggregate"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/model"
)

//go:embed templates/dashboard.html.tmpl
var dashboardFS embed.FS

// HTMLWriter outputs a self-contained dashboard page.
// This format is designed for stakeholders who want charts, not JSON.
//
// Design decision: The page is a single HTML file with the chart data
// inlined, so it can be mailed or dropped on a share without any server
// or asset directory. Chart.js is loaded from its public CDN; everything
// else is embedded.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{
		baseWriter: newBaseWriter(output),
	}
}

// dashboardView is the template input for the dashboard page.
type dashboardView struct {
	Run     *model.RunResult
	Summary aggregate.Summary

	// RadarJSON is the Chart.js dataset for the per-domain score radar.
	RadarJSON template.JS

	// SovereigntyJSON is the Chart.js dataset for the per-control
	// sovereignty bar chart.
	SovereigntyJSON template.JS
}

// pairView flattens one result for table rendering.
type pairView struct {
	Domain       string
	ServiceA     string
	ServiceB     string
	Technical    string
	Cost         string
	Comparison   template.HTML
	HasSynthesis bool
}

// Write renders the dashboard for one run result.
func (w *HTMLWriter) Write(run *model.RunResult) (int, error) {
	tmpl, err := template.New("dashboard.html.tmpl").
		Funcs(template.FuncMap{"pairs": pairViews}).
		ParseFS(dashboardFS, "templates/dashboard.html.tmpl")
	if err != nil {
		return 0, fmt.Errorf("failed to parse dashboard template: %w", err)
	}

	summary := aggregate.Aggregate(run.Results)
	radar, err := radarData(summary)
	if err != nil {
		return 0, err
	}
	sov, err := sovereigntyData(run)
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	view := dashboardView{
		Run:             run,
		Summary:         summary,
		RadarJSON:       template.JS(radar),
		SovereigntyJSON: template.JS(sov),
	}
	if err := tmpl.Execute(&buf, view); err != nil {
		return 0, fmt.Errorf("failed to render dashboard: %w", err)
	}
	return w.output.Write(buf.Bytes())
}

// pairViews prepares the per-pair table rows for one domain.
func pairViews(pairs []model.PairResult) []pairView {
	views := make([]pairView, 0, len(pairs))
	for _, pair := range pairs {
		v := pairView{
			Domain:   pair.Map.Domain,
			ServiceA: pair.Map.ServiceA,
			ServiceB: pair.Map.ServiceB,
		}
		if score, ok := pair.Result.TechnicalScore(); ok {
			v.Technical = formatScore(score)
		}
		if score, ok := pair.Result.CostEfficiencyScore(); ok {
			v.Cost = formatScore(score)
		}
		if narrative := pair.Result.Synthesis.DetailedComparison; narrative != "" {
			// The narrative is model output; it is rendered inside a
			// <details> block and must stay an HTML fragment.
			v.Comparison = template.HTML(narrative) //nolint:gosec // Narrative is an intentional HTML fragment
			v.HasSynthesis = true
		}
		views = append(views, v)
	}
	return views
}

// radarData builds the Chart.js radar dataset from the domain averages.
func radarData(summary aggregate.Summary) ([]byte, error) {
	domains := summary.Domains()

	technical := make([]float64, len(domains))
	cost := make([]float64, len(domains))
	for i, domain := range domains {
		avg := summary.DomainAverages[domain]
		technical[i] = avg.Technical
		cost[i] = avg.CostEfficiency
	}

	return json.Marshal(map[string]any{
		"labels": domains,
		"datasets": []map[string]any{
			{"label": "Technical", "data": technical},
			{"label": "Cost Efficiency", "data": cost},
		},
	})
}

// sovereigntyData builds the Chart.js bar dataset from the per-control
// sovereignty scores of both providers.
func sovereigntyData(run *model.RunResult) ([]byte, error) {
	labels := []string{}
	datasets := []map[string]any{}

	for _, csp := range []string{run.CSPA, run.CSPB} {
		assessment, ok := run.Sovereignty[csp]
		if !ok {
			continue
		}
		if len(labels) == 0 {
			for _, ctrl := range assessment.Controls {
				labels = append(labels, ctrl.ControlID)
			}
		}
		scores := make([]float64, 0, len(assessment.Controls))
		for _, ctrl := range assessment.Controls {
			scores = append(scores, ctrl.Score)
		}
		datasets = append(datasets, map[string]any{
			"label": csp,
			"data":  scores,
		})
	}

	return json.Marshal(map[string]any{
		"labels":   labels,
		"datasets": datasets,
	})
}
