package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/model"
)

// createTestRun creates a run result with sample data for testing.
func createTestRun() *model.RunResult {
	items := []model.ServiceMapItem{
		{Domain: "Compute", ServiceA: "EC2", ServiceAURL: "https://aws.amazon.com/ec2", ServiceB: "Compute Engine", ServiceBURL: "https://cloud.google.com/compute"},
		{Domain: "Storage", ServiceA: "S3", ServiceAURL: "https://aws.amazon.com/s3", ServiceB: "Cloud Storage", ServiceBURL: "https://cloud.google.com/storage"},
		{Domain: "Database", ServiceA: "RDS", ServiceAURL: "https://aws.amazon.com/rds"},
	}

	results := []model.PairResult{
		{
			Map: items[0],
			Result: model.SynthesisResult{
				Metadata: model.SynthesisMetadata{
					ServicePairID: "aws_ec2_vs_gcp_compute_engine",
					GeneratedAt:   time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
					ModelVersion:  "deterministic_concatenation",
				},
				TechnicalData: json.RawMessage(`{"technical_score":9,"technical_reasoning":"Strong parity."}`),
				PricingData:   json.RawMessage(`{"cost_efficiency_score":7,"pricing_reasoning":"Comparable pricing."}`),
				Synthesis: model.SynthesisBody{
					DetailedComparison: "<h4>Technical Analysis</h4>\nStrong parity.\n<h4>Pricing Analysis</h4>\nComparable pricing.\n",
				},
			},
		},
		{
			Map: items[1],
			Result: model.SynthesisResult{
				TechnicalData: json.RawMessage(`{"technical_score":8}`),
				PricingData:   json.RawMessage(`{"cost_efficiency_score":6}`),
			},
		},
	}

	return &model.RunResult{
		RunID:       "run-0001",
		CSPA:        "aws",
		CSPB:        "gcp",
		GeneratedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		Items:       items,
		Results:     results,
		Sovereignty: map[string]model.SovereigntyAssessment{
			"aws": {CSP: "aws", Controls: []model.SovereigntyControl{
				{ControlID: "SOV-01", ControlName: "Data Residency", Score: 8, Reasoning: "Regional pinning supported."},
				{ControlID: "SOV-03", ControlName: "Encryption Key Control", Score: 6, Reasoning: "External key stores available."},
			}},
			"gcp": {CSP: "gcp", Controls: []model.SovereigntyControl{
				{ControlID: "SOV-01", ControlName: "Data Residency", Score: 7, Reasoning: "Regional pinning supported."},
				{ControlID: "SOV-03", ControlName: "Encryption Key Control", Score: 7, Reasoning: "External key manager available."},
			}},
		},
		DomainSummaries: map[string]string{
			"Compute": "Compute offerings are at parity.",
			"Storage": "Object storage is a close match.",
		},
		OverallSummary: "The providers are broadly comparable.",
	}
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes full report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		n, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected non-zero bytes written")
		}

		output := buf.String()
		for _, want := range []string{
			"# Cloud Service Comparison: aws vs gcp",
			"## Management Summary",
			"The providers are broadly comparable.",
			"## Score Summary",
			"## Digital Sovereignty",
			"SOV-01",
			"## Compute",
			"### EC2 vs Compute Engine",
			"Technical score: 9.0",
			"Cost efficiency score: 7.0",
			"<h4>Technical Analysis</h4>",
			"## Services Without Equivalent",
			"RDS",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("omits empty sections", func(t *testing.T) {
		t.Parallel()

		run := createTestRun()
		run.OverallSummary = ""
		run.Sovereignty = nil
		run.Items = run.Items[:2] // drop the unmatched service

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, unwanted := range []string{
			"## Management Summary",
			"## Digital Sovereignty",
			"## Services Without Equivalent",
		} {
			if strings.Contains(output, unwanted) {
				t.Errorf("expected output to omit %q", unwanted)
			}
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.RunResult
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.RunID != "run-0001" {
			t.Errorf("RunID = %q, want %q", decoded.RunID, "run-0001")
		}
		if len(decoded.Results) != 2 {
			t.Errorf("len(Results) = %d, want 2", len(decoded.Results))
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"run_id\"") {
			t.Error("expected indented output")
		}
	})
}

// TestHTMLWriter tests the dashboard writer.
func TestHTMLWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewHTMLWriter(&buf)

	n, err := w.Write(createTestRun())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n == 0 {
		t.Error("expected non-zero bytes written")
	}

	output := buf.String()
	for _, want := range []string{
		"<title>Cloud Service Comparison: aws vs gcp</title>",
		`<canvas id="radar">`,
		`<canvas id="sovereignty">`,
		"EC2",
		"Compute Engine",
		"The providers are broadly comparable.",
		"<h4>Technical Analysis</h4>",
		"SOV-01",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

// TestMultiWriter tests fan-out to multiple writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var md, js bytes.Buffer
		w := NewMultiWriter(NewMarkdownWriter(&md), NewJSONWriter(&js))

		if _, err := w.Write(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if md.Len() == 0 {
			t.Error("markdown writer received no data")
		}
		if js.Len() == 0 {
			t.Error("json writer received no data")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMultiWriter(&failWriter{}, NewJSONWriter(&buf))

		if _, err := w.Write(createTestRun()); err == nil {
			t.Fatal("expected error from failing writer")
		}
		if buf.Len() != 0 {
			t.Error("expected write to stop before second writer")
		}
	})
}

// failWriter always fails.
type failWriter struct{}

func (f *failWriter) Write(_ *model.RunResult) (int, error) {
	return 0, errors.New("write failed")
}
