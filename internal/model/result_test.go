package model

import (
	"encoding/json"
	"testing"
)

// TestSynthesisResultScores tests score extraction from opaque payloads.
func TestSynthesisResultScores(t *testing.T) {
	t.Parallel()

	t.Run("extracts both scores", func(t *testing.T) {
		t.Parallel()

		r := SynthesisResult{
			TechnicalData: json.RawMessage(`{"technical_score": 9.5, "other": "x"}`),
			PricingData:   json.RawMessage(`{"cost_efficiency_score": 8}`),
		}

		tech, ok := r.TechnicalScore()
		if !ok || tech != 9.5 {
			t.Errorf("TechnicalScore() = %v, %v; want 9.5, true", tech, ok)
		}

		cost, ok := r.CostEfficiencyScore()
		if !ok || cost != 8 {
			t.Errorf("CostEfficiencyScore() = %v, %v; want 8, true", cost, ok)
		}
	})

	t.Run("missing payload", func(t *testing.T) {
		t.Parallel()

		var r SynthesisResult
		if _, ok := r.TechnicalScore(); ok {
			t.Error("expected no technical score for empty payload")
		}
	})

	t.Run("missing field", func(t *testing.T) {
		t.Parallel()

		r := SynthesisResult{TechnicalData: json.RawMessage(`{"notes": "n/a"}`)}
		if _, ok := r.TechnicalScore(); ok {
			t.Error("expected no score when field is absent")
		}
	})

	t.Run("non-numeric field", func(t *testing.T) {
		t.Parallel()

		r := SynthesisResult{TechnicalData: json.RawMessage(`{"technical_score": "high"}`)}
		if _, ok := r.TechnicalScore(); ok {
			t.Error("expected no score when field is not numeric")
		}
	})
}

// TestRunResultMissingServices tests the missing services filter.
func TestRunResultMissingServices(t *testing.T) {
	t.Parallel()

	r := RunResult{
		Items: []ServiceMapItem{
			{ServiceA: "EC2", ServiceB: "Compute Engine"},
			{ServiceA: "Outposts"},
			{ServiceA: "S3", ServiceB: "Cloud Storage"},
			{ServiceA: "Snowball"},
		},
	}

	missing := r.MissingServices()
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing services, got %d", len(missing))
	}
	if missing[0].ServiceA != "Outposts" || missing[1].ServiceA != "Snowball" {
		t.Errorf("missing services out of order: %+v", missing)
	}
}
