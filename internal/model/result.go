package model

import (
	"encoding/json"
	"time"
)

// SynthesisMetadata identifies one synthesized comparison document.
type SynthesisMetadata struct {
	// ServicePairID is the normalized pair key the document belongs to.
	ServicePairID string `json:"service_pair_id"`

	// GeneratedAt records when the synthesis was produced.
	GeneratedAt time.Time `json:"generated_at"`

	// ModelVersion names the producer. Deterministic synthesis records
	// "deterministic_concatenation" since no model is involved.
	ModelVersion string `json:"model_version"`
}

// SynthesisBody holds the narrative produced by the synthesis stage.
type SynthesisBody struct {
	// DetailedComparison is an HTML fragment concatenating the technical,
	// lock-in, and pricing narratives for the pair.
	DetailedComparison string `json:"detailed_comparison"`
}

// SynthesisResult combines the technical and pricing analyses for one
// matched pair into the final per-pair document. The analysis payloads are
// opaque to the pipeline except for the score accessors below.
type SynthesisResult struct {
	Metadata      SynthesisMetadata `json:"metadata"`
	TechnicalData json.RawMessage   `json:"technical_data"`
	PricingData   json.RawMessage   `json:"pricing_data"`
	Synthesis     SynthesisBody     `json:"synthesis"`
}

// TechnicalScore extracts the numeric technical score from the technical
// analysis payload. Returns 0 and false when the payload is missing or
// does not carry the field.
func (r SynthesisResult) TechnicalScore() (float64, bool) {
	return extractScore(r.TechnicalData, "technical_score")
}

// CostEfficiencyScore extracts the numeric cost-efficiency score from the
// pricing analysis payload.
func (r SynthesisResult) CostEfficiencyScore() (float64, bool) {
	return extractScore(r.PricingData, "cost_efficiency_score")
}

// extractScore reads a single numeric field out of an opaque payload.
func extractScore(raw json.RawMessage, field string) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, false
	}
	var score float64
	if err := json.Unmarshal(doc[field], &score); err != nil {
		return 0, false
	}
	return score, true
}

// PairResult pairs the map item that entered the pipeline with the
// synthesis document it produced.
type PairResult struct {
	Map    ServiceMapItem  `json:"map"`
	Result SynthesisResult `json:"result"`
}
