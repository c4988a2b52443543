package model

import "time"

// RunResult is the consolidated output of one comparison run. It carries
// everything the report writers need: the full matching result (including
// unmatched items), the per-pair synthesis documents, the per-provider
// sovereignty assessments, and the generated summaries.
type RunResult struct {
	// RunID uniquely identifies this run in report metadata.
	RunID string `json:"run_id"`

	// CSPA and CSPB are the compared providers as given on the command line.
	CSPA string `json:"csp_a"`
	CSPB string `json:"csp_b"`

	// GeneratedAt records when the run completed.
	GeneratedAt time.Time `json:"generated_at"`

	// Items is the complete service map, matched and unmatched alike.
	Items []ServiceMapItem `json:"items"`

	// Results holds one entry per pair that survived all pipeline stages,
	// in service map order. Dropped pairs are absent.
	Results []PairResult `json:"results"`

	// Sovereignty maps provider name to its sovereignty assessment.
	// Entries may be missing when the assessment failed; that is not fatal.
	Sovereignty map[string]SovereigntyAssessment `json:"sovereignty,omitempty"`

	// DomainSummaries maps domain name to its management summary narrative.
	DomainSummaries map[string]string `json:"domain_summaries,omitempty"`

	// OverallSummary is the consolidated run-wide management summary.
	OverallSummary string `json:"overarching_summary,omitempty"`
}

// MissingServices returns the map items with no provider-B equivalent,
// in service map order.
func (r *RunResult) MissingServices() []ServiceMapItem {
	var missing []ServiceMapItem
	for _, item := range r.Items {
		if !item.Matched() {
			missing = append(missing, item)
		}
	}
	return missing
}
