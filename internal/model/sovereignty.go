package model

// SovereigntyControl is one scored digital-sovereignty control (SOV-01..SOV-10)
// for a single provider.
type SovereigntyControl struct {
	ControlID          string `json:"control_id"`
	ControlName        string `json:"control_name"`
	ControlDescription string `json:"control_description,omitempty"`

	// Score is 0-10; higher means better fulfillment of the control.
	Score float64 `json:"score"`

	// Reasoning is an HTML fragment justifying the score.
	Reasoning string `json:"reasoning"`
}

// SovereigntyAssessment is the full control scoring for one provider.
type SovereigntyAssessment struct {
	CSP      string               `json:"csp"`
	Controls []SovereigntyControl `json:"controls"`
}

// AverageScore returns the mean control score, or 0 when no controls
// were assessed.
func (a SovereigntyAssessment) AverageScore() float64 {
	if len(a.Controls) == 0 {
		return 0
	}
	var sum float64
	for _, c := range a.Controls {
		sum += c.Score
	}
	return sum / float64(len(a.Controls))
}
