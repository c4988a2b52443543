package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/gemini"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/model"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/prompt"
)

// sovereigntyControls is the fixed digital sovereignty control catalog
// every provider is scored against.
var sovereigntyControls = []model.SovereigntyControl{
	{ControlID: "SOV-01", ControlName: "Data Residency", ControlDescription: "Customer data can be pinned to a chosen jurisdiction and never leaves it, including backups and replicas."},
	{ControlID: "SOV-02", ControlName: "Operational Sovereignty", ControlDescription: "Day-to-day operations, including support access, can be restricted to personnel within the chosen jurisdiction."},
	{ControlID: "SOV-03", ControlName: "Encryption Key Control", ControlDescription: "Customers can hold and manage their own encryption keys outside the provider's control plane."},
	{ControlID: "SOV-04", ControlName: "Legal Jurisdiction", ControlDescription: "The contracting entity and applicable law can be bound to the customer's jurisdiction, limiting extraterritorial access."},
	{ControlID: "SOV-05", ControlName: "Access Transparency", ControlDescription: "Every provider-side access to customer data is logged and surfaced to the customer in near real time."},
	{ControlID: "SOV-06", ControlName: "Exit and Portability", ControlDescription: "Data and workloads can be exported in open formats without punitive egress barriers."},
	{ControlID: "SOV-07", ControlName: "Supply Chain Transparency", ControlDescription: "The provider discloses subcontractors and hardware provenance relevant to the hosting of customer workloads."},
	{ControlID: "SOV-08", ControlName: "Local Partnership", ControlDescription: "Sovereign offerings can be operated by or jointly with a trustee or partner incorporated in the customer's jurisdiction."},
	{ControlID: "SOV-09", ControlName: "Disconnected Operation", ControlDescription: "Critical workloads can keep running during a disconnection from the provider's global control plane."},
	{ControlID: "SOV-10", ControlName: "Compliance Certifications", ControlDescription: "The provider holds current, audited certifications relevant to regulated European workloads (e.g., C5, SecNumCloud, EUCS)."},
}

// sampleSovereigntyScores are the fixed test-mode control scores, in
// catalog order.
var sampleSovereigntyScores = []float64{8, 10, 5, 7, 9, 6, 4, 5, 8, 7}

// assessSovereignty scores both providers against the control catalog.
// Assessments run concurrently; a failed assessment is logged and the
// provider is simply absent from the result.
func (o *Orchestrator) assessSovereignty(ctx context.Context, cspA, cspB string) map[string]model.SovereigntyAssessment {
	assessments := make([]*model.SovereigntyAssessment, 2)

	g, gctx := errgroup.WithContext(ctx)
	for i, csp := range []string{cspA, cspB} {
		i, csp := i, csp
		g.Go(func() error {
			a, err := o.sovereigntyAssessment(gctx, csp)
			if err != nil {
				o.logger.Warn("sovereignty assessment failed", "csp", csp, "error", err)
				return nil
			}
			assessments[i] = a
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Goroutines always return nil

	out := make(map[string]model.SovereigntyAssessment)
	for i, csp := range []string{cspA, cspB} {
		if assessments[i] != nil {
			out[csp] = *assessments[i]
		}
	}
	return out
}

// sovereigntyAssessment scores one provider, cache first. The model
// returns only control IDs, scores, and reasoning; control names and
// descriptions are joined back in from the catalog.
func (o *Orchestrator) sovereigntyAssessment(ctx context.Context, csp string) (*model.SovereigntyAssessment, error) {
	if o.cfg.TestMode {
		return sampleSovereigntyAssessment(csp), nil
	}

	user, err := o.prompts.Sovereignty.Render(map[string]string{
		"CSP":                 csp,
		"ControlDescriptions": controlDescriptions(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render sovereignty prompt: %w", err)
	}

	doc, err := o.cachedGenerate(ctx, sovereigntyKey(csp), gemini.Request{
		Model:     o.cfg.ModelAnalysis,
		System:    o.prompts.Sovereignty.SystemInstruction,
		User:      user,
		Schema:    prompt.SovereigntySchema,
		Grounding: true,
		Thinking:  true,
	})
	if err != nil {
		return nil, err
	}

	var response model.SovereigntyAssessment
	if err := json.Unmarshal(doc, &response); err != nil {
		return nil, fmt.Errorf("malformed sovereignty document: %w", err)
	}

	return annotateControls(csp, response.Controls), nil
}

// annotateControls rebuilds an assessment in catalog order, filling in
// the control names and descriptions the response schema omits.
// Controls the model did not score are dropped.
func annotateControls(csp string, scored []model.SovereigntyControl) *model.SovereigntyAssessment {
	byID := make(map[string]model.SovereigntyControl, len(scored))
	for _, c := range scored {
		byID[c.ControlID] = c
	}

	a := &model.SovereigntyAssessment{CSP: csp}
	for _, ctrl := range sovereigntyControls {
		got, ok := byID[ctrl.ControlID]
		if !ok {
			continue
		}
		ctrl.Score = got.Score
		ctrl.Reasoning = got.Reasoning
		a.Controls = append(a.Controls, ctrl)
	}
	return a
}

func controlDescriptions() string {
	var b strings.Builder
	for _, c := range sovereigntyControls {
		fmt.Fprintf(&b, "%s %s: %s\n", c.ControlID, c.ControlName, c.ControlDescription)
	}
	return b.String()
}

// sampleSovereigntyAssessment is the fixed test-mode assessment.
func sampleSovereigntyAssessment(csp string) *model.SovereigntyAssessment {
	a := &model.SovereigntyAssessment{CSP: csp}
	for i, ctrl := range sovereigntyControls {
		ctrl.Score = sampleSovereigntyScores[i]
		ctrl.Reasoning = "Sample sovereignty assessment produced in test mode."
		a.Controls = append(a.Controls, ctrl)
	}
	return a
}
