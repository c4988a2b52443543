package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/aggregate"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/gemini"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/model"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/prompt"
)

// summarize produces one management summary per domain and the
// overarching run summary. Summaries condense material already produced
// by earlier stages, so grounding is disabled. Failures are logged and
// the affected summary is simply empty.
func (o *Orchestrator) summarize(ctx context.Context, cspA, cspB string, results []model.PairResult) (map[string]string, string) {
	if len(results) == 0 {
		return nil, ""
	}

	groups := aggregate.Aggregate(results)
	domains := groups.Domains()
	summaries := make([]string, len(domains))

	g, gctx := errgroup.WithContext(ctx)
	for i, domain := range domains {
		i, domain := i, domain
		g.Go(func() error {
			s, err := o.domainSummary(gctx, cspA, cspB, domain, groups.Groups[domain])
			if err != nil {
				o.logger.Warn("domain summary failed", "domain", domain, "error", err)
				return nil
			}
			summaries[i] = s
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Goroutines always return nil

	domainSummaries := make(map[string]string, len(domains))
	for i, domain := range domains {
		if summaries[i] != "" {
			domainSummaries[domain] = summaries[i]
		}
	}
	if len(domainSummaries) == 0 {
		return nil, ""
	}

	overall, err := o.overallSummary(ctx, cspA, cspB, domainSummaries)
	if err != nil {
		o.logger.Warn("overarching summary failed", "error", err)
	}
	return domainSummaries, overall
}

// domainSummary condenses one domain's synthesis narratives, cache first.
func (o *Orchestrator) domainSummary(ctx context.Context, cspA, cspB, domain string, pairs []model.PairResult) (string, error) {
	if o.cfg.TestMode {
		return fmt.Sprintf("Sample management summary for the %s domain produced in test mode.", domain), nil
	}

	input, err := json.Marshal(pairs)
	if err != nil {
		return "", fmt.Errorf("failed to encode domain results: %w", err)
	}

	user, err := o.prompts.ManagementSummary.Render(map[string]string{
		"Domain":        domain,
		"SynthesisJSON": string(input),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render management summary prompt: %w", err)
	}

	doc, err := o.cachedGenerate(ctx, domainSummaryKey(cspA, cspB, domain), gemini.Request{
		Model:  o.cfg.ModelSynthesis,
		System: o.prompts.ManagementSummary.SystemInstruction,
		User:   user,
		Schema: prompt.ManagementSummarySchema,
	})
	if err != nil {
		return "", err
	}

	var response struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal(doc, &response); err != nil {
		return "", fmt.Errorf("malformed summary document: %w", err)
	}
	return response.Summary, nil
}

// overallSummary condenses the per-domain summaries into one run-wide
// narrative, cache first.
func (o *Orchestrator) overallSummary(ctx context.Context, cspA, cspB string, domainSummaries map[string]string) (string, error) {
	if o.cfg.TestMode {
		return "Sample overarching summary produced in test mode.", nil
	}

	input, err := json.Marshal(domainSummaries)
	if err != nil {
		return "", fmt.Errorf("failed to encode domain summaries: %w", err)
	}

	user, err := o.prompts.OverarchingSummary.Render(map[string]string{
		"CSPA":                cspA,
		"CSPB":                cspB,
		"DomainSummariesJSON": string(input),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render overarching summary prompt: %w", err)
	}

	doc, err := o.cachedGenerate(ctx, overallSummaryKey(cspA, cspB), gemini.Request{
		Model:  o.cfg.ModelSynthesis,
		System: o.prompts.OverarchingSummary.SystemInstruction,
		User:   user,
		Schema: prompt.OverarchingSummarySchema,
	})
	if err != nil {
		return "", err
	}

	var response struct {
		Summary string `json:"overarching_summary"`
	}
	if err := json.Unmarshal(doc, &response); err != nil {
		return "", fmt.Errorf("malformed summary document: %w", err)
	}
	return response.Summary, nil
}
