package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/gemini"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/model"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/prompt"
)

// technicalAnalysis produces the grounded technical comparison document
// for one pair, cache first.
func (o *Orchestrator) technicalAnalysis(ctx context.Context, cspA, cspB string, item model.ServiceMapItem, pairKey string) (json.RawMessage, error) {
	if o.cfg.TestMode {
		return sampleTechnicalDoc(pairKey), nil
	}

	user, err := o.prompts.Technical.Render(map[string]string{
		"CSPA":         cspA,
		"CSPB":         cspB,
		"ServiceAName": item.ServiceA,
		"ServiceAURL":  item.ServiceAURL,
		"ServiceBName": item.ServiceB,
		"ServiceBURL":  item.ServiceBURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render technical prompt: %w", err)
	}

	return o.cachedGenerate(ctx, technicalKey(pairKey), gemini.Request{
		Model:     o.cfg.ModelAnalysis,
		System:    o.prompts.Technical.SystemInstruction,
		User:      user,
		Schema:    prompt.TechnicalSchema,
		Grounding: true,
		Thinking:  true,
	})
}

// pricingAnalysis produces the grounded pricing comparison document for
// one pair, cache first.
func (o *Orchestrator) pricingAnalysis(ctx context.Context, cspA, cspB string, item model.ServiceMapItem, pairKey string) (json.RawMessage, error) {
	if o.cfg.TestMode {
		return samplePricingDoc(pairKey), nil
	}

	user, err := o.prompts.Pricing.Render(map[string]string{
		"CSPA":         cspA,
		"CSPB":         cspB,
		"ServiceAName": item.ServiceA,
		"ServiceBName": item.ServiceB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render pricing prompt: %w", err)
	}

	return o.cachedGenerate(ctx, pricingKey(pairKey), gemini.Request{
		Model:     o.cfg.ModelAnalysis,
		System:    o.prompts.Pricing.SystemInstruction,
		User:      user,
		Schema:    prompt.PricingSchema,
		Grounding: true,
		Thinking:  true,
	})
}

// synthesize combines the two analysis documents into the final pair
// document. Synthesis is a pure concatenation of the narratives already
// produced, no inference call is made. A cached, well-formed result
// short-circuits the combination.
func (o *Orchestrator) synthesize(ctx context.Context, pairKey string, techDoc, priceDoc json.RawMessage) (*model.SynthesisResult, error) {
	key := resultKey(pairKey)

	if cached, err := o.store.Get(ctx, key); err == nil {
		var result model.SynthesisResult
		if err := json.Unmarshal(cached, &result); err == nil {
			return &result, nil
		}
		o.logger.Warn("cached synthesis result is malformed, rebuilding", "pair", pairKey)
	}

	narrative, err := buildComparison(techDoc, priceDoc)
	if err != nil {
		return nil, err
	}

	result := &model.SynthesisResult{
		Metadata: model.SynthesisMetadata{
			ServicePairID: pairKey,
			GeneratedAt:   o.now().UTC(),
			ModelVersion:  "deterministic_concatenation",
		},
		TechnicalData: techDoc,
		PricingData:   priceDoc,
		Synthesis:     model.SynthesisBody{DetailedComparison: narrative},
	}

	if payload, err := json.Marshal(result); err == nil {
		if err := o.store.Set(ctx, key, payload); err != nil {
			o.logger.Warn("failed to cache synthesis result", "pair", pairKey, "error", err)
		}
	}
	return result, nil
}

// buildComparison concatenates the reasoning sections of the two
// analysis documents into one HTML fragment. Missing sections are
// skipped rather than failing the pair; a document carrying no
// narrative at all is an error.
func buildComparison(techDoc, priceDoc json.RawMessage) (string, error) {
	var tech struct {
		TechnicalReasoning string `json:"technical_reasoning"`
		LockinAnalysis     struct {
			LockinReasoning string `json:"lockin_reasoning"`
		} `json:"lockin_analysis"`
	}
	if err := json.Unmarshal(techDoc, &tech); err != nil {
		return "", fmt.Errorf("malformed technical document: %w", err)
	}

	var price struct {
		PricingReasoning string `json:"pricing_reasoning"`
	}
	if err := json.Unmarshal(priceDoc, &price); err != nil {
		return "", fmt.Errorf("malformed pricing document: %w", err)
	}

	if tech.TechnicalReasoning == "" && price.PricingReasoning == "" {
		return "", fmt.Errorf("analysis documents carry no narrative sections")
	}

	var b []byte
	if tech.TechnicalReasoning != "" {
		b = append(b, "<h4>Technical Analysis</h4>\n"...)
		b = append(b, tech.TechnicalReasoning...)
		b = append(b, '\n')
	}
	if tech.LockinAnalysis.LockinReasoning != "" {
		b = append(b, "<h4>Lock-in Analysis</h4>\n"...)
		b = append(b, tech.LockinAnalysis.LockinReasoning...)
		b = append(b, '\n')
	}
	if price.PricingReasoning != "" {
		b = append(b, "<h4>Pricing Analysis</h4>\n"...)
		b = append(b, price.PricingReasoning...)
		b = append(b, '\n')
	}
	return string(b), nil
}

// sampleTechnicalDoc is the fixed test-mode technical analysis.
func sampleTechnicalDoc(pairKey string) json.RawMessage {
	doc := map[string]any{
		"service_pair_id": pairKey,
		"maturity_analysis": map[string]any{
			"csp_a": map[string]string{
				"stability":            "Generally available for multiple years",
				"release_stage":        "GA",
				"feature_completeness": "Extensive",
			},
			"csp_b": map[string]string{
				"stability":            "Generally available for multiple years",
				"release_stage":        "GA",
				"feature_completeness": "Extensive",
			},
		},
		"integration_quality": map[string]string{
			"api_consistency":       "Consistent REST and SDK surface",
			"documentation_quality": "Comprehensive",
			"sdk_support":           "All major languages",
		},
		"lockin_analysis": map[string]string{
			"lockin_risk":      "Medium",
			"lockin_reasoning": "Workloads are portable with moderate migration effort.",
		},
		"open_standard":       "Partial",
		"technical_score":     9.5,
		"technical_reasoning": "Sample technical assessment produced in test mode.",
	}
	payload, _ := json.Marshal(doc)
	return payload
}

// samplePricingDoc is the fixed test-mode pricing analysis.
func samplePricingDoc(pairKey string) json.RawMessage {
	doc := map[string]any{
		"service_pair_id": pairKey,
		"pricing_models": []map[string]string{
			{
				"model_type":    "on-demand",
				"csp_a_details": "Per-second billing",
				"csp_b_details": "Per-second billing with sustained use discounts",
			},
		},
		"cost_efficiency_score": 8.0,
		"pricing_reasoning":     "Sample pricing assessment produced in test mode.",
	}
	payload, _ := json.Marshal(doc)
	return payload
}
