package pipeline

import "github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/model"

// Cache key builders. The namespace is a small fixed set of prefixes;
// every variable part is normalized through model.KeyPart so keys never
// collide across provider pairs with identically named services.

func serviceListKey(csp string) string {
	return "service_list_" + model.KeyPart(csp)
}

func serviceMapKey(cspA, cspB string) string {
	return "service_map_" + model.KeyPart(cspA) + "_" + model.KeyPart(cspB)
}

func technicalKey(pairKey string) string {
	return "technical_" + pairKey
}

func pricingKey(pairKey string) string {
	return "pricing_" + pairKey
}

func resultKey(pairKey string) string {
	return "result_" + pairKey
}

func sovereigntyKey(csp string) string {
	return "sovereignty_" + model.KeyPart(csp)
}

func domainSummaryKey(cspA, cspB, domain string) string {
	return "management_summary_" + model.KeyPart(cspA) + "_" + model.KeyPart(cspB) + "_" + model.KeyPart(domain)
}

func overallSummaryKey(cspA, cspB string) string {
	return "management_summary_" + model.KeyPart(cspA) + "_" + model.KeyPart(cspB) + "_overall"
}
