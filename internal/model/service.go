package model

import "strings"

// ServiceEntry is one catalog entry discovered for a single cloud provider.
// Entries are immutable once discovered.
type ServiceEntry struct {
	// Name is the provider's marketing name for the service (e.g., "EC2").
	Name string `json:"service_name"`

	// URL is the product page for the service.
	URL string `json:"service_url"`

	// Description is a short summary of what the service does.
	// May be empty when the catalog source does not provide one.
	Description string `json:"description,omitempty"`
}

// ServiceMapItem is the result of matching one provider-A service against
// provider B's catalog. ServiceB is empty when no equivalent was found;
// such items never advance past the matching stage but are retained for
// the "missing services" section of the report.
type ServiceMapItem struct {
	// Domain is the coarse functional category (e.g., "Compute", "Storage").
	Domain string `json:"domain"`

	// ServiceA is the provider-A service name.
	ServiceA string `json:"csp_a_service_name"`

	// ServiceAURL is the provider-A product page.
	ServiceAURL string `json:"csp_a_url"`

	// ServiceB is the matched provider-B service name, or empty when no
	// equivalent exists.
	ServiceB string `json:"csp_b_service_name"`

	// ServiceBURL is the provider-B product page, empty when unmatched.
	ServiceBURL string `json:"csp_b_url,omitempty"`
}

// Matched reports whether an equivalent provider-B service was found.
func (s ServiceMapItem) Matched() bool {
	return s.ServiceB != ""
}

// ServiceMap is the persisted form of a full matching run.
type ServiceMap struct {
	Items []ServiceMapItem `json:"items"`
}

// PairKey derives the cache namespace root for a matched pair.
//
// The key is normalized (case-folded, whitespace collapsed to underscores)
// and carries both provider names so that providers offering identically
// named services never collide in the cache.
func PairKey(cspA, serviceA, cspB, serviceB string) string {
	return KeyPart(cspA) + "_" + KeyPart(serviceA) +
		"_vs_" + KeyPart(cspB) + "_" + KeyPart(serviceB)
}

// PairKey returns the normalized pair key for a matched item.
// Callers must not use this for unmatched items.
func (s ServiceMapItem) PairKey(cspA, cspB string) string {
	return PairKey(cspA, s.ServiceA, cspB, s.ServiceB)
}

// KeyPart normalizes a value for use in cache keys: lowercased, with
// every run of whitespace replaced by a single underscore.
func KeyPart(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), "_")
}
