// Package discovery resolves each provider's service catalog and matches
// the two catalogs against each other.
//
// Matching is batched: provider A's catalog is split into fixed-size
// chunks and each chunk is matched against the full provider-B candidate
// list in one inference request. Chunking bounds prompt size and request
// cost; per-chunk (rather than per-item) fallback balances failure
// granularity against request volume. A failed chunk degrades every item
// in it to "no equivalent found"; the matcher never drops an input item.
package discovery
