package discovery

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/gemini"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/model"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/prompt"
)

// MapServices matches provider A's catalog against provider B's.
//
// servicesA is split into consecutive chunks of the configured size; each
// chunk is matched in one inference request carrying the entire servicesB
// candidate list. Chunks run concurrently under the shared semaphore, but
// the output preserves input order: it is the concatenation of per-chunk
// results in chunk order, one item per input service. A chunk whose
// request fails or whose response is malformed falls back to unmatched
// items with the original name and URL preserved.
func (m *Mapper) MapServices(ctx context.Context, cspA, cspB string, servicesA, servicesB []model.ServiceEntry) ([]model.ServiceMapItem, error) {
	if m.testMode {
		m.logger.Info("test mode: returning sample service map")
		return sampleServiceMap(), nil
	}

	candidatesJSON, err := json.Marshal(servicesB)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal candidate list: %w", err)
	}

	chunks := chunkEntries(servicesA, m.chunkSize)
	m.logger.Info("starting batch matching",
		"cspA", cspA,
		"cspB", cspB,
		"services", len(servicesA),
		"chunks", len(chunks),
		"chunkSize", m.chunkSize,
	)

	results := make([][]model.ServiceMapItem, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			items, err := m.matchChunk(ctx, cspA, cspB, chunk, candidatesJSON)
			if err != nil {
				// A failed chunk degrades to unmatched items; it never
				// fails the whole matching stage.
				m.logger.Warn("chunk matching failed, falling back to unmatched",
					"chunk", i,
					"size", len(chunk),
					"error", err,
				)
				items = fallbackItems(chunk)
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]model.ServiceMapItem, 0, len(servicesA))
	for _, items := range results {
		merged = append(merged, items...)
	}
	return merged, nil
}

// matchChunk issues one matching request and validates its shape.
func (m *Mapper) matchChunk(ctx context.Context, cspA, cspB string, chunk []model.ServiceEntry, candidatesJSON []byte) ([]model.ServiceMapItem, error) {
	chunkJSON, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chunk: %w", err)
	}

	user, err := m.prompts.ServiceMapBatch.Render(map[string]string{
		"CSPA":      cspA,
		"CSPB":      cspB,
		"ServicesA": string(chunkJSON),
		"ServicesB": string(candidatesJSON),
	})
	if err != nil {
		return nil, fmt.Errorf("matching prompt: %w", err)
	}

	if err := m.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	payload, err := m.client.Generate(ctx, gemini.Request{
		Model:     m.model,
		System:    m.prompts.ServiceMapBatch.SystemInstruction,
		User:      user,
		Schema:    prompt.ServiceMapSchema,
		Grounding: true,
		Thinking:  true,
	})
	m.sem.Release(1)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Items []model.ServiceMapItem `json:"items"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("malformed matching response: %w", err)
	}
	if resp.Items == nil {
		return nil, fmt.Errorf("matching response missing items list")
	}
	if len(resp.Items) != len(chunk) {
		return nil, fmt.Errorf("matching response has %d items for %d inputs", len(resp.Items), len(chunk))
	}
	return resp.Items, nil
}

// chunkEntries splits entries into consecutive chunks of size n; the last
// chunk may be shorter.
func chunkEntries(entries []model.ServiceEntry, n int) [][]model.ServiceEntry {
	var chunks [][]model.ServiceEntry
	for start := 0; start < len(entries); start += n {
		end := min(start+n, len(entries))
		chunks = append(chunks, entries[start:end])
	}
	return chunks
}

// fallbackItems produces one unmatched map item per chunk entry.
func fallbackItems(chunk []model.ServiceEntry) []model.ServiceMapItem {
	items := make([]model.ServiceMapItem, len(chunk))
	for i, entry := range chunk {
		items[i] = model.ServiceMapItem{
			Domain:      "Uncategorized",
			ServiceA:    entry.Name,
			ServiceAURL: entry.URL,
		}
	}
	return items
}

// sampleServiceMap returns the fixed test-mode mapping.
func sampleServiceMap() []model.ServiceMapItem {
	return []model.ServiceMapItem{
		{
			Domain:      "Compute",
			ServiceA:    "EC2",
			ServiceAURL: "https://aws.amazon.com/ec2/",
			ServiceB:    "Compute Engine",
			ServiceBURL: "https://cloud.google.com/compute/",
		},
		{
			Domain:      "Storage",
			ServiceA:    "S3",
			ServiceAURL: "https://aws.amazon.com/s3/",
			ServiceB:    "Cloud Storage",
			ServiceBURL: "https://cloud.google.com/storage/",
		},
		{
			Domain:      "Database",
			ServiceA:    "RDS",
			ServiceAURL: "https://aws.amazon.com/rds/",
		},
	}
}
