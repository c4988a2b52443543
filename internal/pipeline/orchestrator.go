package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/cache"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/config"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/discovery"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/gemini"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/model"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/prompt"
)

// ErrNoServices is returned when neither provider's catalog could be
// resolved. Matching cannot proceed without input, so this is the one
// pipeline condition that fails the whole run.
var ErrNoServices = errors.New("no service catalog could be resolved for either provider")

// Orchestrator drives a full comparison run.
type Orchestrator struct {
	cfg     *config.Config
	client  gemini.Client
	store   *cache.Store
	prompts *prompt.Set
	mapper  *discovery.Mapper
	sem     *semaphore.Weighted
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom logger for the orchestrator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithClock overrides the clock used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an Orchestrator. The shared semaphore sized by
// cfg.MaxConcurrentRequests bounds all inference calls the run makes,
// across matching, analysis, sovereignty, and summary tiers alike.
func New(cfg *config.Config, client gemini.Client, store *cache.Store, opts ...Option) (*Orchestrator, error) {
	prompts, err := prompt.Load()
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:     cfg,
		client:  client,
		store:   store,
		prompts: prompts,
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrentRequests)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	o.mapper = discovery.NewMapper(client, prompts, o.sem,
		discovery.WithModel(cfg.ModelDiscovery),
		discovery.WithChunkSize(cfg.ChunkSize),
		discovery.WithTestMode(cfg.TestMode),
		discovery.WithLogger(o.logger),
	)
	return o, nil
}

// Run executes the full pipeline for the configured provider pair.
func (o *Orchestrator) Run(ctx context.Context) (*model.RunResult, error) {
	cspA, cspB := o.cfg.CSPA, o.cfg.CSPB
	o.logger.Info("starting comparison run",
		"cspA", cspA,
		"cspB", cspB,
		"testMode", o.cfg.TestMode,
		"concurrency", o.cfg.MaxConcurrentRequests,
	)
	start := o.now()

	items, err := o.discover(ctx, cspA, cspB)
	if err != nil {
		return nil, err
	}

	if o.cfg.TestMode && len(items) > o.cfg.TestModeLimit {
		items = items[:o.cfg.TestModeLimit]
		o.logger.Info("test mode: limiting processed items", "limit", o.cfg.TestModeLimit)
	}

	results := o.processPairs(ctx, cspA, cspB, items)
	sovereignty := o.assessSovereignty(ctx, cspA, cspB)
	domainSummaries, overall := o.summarize(ctx, cspA, cspB, results)

	run := &model.RunResult{
		RunID:           uuid.NewString(),
		CSPA:            cspA,
		CSPB:            cspB,
		GeneratedAt:     o.now(),
		Items:           items,
		Results:         results,
		Sovereignty:     sovereignty,
		DomainSummaries: domainSummaries,
		OverallSummary:  overall,
	}

	o.logger.Info("comparison run complete",
		"items", len(items),
		"results", len(results),
		"elapsed", o.now().Sub(start),
	)
	return run, nil
}

// discover resolves both catalogs and the service map, cache first.
func (o *Orchestrator) discover(ctx context.Context, cspA, cspB string) ([]model.ServiceMapItem, error) {
	if cached, err := o.store.Get(ctx, serviceMapKey(cspA, cspB)); err == nil {
		var m model.ServiceMap
		if err := json.Unmarshal(cached, &m); err == nil {
			o.logger.Info("service map loaded from cache", "items", len(m.Items))
			return m.Items, nil
		}
		o.logger.Warn("cached service map is malformed, rebuilding")
	}

	servicesA, servicesB, err := o.serviceLists(ctx, cspA, cspB)
	if err != nil {
		return nil, err
	}

	items, err := o.mapper.MapServices(ctx, cspA, cspB, servicesA, servicesB)
	if err != nil {
		return nil, fmt.Errorf("service matching failed: %w", err)
	}

	if payload, err := json.Marshal(model.ServiceMap{Items: items}); err == nil {
		if err := o.store.Set(ctx, serviceMapKey(cspA, cspB), payload); err != nil {
			o.logger.Warn("failed to cache service map", "error", err)
		}
	}
	return items, nil
}

// serviceLists resolves both provider catalogs concurrently. A single
// failed catalog degrades to an empty list; both failing is fatal.
func (o *Orchestrator) serviceLists(ctx context.Context, cspA, cspB string) ([]model.ServiceEntry, []model.ServiceEntry, error) {
	lists := make([][]model.ServiceEntry, 2)

	g, ctx := errgroup.WithContext(ctx)
	for i, csp := range []string{cspA, cspB} {
		i, csp := i, csp
		g.Go(func() error {
			lists[i] = o.serviceList(ctx, csp)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if len(lists[0]) == 0 && len(lists[1]) == 0 {
		return nil, nil, ErrNoServices
	}
	return lists[0], lists[1], nil
}

// serviceList resolves one provider catalog, cache first. Failures are
// logged and degrade to an empty catalog.
func (o *Orchestrator) serviceList(ctx context.Context, csp string) []model.ServiceEntry {
	key := serviceListKey(csp)

	if cached, err := o.store.Get(ctx, key); err == nil {
		var list struct {
			Services []model.ServiceEntry `json:"services"`
		}
		if err := json.Unmarshal(cached, &list); err == nil {
			return list.Services
		}
		o.logger.Warn("cached service list is malformed, refetching", "csp", csp)
	}

	services, err := o.mapper.ServiceList(ctx, csp)
	if err != nil {
		o.logger.Warn("service list resolution failed", "csp", csp, "error", err)
		return nil
	}

	if payload, err := json.Marshal(map[string]any{"services": services}); err == nil {
		if err := o.store.Set(ctx, key, payload); err != nil {
			o.logger.Warn("failed to cache service list", "csp", csp, "error", err)
		}
	}
	return services
}

// processPairs fans out one task per matched pair and fans results back
// in preserving service map order. Dropped pairs leave gaps that are
// compacted away.
func (o *Orchestrator) processPairs(ctx context.Context, cspA, cspB string, items []model.ServiceMapItem) []model.PairResult {
	slots := make([]*model.PairResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		if !item.Matched() {
			o.logger.Info("skipping unmatched service", "service", item.ServiceA)
			continue
		}
		g.Go(func() error {
			result, err := o.processPair(gctx, cspA, cspB, item)
			if err != nil {
				// Per-pair fault isolation: the pair is dropped from all
				// downstream stages, the run continues.
				o.logger.Warn("pair dropped",
					"pair", item.PairKey(cspA, cspB),
					"error", err,
				)
				return nil
			}
			slots[i] = result
			return nil
		})
	}
	// Task errors are swallowed per pair; Wait only fans in.
	_ = g.Wait() //nolint:errcheck // Goroutines always return nil

	results := make([]model.PairResult, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results
}

// processPair runs one matched pair through technical analysis, pricing
// analysis, and synthesis. The two analyses are independent of each
// other and run concurrently; synthesis waits on both.
func (o *Orchestrator) processPair(ctx context.Context, cspA, cspB string, item model.ServiceMapItem) (*model.PairResult, error) {
	pairKey := item.PairKey(cspA, cspB)
	o.logger.Info("processing pair", "pair", pairKey, "domain", item.Domain)

	var techDoc, priceDoc json.RawMessage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := o.technicalAnalysis(gctx, cspA, cspB, item, pairKey)
		if err != nil {
			return fmt.Errorf("technical analysis: %w", err)
		}
		techDoc = doc
		return nil
	})
	g.Go(func() error {
		doc, err := o.pricingAnalysis(gctx, cspA, cspB, item, pairKey)
		if err != nil {
			return fmt.Errorf("pricing analysis: %w", err)
		}
		priceDoc = doc
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result, err := o.synthesize(ctx, pairKey, techDoc, priceDoc)
	if err != nil {
		return nil, fmt.Errorf("synthesis: %w", err)
	}

	return &model.PairResult{Map: item, Result: *result}, nil
}

// cachedGenerate runs one cache-aware inference call: a fresh cached
// document short-circuits the call entirely; a miss acquires the shared
// semaphore, calls the model, and stores the result.
func (o *Orchestrator) cachedGenerate(ctx context.Context, key string, req gemini.Request) (json.RawMessage, error) {
	if doc, err := o.store.Get(ctx, key); err == nil {
		return doc, nil
	}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	doc, err := o.client.Generate(ctx, req)
	o.sem.Release(1)
	if err != nil {
		return nil, err
	}

	if err := o.store.Set(ctx, key, doc); err != nil {
		o.logger.Warn("failed to cache stage result", "key", key, "error", err)
	}
	return doc, nil
}
