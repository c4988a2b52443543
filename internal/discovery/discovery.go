package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/config"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/gemini"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/model"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/prompt"
)

// Mapper discovers provider catalogs and maps them to each other.
type Mapper struct {
	client    gemini.Client
	prompts   *prompt.Set
	sem       *semaphore.Weighted
	model     string
	chunkSize int
	testMode  bool
	logger    *slog.Logger
}

// MapperOption configures a Mapper.
type MapperOption func(*Mapper)

// WithModel overrides the discovery model.
func WithModel(m string) MapperOption {
	return func(mp *Mapper) {
		if m != "" {
			mp.model = m
		}
	}
}

// WithChunkSize overrides the matching batch size.
func WithChunkSize(n int) MapperOption {
	return func(mp *Mapper) {
		if n > 0 {
			mp.chunkSize = n
		}
	}
}

// WithTestMode substitutes fixed sample catalogs for inference calls.
func WithTestMode(enabled bool) MapperOption {
	return func(mp *Mapper) {
		mp.testMode = enabled
	}
}

// WithLogger sets a custom logger for the mapper.
func WithLogger(logger *slog.Logger) MapperOption {
	return func(mp *Mapper) {
		mp.logger = logger
	}
}

// NewMapper creates a Mapper. The semaphore bounds concurrent matching
// requests and is shared with the rest of the pipeline so the whole run
// stays inside one inference budget.
func NewMapper(client gemini.Client, prompts *prompt.Set, sem *semaphore.Weighted, opts ...MapperOption) *Mapper {
	m := &Mapper{
		client:    client,
		prompts:   prompts,
		sem:       sem,
		model:     config.ModelDiscovery,
		chunkSize: config.DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// ServiceList resolves the service catalog for one provider.
func (m *Mapper) ServiceList(ctx context.Context, csp string) ([]model.ServiceEntry, error) {
	if m.testMode {
		m.logger.Info("test mode: returning sample service list", "csp", csp)
		return sampleServiceList(csp), nil
	}

	m.logger.Info("resolving service list", "csp", csp, "model", m.model)

	user, err := m.prompts.ServiceList.Render(map[string]string{"CSP": csp})
	if err != nil {
		return nil, fmt.Errorf("service list prompt for %s: %w", csp, err)
	}

	if err := m.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	payload, err := m.client.Generate(ctx, gemini.Request{
		Model:     m.model,
		System:    m.prompts.ServiceList.SystemInstruction,
		User:      user,
		Schema:    prompt.ServiceListSchema,
		Grounding: true,
		Thinking:  true,
	})
	m.sem.Release(1)
	if err != nil {
		return nil, fmt.Errorf("service list for %s: %w", csp, err)
	}

	var list struct {
		Services []model.ServiceEntry `json:"services"`
	}
	if err := json.Unmarshal(payload, &list); err != nil {
		return nil, fmt.Errorf("service list for %s: malformed response: %w", csp, err)
	}

	m.logger.Info("service list resolved", "csp", csp, "services", len(list.Services))
	return list.Services, nil
}

// sampleServiceList returns the fixed test-mode catalogs.
func sampleServiceList(csp string) []model.ServiceEntry {
	if csp == "AWS" {
		return []model.ServiceEntry{
			{Name: "EC2", URL: "https://aws.amazon.com/ec2/", Description: "Virtual Servers in the Cloud"},
			{Name: "S3", URL: "https://aws.amazon.com/s3/", Description: "Object Storage Built to Store and Retrieve Any Amount of Data from Anywhere"},
			{Name: "RDS", URL: "https://aws.amazon.com/rds/", Description: "Managed Relational Database Service for MySQL, PostgreSQL, Oracle, SQL Server, and MariaDB"},
		}
	}
	return []model.ServiceEntry{
		{Name: "Compute Engine", URL: "https://cloud.google.com/compute/", Description: "Virtual Machines Running in Google's Data Center"},
		{Name: "Cloud Storage", URL: "https://cloud.google.com/storage/", Description: "Object Storage for Companies of All Sizes"},
	}
}
