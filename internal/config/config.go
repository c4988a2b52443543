package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// ModelDiscovery is used for catalog discovery and service matching.
	// Flash-class models are sufficient for structured extraction and keep
	// the per-run cost of the many matching calls low.
	ModelDiscovery = "gemini-3-flash-preview"

	// ModelAnalysis is used for technical, pricing, and sovereignty
	// analysis, where grounded reasoning quality dominates cost.
	ModelAnalysis = "gemini-3-pro-preview"

	// ModelSynthesis is used for the management summaries.
	ModelSynthesis = "gemini-3-pro-preview"

	// DefaultMaxConcurrentRequests bounds in-flight inference requests
	// across the whole run. The matching, analysis, and summary tiers all
	// draw from this one budget to keep load on the API predictable.
	DefaultMaxConcurrentRequests = 10

	// DefaultChunkSize is the number of provider-A services sent per
	// matching request. Larger chunks mean fewer requests but bigger
	// prompts; 20 keeps prompts well inside the context window even with
	// the full candidate list attached.
	DefaultChunkSize = 20

	// DefaultCacheTTL is how long cached stage results stay fresh.
	DefaultCacheTTL = 7 * 24 * time.Hour

	// DefaultTestModeLimit is the number of matched pairs processed in
	// test mode.
	DefaultTestModeLimit = 3

	// AppName is the application name used for XDG directory paths.
	AppName = "cspcompare"

	// EnvAPIKey is the environment variable consulted for the API key
	// when neither flag nor config file provides one.
	EnvAPIKey = "GEMINI_API_KEY"
)

// Config holds all configuration options for one comparison run.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable, and nesting would
// add complexity without significant benefit.
type Config struct {
	// CSPA and CSPB are the two providers to compare, as given on the
	// command line (e.g., "AWS", "GCP").
	CSPA string
	CSPB string

	// APIKey authenticates against the inference API. Required unless
	// TestMode is set.
	APIKey string

	// ModelDiscovery, ModelAnalysis, and ModelSynthesis select the model
	// per pipeline stage.
	ModelDiscovery string
	ModelAnalysis  string
	ModelSynthesis string

	// MaxConcurrentRequests bounds concurrent in-flight inference
	// requests across all pipeline tiers.
	MaxConcurrentRequests int

	// ChunkSize is the matching batch size.
	ChunkSize int

	// CacheDir is where the result cache lives.
	CacheDir string

	// CacheTTL is the lifetime of cached stage results.
	CacheTTL time.Duration

	// ClearCache wipes the cache before the run starts.
	ClearCache bool

	// TestMode substitutes fixed sample catalogs and analysis documents
	// and limits the processed pair set. No inference calls are made.
	TestMode bool

	// TestModeLimit is the number of matched pairs processed in test mode.
	TestModeLimit int

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// ConfigFilePath is an explicitly requested configuration file.
	ConfigFilePath string

	// OutputPath is where the report is written. Empty means a timestamped
	// file in the current directory.
	OutputPath string

	// MarkdownReport and JSONReport select the report format; the default
	// is the HTML dashboard. Mutually exclusive.
	MarkdownReport bool
	JSONReport     bool
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		ModelDiscovery:        ModelDiscovery,
		ModelAnalysis:         ModelAnalysis,
		ModelSynthesis:        ModelSynthesis,
		MaxConcurrentRequests: DefaultMaxConcurrentRequests,
		ChunkSize:             DefaultChunkSize,
		CacheDir:              DefaultCacheDir(),
		CacheTTL:              DefaultCacheTTL,
		TestModeLimit:         DefaultTestModeLimit,
	}
}

// DefaultCacheDir returns the XDG cache directory for the application.
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks the configuration before any pipeline work starts.
// A validation failure is fatal and aborts the run with a non-zero exit.
func (c *Config) Validate() error {
	if c.CSPA == "" || c.CSPB == "" {
		return ErrMissingProviders
	}
	if c.CSPA == c.CSPB {
		return ErrSameProvider
	}
	if !c.TestMode && c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.MaxConcurrentRequests <= 0 {
		return ErrInvalidConcurrency
	}
	if c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	if c.MarkdownReport && c.JSONReport {
		return ErrConflictingFormats
	}
	return nil
}
