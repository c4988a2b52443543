package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/cache"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/config"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/gemini"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/log"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/model"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/pipeline"
	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/report"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <csp-a> <csp-b>",
		Short: "Compare the service portfolios of two cloud providers",
		Long: `Compare discovers both providers' service catalogs, maps equivalent
services into functional domains, and analyzes every matched pair.

Each pair is scored on technical standing and cost efficiency; both
providers are additionally assessed against a digital sovereignty
control catalog. The consolidated result is written as an HTML
dashboard by default.

All intermediate results are cached under the XDG cache directory, so
an interrupted or repeated run only pays for the work that is missing.

Examples:
  # Compare AWS and GCP, writing the dashboard to the current directory
  cspcompare compare aws gcp

  # Markdown report to an explicit path
  cspcompare compare --markdown -o report.md aws azure

  # Dry run against fixed sample data, no API key needed
  cspcompare compare --test aws gcp

  # Discard cached results from earlier runs first
  cspcompare compare --clear-cache aws gcp

Configuration file (.cspcompare) example:
  api_key: "..."
  models:
    discovery: gemini-3-flash-preview
    analysis: gemini-3-pro-preview
  concurrency: 10
  chunk_size: 20
  cache_ttl: 168h`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	// Inference flags
	cmd.Flags().StringP("api-key", "k", "",
		"Inference API key (default: "+config.EnvAPIKey+" environment variable)")
	cmd.Flags().IntP("concurrency", "n", config.DefaultMaxConcurrentRequests,
		"Maximum concurrent inference requests across all stages")
	cmd.Flags().IntP("chunk-size", "s", config.DefaultChunkSize,
		"Number of services per matching request")

	// Cache flags
	cmd.Flags().String("cache-dir", "",
		"Cache directory (default: XDG cache directory)")
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL,
		"Lifetime of cached results")
	cmd.Flags().Bool("clear-cache", false,
		"Clear cached results before the run")

	// Test mode
	cmd.Flags().BoolP("test", "t", false,
		"Run against fixed sample data without any inference calls")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .cspcompare in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential redaction
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Handle interrupt signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCompare(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags, the environment,
// and the optional configuration file. Flags win over the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.CSPA = args[0]
	cfg.CSPB = args[1]
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.APIKey, err = cmd.Flags().GetString("api-key")
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(config.EnvAPIKey)
	}

	cfg.MaxConcurrentRequests, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.ChunkSize, err = cmd.Flags().GetInt("chunk-size")
	if err != nil {
		return nil, err
	}

	cacheDir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return nil, err
	}
	if cacheDir != "" {
		cfg.CacheDir = cacheDir
	}

	cfg.CacheTTL, err = cmd.Flags().GetDuration("cache-ttl")
	if err != nil {
		return nil, err
	}

	cfg.ClearCache, err = cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return nil, err
	}

	cfg.TestMode, err = cmd.Flags().GetBool("test")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.OutputPath, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Overlay the configuration file, if any. An explicitly requested
	// file that does not exist is an error; a missing default file is not.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cfg.Apply(cf); err != nil {
			return nil, err
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// All output passes through the redacting handler so API keys never
// reach the terminal or log files.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return log.NewLogger(os.Stderr, level)
}

// runCompare executes the comparison run.
func runCompare(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := cache.Open(cfg.CacheDir,
		cache.WithTTL(cfg.CacheTTL),
		cache.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer store.Close()

	if cfg.ClearCache {
		if err := store.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		logger.Info("cache cleared", "dir", cfg.CacheDir)
	}

	client := gemini.NewHTTPClient(cfg.APIKey,
		gemini.WithHTTPLogger(logger),
	)

	orchestrator, err := pipeline.New(cfg, client, store,
		pipeline.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	run, err := orchestrator.Run(ctx)
	if err != nil {
		return err
	}

	return writeReport(cfg, run, logger)
}

// writeReport renders the run result in the configured format.
func writeReport(cfg *config.Config, run *model.RunResult, logger *slog.Logger) error {
	path := cfg.OutputPath
	if path == "" {
		path = defaultReportPath(cfg, run.GeneratedAt)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(f, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(f)
	default:
		w = report.NewHTMLWriter(f)
	}

	n, err := w.Write(run)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Info("report written", "path", path, "bytes", n)
	fmt.Fprintf(os.Stdout, "Report written to %s\n", path)
	return nil
}

// defaultReportPath builds a timestamped report file name in the current
// directory, with the extension matching the selected format.
func defaultReportPath(cfg *config.Config, generatedAt time.Time) string {
	ext := ".html"
	switch {
	case cfg.JSONReport:
		ext = ".json"
	case cfg.MarkdownReport:
		ext = ".md"
	}
	name := fmt.Sprintf("cspcompare_%s_vs_%s_%s%s",
		model.KeyPart(cfg.CSPA),
		model.KeyPart(cfg.CSPB),
		generatedAt.Format("20060102_150405"),
		ext,
	)
	return name
}
