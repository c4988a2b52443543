package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".cspcompare"

// File is the YAML configuration file format:
//
//	api_key: "..."
//	models:
//	  discovery: gemini-3-flash-preview
//	  analysis: gemini-3-pro-preview
//	  synthesis: gemini-3-pro-preview
//	concurrency: 10
//	chunk_size: 20
//	cache_ttl: 168h
type File struct {
	APIKey      string `yaml:"api_key"`
	Models      Models `yaml:"models"`
	Concurrency int    `yaml:"concurrency"`
	ChunkSize   int    `yaml:"chunk_size"`
	CacheTTL    string `yaml:"cache_ttl"`
}

// Models selects the model per pipeline stage.
type Models struct {
	Discovery string `yaml:"discovery"`
	Analysis  string `yaml:"analysis"`
	Synthesis string `yaml:"synthesis"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .cspcompare in the current directory
// 3. Look for .cspcompare in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}

// Apply overlays file settings onto the config. Flag values take
// precedence, so only unset fields are filled in.
func (c *Config) Apply(cf *File) error {
	if cf == nil {
		return nil
	}
	if c.APIKey == "" {
		c.APIKey = cf.APIKey
	}
	if cf.Models.Discovery != "" {
		c.ModelDiscovery = cf.Models.Discovery
	}
	if cf.Models.Analysis != "" {
		c.ModelAnalysis = cf.Models.Analysis
	}
	if cf.Models.Synthesis != "" {
		c.ModelSynthesis = cf.Models.Synthesis
	}
	if cf.Concurrency > 0 && c.MaxConcurrentRequests == DefaultMaxConcurrentRequests {
		c.MaxConcurrentRequests = cf.Concurrency
	}
	if cf.ChunkSize > 0 && c.ChunkSize == DefaultChunkSize {
		c.ChunkSize = cf.ChunkSize
	}
	if cf.CacheTTL != "" && c.CacheTTL == DefaultCacheTTL {
		ttl, err := time.ParseDuration(cf.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid cache_ttl in config file: %w", err)
		}
		c.CacheTTL = ttl
	}
	return nil
}
