// Package config holds the runtime configuration for cspcompare.
//
// Configuration is an explicit struct built once at startup from CLI
// flags, the environment, and an optional YAML file, then passed into
// each component constructor. Core logic never performs ambient lookups.
package config
