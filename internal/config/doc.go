// Package config provides centralized configuration management for the
// WellPulse system. It handles loading configuration from multiple sources,
// validation, and a type-safe API for accessing configuration values
// throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (wellpulse.yaml or WELLPULSE_CONFIG)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern WELLPULSE_* for namespacing:
//
//	WELLPULSE_SERVER_PORT=8050
//	WELLPULSE_LOGGING_LEVEL=debug
//	WELLPULSE_DATA_BASE_DIR=/srv/wellpulse
//	WELLPULSE_CLEANING_OUTLIER_STRATEGY=zscore
//	WELLPULSE_MODEL_TREES=200
//
// # Path Management
//
// The package provides centralized path management through the Paths type.
// Relative directories are resolved against the configured base directory,
// so the batch CLI, the dashboard server, and tests can each root the
// layout wherever they need:
//
//	paths, err := cfg.BuildPaths()
//	if err != nil { ... }
//	if err := paths.EnsureDirectories(); err != nil { ... }
//	out := paths.CleanedFile(config.CleanedFileName(time.Now()))
package config
