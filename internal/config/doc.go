// Package config provides configuration management for notecorpus.
//
// This package handles:
//   - Loading and saving settings from JSON or YAML files
//   - Default configuration values
//   - Environment overrides, optionally read from a .env file
//   - Validation and conversion to a score.PartSelector
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Reads data/**/*.mid, writes data/notes.ntcp
//	// One worker per CPU
//	// Second instrument part, falling back to the whole score
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/notecorpus.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Environment
//
// NOTECORPUS_WORKERS, NOTECORPUS_OUTPUT and NOTECORPUS_LOG_LEVEL override
// the file. LoadDotEnv fills them from a .env file first.
package config
