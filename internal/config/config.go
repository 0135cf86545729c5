// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// DataFile is the path of the persisted ledger document.
	DataFile string `koanf:"data_file"`

	// AnnounceQueueSize bounds the in-memory announcement queue.
	AnnounceQueueSize int `koanf:"announce_queue_size"`

	// DispatchWorkerCount sets the number of announcement dispatch workers.
	DispatchWorkerCount int `koanf:"dispatch_worker_count"`

	// DedupeSize sets the size of the interaction dedupe cache.
	DedupeSize int `koanf:"dedupe_size"`

	// AutocompleteLimit caps GET /awards/names results.
	AutocompleteLimit int `koanf:"autocomplete_limit"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and is
// currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8090",
		DataFile:            "data.json",
		AnnounceQueueSize:   1024,
		DispatchWorkerCount: 2,
		DedupeSize:          50_000,
		AutocompleteLimit:   25,
	}
}
