package repository

import (
	"time"

	"github.com/leviathan-hq/larry/pkg/logger"
)

// Option applies a configuration option to the JSONStore.
type Option func(*JSONStore)

// WithPath sets the path of the persisted ledger document.
func WithPath(path string) Option {
	return func(s *JSONStore) {
		if path != "" {
			s.path = path
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(log logger.Logger) Option {
	return func(s *JSONStore) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithClock overrides the wall clock used for lastActive stamps. Tests use
// this to get deterministic records.
func WithClock(now func() time.Time) Option {
	return func(s *JSONStore) {
		if now != nil {
			s.now = now
		}
	}
}
