// Package repository owns the single source of truth for the ledger:
// global configuration plus all member records, reconciled with one
// persisted JSON document.
package repository

import (
	"context"

	"github.com/leviathan-hq/larry/internal/domain/model"
)

// Store provides read/write access to the ledger state.
//
// Mutating methods change in-memory state only; Save persists the whole
// document. GetUser is the one read with a side effect: it creates and
// persists a default record on first lookup.
type Store interface {
	// Load reconciles persisted state with compiled-in defaults. It never
	// fails upward: a missing file seeds defaults, any other read or
	// parse failure is logged and the process continues with defaults.
	Load(ctx context.Context) error

	// Save serializes the full in-memory state to the document,
	// overwriting it entirely. On failure the in-memory state stands and
	// the persisted view diverges until the next successful save.
	Save(ctx context.Context) error

	// GetUser returns a copy of the record for id, creating and
	// persisting a fresh default record first if absent. The second
	// return reports whether this lookup created the record.
	GetUser(ctx context.Context, id string) (*model.UserRecord, bool)

	// PutUser replaces the in-memory record for id.
	PutUser(ctx context.Context, id string, rec *model.UserRecord)

	// Touch updates lastActive for id, creating the record if absent.
	Touch(ctx context.Context, id string)

	// Config returns a copy of the global configuration.
	Config(ctx context.Context) model.GlobalConfig

	// Snapshot returns a deep copy of the full document for reporting.
	Snapshot(ctx context.Context) *model.ServerData

	// Count returns the number of tracked member records.
	Count(ctx context.Context) int
}
