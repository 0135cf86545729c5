package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/leviathan-hq/larry/internal/domain/model"
	"github.com/leviathan-hq/larry/pkg/logger"
	"github.com/leviathan-hq/larry/pkg/metrics"
)

// defaultPath is where the ledger document lives unless configured.
const defaultPath = "data.json"

// JSONStore implements Store over a single JSON document kept fully in
// memory and rewritten wholesale on every save. Writes go through a
// temporary file and an atomic rename so a crash leaves either the old
// document or the new one, never a torn one.
type JSONStore struct {
	mu     sync.RWMutex
	path   string
	data   *model.ServerData
	now    func() time.Time
	logger logger.Logger
}

// NewJSONStore creates a store seeded with the compiled-in defaults.
// Call Load before serving to reconcile with persisted state.
func NewJSONStore(opts ...Option) *JSONStore {
	s := &JSONStore{
		path: defaultPath,
		data: model.DefaultServerData(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("store")
	}
	return s
}

// persistedDoc splits the document into raw sections so each section can
// be merged onto defaults key-by-key at its top level. The merge is
// deliberately shallow: a persisted squadNames mapping replaces the
// default mapping wholesale rather than merging per squad.
type persistedDoc struct {
	GlobalConfig map[string]json.RawMessage   `json:"globalConfig"`
	Users        map[string]*model.UserRecord `json:"users"`
}

// Load implements Store.
func (s *JSONStore) Load(ctx context.Context) error {
	s.mu.Lock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info(ctx, "ledger document not found, seeding defaults",
			logger.String("path", s.path))
		s.mu.Unlock()
		return s.Save(ctx)
	}
	if err != nil {
		s.logger.Error(ctx, "ledger document unreadable, continuing with defaults",
			logger.String("path", s.path), logger.Error(err))
		s.mu.Unlock()
		return nil
	}

	var doc persistedDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Error(ctx, "ledger document malformed, continuing with defaults",
			logger.String("path", s.path), logger.Error(err))
		s.mu.Unlock()
		return nil
	}

	s.mergeLocked(ctx, &doc)
	users := len(s.data.Users)
	s.mu.Unlock()

	metrics.UpdateTrackedUsers(users)
	s.logger.Info(ctx, "ledger document loaded",
		logger.String("path", s.path), logger.Int("users", users))
	return nil
}

// mergeLocked overlays a persisted document onto the defaults. Caller
// holds the write lock.
func (s *JSONStore) mergeLocked(ctx context.Context, doc *persistedDoc) {
	for key, raw := range doc.GlobalConfig {
		var err error
		switch key {
		case "battalionName":
			err = json.Unmarshal(raw, &s.data.GlobalConfig.BattalionName)
		case "companyName":
			err = json.Unmarshal(raw, &s.data.GlobalConfig.CompanyName)
		case "squadNames":
			// Fresh map so the persisted value replaces the defaults
			// instead of overlaying them.
			squads := map[string]string{}
			if err = json.Unmarshal(raw, &squads); err == nil {
				s.data.GlobalConfig.SquadNames = squads
			}
		case "ribbonTypes":
			ribbons := map[string]model.RibbonType{}
			if err = json.Unmarshal(raw, &ribbons); err == nil {
				s.data.GlobalConfig.RibbonTypes = ribbons
			}
		default:
			s.logger.Warn(ctx, "ignoring unknown globalConfig key", logger.String("key", key))
		}
		if err != nil {
			s.logger.Warn(ctx, "skipping malformed globalConfig key",
				logger.String("key", key), logger.Error(err))
		}
	}
	for id, rec := range doc.Users {
		if rec == nil {
			continue
		}
		if rec.Titles == nil {
			rec.Titles = []string{}
		}
		if rec.Ribbons == nil {
			rec.Ribbons = map[string]int{}
		}
		s.data.Users[id] = rec
	}
}

// Save implements Store.
func (s *JSONStore) Save(ctx context.Context) error {
	s.mu.RLock()
	raw, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		metrics.RecordSaveFailure()
		return fmt.Errorf("%w: %w", ErrWriteDocument, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		metrics.RecordSaveFailure()
		return fmt.Errorf("%w: %w", ErrWriteDocument, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		metrics.RecordSaveFailure()
		return fmt.Errorf("%w: %w", ErrWriteDocument, err)
	}

	metrics.RecordSave()
	return nil
}

// GetUser implements Store. First lookup of an id creates a default
// record and persists it immediately; save failure on that path is logged
// and the in-memory record stands.
func (s *JSONStore) GetUser(ctx context.Context, id string) (*model.UserRecord, bool) {
	s.mu.RLock()
	if rec, ok := s.data.Users[id]; ok {
		defer s.mu.RUnlock()
		return rec.Clone(), false
	}
	s.mu.RUnlock()

	s.mu.Lock()
	// Re-check: another goroutine may have created it between locks.
	if rec, ok := s.data.Users[id]; ok {
		defer s.mu.Unlock()
		return rec.Clone(), false
	}
	rec := model.NewUserRecord(s.now().UnixMilli())
	s.data.Users[id] = rec
	users := len(s.data.Users)
	s.mu.Unlock()

	metrics.UpdateTrackedUsers(users)
	if err := s.Save(ctx); err != nil {
		s.logger.Error(ctx, "persisting new member record failed",
			logger.String("user", id), logger.Error(err))
	}
	return rec.Clone(), true
}

// PutUser implements Store.
func (s *JSONStore) PutUser(ctx context.Context, id string, rec *model.UserRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Users[id] = rec.Clone()
}

// Touch implements Store.
func (s *JSONStore) Touch(ctx context.Context, id string) {
	now := s.now().UnixMilli()

	s.mu.Lock()
	rec, ok := s.data.Users[id]
	if !ok {
		rec = model.NewUserRecord(now)
		s.data.Users[id] = rec
	}
	rec.LastActive = now
	s.mu.Unlock()
}

// Config implements Store.
func (s *JSONStore) Config(ctx context.Context) model.GlobalConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.GlobalConfig.Clone()
}

// Snapshot implements Store.
func (s *JSONStore) Snapshot(ctx context.Context) *model.ServerData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Count implements Store.
func (s *JSONStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.Users)
}
