// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/leviathan-hq/larry/internal/adapters/mq/queue"
	workerpool "github.com/leviathan-hq/larry/internal/adapters/mq/worker"
	repository "github.com/leviathan-hq/larry/internal/adapters/repository"
	"github.com/leviathan-hq/larry/internal/domain/dedupe"
	"github.com/leviathan-hq/larry/internal/domain/ledger"
	"github.com/leviathan-hq/larry/internal/domain/model"
	"github.com/leviathan-hq/larry/internal/domain/report"
	"github.com/leviathan-hq/larry/pkg/logger"
	"github.com/leviathan-hq/larry/pkg/metrics"
)

// Service implements the ledger operations behind the HTTP API.
//
// All mutating operations serialize through mutationMu so each
// read-modify-persist sequence runs to completion before the next one
// begins; reporting reads a snapshot and never observes a half-applied
// mutation.
type Service struct {
	mu         sync.RWMutex // guards lifecycle state
	mutationMu sync.Mutex   // serializes ledger mutations

	// Core components
	store         repository.Store
	deduper       dedupe.Deduper
	announceQueue queue.Queue
	notifier      workerpool.Notifier
	dispatchPool  *workerpool.Pool

	// Configuration
	dataFile          string
	queueSize         int
	workerCount       int
	dedupeSize        int
	autocompleteLimit int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataFile sets the path of the persisted ledger document.
func WithDataFile(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataFile = path
		}
	}
}

// WithAnnounceQueueSize sets the announcement queue capacity.
func WithAnnounceQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDispatchWorkerCount sets the number of dispatch workers.
func WithDispatchWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDedupeSize sets the size of the interaction dedupe cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithAutocompleteLimit caps award-name autocomplete results.
func WithAutocompleteLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.autocompleteLimit = limit
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithStore overrides the ledger store. Tests use this to inject a store
// backed by a temp file.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithNotifier overrides the broadcast sink for announcements.
func WithNotifier(n workerpool.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataFile:          "data.json",
		queueSize:         1024,
		workerCount:       2,
		dedupeSize:        50000,
		autocompleteLimit: 25,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting ledger service...")

	if s.store == nil {
		s.store = repository.NewJSONStore(
			repository.WithPath(s.dataFile),
			repository.WithLogger(s.logger.Named("store")),
		)
	}
	if err := s.store.Load(ctx); err != nil {
		return fmt.Errorf("loading ledger: %w", err)
	}

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.announceQueue = queue.NewInMemoryQueue(
		queue.WithCapacity(s.queueSize),
	)
	if s.notifier == nil {
		s.notifier = workerpool.NewLogNotifier(s.logger.Named("broadcast"))
	}
	s.dispatchPool = workerpool.NewPool(s.workerCount, s.announceQueue, s.notifier)
	s.dispatchPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "ledger service started",
		logger.String("dataFile", s.dataFile),
		logger.Int("dispatchWorkers", s.workerCount),
		logger.Int("trackedUsers", s.store.Count(ctx)),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping ledger service...")

	if s.announceQueue != nil {
		_ = s.announceQueue.Close()
	}
	if s.dispatchPool != nil {
		s.dispatchPool.Stop()
	}

	s.started = false
	s.logger.Info(ctx, "ledger service stopped")
}

// SeenAndRecord atomically checks if an interaction id was seen and
// records it if not. Returns true if the interaction was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordInteractionDuplicate()
	}
	return seen
}

// Unrecord removes an interaction ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// SampleOutcome is the structured result of a sample-log operation. On
// rejection Gain is zero and CurrentTotal carries the stored running
// total for message composition.
type SampleOutcome struct {
	TargetID     string      `json:"target_id"`
	Created      bool        `json:"created"`
	CurrentTotal int         `json:"current_total"`
	Gain         ledger.Gain `json:"gain"`
}

// LogSamples applies a new cumulative sample total to the target member.
// Rejections surface as ledger sentinel errors and leave the record
// unchanged.
func (s *Service) LogSamples(ctx context.Context, actorID, targetID string, newTotal int) (SampleOutcome, error) {
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	s.store.Touch(ctx, actorID)

	rec, created := s.store.GetUser(ctx, targetID)
	out := SampleOutcome{TargetID: targetID, Created: created, CurrentTotal: rec.TotalSamples}

	gain, err := ledger.ApplySampleObservation(rec, newTotal)
	if err != nil {
		metrics.RecordSampleRejection(rejectionReason(err))
		s.saveBestEffort(ctx) // actor lastActive still moved
		return out, err
	}

	s.store.PutUser(ctx, targetID, rec)
	s.saveBestEffort(ctx)

	metrics.RecordSampleLogged()
	out.CurrentTotal = gain.TotalSamples
	out.Gain = gain

	s.announce(ctx, model.Announcement{
		Kind:   "samples",
		UserID: targetID,
		Text: fmt.Sprintf("Helldiver %s has logged %d new samples, bringing their total to %d! Glory to Super Earth! (Logged by %s)",
			targetID, gain.Delta, gain.TotalSamples, actorID),
	})
	return out, nil
}

// AwardOutcome is the structured result of an award-grant operation.
type AwardOutcome struct {
	TargetID     string               `json:"target_id"`
	Outcomes     []ledger.SlotOutcome `json:"outcomes"`
	Applied      int                  `json:"applied"`
	Loyalty      int                  `json:"loyalty"`
	SuperCredits int                  `json:"super_credits"`
}

// GrantAwards applies a batch of up to five award slots to the target
// member. Slots are processed independently; the document is persisted
// once after the whole batch.
func (s *Service) GrantAwards(ctx context.Context, actorID, targetID string, slots []ledger.AwardSlot) (AwardOutcome, error) {
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	s.store.Touch(ctx, actorID)

	rec, _ := s.store.GetUser(ctx, targetID)
	ribbonTypes := s.store.Config(ctx).RibbonTypes

	outcomes := ledger.ApplyAwardBatch(rec, slots, ribbonTypes)

	out := AwardOutcome{
		TargetID:     targetID,
		Outcomes:     outcomes,
		Loyalty:      rec.Loyalty,
		SuperCredits: rec.SuperCredits,
	}
	for _, o := range outcomes {
		if !o.Applied {
			metrics.RecordAwardSkipped(o.Reason)
			continue
		}
		metrics.RecordAwardApplied()
		out.Applied++
		s.announce(ctx, model.Announcement{
			Kind:   "award",
			UserID: targetID,
			Text:   fmt.Sprintf("Helldiver %s has been awarded %dx %q!", targetID, o.Quantity, o.Name),
		})
	}

	if out.Applied > 0 {
		s.store.PutUser(ctx, targetID, rec)
	}
	s.saveBestEffort(ctx)
	return out, nil
}

// SquadOutcome is the structured result of a squad assignment.
type SquadOutcome struct {
	TargetID string  `json:"target_id"`
	SquadID  *string `json:"squad_id"` // nil when unassigned
}

// AssignSquad assigns the target member to a configured squad, or clears
// the assignment when squadID is "unassigned".
func (s *Service) AssignSquad(ctx context.Context, actorID, targetID, squadID string) (SquadOutcome, error) {
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	s.store.Touch(ctx, actorID)

	out := SquadOutcome{TargetID: targetID}

	if squadID != report.UnassignedSquadID {
		if _, ok := s.store.Config(ctx).SquadNames[squadID]; !ok {
			return out, fmt.Errorf("%w: %s", ErrUnknownSquad, squadID)
		}
	}

	rec, _ := s.store.GetUser(ctx, targetID)
	if squadID == report.UnassignedSquadID {
		rec.SquadID = nil
	} else {
		rec.SquadID = &squadID
	}
	s.store.PutUser(ctx, targetID, rec)
	s.saveBestEffort(ctx)

	metrics.RecordSquadAssignment()
	out.SquadID = rec.SquadID

	assigned := report.UnassignedSquadID
	if rec.SquadID != nil {
		assigned = *rec.SquadID
	}
	s.announce(ctx, model.Announcement{
		Kind:   "squad",
		UserID: targetID,
		Text:   fmt.Sprintf("Helldiver %s! You have been assigned to %s!", targetID, assigned),
	})
	return out, nil
}

// StatsView is a member's full record plus whether this lookup created it.
type StatsView struct {
	TargetID string            `json:"target_id"`
	Created  bool              `json:"created"`
	Record   *model.UserRecord `json:"record"`
}

// ViewStats returns the target member's record, creating a default record
// on first lookup.
func (s *Service) ViewStats(ctx context.Context, targetID string) (StatsView, error) {
	rec, created := s.store.GetUser(ctx, targetID)
	return StatsView{TargetID: targetID, Created: created, Record: rec}, nil
}

// FreedomIndex computes the aggregate report over a snapshot of the full
// ledger.
func (s *Service) FreedomIndex(ctx context.Context) (report.Report, error) {
	return report.ComputeFreedomIndex(s.store.Snapshot(ctx)), nil
}

// AwardNames returns configured award names matching prefix, for the
// gateway's autocomplete.
func (s *Service) AwardNames(ctx context.Context, prefix string) []string {
	return ledger.MatchAwardNames(s.store.Config(ctx).RibbonTypes, prefix, s.autocompleteLimit)
}

// Touch moves the member's lastActive stamp, creating a default record if
// absent. The gateway calls this for the acting user on every interaction.
func (s *Service) Touch(ctx context.Context, id string) {
	s.store.Touch(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"dispatchWorkers": s.workerCount,
		"dedupeSize":      s.dedupeSize,
	}
	if s.started {
		stats["trackedUsers"] = s.store.Count(ctx)
		stats["announceQueueLength"] = s.announceQueue.Len(ctx)
		stats["seenInteractions"] = s.deduper.Size()
		metrics.UpdateTrackedUsers(s.store.Count(ctx))
	}
	return stats
}

// saveBestEffort persists the document. A failure is logged and execution
// continues with in-memory state: the operation that triggered the save
// still reports success, so memory and disk diverge until the next save.
func (s *Service) saveBestEffort(ctx context.Context) {
	if err := s.store.Save(ctx); err != nil {
		s.logger.Error(ctx, "ledger save failed; in-memory state diverges from disk",
			logger.Error(err))
	}
}

// announce queues a public broadcast; a full queue drops it.
func (s *Service) announce(ctx context.Context, a model.Announcement) {
	if s.announceQueue == nil {
		return
	}
	if ok := s.announceQueue.Enqueue(ctx, a); !ok {
		s.logger.Warn(ctx, "announcement dropped",
			logger.String("kind", a.Kind), logger.String("user", a.UserID))
	}
}

// rejectionReason maps engine sentinels to metric labels.
func rejectionReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ledger.ErrNotANumber):
		return "not_a_number"
	case errors.Is(err, ledger.ErrNotAnIncrease):
		return "not_an_increase"
	default:
		return "other"
	}
}
