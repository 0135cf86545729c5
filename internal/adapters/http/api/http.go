// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/leviathan-hq/larry/internal/app"
	"github.com/leviathan-hq/larry/internal/domain/dedupe"
	"github.com/leviathan-hq/larry/internal/domain/ledger"
	"github.com/leviathan-hq/larry/internal/domain/report"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Touch moves the acting member's lastActive stamp.
	Touch(ctx context.Context, id string)

	// Mutating ledger operations.
	LogSamples(ctx context.Context, actorID, targetID string, newTotal int) (service.SampleOutcome, error)
	GrantAwards(ctx context.Context, actorID, targetID string, slots []ledger.AwardSlot) (service.AwardOutcome, error)
	AssignSquad(ctx context.Context, actorID, targetID, squadID string) (service.SquadOutcome, error)

	// Read operations.
	ViewStats(ctx context.Context, targetID string) (service.StatsView, error)
	FreedomIndex(ctx context.Context) (report.Report, error)
	AwardNames(ctx context.Context, prefix string) []string
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	samplesHandler      *SamplesHandler
	awardsHandler       *AwardsHandler
	squadsHandler       *SquadsHandler
	membersHandler      *MembersHandler
	freedomIndexHandler *FreedomIndexHandler
	autocompleteHandler *AutocompleteHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		samplesHandler:      NewSamplesHandler(deps),
		awardsHandler:       NewAwardsHandler(deps),
		squadsHandler:       NewSquadsHandler(deps),
		membersHandler:      NewMembersHandler(deps),
		freedomIndexHandler: NewFreedomIndexHandler(deps),
		autocompleteHandler: NewAutocompleteHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/samples", MetricsMiddleware(s.samplesHandler.HandlePostSamples, "samples"))
	mux.HandleFunc("/awards", MetricsMiddleware(s.awardsHandler.HandlePostAwards, "awards"))
	mux.HandleFunc("/awards/names", MetricsMiddleware(s.autocompleteHandler.HandleGetAwardNames, "award_names"))
	mux.HandleFunc("/squads/assign", MetricsMiddleware(s.squadsHandler.HandlePostAssign, "squads_assign"))
	mux.HandleFunc("/members/", MetricsMiddleware(s.membersHandler.HandleGetMember, "members"))
	mux.HandleFunc("/freedom-index", MetricsMiddleware(s.freedomIndexHandler.HandleGetFreedomIndex, "freedom_index"))
}

// Outcome status strings shared by mutation responses.
const (
	statusApplied   = "applied"
	statusRejected  = "rejected"
	statusSkipped   = "skipped"
	statusDuplicate = "duplicate"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
