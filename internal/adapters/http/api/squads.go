// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/leviathan-hq/larry/internal/app"
)

// SquadsHandler handles squad assignment requests.
type SquadsHandler struct {
	deps Dependencies
}

// NewSquadsHandler creates a new squads handler.
func NewSquadsHandler(deps Dependencies) *SquadsHandler {
	return &SquadsHandler{deps: deps}
}

// squadRequest mirrors the gateway's assign-squad command. squad_id is a
// configured squad id, or "unassigned" to clear the assignment.
type squadRequest struct {
	ActorID    string `json:"actor_id"`
	TargetID   string `json:"target_id"`
	SquadID    string `json:"squad_id"`
	Authorized bool   `json:"authorized"`
}

func (s squadRequest) validate() error {
	switch {
	case strings.TrimSpace(s.ActorID) == "":
		return errors.New("missing actor_id")
	case strings.TrimSpace(s.TargetID) == "":
		return errors.New("missing target_id")
	case strings.TrimSpace(s.SquadID) == "":
		return errors.New("missing squad_id")
	}
	return nil
}

type squadResponse struct {
	Status  string               `json:"status"`
	Outcome service.SquadOutcome `json:"outcome"`
}

// HandlePostAssign handles POST /squads/assign requests.
func (h *SquadsHandler) HandlePostAssign(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_squads_assign"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req squadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if !req.Authorized {
		writeError(w, http.StatusForbidden, "not_authorized", NewKind(op, ErrUnauthorized))
		return
	}

	out, err := h.deps.AssignSquad(r.Context(), req.ActorID, req.TargetID, strings.TrimSpace(req.SquadID))
	if err != nil {
		if errors.Is(err, service.ErrUnknownSquad) {
			writeError(w, http.StatusBadRequest, "unknown_squad", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, squadResponse{Status: statusApplied, Outcome: out})
}
