// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	service "github.com/leviathan-hq/larry/internal/app"
	"github.com/leviathan-hq/larry/internal/domain/ledger"
)

// AwardsHandler handles award-grant requests.
type AwardsHandler struct {
	deps Dependencies
}

// NewAwardsHandler creates a new awards handler.
func NewAwardsHandler(deps Dependencies) *AwardsHandler {
	return &AwardsHandler{deps: deps}
}

// awardSlotRequest is one slot of the gateway's award form. An empty name
// marks the slot unused; an absent quantity defaults to 1, an explicit
// zero or negative quantity is invalid.
type awardSlotRequest struct {
	Name     string `json:"name"`
	Quantity *int   `json:"quantity,omitempty"`
}

// awardRequest mirrors the gateway's award modal submission. Granting
// awards is always privileged.
type awardRequest struct {
	InteractionID string             `json:"interaction_id"`
	ActorID       string             `json:"actor_id"`
	TargetID      string             `json:"target_id"`
	Authorized    bool               `json:"authorized"`
	Awards        []awardSlotRequest `json:"awards"`
}

func (a awardRequest) validate() error {
	switch {
	case strings.TrimSpace(a.InteractionID) == "":
		return errors.New("missing interaction_id")
	case strings.TrimSpace(a.ActorID) == "":
		return errors.New("missing actor_id")
	case strings.TrimSpace(a.TargetID) == "":
		return errors.New("missing target_id")
	case len(a.Awards) == 0:
		return errors.New("missing awards")
	case len(a.Awards) > ledger.MaxAwardSlots:
		return fmt.Errorf("at most %d award slots per request", ledger.MaxAwardSlots)
	}
	return nil
}

type awardResponse struct {
	Status  string               `json:"status"`
	Outcome service.AwardOutcome `json:"outcome"`
}

// HandlePostAwards handles POST /awards requests.
func (h *AwardsHandler) HandlePostAwards(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_awards"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req awardRequest
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

	if h.deps.SeenAndRecord(r.Context(), req.InteractionID) {
		writeJSON(w, http.StatusOK, awardResponse{Status: statusDuplicate})
		return
	}

	slots := make([]ledger.AwardSlot, len(req.Awards))
	for i, a := range req.Awards {
		qty := 1
		if a.Quantity != nil {
			qty = *a.Quantity
		}
		slots[i] = ledger.AwardSlot{Name: strings.TrimSpace(a.Name), Quantity: qty}
	}

	out, err := h.deps.GrantAwards(r.Context(), req.ActorID, req.TargetID, slots)
	if err != nil {
		h.deps.Unrecord(r.Context(), req.InteractionID)
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	status := statusApplied
	if out.Applied == 0 {
		status = statusSkipped
	}
	writeJSON(w, http.StatusOK, awardResponse{Status: status, Outcome: out})
}
