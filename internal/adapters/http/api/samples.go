// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/leviathan-hq/larry/internal/app"
	"github.com/leviathan-hq/larry/internal/domain/ledger"
)

// SamplesHandler handles sample-log requests.
type SamplesHandler struct {
	deps Dependencies
}

// NewSamplesHandler creates a new samples handler.
func NewSamplesHandler(deps Dependencies) *SamplesHandler {
	return &SamplesHandler{deps: deps}
}

// sampleRequest mirrors the gateway's sample-log modal submission. The
// gateway pre-computes the authorized flag; logging for oneself needs no
// authorization.
type sampleRequest struct {
	InteractionID string `json:"interaction_id"`
	ActorID       string `json:"actor_id"`
	TargetID      string `json:"target_id"`
	NewTotal      *int   `json:"new_total"`
	Authorized    bool   `json:"authorized"`
}

func (s sampleRequest) validate() error {
	switch {
	case strings.TrimSpace(s.InteractionID) == "":
		return errors.New("missing interaction_id")
	case strings.TrimSpace(s.ActorID) == "":
		return errors.New("missing actor_id")
	case strings.TrimSpace(s.TargetID) == "":
		return errors.New("missing target_id")
	}
	return nil
}

type sampleResponse struct {
	Status  string                `json:"status"`
	Reason  string                `json:"reason,omitempty"`
	Outcome service.SampleOutcome `json:"outcome"`
}

// HandlePostSamples handles POST /samples requests.
func (h *SamplesHandler) HandlePostSamples(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_samples"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req sampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.ActorID != req.TargetID && !req.Authorized {
		writeError(w, http.StatusForbidden, "not_authorized", NewKind(op, ErrUnauthorized))
		return
	}

	// Idempotency check - a retried modal submission must not double-apply.
	if h.deps.SeenAndRecord(r.Context(), req.InteractionID) {
		writeJSON(w, http.StatusOK, sampleResponse{Status: statusDuplicate})
		return
	}

	// An absent total is the modal-input equivalent of "not a number".
	newTotal := -1
	if req.NewTotal != nil {
		newTotal = *req.NewTotal
	}

	out, err := h.deps.LogSamples(r.Context(), req.ActorID, req.TargetID, newTotal)
	if err != nil {
		// Nothing was applied; let a corrected retry reuse the id.
		h.deps.Unrecord(r.Context(), req.InteractionID)
		writeJSON(w, http.StatusOK, sampleResponse{
			Status:  statusRejected,
			Reason:  rejectionText(err),
			Outcome: out,
		})
		return
	}
	writeJSON(w, http.StatusOK, sampleResponse{Status: statusApplied, Outcome: out})
}

// rejectionText maps engine sentinels to the gateway-facing reason wire
// values. The gateway turns these into distinct user messages.
func rejectionText(err error) string {
	switch {
	case errors.Is(err, ledger.ErrNotANumber):
		return "not a non-negative number"
	case errors.Is(err, ledger.ErrNotAnIncrease):
		return "not an increase"
	default:
		return err.Error()
	}
}
