// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// MembersHandler handles member stats requests.
type MembersHandler struct {
	deps Dependencies
}

// NewMembersHandler creates a new members handler.
func NewMembersHandler(deps Dependencies) *MembersHandler {
	return &MembersHandler{deps: deps}
}

// HandleGetMember handles GET /members/{member_id} requests. An id the
// ledger has never seen gets a default record created on the fly. The
// optional actor_id query names the viewing member, whose lastActive
// stamp moves.
func (h *MembersHandler) HandleGetMember(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_member"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/members/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if actor := r.URL.Query().Get("actor_id"); actor != "" {
		h.deps.Touch(r.Context(), actor)
	}
	view, err := h.deps.ViewStats(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}
