// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// FreedomIndexHandler handles freedom-index report requests.
type FreedomIndexHandler struct {
	deps Dependencies
}

// NewFreedomIndexHandler creates a new freedom-index handler.
func NewFreedomIndexHandler(deps Dependencies) *FreedomIndexHandler {
	return &FreedomIndexHandler{deps: deps}
}

// HandleGetFreedomIndex handles GET /freedom-index requests. The report
// is pure data; the gateway renders it and resolves member ids to
// display names.
func (h *FreedomIndexHandler) HandleGetFreedomIndex(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_freedom_index"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rep, err := h.deps.FreedomIndex(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
