package api

import (
	"net/http"
)

// AutocompleteHandler handles award-name autocomplete requests.
type AutocompleteHandler struct {
	deps Dependencies
}

// NewAutocompleteHandler creates a new autocomplete handler.
func NewAutocompleteHandler(deps Dependencies) *AutocompleteHandler {
	return &AutocompleteHandler{deps: deps}
}

type awardNamesResponse struct {
	Names []string `json:"names"`
}

// HandleGetAwardNames handles GET /awards/names?prefix= requests. The
// match is case-insensitive and the result list is capped for the
// gateway's autocomplete dropdown.
func (h *AutocompleteHandler) HandleGetAwardNames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	prefix := r.URL.Query().Get("prefix")
	names := h.deps.AwardNames(r.Context(), prefix)
	writeJSON(w, http.StatusOK, awardNamesResponse{Names: names})
}
