// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// ComparisonHandler serves the normalized team comparison snapshot.
type ComparisonHandler struct {
	deps Dependencies
}

// NewComparisonHandler creates a new comparison handler.
func NewComparisonHandler(deps Dependencies) *ComparisonHandler {
	return &ComparisonHandler{deps: deps}
}

// HandleGetComparison handles GET /comparison requests. The snapshot is the
// last debounced rebuild; its revision lets clients skip unchanged redraws.
func (h *ComparisonHandler) HandleGetComparison(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Comparison())
}
