// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// PoolHandler serves the draftable player pool.
type PoolHandler struct {
	deps Dependencies
}

// NewPoolHandler creates a new pool handler.
func NewPoolHandler(deps Dependencies) *PoolHandler {
	return &PoolHandler{deps: deps}
}

// HandleGetPool handles GET /pool requests. Players come back sorted by
// recent rating, unrated last.
func (h *PoolHandler) HandleGetPool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Pool())
}
