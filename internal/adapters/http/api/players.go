// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// PlayersHandler handles session-only player stat edits.
type PlayersHandler struct {
	deps Dependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps Dependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

type editStatsRequest struct {
	PlayerID string         `json:"id"`
	Stats    map[string]any `json:"stats"`
}

// HandleEditStats handles POST /players/stats requests. The whole patch is
// rejected if any field fails validation; the stat source tables are never
// written.
func (h *PlayersHandler) HandleEditStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.edit_stats"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req editStatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.PlayerID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.EditStats(r.Context(), req.PlayerID, req.Stats); err != nil {
		writeAppError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "applied"})
}
