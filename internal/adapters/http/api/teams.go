// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/kabile/matchnight/internal/app"
	"github.com/kabile/matchnight/internal/domain/roster"
)

// TeamsHandler handles roster reads and draft mutations.
type TeamsHandler struct {
	deps Dependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps Dependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

type assignRequest struct {
	PlayerID string `json:"id"`
	Team     string `json:"team"`
}

type removeRequest struct {
	PlayerID string `json:"id"`
}

type kabileRequest struct {
	Team string `json:"team"`
	Name string `json:"name"`
}

type teamsResponse struct {
	TeamA app.TeamView `json:"team_a"`
	TeamB app.TeamView `json:"team_b"`
}

// HandleGetTeams handles GET /teams requests.
func (h *TeamsHandler) HandleGetTeams(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_teams"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	a, err := h.deps.Team(roster.TeamA)
	if err != nil {
		writeAppError(w, op, err)
		return
	}
	b, err := h.deps.Team(roster.TeamB)
	if err != nil {
		writeAppError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, teamsResponse{TeamA: a, TeamB: b})
}

// HandleAssign handles POST /teams/assign requests.
func (h *TeamsHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	const op = "api.assign"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.Assign(r.Context(), req.PlayerID, roster.Team(req.Team)); err != nil {
		writeAppError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// HandleRemove handles POST /teams/remove requests.
func (h *TeamsHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req removeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.Remove(r.Context(), req.PlayerID); err != nil {
		writeAppError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// HandleSetKabile handles POST /teams/kabile requests.
func (h *TeamsHandler) HandleSetKabile(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_kabile"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req kabileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.SetKabile(r.Context(), roster.Team(req.Team), req.Name); err != nil {
		writeAppError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// HandleKabileNames handles GET /kabile requests.
func (h *TeamsHandler) HandleKabileNames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.KabileNames(r.Context()))
}
