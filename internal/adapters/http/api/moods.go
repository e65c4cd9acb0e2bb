// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"sort"
)

// MoodsHandler handles the emoji mood board.
type MoodsHandler struct {
	deps Dependencies
}

// NewMoodsHandler creates a new moods handler.
func NewMoodsHandler(deps Dependencies) *MoodsHandler {
	return &MoodsHandler{deps: deps}
}

// moodView decorates a mood record with its display glyph and explanation.
type moodView struct {
	PlayerID    string `json:"id"`
	Name        string `json:"name"`
	Mood        string `json:"mood"`
	Glyph       string `json:"glyph"`
	Explanation string `json:"explanation"`
}

// HandleMoods handles GET /moods requests.
func (h *MoodsHandler) HandleMoods(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	moods := h.deps.Moods()
	out := make([]moodView, 0, len(moods))
	for _, m := range moods {
		out = append(out, moodView{
			PlayerID:    m.PlayerID,
			Name:        m.Name,
			Mood:        string(m.Status),
			Glyph:       m.Status.Glyph(),
			Explanation: m.Status.Explanation(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

// HandleCycle handles POST /moods/cycle requests.
func (h *MoodsHandler) HandleCycle(w http.ResponseWriter, r *http.Request) {
	const op = "api.cycle_mood"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req cycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	next, err := h.deps.CycleMood(r.Context(), req.PlayerID, req.direction())
	if err != nil {
		writeAppError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, moodView{
		PlayerID:    req.PlayerID,
		Mood:        string(next),
		Glyph:       next.Glyph(),
		Explanation: next.Explanation(),
	})
}

// HandleSeed handles POST /moods/seed requests.
func (h *MoodsHandler) HandleSeed(w http.ResponseWriter, r *http.Request) {
	const op = "api.seed_moods"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.SeedMoods(r.Context()); err != nil {
		writeAppError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
