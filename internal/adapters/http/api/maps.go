// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/kabile/matchnight/internal/app"
	"github.com/kabile/matchnight/internal/domain/roster"
)

// MapsHandler handles map slot and starting-side selection.
type MapsHandler struct {
	deps Dependencies
}

// NewMapsHandler creates a new maps handler.
func NewMapsHandler(deps Dependencies) *MapsHandler {
	return &MapsHandler{deps: deps}
}

type mapsResponse struct {
	Slots []app.MapSlot `json:"slots"`
	Pool  []string      `json:"pool"`
}

type setSlotRequest struct {
	Slot int    `json:"slot"`
	Map  string `json:"map"`
}

type setSideRequest struct {
	Slot int    `json:"slot"`
	CT   string `json:"ct"`
}

// HandleGetMaps handles GET /maps requests.
func (h *MapsHandler) HandleGetMaps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	slots := h.deps.MapSlots()
	writeJSON(w, http.StatusOK, mapsResponse{
		Slots: slots[:],
		Pool:  h.deps.MapPool(r.Context()),
	})
}

// HandleSetSlot handles POST /maps/slot requests.
func (h *MapsHandler) HandleSetSlot(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_map"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req setSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.SetMapName(r.Context(), req.Slot, req.Map); err != nil {
		writeAppError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// HandleSetSide handles POST /maps/side requests. Setting a CT side
// auto-assigns the other team to T; an empty ct clears both sides.
func (h *MapsHandler) HandleSetSide(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_side"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req setSideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.SetSide(r.Context(), req.Slot, roster.Team(req.CT)); err != nil {
		writeAppError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
