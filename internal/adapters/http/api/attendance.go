// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/kabile/matchnight/internal/domain/attendance"
)

// AttendanceHandler handles attendance reads, writes, and the night reset.
type AttendanceHandler struct {
	deps Dependencies
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(deps Dependencies) *AttendanceHandler {
	return &AttendanceHandler{deps: deps}
}

type attendanceSetRequest struct {
	PlayerID string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
}

func (a attendanceSetRequest) validate() error {
	if strings.TrimSpace(a.PlayerID) == "" {
		return NewKind("api.set_attendance", ErrBadRequest)
	}
	for _, s := range attendance.States() {
		if string(s) == a.Status {
			return nil
		}
	}
	return NewKind("api.set_attendance", ErrBadRequest)
}

type cycleRequest struct {
	PlayerID  string `json:"id"`
	Direction string `json:"direction"`
}

func (c cycleRequest) direction() attendance.Direction {
	if c.Direction == string(attendance.Prev) {
		return attendance.Prev
	}
	return attendance.Next
}

// HandleAttendance handles GET /attendance (listing) and POST /attendance
// (direct status set).
func (h *AttendanceHandler) HandleAttendance(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleSet(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *AttendanceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	entries := h.deps.Attendance()
	out := make([]attendance.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func (h *AttendanceHandler) handleSet(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_attendance"
	var req attendanceSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.deps.SetAttendance(r.Context(), req.PlayerID, req.Name, attendance.State(req.Status)); err != nil {
		writeAppError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// HandleCycle handles POST /attendance/cycle requests.
func (h *AttendanceHandler) HandleCycle(w http.ResponseWriter, r *http.Request) {
	const op = "api.cycle_attendance"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req cycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	next, err := h.deps.CycleAttendance(r.Context(), req.PlayerID, req.direction())
	if err != nil {
		writeAppError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": req.PlayerID, "status": string(next)})
}

// HandleClearNight handles POST /night/clear requests.
func (h *AttendanceHandler) HandleClearNight(w http.ResponseWriter, r *http.Request) {
	const op = "api.clear_night"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.ClearNight(r.Context()); err != nil {
		writeAppError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
