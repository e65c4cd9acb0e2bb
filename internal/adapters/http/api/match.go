// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	"github.com/kabile/matchnight/internal/adapters/matchapi"
	"github.com/kabile/matchnight/internal/app"
)

// MatchHandler submits the drafted night as a match request.
type MatchHandler struct {
	deps Dependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps Dependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

// HandleCreateMatch handles POST /match requests. The orchestration
// endpoint's response body passes through untouched.
func (h *MatchHandler) HandleCreateMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_match"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	body, err := h.deps.CreateMatch(r.Context())
	switch {
	case err == nil:
	case errors.Is(err, matchapi.ErrEmptyTeam), errors.Is(err, matchapi.ErrInvalidEntry):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	case errors.Is(err, matchapi.ErrRejected):
		writeError(w, http.StatusBadGateway, "upstream_rejected", WrapKind(op, ErrUpstream, err))
		return
	case errors.Is(err, app.ErrNoMatchClient), errors.Is(err, matchapi.ErrNoEndpoint):
		writeError(w, http.StatusServiceUnavailable, "unconfigured", WrapKind(op, ErrUpstream, err))
		return
	default:
		writeAppError(w, op, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
