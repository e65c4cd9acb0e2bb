// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kabile/matchnight/internal/app"
	"github.com/kabile/matchnight/internal/domain/attendance"
	"github.com/kabile/matchnight/internal/domain/compare"
	"github.com/kabile/matchnight/internal/domain/roster"
	"github.com/kabile/matchnight/internal/domain/stats"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Read models.
	Pool() []stats.Player
	Team(team roster.Team) (app.TeamView, error)
	Comparison() compare.Comparison
	Attendance() map[string]attendance.Entry
	Moods() map[string]attendance.MoodEntry
	MapSlots() [3]app.MapSlot
	KabileNames(ctx context.Context) []string
	MapPool(ctx context.Context) []string

	// Night state mutations. All are fire-and-forget against the store;
	// the next snapshot is authoritative.
	SetAttendance(ctx context.Context, playerID, name string, status attendance.State) error
	CycleAttendance(ctx context.Context, playerID string, dir attendance.Direction) (attendance.State, error)
	CycleMood(ctx context.Context, playerID string, dir attendance.Direction) (attendance.Mood, error)
	SeedMoods(ctx context.Context) error
	ClearNight(ctx context.Context) error

	// Draft mutations.
	Assign(ctx context.Context, playerID string, team roster.Team) error
	Remove(ctx context.Context, playerID string) error
	EditStats(ctx context.Context, playerID string, patch map[string]any) error
	SetKabile(ctx context.Context, team roster.Team, name string) error
	SetMapName(ctx context.Context, slot int, name string) error
	SetSide(ctx context.Context, slot int, ct roster.Team) error
	CreateMatch(ctx context.Context) ([]byte, error)
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() app.Stats
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	attendanceHandler *AttendanceHandler
	moodsHandler      *MoodsHandler
	poolHandler       *PoolHandler
	teamsHandler      *TeamsHandler
	playersHandler    *PlayersHandler
	mapsHandler       *MapsHandler
	comparisonHandler *ComparisonHandler
	matchHandler      *MatchHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		attendanceHandler: NewAttendanceHandler(deps),
		moodsHandler:      NewMoodsHandler(deps),
		poolHandler:       NewPoolHandler(deps),
		teamsHandler:      NewTeamsHandler(deps),
		playersHandler:    NewPlayersHandler(deps),
		mapsHandler:       NewMapsHandler(deps),
		comparisonHandler: NewComparisonHandler(deps),
		matchHandler:      NewMatchHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/attendance", MetricsMiddleware(s.attendanceHandler.HandleAttendance, "attendance"))
	mux.HandleFunc("/attendance/cycle", MetricsMiddleware(s.attendanceHandler.HandleCycle, "attendance_cycle"))
	mux.HandleFunc("/night/clear", MetricsMiddleware(s.attendanceHandler.HandleClearNight, "night_clear"))
	mux.HandleFunc("/moods", MetricsMiddleware(s.moodsHandler.HandleMoods, "moods"))
	mux.HandleFunc("/moods/cycle", MetricsMiddleware(s.moodsHandler.HandleCycle, "moods_cycle"))
	mux.HandleFunc("/moods/seed", MetricsMiddleware(s.moodsHandler.HandleSeed, "moods_seed"))
	mux.HandleFunc("/pool", MetricsMiddleware(s.poolHandler.HandleGetPool, "pool"))
	mux.HandleFunc("/teams", MetricsMiddleware(s.teamsHandler.HandleGetTeams, "teams"))
	mux.HandleFunc("/teams/assign", MetricsMiddleware(s.teamsHandler.HandleAssign, "teams_assign"))
	mux.HandleFunc("/teams/remove", MetricsMiddleware(s.teamsHandler.HandleRemove, "teams_remove"))
	mux.HandleFunc("/teams/kabile", MetricsMiddleware(s.teamsHandler.HandleSetKabile, "teams_kabile"))
	mux.HandleFunc("/kabile", MetricsMiddleware(s.teamsHandler.HandleKabileNames, "kabile"))
	mux.HandleFunc("/players/stats", MetricsMiddleware(s.playersHandler.HandleEditStats, "players_stats"))
	mux.HandleFunc("/maps", MetricsMiddleware(s.mapsHandler.HandleGetMaps, "maps"))
	mux.HandleFunc("/maps/slot", MetricsMiddleware(s.mapsHandler.HandleSetSlot, "maps_slot"))
	mux.HandleFunc("/maps/side", MetricsMiddleware(s.mapsHandler.HandleSetSide, "maps_side"))
	mux.HandleFunc("/comparison", MetricsMiddleware(s.comparisonHandler.HandleGetComparison, "comparison"))
	mux.HandleFunc("/match", MetricsMiddleware(s.matchHandler.HandleCreateMatch, "match"))
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeAppError translates service sentinels to HTTP statuses.
func writeAppError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, app.ErrUnknownPlayer):
		writeError(w, http.StatusNotFound, "unknown_player", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, app.ErrInvalidStat),
		errors.Is(err, app.ErrInvalidTeam),
		errors.Is(err, app.ErrInvalidSlot):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
	}
}
