package app

import (
	"context"
	"fmt"

	"github.com/kabile/matchnight/internal/adapters/matchapi"
	"github.com/kabile/matchnight/internal/domain/aggregate"
	"github.com/kabile/matchnight/internal/domain/attendance"
	"github.com/kabile/matchnight/internal/domain/compare"
	"github.com/kabile/matchnight/internal/domain/roster"
	"github.com/kabile/matchnight/internal/domain/stats"
	"github.com/kabile/matchnight/pkg/metrics"
)

// TeamView is the read model for one drafted team.
type TeamView struct {
	Team     roster.Team        `json:"team"`
	Kabile   string             `json:"kabile"`
	Players  []stats.Player     `json:"players"`
	Averages aggregate.Averages `json:"averages"`
}

// Stats is a point-in-time snapshot of service counters for monitoring.
type Stats struct {
	SnapshotsSeen    uint64 `json:"snapshots_seen"`
	DecodeDrops      uint64 `json:"decode_drops"`
	EvictionsApplied uint64 `json:"evictions_applied"`
	ChartRedraws     uint64 `json:"chart_redraws"`
	ChartRevision    uint64 `json:"chart_revision"`
	PoolSize         int    `json:"pool_size"`
	RosterASize      int    `json:"roster_a_size"`
	RosterBSize      int    `json:"roster_b_size"`
	MaxPerTeam       int    `json:"max_players_per_team"`
}

// editedSource overlays the session-only stat edits on the feed tables.
type editedSource struct {
	s *Service
}

func (e editedSource) PlayerStats(playerID string) stats.PlayerStats {
	var base stats.PlayerStats
	if e.s.feed != nil {
		base = e.s.feed.PlayerStats(playerID)
	}
	if patch, ok := e.s.edits[playerID]; ok {
		base.Merge(patch)
	}
	return base
}

// Pool returns the draftable players: marked coming and on neither roster,
// sorted by recent rating with unrated players last.
func (s *Service) Pool() []stats.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pool := roster.AvailablePool(s.attendance, s.rosterA, s.rosterB, editedSource{s})
	metrics.UpdatePoolSize(len(pool))
	return pool
}

// Team returns the read model for one team.
func (s *Service) Team(team roster.Team) (TeamView, error) {
	if team != roster.TeamA && team != roster.TeamB {
		return TeamView{}, fmt.Errorf("%w: %q", ErrInvalidTeam, team)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.rosterLocked(team)
	players := make([]stats.Player, 0, len(r))
	for _, p := range r {
		players = append(players, p)
	}
	roster.SortByRating(players)
	return TeamView{
		Team:     team,
		Kabile:   s.teamLabelLocked(team),
		Players:  players,
		Averages: s.averagesLocked(r),
	}, nil
}

// Comparison returns the last built chart snapshot.
func (s *Service) Comparison() compare.Comparison {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.comparison
}

// Attendance returns a copy of the attendance mirror.
func (s *Service) Attendance() map[string]attendance.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]attendance.Entry, len(s.attendance))
	for id, e := range s.attendance {
		out[id] = e
	}
	return out
}

// Moods returns a copy of the mood mirror.
func (s *Service) Moods() map[string]attendance.MoodEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]attendance.MoodEntry, len(s.moods))
	for id, e := range s.moods {
		out[id] = e
	}
	return out
}

// MapSlots returns the three ordered map slots.
func (s *Service) MapSlots() [mapSlotCount]MapSlot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapSlots
}

// KabileNames returns the selectable team names.
func (s *Service) KabileNames(ctx context.Context) []string {
	if s.static == nil {
		return nil
	}
	return s.static.KabileNames(ctx)
}

// MapPool returns the active map pool.
func (s *Service) MapPool(ctx context.Context) []string {
	if s.static == nil {
		return nil
	}
	return s.static.MapPool(ctx)
}

// GetStats returns current service counters.
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pool := roster.AvailablePool(s.attendance, s.rosterA, s.rosterB, editedSource{s})
	return Stats{
		SnapshotsSeen:    s.snapshotsSeen,
		DecodeDrops:      s.decodeDrops,
		EvictionsApplied: s.evictionsApplied,
		ChartRedraws:     s.redraws,
		ChartRevision:    s.revision,
		PoolSize:         len(pool),
		RosterASize:      len(s.rosterA),
		RosterBSize:      len(s.rosterB),
		MaxPerTeam:       s.maxPerTeam,
	}
}

// SetAttendance writes a player's attendance record in the canonical
// id-keyed shape. The write is fire-and-forget: the mirror updates when
// the store snapshot comes back.
func (s *Service) SetAttendance(ctx context.Context, playerID, name string, status attendance.State) error {
	if playerID == "" {
		return fmt.Errorf("%w: empty id", ErrUnknownPlayer)
	}
	entry := attendance.Entry{PlayerID: playerID, Name: name, Status: status}
	if err := s.store.Set(ctx, pathAttendance+"/"+playerID, entry); err != nil {
		metrics.RecordStoreWriteFailure()
		return fmt.Errorf("set attendance: %w", err)
	}
	return nil
}

// CycleAttendance steps a known player's status one position through the
// cyclic order and returns the new status.
func (s *Service) CycleAttendance(ctx context.Context, playerID string, dir attendance.Direction) (attendance.State, error) {
	s.mu.RLock()
	entry, ok := s.attendance[playerID]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlayer, playerID)
	}
	next := attendance.Cycle(entry.Status, dir, attendance.States())
	if err := s.SetAttendance(ctx, playerID, entry.Name, next); err != nil {
		return "", err
	}
	return next, nil
}

// CycleMood steps a player's mood. A player with no mood record starts
// from normal.
func (s *Service) CycleMood(ctx context.Context, playerID string, dir attendance.Direction) (attendance.Mood, error) {
	s.mu.RLock()
	mood, ok := s.moods[playerID]
	name := mood.Name
	if !ok {
		att, attOK := s.attendance[playerID]
		if !attOK {
			s.mu.RUnlock()
			return "", fmt.Errorf("%w: %q", ErrUnknownPlayer, playerID)
		}
		name = att.Name
		mood = attendance.MoodEntry{PlayerID: playerID, Name: name, Status: attendance.MoodNormal}
	}
	s.mu.RUnlock()

	next := attendance.Cycle(mood.Status, dir, attendance.Moods())
	entry := attendance.MoodEntry{PlayerID: playerID, Name: name, Status: next}
	if err := s.store.Set(ctx, pathMoods+"/"+playerID, entry); err != nil {
		metrics.RecordStoreWriteFailure()
		return "", fmt.Errorf("set mood: %w", err)
	}
	return next, nil
}

// SeedMoods gives every attendee without a mood record the normal mood,
// in one batch.
func (s *Service) SeedMoods(ctx context.Context) error {
	s.mu.RLock()
	patch := make(map[string]any)
	for id, entry := range s.attendance {
		if _, ok := s.moods[id]; ok {
			continue
		}
		patch[pathMoods+"/"+id] = attendance.MoodEntry{
			PlayerID: id,
			Name:     entry.Name,
			Status:   attendance.MoodNormal,
		}
	}
	s.mu.RUnlock()

	if len(patch) == 0 {
		return nil
	}
	if err := s.store.Update(ctx, patch); err != nil {
		metrics.RecordStoreWriteFailure()
		return fmt.Errorf("seed moods: %w", err)
	}
	return nil
}

// ClearNight resets every known player to no_response with a normal mood.
// Both subtrees are replaced wholesale so legacy-shaped leftovers clear too.
func (s *Service) ClearNight(ctx context.Context) error {
	s.mu.RLock()
	att := make(map[string]attendance.Entry, len(s.attendance))
	moods := make(map[string]attendance.MoodEntry, len(s.attendance))
	for id, entry := range s.attendance {
		att[id] = attendance.Entry{PlayerID: id, Name: entry.Name, Status: attendance.NoResponse}
		moods[id] = attendance.MoodEntry{PlayerID: id, Name: entry.Name, Status: attendance.MoodNormal}
	}
	s.mu.RUnlock()

	patch := map[string]any{
		pathAttendance: att,
		pathMoods:      moods,
	}
	if err := s.store.Update(ctx, patch); err != nil {
		metrics.RecordStoreWriteFailure()
		return fmt.Errorf("clear night: %w", err)
	}
	return nil
}

// Assign drafts a pool player onto a team. The snapshot written includes
// any session stat edits. Target write and opposite-roster clear go in one
// atomic batch so the player is never on both teams.
func (s *Service) Assign(ctx context.Context, playerID string, team roster.Team) error {
	if team != roster.TeamA && team != roster.TeamB {
		return fmt.Errorf("%w: %q", ErrInvalidTeam, team)
	}

	s.mu.RLock()
	if _, ok := s.rosterLocked(team)[playerID]; ok {
		s.mu.RUnlock()
		return nil
	}
	entry, ok := s.attendance[playerID]
	if !ok || entry.Status != attendance.Coming {
		s.mu.RUnlock()
		return fmt.Errorf("%w: %q", ErrUnknownPlayer, playerID)
	}
	player := stats.Player{
		ID:    playerID,
		Name:  entry.Name,
		Stats: editedSource{s}.PlayerStats(playerID).Clone(),
	}
	s.mu.RUnlock()

	other := roster.TeamA
	if team == roster.TeamA {
		other = roster.TeamB
	}
	patch := map[string]any{
		teamPath(team) + "/players/" + playerID:  player,
		teamPath(other) + "/players/" + playerID: nil,
	}
	if err := s.store.Update(ctx, patch); err != nil {
		metrics.RecordStoreWriteFailure()
		return fmt.Errorf("assign %s: %w", playerID, err)
	}
	return nil
}

// Remove takes a player off whichever roster holds them.
func (s *Service) Remove(ctx context.Context, playerID string) error {
	patch := map[string]any{
		teamPath(roster.TeamA) + "/players/" + playerID: nil,
		teamPath(roster.TeamB) + "/players/" + playerID: nil,
	}
	if err := s.store.Update(ctx, patch); err != nil {
		metrics.RecordStoreWriteFailure()
		return fmt.Errorf("remove %s: %w", playerID, err)
	}
	return nil
}

// EditStats applies a session-only stat patch. The whole patch is rejected
// if any field is unknown or non-numeric. Edits overlay the feed tables in
// the pool and write through to the player's roster copy when drafted; the
// source tables are never touched.
func (s *Service) EditStats(ctx context.Context, playerID string, patch map[string]any) error {
	converted := make(map[stats.Key]*float64, len(patch))
	for rawKey, rawValue := range patch {
		key := stats.Key(rawKey)
		if !validStatKey(key) {
			return fmt.Errorf("%w: unknown field %q", ErrInvalidStat, rawKey)
		}
		switch v := rawValue.(type) {
		case nil:
			converted[key] = nil
		case float64:
			converted[key] = stats.Ptr(v)
		case int:
			converted[key] = stats.Ptr(float64(v))
		default:
			return fmt.Errorf("%w: field %q", ErrInvalidStat, rawKey)
		}
	}
	if len(converted) == 0 {
		return nil
	}

	s.mu.Lock()
	if s.edits[playerID] == nil {
		s.edits[playerID] = make(map[stats.Key]*float64)
	}
	for key, value := range converted {
		s.edits[playerID][key] = value
	}
	var rostered *stats.Player
	var team roster.Team
	for _, t := range []roster.Team{roster.TeamA, roster.TeamB} {
		if p, ok := s.rosterLocked(t)[playerID]; ok {
			p.Stats = p.Stats.Clone()
			p.Stats.Merge(converted)
			rostered, team = &p, t
			break
		}
	}
	s.mu.Unlock()

	if rostered != nil {
		if err := s.store.Set(ctx, teamPath(team)+"/players/"+playerID, *rostered); err != nil {
			metrics.RecordStoreWriteFailure()
			return fmt.Errorf("edit stats %s: %w", playerID, err)
		}
	}
	s.armComparison()
	return nil
}

// SetKabile names a team from the kabile catalogue.
func (s *Service) SetKabile(ctx context.Context, team roster.Team, name string) error {
	if team != roster.TeamA && team != roster.TeamB {
		return fmt.Errorf("%w: %q", ErrInvalidTeam, team)
	}
	if err := s.store.Set(ctx, teamPath(team)+"/kabile", name); err != nil {
		metrics.RecordStoreWriteFailure()
		return fmt.Errorf("set kabile: %w", err)
	}
	return nil
}

// SetMapName picks the map for one slot (1-based). An empty name clears
// the slot including its sides.
func (s *Service) SetMapName(ctx context.Context, slot int, name string) error {
	if slot < 1 || slot > mapSlotCount {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	base := fmt.Sprintf("%s/%d", pathMaps, slot)
	var patch map[string]any
	if name == "" {
		patch = map[string]any{base: nil}
	} else {
		patch = map[string]any{base + "/map": name}
	}
	if err := s.store.Update(ctx, patch); err != nil {
		metrics.RecordStoreWriteFailure()
		return fmt.Errorf("set map: %w", err)
	}
	return nil
}

// SetSide records which team starts CT on a slot. The other team is
// auto-assigned the T side; clearing one side clears both.
func (s *Service) SetSide(ctx context.Context, slot int, ct roster.Team) error {
	if slot < 1 || slot > mapSlotCount {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	base := fmt.Sprintf("%s/%d", pathMaps, slot)
	var patch map[string]any
	switch ct {
	case roster.TeamA:
		patch = map[string]any{base + "/ct": "A", base + "/t": "B"}
	case roster.TeamB:
		patch = map[string]any{base + "/ct": "B", base + "/t": "A"}
	case "":
		patch = map[string]any{base + "/ct": nil, base + "/t": nil}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTeam, ct)
	}
	if err := s.store.Update(ctx, patch); err != nil {
		metrics.RecordStoreWriteFailure()
		return fmt.Errorf("set side: %w", err)
	}
	return nil
}

// CreateMatch submits the current draft to the match orchestration
// endpoint and returns its raw response.
func (s *Service) CreateMatch(ctx context.Context) ([]byte, error) {
	if s.match == nil {
		return nil, ErrNoMatchClient
	}

	s.mu.RLock()
	nameA := s.teamLabelLocked(roster.TeamA)
	nameB := s.teamLabelLocked(roster.TeamB)
	a := s.rosterA.Clone()
	b := s.rosterB.Clone()
	var maps []string
	var sides []matchapi.Side
	for _, slot := range s.mapSlots {
		if slot.Map == "" {
			continue
		}
		maps = append(maps, slot.Map)
		switch slot.CT {
		case roster.TeamA:
			sides = append(sides, matchapi.SideTeamACT)
		case roster.TeamB:
			sides = append(sides, matchapi.SideTeamBCT)
		default:
			sides = append(sides, matchapi.SideKnife)
		}
	}
	s.mu.RUnlock()

	req, err := matchapi.BuildRequest(nameA, nameB, a, b, maps, sides)
	if err != nil {
		return nil, err
	}
	return s.match.Submit(ctx, req)
}

func (s *Service) rosterLocked(team roster.Team) roster.Roster {
	if team == roster.TeamB {
		return s.rosterB
	}
	return s.rosterA
}

func (s *Service) teamLabelLocked(team roster.Team) string {
	if team == roster.TeamB {
		if s.kabileB != "" {
			return s.kabileB
		}
		return "Team B"
	}
	if s.kabileA != "" {
		return s.kabileA
	}
	return "Team A"
}

func (s *Service) averagesLocked(r roster.Roster) aggregate.Averages {
	return aggregate.Average(r, stats.Keys())
}

func validStatKey(key stats.Key) bool {
	for _, k := range stats.Keys() {
		if k == key {
			return true
		}
	}
	return false
}
