// Package roster implements the reconciliation rules between attendance
// state and the two drafted team rosters.
package roster

import (
	"sort"

	"github.com/kabile/matchnight/internal/domain/attendance"
	"github.com/kabile/matchnight/internal/domain/stats"
)

// Team identifies one of the two drafted teams.
type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

// Roster maps player id to the snapshot copied at assignment time. The copy
// is deliberate denormalization: a team's displayed stats stay stable even
// if the source tables reload underneath it.
type Roster map[string]stats.Player

// Clone returns a deep copy of the roster.
func (r Roster) Clone() Roster {
	out := make(Roster, len(r))
	for id, p := range r {
		p.Stats = p.Stats.Clone()
		out[id] = p
	}
	return out
}

// Eviction names a player that must leave a team because they are no longer
// marked as coming.
type Eviction struct {
	Team     Team   `json:"team"`
	PlayerID string `json:"id"`
}

// Reconcile computes the evictions needed to restore the invariant that
// every rostered player is present in attendance with status coming. It is
// a pure full recompute over the given snapshots: calling it again on the
// same inputs yields the same evictions, and once applied a further call
// yields none.
func Reconcile(att map[string]attendance.Entry, a, b Roster) []Eviction {
	var evictions []Eviction
	for _, id := range sortedIDs(a) {
		if !isComing(att, id) {
			evictions = append(evictions, Eviction{Team: TeamA, PlayerID: id})
		}
	}
	for _, id := range sortedIDs(b) {
		if !isComing(att, id) {
			evictions = append(evictions, Eviction{Team: TeamB, PlayerID: id})
		}
	}
	return evictions
}

// StatSource resolves a player's merged season and last-10 stats. Missing
// lookups leave the corresponding fields absent, never zero.
type StatSource interface {
	PlayerStats(playerID string) stats.PlayerStats
}

// AvailablePool returns the players marked coming and not yet on either
// roster, merged with source stats and ordered by L10 HLTV2 descending with
// missing values sorting last.
func AvailablePool(att map[string]attendance.Entry, a, b Roster, src StatSource) []stats.Player {
	pool := make([]stats.Player, 0, len(att))
	for _, entry := range att {
		if entry.Status != attendance.Coming {
			continue
		}
		if _, onA := a[entry.PlayerID]; onA {
			continue
		}
		if _, onB := b[entry.PlayerID]; onB {
			continue
		}
		p := stats.Player{ID: entry.PlayerID, Name: entry.Name}
		if src != nil {
			p.Stats = src.PlayerStats(entry.PlayerID)
		}
		pool = append(pool, p)
	}
	SortByRating(pool)
	return pool
}

// SortByRating orders players by L10 HLTV2 descending; players without a
// value sort last. Ties keep id order so output is deterministic.
func SortByRating(players []stats.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].ID < players[j].ID
	})
	sort.SliceStable(players, func(i, j int) bool {
		vi, oki := players[i].Stats.Get(stats.L10HLTV2)
		vj, okj := players[j].Stats.Get(stats.L10HLTV2)
		if oki != okj {
			return oki
		}
		return vi > vj
	})
}

func isComing(att map[string]attendance.Entry, id string) bool {
	entry, ok := att[id]
	return ok && entry.Status == attendance.Coming
}

func sortedIDs(r Roster) []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
