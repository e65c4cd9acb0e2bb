// Package aggregate computes per-team arithmetic means over roster stats.
package aggregate

import (
	"github.com/kabile/matchnight/internal/domain/roster"
	"github.com/kabile/matchnight/internal/domain/stats"
)

// Averages maps stat key to the team mean. A key with zero contributing
// members is absent, which downstream renders as "N/A" rather than zero.
type Averages map[stats.Key]float64

// Average computes the mean per field independently: each field sums only
// the members holding a usable value for it, so one player's missing ADR
// does not poison the team's HLTV average. The whole result is recomputed
// from the roster snapshot on every call; there is no incremental path.
func Average(r roster.Roster, fields []stats.Key) Averages {
	sums := make(map[stats.Key]float64, len(fields))
	counts := make(map[stats.Key]int, len(fields))

	for _, p := range r {
		for _, field := range fields {
			if v, ok := p.Stats.Get(field); ok {
				sums[field] += v
				counts[field]++
			}
		}
	}

	out := make(Averages, len(fields))
	for _, field := range fields {
		if counts[field] > 0 {
			out[field] = sums[field] / float64(counts[field])
		}
	}
	return out
}

// Get returns the average for key and whether any member contributed to it.
func (a Averages) Get(key stats.Key) (float64, bool) {
	v, ok := a[key]
	return v, ok
}

// Diff returns avgA-avgB per key, only for keys where both teams have a
// defined average.
func Diff(a, b Averages, fields []stats.Key) Averages {
	out := make(Averages, len(fields))
	for _, field := range fields {
		va, oka := a.Get(field)
		vb, okb := b.Get(field)
		if oka && okb {
			out[field] = va - vb
		}
	}
	return out
}
