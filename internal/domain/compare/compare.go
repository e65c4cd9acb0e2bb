// Package compare builds the normalized two-series team comparison used by
// the radar chart.
package compare

import (
	"math"
	"time"

	"github.com/kabile/matchnight/internal/domain/aggregate"
	"github.com/kabile/matchnight/internal/domain/stats"
)

// Range is a hand-configured [Min,Max] per statistic. The scale is fixed on
// purpose: the chart reads the same across sessions no matter who shows up.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ChartKeys lists the metrics plotted on the comparison chart, in axis
// order. Season K/D is intentionally not charted.
func ChartKeys() []stats.Key {
	return []stats.Key{stats.L10HLTV2, stats.L10ADR, stats.L10KD, stats.SHLTV2, stats.SADR}
}

// FixedRanges returns the chart-scale range table.
func FixedRanges() map[stats.Key]Range {
	return map[stats.Key]Range{
		stats.L10HLTV2: {Min: 0.70, Max: 1.40},
		stats.L10ADR:   {Min: 50, Max: 100},
		stats.L10KD:    {Min: 0.70, Max: 1.40},
		stats.SHLTV2:   {Min: 0.70, Max: 1.40},
		stats.SADR:     {Min: 50, Max: 100},
	}
}

// Labels returns the axis label per charted key.
func Labels() map[stats.Key]string {
	return map[stats.Key]string{
		stats.L10HLTV2: "L10 HLTV",
		stats.L10ADR:   "L10 ADR",
		stats.L10KD:    "L10 K/D",
		stats.SHLTV2:   "S HLTV",
		stats.SADR:     "S ADR",
	}
}

// Normalize maps value onto [0,100] against r. A missing or NaN value, or a
// degenerate range, yields 0. The value is clamped to the range before the
// linear map and the result clamped after it.
func Normalize(value *float64, r Range) float64 {
	if value == nil || math.IsNaN(*value) || r.Max == r.Min {
		return 0
	}
	clamped := math.Max(r.Min, math.Min(r.Max, *value))
	normalized := (clamped - r.Min) / (r.Max - r.Min) * 100
	return math.Max(0, math.Min(100, normalized))
}

// Series is one team's chart data in ChartKeys order.
type Series struct {
	Name       string    `json:"name"`
	Normalized []float64 `json:"normalized"`
	// Raw holds the unnormalized averages for tooltips; nil means no data.
	Raw []*float64 `json:"raw"`
}

// Comparison is a fully built chart snapshot. Every rebuild produces a new
// value; consumers replace the old one wholesale.
type Comparison struct {
	Revision    uint64              `json:"revision"`
	GeneratedAt time.Time           `json:"generated_at"`
	Keys        []stats.Key         `json:"keys"`
	Labels      []string            `json:"labels"`
	Ranges      map[stats.Key]Range `json:"ranges"`
	TeamA       Series              `json:"team_a"`
	TeamB       Series              `json:"team_b"`
}

// Build assembles a comparison snapshot from the two teams' averages.
func Build(revision uint64, nameA, nameB string, avgA, avgB aggregate.Averages) Comparison {
	keys := ChartKeys()
	ranges := FixedRanges()
	labelTable := Labels()

	labels := make([]string, len(keys))
	for i, key := range keys {
		labels[i] = labelTable[key]
	}

	return Comparison{
		Revision:    revision,
		GeneratedAt: time.Now().UTC(),
		Keys:        keys,
		Labels:      labels,
		Ranges:      ranges,
		TeamA:       buildSeries(nameA, avgA, keys, ranges),
		TeamB:       buildSeries(nameB, avgB, keys, ranges),
	}
}

func buildSeries(name string, avg aggregate.Averages, keys []stats.Key, ranges map[stats.Key]Range) Series {
	s := Series{
		Name:       name,
		Normalized: make([]float64, len(keys)),
		Raw:        make([]*float64, len(keys)),
	}
	for i, key := range keys {
		if v, ok := avg.Get(key); ok {
			s.Raw[i] = stats.Ptr(v)
			s.Normalized[i] = Normalize(stats.Ptr(v), ranges[key])
		}
	}
	return s
}
