// Package stats holds the player stat model shared across the service.
//
// Every metric is optional: a nil pointer means "no data point", whether the
// source feed omitted the field, carried an explicit null, or a session edit
// cleared it. Aggregation must never confuse a real zero with a missing value,
// so the nil/NaN convention is resolved here at the model boundary.
package stats

import "math"

// Key identifies one of the six tracked metrics. The first three come from
// the last-10-games snapshot, the rest from the season snapshot.
type Key string

const (
	L10HLTV2 Key = "L10_HLTV2"
	L10ADR   Key = "L10_ADR"
	L10KD    Key = "L10_KD"
	SHLTV2   Key = "S_HLTV2"
	SADR     Key = "S_ADR"
	SKD      Key = "S_KD"
)

// Keys returns all metric keys in display order.
func Keys() []Key {
	return []Key{L10HLTV2, L10ADR, L10KD, SHLTV2, SADR, SKD}
}

// PlayerStats carries the six optional metrics for one player.
type PlayerStats struct {
	L10HLTV2 *float64 `json:"L10_HLTV2,omitempty"`
	L10ADR   *float64 `json:"L10_ADR,omitempty"`
	L10KD    *float64 `json:"L10_KD,omitempty"`
	SHLTV2   *float64 `json:"S_HLTV2,omitempty"`
	SADR     *float64 `json:"S_ADR,omitempty"`
	SKD      *float64 `json:"S_KD,omitempty"`
}

// Player is a roster-ready player snapshot. ID is the durable join key;
// Name is display-only and must never be used for joins.
type Player struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Stats PlayerStats `json:"stats"`
}

// Get returns the value for key and whether a usable data point exists.
// NaN counts as missing.
func (s PlayerStats) Get(key Key) (float64, bool) {
	p := s.field(key)
	if p == nil || *p == nil || math.IsNaN(**p) {
		return 0, false
	}
	return **p, true
}

// Set stores a value for key. A nil value clears the metric.
func (s *PlayerStats) Set(key Key, value *float64) {
	p := s.field(key)
	if p != nil {
		*p = value
	}
}

// Merge applies every field of patch onto s. Patch fields that are present
// overwrite, including explicit clears; absent patch fields are encoded as
// missing entries in the patch map, so callers pass only what changed.
func (s *PlayerStats) Merge(patch map[Key]*float64) {
	for key, value := range patch {
		s.Set(key, value)
	}
}

// Clone returns a deep copy so roster snapshots stay independent of the
// source tables they were built from.
func (s PlayerStats) Clone() PlayerStats {
	out := PlayerStats{}
	for _, key := range Keys() {
		if v, ok := s.Get(key); ok {
			out.Set(key, Ptr(v))
		}
	}
	return out
}

// Ptr is a convenience for building optional metric values.
func Ptr(v float64) *float64 { return &v }

// Decimals returns the display precision convention for a metric:
// ADR renders whole numbers, ratios render two decimals.
func Decimals(key Key) int {
	switch key {
	case L10ADR, SADR:
		return 0
	default:
		return 2
	}
}

func (s *PlayerStats) field(key Key) **float64 {
	switch key {
	case L10HLTV2:
		return &s.L10HLTV2
	case L10ADR:
		return &s.L10ADR
	case L10KD:
		return &s.L10KD
	case SHLTV2:
		return &s.SHLTV2
	case SADR:
		return &s.SADR
	case SKD:
		return &s.SKD
	default:
		return nil
	}
}
