// Package complexity holds externally supplied per-entity complexity scores.
//
// The engine never computes complexity itself; a collaborator (counting
// cyclomatic complexity, indentation, size, whatever) produces a mapping
// from entity path to score, optionally timestamped for trend analysis.
// Entities without a score are flagged by consumers, never dropped.
package complexity

import (
	"sort"
	"time"
)

// Sample is one complexity measurement. A zero Timestamp marks a snapshot
// measurement with no position in time; snapshots are treated as the most
// recent value for the entity.
type Sample struct {
	Entity    string    `json:"entity"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Score     float64   `json:"score"`
}

// Map is a read-only index of complexity samples by entity.
type Map struct {
	series map[string][]Sample
}

// NewMap builds a Map from samples. Per entity, timestamped samples are
// ordered chronologically with snapshots (zero timestamp) after them;
// relative order of equal timestamps follows input order.
func NewMap(samples []Sample) *Map {
	m := &Map{series: make(map[string][]Sample)}
	for _, s := range samples {
		m.series[s.Entity] = append(m.series[s.Entity], s)
	}
	for entity := range m.series {
		ss := m.series[entity]
		sort.SliceStable(ss, func(i, j int) bool {
			ti, tj := ss[i].Timestamp, ss[j].Timestamp
			if ti.IsZero() || tj.IsZero() {
				return tj.IsZero() && !ti.IsZero()
			}
			return ti.Before(tj)
		})
	}
	return m
}

// Score returns the most recent score for the entity. The second return is
// false when the collaborator supplied no measurement for it.
func (m *Map) Score(entity string) (float64, bool) {
	ss, ok := m.series[entity]
	if !ok || len(ss) == 0 {
		return 0, false
	}
	return ss[len(ss)-1].Score, true
}

// Series returns the entity's samples in chronological order. The returned
// slice is shared; callers must not modify it.
func (m *Map) Series(entity string) []Sample {
	return m.series[entity]
}

// Entities returns all measured entity paths in lexicographic order.
func (m *Map) Entities() []string {
	out := make([]string, 0, len(m.series))
	for e := range m.series {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of measured entities.
func (m *Map) Len() int { return len(m.series) }
