// Package hotspot ranks entities by combining change frequency from the
// revision history with externally measured structural complexity.
package hotspot

import (
	"context"
	"sort"
	"time"

	"github.com/evolens/evolens/pkg/complexity"
	"github.com/evolens/evolens/pkg/revision"
)

// Analyzer computes hotspot rankings over a revision model joined with a
// complexity map.
type Analyzer struct {
	strategy Strategy
	limit    int
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithStrategy selects the score combination strategy.
func WithStrategy(s Strategy) Option {
	return func(a *Analyzer) {
		if s.Valid() {
			a.strategy = s
		}
	}
}

// WithLimit caps the number of reported rows (0 = unlimited).
func WithLimit(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.limit = n
		}
	}
}

// New creates a new hotspot analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{strategy: StrategyMultiply}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze joins per-entity revision counts with the complexity map and
// scores every entity. Entities missing from the map keep their churn
// signal: under multiply the complexity factor is neutral (1), under
// ranksum they rank at the bottom of the complexity axis. Either way the
// row is flagged so the caller can tell a measured score from a degraded
// one.
func (a *Analyzer) Analyze(ctx context.Context, m *revision.Model, scores *complexity.Map) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines := make(map[string]int)
	_ = m.ForEach(func(ord int, r *revision.Revision) error {
		for _, ch := range r.Changes {
			lines[ch.Entity] += ch.Added + ch.Deleted
		}
		return nil
	})

	entities := m.Entities()
	rows := make([]Entity, 0, len(entities))
	for _, entity := range entities {
		row := Entity{
			Entity:    entity,
			Revisions: m.RevisionCount(entity),
			Churn:     lines[entity],
		}
		if scores != nil {
			if c, ok := scores.Score(entity); ok {
				row.Complexity = c
				row.ComplexityAvailable = true
			}
		}
		rows = append(rows, row)
	}

	switch a.strategy {
	case StrategyRankSum:
		scoreRankSum(rows)
	default:
		scoreMultiply(rows)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Entity < rows[j].Entity
	})
	if a.limit > 0 && len(rows) > a.limit {
		rows = rows[:a.limit]
	}

	analysis := &Analysis{
		GeneratedAt: time.Now().UTC(),
		Strategy:    a.strategy,
		Entities:    rows,
	}
	analysis.CalculateSummary()
	return analysis, nil
}

func scoreMultiply(rows []Entity) {
	for i := range rows {
		factor := 1.0
		if rows[i].ComplexityAvailable {
			factor = rows[i].Complexity
		}
		rows[i].Score = float64(rows[i].Revisions) * factor
	}
}

// scoreRankSum awards each entity points for its standing on the revision
// axis and the complexity axis. Equal values share a standing (competition
// ranking), so the score only depends on how many entities strictly beat
// you on each axis.
func scoreRankSum(rows []Entity) {
	n := len(rows)
	for i := range rows {
		beatRevs, beatCplx := 0, 0
		for j := range rows {
			if rows[j].Revisions > rows[i].Revisions {
				beatRevs++
			}
			if rows[j].Complexity > rows[i].Complexity {
				beatCplx++
			}
		}
		rows[i].Score = float64((n - beatRevs) + (n - beatCplx))
	}
}
