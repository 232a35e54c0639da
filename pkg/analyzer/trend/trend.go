// Package trend exposes the chronological evolution of externally measured
// complexity for the entities of a revision history.
package trend

import (
	"context"
	"sort"
	"time"

	"github.com/evolens/evolens/pkg/complexity"
	"github.com/evolens/evolens/pkg/revision"
)

// Point is one sample in an entity's complexity series. Delta is the
// change since the previous sample, zero for the first.
type Point struct {
	Timestamp  time.Time `json:"timestamp"`
	Complexity float64   `json:"complexity"`
	Delta      float64   `json:"delta"`
}

// EntitySeries is one entity's ordered complexity history. TotalDelta is
// last minus first sample, the net drift over the observed range.
type EntitySeries struct {
	Entity     string  `json:"entity"`
	Points     []Point `json:"points"`
	TotalDelta float64 `json:"total_delta"`
}

// Summary provides aggregate statistics.
type Summary struct {
	TotalEntities int `json:"total_entities"`
	Rising        int `json:"rising"`
	Falling       int `json:"falling"`
	Flat          int `json:"flat"`
}

// Analysis represents the full trend analysis result.
type Analysis struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Entities    []EntitySeries `json:"entities"`
	Summary     Summary        `json:"summary"`
}

// CalculateSummary classifies each series by its net drift.
func (a *Analysis) CalculateSummary() {
	a.Summary.TotalEntities = len(a.Entities)
	for _, e := range a.Entities {
		switch {
		case e.TotalDelta > 0:
			a.Summary.Rising++
		case e.TotalDelta < 0:
			a.Summary.Falling++
		default:
			a.Summary.Flat++
		}
	}
}

// Analyzer joins complexity sample series against the entities of a
// revision model. It orders and differences the samples; smoothing or
// regression is left to downstream consumers.
type Analyzer struct {
	includeUntracked bool
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithUntracked also reports series for entities that have complexity
// samples but never appear in the revision history.
func WithUntracked() Option {
	return func(a *Analyzer) { a.includeUntracked = true }
}

// New creates a new trend analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze produces one series per entity with at least one sample, sorted
// by descending net drift so the fastest-growing entities lead.
func (a *Analyzer) Analyze(ctx context.Context, m *revision.Model, scores *complexity.Map) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis := &Analysis{GeneratedAt: time.Now().UTC()}
	if scores == nil {
		analysis.CalculateSummary()
		return analysis, nil
	}

	for _, entity := range scores.Entities() {
		if !a.includeUntracked && !m.HasEntity(entity) {
			continue
		}
		samples := scores.Series(entity)
		if len(samples) == 0 {
			continue
		}

		series := EntitySeries{
			Entity: entity,
			Points: make([]Point, len(samples)),
		}
		for i, s := range samples {
			p := Point{Timestamp: s.Timestamp, Complexity: s.Score}
			if i > 0 {
				p.Delta = s.Score - samples[i-1].Score
			}
			series.Points[i] = p
		}
		series.TotalDelta = samples[len(samples)-1].Score - samples[0].Score
		analysis.Entities = append(analysis.Entities, series)
	}

	sort.Slice(analysis.Entities, func(i, j int) bool {
		ei, ej := &analysis.Entities[i], &analysis.Entities[j]
		if ei.TotalDelta != ej.TotalDelta {
			return ei.TotalDelta > ej.TotalDelta
		}
		return ei.Entity < ej.Entity
	})

	analysis.CalculateSummary()
	return analysis, nil
}
