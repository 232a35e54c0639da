// Package age measures how long each entity has been left untouched,
// relative to a reference point in time.
package age

import (
	"context"
	"sort"
	"time"

	"github.com/evolens/evolens/pkg/revision"
	"github.com/evolens/evolens/pkg/stats"
)

// EntityAge is one age row. AgeDays is whole days with floor rounding; a
// reference time earlier than the entity's last change clamps to zero.
type EntityAge struct {
	Entity      string    `json:"entity"`
	LastChanged time.Time `json:"last_changed"`
	AgeDays     int       `json:"age_days"`
}

// Summary provides aggregate statistics.
type Summary struct {
	TotalEntities int     `json:"total_entities"`
	OldestDays    int     `json:"oldest_days"`
	MeanDays      float64 `json:"mean_days"`
	MedianDays    float64 `json:"median_days"`
}

// Analysis represents the full age analysis result.
type Analysis struct {
	GeneratedAt   time.Time   `json:"generated_at"`
	ReferenceTime time.Time   `json:"reference_time"`
	Entities      []EntityAge `json:"entities"`
	Summary       Summary     `json:"summary"`
}

// CalculateSummary computes aggregate statistics over the entity rows.
func (a *Analysis) CalculateSummary() {
	a.Summary.TotalEntities = len(a.Entities)
	if len(a.Entities) == 0 {
		return
	}

	days := make([]float64, len(a.Entities))
	for i, e := range a.Entities {
		days[i] = float64(e.AgeDays)
		if e.AgeDays > a.Summary.OldestDays {
			a.Summary.OldestDays = e.AgeDays
		}
	}
	a.Summary.MeanDays = stats.Mean(days)
	sort.Float64s(days)
	a.Summary.MedianDays = stats.Percentile(days, 50)
}

// Analyzer computes per-entity age over a revision model.
type Analyzer struct {
	reference time.Time
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithReferenceTime overrides the analysis reference point. The zero value
// keeps the default, the latest revision timestamp in the model, which
// supports historical "as of" queries.
func WithReferenceTime(t time.Time) Option {
	return func(a *Analyzer) { a.reference = t }
}

// New creates a new age analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes the age of every entity in the model, oldest first.
func (a *Analyzer) Analyze(ctx context.Context, m *revision.Model) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reference := a.reference
	if reference.IsZero() {
		reference = m.LatestTimestamp()
	}

	entities := m.Entities()
	analysis := &Analysis{
		GeneratedAt:   time.Now().UTC(),
		ReferenceTime: reference,
		Entities:      make([]EntityAge, 0, len(entities)),
	}

	for _, entity := range entities {
		last, _ := m.LastChange(entity)
		days := int(reference.Sub(last).Hours() / 24)
		if days < 0 {
			days = 0
		}
		analysis.Entities = append(analysis.Entities, EntityAge{
			Entity:      entity,
			LastChanged: last,
			AgeDays:     days,
		})
	}

	sort.Slice(analysis.Entities, func(i, j int) bool {
		ei, ej := &analysis.Entities[i], &analysis.Entities[j]
		if ei.AgeDays != ej.AgeDays {
			return ei.AgeDays > ej.AgeDays
		}
		return ei.Entity < ej.Entity
	})

	analysis.CalculateSummary()
	return analysis, nil
}
