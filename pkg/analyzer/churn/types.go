package churn

import (
	"sort"
	"time"

	"github.com/evolens/evolens/pkg/stats"
)

// EntityChurn is the accumulated change volume of one entity.
type EntityChurn struct {
	Entity      string    `json:"entity"`
	Added       int       `json:"added"`
	Deleted     int       `json:"deleted"`
	Revisions   int       `json:"revisions"`
	FirstCommit time.Time `json:"first_commit"`
	LastCommit  time.Time `json:"last_commit"`
	Authors     int       `json:"authors"`
}

// Total returns added plus deleted lines, the churn measure.
func (e *EntityChurn) Total() int { return e.Added + e.Deleted }

// Summary provides aggregate statistics.
type Summary struct {
	TotalEntities  int     `json:"total_entities"`
	TotalRevisions int     `json:"total_revisions"`
	TotalAdded     int     `json:"total_added"`
	TotalDeleted   int     `json:"total_deleted"`
	MeanChurn      float64 `json:"mean_churn"`
	StdDevChurn    float64 `json:"stddev_churn"`
	P50Churn       float64 `json:"p50_churn"`
	P95Churn       float64 `json:"p95_churn"`
}

// Analysis represents the full churn analysis result.
type Analysis struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Entities    []EntityChurn `json:"entities"`
	Summary     Summary       `json:"summary"`
}

// CalculateSummary computes aggregate statistics over the entity rows.
func (a *Analysis) CalculateSummary(totalRevisions int) {
	a.Summary.TotalEntities = len(a.Entities)
	a.Summary.TotalRevisions = totalRevisions
	if len(a.Entities) == 0 {
		return
	}

	churns := make([]float64, len(a.Entities))
	for i, e := range a.Entities {
		a.Summary.TotalAdded += e.Added
		a.Summary.TotalDeleted += e.Deleted
		churns[i] = float64(e.Total())
	}
	a.Summary.MeanChurn = stats.Mean(churns)
	a.Summary.StdDevChurn = stats.StdDev(churns)
	sort.Float64s(churns)
	a.Summary.P50Churn = stats.Percentile(churns, 50)
	a.Summary.P95Churn = stats.Percentile(churns, 95)
}
