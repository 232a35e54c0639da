package hotspot

import (
	"sort"
	"time"

	"github.com/evolens/evolens/pkg/stats"
)

// Strategy selects how revision frequency and complexity combine into a
// hotspot score. Every strategy must be monotonic in each factor alone:
// raising either revisions or complexity while holding the other fixed
// never lowers the score.
type Strategy string

const (
	// StrategyMultiply scores an entity as revisions times complexity.
	// The product of two non-negative factors is monotonic in each.
	StrategyMultiply Strategy = "multiply"
	// StrategyRankSum scores an entity by its combined rank position on
	// the revision and complexity axes. A higher value on either axis can
	// only improve that axis rank, so the sum is monotonic too.
	StrategyRankSum Strategy = "ranksum"
)

// Valid reports whether the strategy is one of the known combinations.
func (s Strategy) Valid() bool {
	return s == StrategyMultiply || s == StrategyRankSum
}

// Entity is one hotspot row. Entities without complexity data are reported
// on churn alone with ComplexityAvailable unset, never dropped.
type Entity struct {
	Entity              string  `json:"entity"`
	Revisions           int     `json:"revisions"`
	Churn               int     `json:"churn"`
	Complexity          float64 `json:"complexity"`
	Score               float64 `json:"score"`
	ComplexityAvailable bool    `json:"complexity_available"`
}

// Summary provides aggregate statistics.
type Summary struct {
	TotalEntities      int     `json:"total_entities"`
	ScoredEntities     int     `json:"scored_entities"`
	UnresolvedEntities int     `json:"unresolved_entities"`
	MaxScore           float64 `json:"max_score"`
	MeanScore          float64 `json:"mean_score"`
	P95Score           float64 `json:"p95_score"`
}

// Analysis represents the full hotspot analysis result.
type Analysis struct {
	GeneratedAt time.Time `json:"generated_at"`
	Strategy    Strategy  `json:"strategy"`
	Entities    []Entity  `json:"entities"`
	Summary     Summary   `json:"summary"`
}

// CalculateSummary computes aggregate statistics over the scored rows.
func (a *Analysis) CalculateSummary() {
	a.Summary.TotalEntities = len(a.Entities)
	if len(a.Entities) == 0 {
		return
	}

	scores := make([]float64, 0, len(a.Entities))
	for _, e := range a.Entities {
		if e.ComplexityAvailable {
			a.Summary.ScoredEntities++
		} else {
			a.Summary.UnresolvedEntities++
		}
		if e.Score > a.Summary.MaxScore {
			a.Summary.MaxScore = e.Score
		}
		scores = append(scores, e.Score)
	}
	a.Summary.MeanScore = stats.Mean(scores)
	sort.Float64s(scores)
	a.Summary.P95Score = stats.Percentile(scores, 95)
}
