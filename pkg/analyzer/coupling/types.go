package coupling

import (
	"math"
	"sort"
	"time"

	"github.com/evolens/evolens/pkg/stats"
)

// Pair is the canonical unordered pair key: A is always the lexicographically
// smaller path, so (x,y) and (y,x) aggregate under the same key.
type Pair struct {
	A, B string
}

// MakePair canonicalizes two entity paths into a Pair.
func MakePair(a, b string) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Less orders pairs by (A, B) ascending, the deterministic tie-break for
// result rows.
func (p Pair) Less(o Pair) bool {
	if p.A != o.A {
		return p.A < o.A
	}
	return p.B < o.B
}

// Coupling is one reported entity pair.
type Coupling struct {
	EntityA     string  `json:"entity_a"`
	EntityB     string  `json:"entity_b"`
	Cochanges   int     `json:"cochanges"`
	Percentage  float64 `json:"percentage"`   // cochanges / min(revsA, revsB) * 100
	AverageRevs float64 `json:"average_revs"` // (revsA + revsB) / 2
}

// Mode distinguishes same-commit from same-time-window coupling.
type Mode string

const (
	ModeLogical  Mode = "logical"
	ModeTemporal Mode = "temporal"
)

// Summary provides aggregate statistics.
type Summary struct {
	TotalPairs        int     `json:"total_pairs"`
	AnalyzedRevisions int     `json:"analyzed_revisions"`
	SkippedRevisions  int     `json:"skipped_revisions"` // above the entity cutoff
	MaxCochanges      int     `json:"max_cochanges"`
	MeanPercentage    float64 `json:"mean_percentage"`
	P95Percentage     float64 `json:"p95_percentage"`
}

// Analysis represents the full coupling analysis result.
type Analysis struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Mode        Mode       `json:"mode"`
	Window      string     `json:"window,omitempty"` // temporal mode only
	Couplings   []Coupling `json:"couplings"`
	Summary     Summary    `json:"summary"`
}

// CalculateSummary computes summary statistics. Couplings must already be
// sorted by descending co-change count.
func (a *Analysis) CalculateSummary(analyzed, skipped int) {
	a.Summary.AnalyzedRevisions = analyzed
	a.Summary.SkippedRevisions = skipped
	a.Summary.TotalPairs = len(a.Couplings)
	if len(a.Couplings) == 0 {
		return
	}
	a.Summary.MaxCochanges = a.Couplings[0].Cochanges

	pcts := make([]float64, len(a.Couplings))
	for i, c := range a.Couplings {
		pcts[i] = c.Percentage
	}
	a.Summary.MeanPercentage = stats.Mean(pcts)
	sort.Float64s(pcts)
	a.Summary.P95Percentage = stats.Percentile(pcts, 95)
}

// roundTo rounds v to the given number of decimals.
func roundTo(v float64, precision int) float64 {
	scale := math.Pow10(precision)
	return math.Round(v*scale) / scale
}

// couplingPercentage is the degree of coupling between a pair: co-changes
// relative to the less frequently changed member of the pair.
func couplingPercentage(cochanges, revsA, revsB, precision int) float64 {
	minRevs := revsA
	if revsB < minRevs {
		minRevs = revsB
	}
	if minRevs == 0 {
		return 0
	}
	return roundTo(float64(cochanges)/float64(minRevs)*100, precision)
}

// sortCouplings orders rows by descending co-change count, ties broken by
// canonical pair key ascending.
func sortCouplings(cs []Coupling) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Cochanges != cs[j].Cochanges {
			return cs[i].Cochanges > cs[j].Cochanges
		}
		return Pair{A: cs[i].EntityA, B: cs[i].EntityB}.
			Less(Pair{A: cs[j].EntityA, B: cs[j].EntityB})
	})
}
