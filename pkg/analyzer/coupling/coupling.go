// Package coupling computes logical and temporal change coupling between
// entities of a revision history.
package coupling

import (
	"context"
	"time"

	"github.com/evolens/evolens/internal/parallel"
	"github.com/evolens/evolens/pkg/revision"
)

// DefaultMaxEntities is the per-revision entity cutoff. Commits touching
// more entities are skipped for pairing: expanding them is O(N^2) and they
// are almost always mechanical sweeps (renames, reformatting) that drown
// real coupling signal. They still count toward churn.
const DefaultMaxEntities = 50

// Analyzer computes change coupling over a revision model.
type Analyzer struct {
	maxEntities int
	minCount    int
	minPercent  float64
	precision   int
	workers     int
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMaxEntities sets the per-revision entity cutoff for pairwise expansion.
func WithMaxEntities(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxEntities = n
		}
	}
}

// WithMinCount filters pairs below the given co-change count.
func WithMinCount(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.minCount = n
		}
	}
}

// WithMinPercent filters pairs below the given coupling percentage.
func WithMinPercent(p float64) Option {
	return func(a *Analyzer) {
		if p > 0 {
			a.minPercent = p
		}
	}
}

// WithPrecision sets the number of decimals for reported percentages.
func WithPrecision(p int) Option {
	return func(a *Analyzer) {
		if p >= 0 {
			a.precision = p
		}
	}
}

// WithWorkers sets the worker count for pairwise expansion (0 = NumCPU).
// Results are identical for any worker count.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// New creates a new coupling analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		maxEntities: DefaultMaxEntities,
		precision:   1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// pairCounts is the per-worker accumulator for pairwise expansion. Merging
// is plain counter addition keyed by canonical pair, so the reduction is
// associative and commutative and the result partition-independent.
type pairCounts struct {
	counts   map[Pair]int
	analyzed int
	skipped  int
}

func newPairCounts() *pairCounts {
	return &pairCounts{counts: make(map[Pair]int)}
}

func (pc *pairCounts) merge(src *pairCounts) {
	for pair, n := range src.counts {
		pc.counts[pair] += n
	}
	pc.analyzed += src.analyzed
	pc.skipped += src.skipped
}

// Analyze computes logical (same-commit) coupling.
func (a *Analyzer) Analyze(ctx context.Context, m *revision.Model) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ordinals := make([]int, m.Len())
	for i := range ordinals {
		ordinals[i] = i
	}

	pc := parallel.Reduce(ordinals, a.workers,
		newPairCounts,
		func(acc *pairCounts, ord int) {
			entities := m.At(ord).Entities()
			if len(entities) > a.maxEntities {
				acc.skipped++
				return
			}
			acc.analyzed++
			for i := 0; i < len(entities); i++ {
				for j := i + 1; j < len(entities); j++ {
					acc.counts[MakePair(entities[i], entities[j])]++
				}
			}
		},
		func(dst, src *pairCounts) { dst.merge(src) })

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis := &Analysis{
		GeneratedAt: time.Now().UTC(),
		Mode:        ModeLogical,
		Couplings:   make([]Coupling, 0, len(pc.counts)),
	}

	for pair, count := range pc.counts {
		if count < a.minCount {
			continue
		}
		revsA := m.RevisionCount(pair.A)
		revsB := m.RevisionCount(pair.B)
		pct := couplingPercentage(count, revsA, revsB, a.precision)
		if pct < a.minPercent {
			continue
		}
		analysis.Couplings = append(analysis.Couplings, Coupling{
			EntityA:     pair.A,
			EntityB:     pair.B,
			Cochanges:   count,
			Percentage:  pct,
			AverageRevs: float64(revsA+revsB) / 2,
		})
	}

	sortCouplings(analysis.Couplings)
	analysis.CalculateSummary(pc.analyzed, pc.skipped)
	return analysis, nil
}
