// Package ownership attributes each entity's churn to its authors and
// derives main-developer and knowledge-fragmentation metrics.
package ownership

import (
	"context"
	"sort"
	"time"

	"github.com/evolens/evolens/pkg/revision"
)

// Analyzer computes ownership metrics over a revision model.
type Analyzer struct {
	minorThreshold float64
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMinorThreshold sets the contribution share at which an author counts
// toward fragmentation.
func WithMinorThreshold(f float64) Option {
	return func(a *Analyzer) {
		if f > 0 && f <= 1 {
			a.minorThreshold = f
		}
	}
}

// New creates a new ownership analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{minorThreshold: DefaultMinorThreshold}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type authorAcc struct {
	lines int
	first time.Time // earliest contribution, the main-developer tie break
}

// Analyze sums each author's added plus deleted lines per entity. The main
// developer is the author with the largest sum; on equal sums the author
// who contributed first wins. Entities whose total churn is zero (all
// changes carried zero deltas) report no main developer.
func (a *Analyzer) Analyze(ctx context.Context, m *revision.Model) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	accs := make(map[string]map[string]*authorAcc)
	_ = m.ForEach(func(ord int, r *revision.Revision) error {
		for _, ch := range r.Changes {
			byAuthor, ok := accs[ch.Entity]
			if !ok {
				byAuthor = make(map[string]*authorAcc)
				accs[ch.Entity] = byAuthor
			}
			acc, ok := byAuthor[r.Author]
			if !ok {
				acc = &authorAcc{first: r.Timestamp}
				byAuthor[r.Author] = acc
			}
			acc.lines += ch.Added + ch.Deleted
		}
		return nil
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis := &Analysis{
		GeneratedAt:    time.Now().UTC(),
		MinorThreshold: a.minorThreshold,
		Entities:       make([]EntityOwnership, 0, len(accs)),
	}

	for entity, byAuthor := range accs {
		total := 0
		for _, acc := range byAuthor {
			total += acc.lines
		}

		row := EntityOwnership{
			Entity:  entity,
			Authors: len(byAuthor),
			Shares:  make([]AuthorShare, 0, len(byAuthor)),
		}

		var mainAcc *authorAcc
		for author, acc := range byAuthor {
			share := 0.0
			if total > 0 {
				share = float64(acc.lines) / float64(total)
			}
			row.Shares = append(row.Shares, AuthorShare{
				Author: author,
				Lines:  acc.lines,
				Share:  share,
			})
			if share >= a.minorThreshold && share > 0 {
				row.Fragmentation++
			}
			if total > 0 && better(acc, author, mainAcc, row.MainDeveloper) {
				mainAcc = acc
				row.MainDeveloper = author
				row.MainShare = share
			}
		}

		sortShares(row.Shares)
		analysis.Entities = append(analysis.Entities, row)
	}

	// Most concentrated knowledge first.
	sort.Slice(analysis.Entities, func(i, j int) bool {
		ei, ej := &analysis.Entities[i], &analysis.Entities[j]
		if ei.MainShare != ej.MainShare {
			return ei.MainShare > ej.MainShare
		}
		return ei.Entity < ej.Entity
	})

	analysis.CalculateSummary(len(m.Authors()))
	return analysis, nil
}

// better reports whether candidate should replace the current main
// developer. Map iteration order is random, so the comparison must be a
// strict total order: lines desc, then earliest first contribution, then
// author name.
func better(cand *authorAcc, candName string, cur *authorAcc, curName string) bool {
	if cur == nil {
		return true
	}
	if cand.lines != cur.lines {
		return cand.lines > cur.lines
	}
	if !cand.first.Equal(cur.first) {
		return cand.first.Before(cur.first)
	}
	return candName < curName
}
