// Package churn measures change volume per entity: lines added and deleted,
// revision counts, and the commit span over which the entity evolved.
package churn

import (
	"context"
	"sort"
	"time"

	"github.com/evolens/evolens/pkg/revision"
)

// Analyzer computes churn metrics over a revision model.
type Analyzer struct {
	minRevisions int
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMinRevisions filters entities below the given revision count.
func WithMinRevisions(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.minRevisions = n
		}
	}
}

// New creates a new churn analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type entityAcc struct {
	added   int
	deleted int
	authors map[string]struct{}
}

// Analyze accumulates churn for every entity in the model. Unlike coupling,
// churn has no shotgun cutoff: every change in every revision counts.
func (a *Analyzer) Analyze(ctx context.Context, m *revision.Model) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	accs := make(map[string]*entityAcc)
	_ = m.ForEach(func(ord int, r *revision.Revision) error {
		for _, ch := range r.Changes {
			acc, ok := accs[ch.Entity]
			if !ok {
				acc = &entityAcc{authors: make(map[string]struct{})}
				accs[ch.Entity] = acc
			}
			acc.added += ch.Added
			acc.deleted += ch.Deleted
			acc.authors[r.Author] = struct{}{}
		}
		return nil
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis := &Analysis{
		GeneratedAt: time.Now().UTC(),
		Entities:    make([]EntityChurn, 0, len(accs)),
	}

	for entity, acc := range accs {
		revs := m.RevisionCount(entity)
		if revs < a.minRevisions {
			continue
		}
		first, _ := m.FirstChange(entity)
		last, _ := m.LastChange(entity)
		analysis.Entities = append(analysis.Entities, EntityChurn{
			Entity:      entity,
			Added:       acc.added,
			Deleted:     acc.deleted,
			Revisions:   revs,
			FirstCommit: first,
			LastCommit:  last,
			Authors:     len(acc.authors),
		})
	}

	sort.Slice(analysis.Entities, func(i, j int) bool {
		ei, ej := &analysis.Entities[i], &analysis.Entities[j]
		if ei.Total() != ej.Total() {
			return ei.Total() > ej.Total()
		}
		return ei.Entity < ej.Entity
	})

	analysis.CalculateSummary(m.Len())
	return analysis, nil
}
