package report

import (
	"github.com/evolens/evolens/pkg/analyzer/age"
	"github.com/evolens/evolens/pkg/analyzer/churn"
	"github.com/evolens/evolens/pkg/analyzer/coupling"
	"github.com/evolens/evolens/pkg/analyzer/hotspot"
	"github.com/evolens/evolens/pkg/analyzer/ownership"
	"github.com/evolens/evolens/pkg/analyzer/trend"
	"github.com/evolens/evolens/pkg/revision"
)

// Column schemas, one per analysis kind. Sort requests are validated
// against these before any history work happens.
var (
	CouplingColumns  = []string{"entity-a", "entity-b", "co-changes", "percentage", "average-revs"}
	ChurnColumns     = []string{"entity", "added", "deleted", "revisions", "authors", "first-commit", "last-commit"}
	HotspotColumns   = []string{"entity", "revisions", "complexity", "score", "complexity-available"}
	OwnershipColumns = []string{"entity", "main-developer", "ownership-share", "fragmentation", "authors"}
	AgeColumns       = []string{"entity", "last-changed", "age-days"}
	TrendColumns     = []string{"entity", "timestamp", "complexity", "delta"}
	SummaryColumns   = []string{"statistic", "value"}
)

// FromCoupling shapes a coupling analysis into its row schema.
func FromCoupling(a *coupling.Analysis) *Table {
	t := &Table{Columns: CouplingColumns}
	for _, c := range a.Couplings {
		t.Rows = append(t.Rows, []any{c.EntityA, c.EntityB, c.Cochanges, c.Percentage, c.AverageRevs})
	}
	return t
}

// FromChurn shapes a churn analysis into its row schema.
func FromChurn(a *churn.Analysis) *Table {
	t := &Table{Columns: ChurnColumns}
	for _, e := range a.Entities {
		t.Rows = append(t.Rows, []any{e.Entity, e.Added, e.Deleted, e.Revisions, e.Authors, e.FirstCommit, e.LastCommit})
	}
	return t
}

// FromHotspot shapes a hotspot analysis into its row schema.
func FromHotspot(a *hotspot.Analysis) *Table {
	t := &Table{Columns: HotspotColumns}
	for _, e := range a.Entities {
		t.Rows = append(t.Rows, []any{e.Entity, e.Revisions, e.Complexity, e.Score, e.ComplexityAvailable})
	}
	return t
}

// FromOwnership shapes an ownership analysis into its row schema.
func FromOwnership(a *ownership.Analysis) *Table {
	t := &Table{Columns: OwnershipColumns}
	for _, e := range a.Entities {
		t.Rows = append(t.Rows, []any{e.Entity, e.MainDeveloper, e.MainShare, e.Fragmentation, e.Authors})
	}
	return t
}

// FromAge shapes an age analysis into its row schema.
func FromAge(a *age.Analysis) *Table {
	t := &Table{Columns: AgeColumns}
	for _, e := range a.Entities {
		t.Rows = append(t.Rows, []any{e.Entity, e.LastChanged, e.AgeDays})
	}
	return t
}

// FromTrend flattens a trend analysis into one row per sample.
func FromTrend(a *trend.Analysis) *Table {
	t := &Table{Columns: TrendColumns}
	for _, e := range a.Entities {
		for _, p := range e.Points {
			t.Rows = append(t.Rows, []any{e.Entity, p.Timestamp, p.Complexity, p.Delta})
		}
	}
	return t
}

// FromModel produces the dataset summary rows: whole-history counts that
// frame every other analysis. An entity touched by a revision counts once
// per revision, however many change records it carries.
func FromModel(m *revision.Model) *Table {
	changed := 0
	_ = m.ForEach(func(ord int, r *revision.Revision) error {
		changed += len(r.Entities())
		return nil
	})

	return &Table{
		Columns: SummaryColumns,
		Rows: [][]any{
			{"number-of-commits", m.Len()},
			{"number-of-authors", len(m.Authors())},
			{"number-of-entities", len(m.Entities())},
			{"number-of-entities-changed", changed},
		},
	}
}
