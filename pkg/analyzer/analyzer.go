// Package analyzer defines the contract shared by all metric analyzers.
package analyzer

import (
	"context"

	"github.com/evolens/evolens/pkg/revision"
)

// Kind identifies an analysis. The set is closed; report assembly switches
// exhaustively over it.
type Kind string

const (
	KindCoupling  Kind = "coupling"
	KindTemporal  Kind = "temporal"
	KindChurn     Kind = "churn"
	KindHotspot   Kind = "hotspot"
	KindOwnership Kind = "ownership"
	KindAge       Kind = "age"
	KindTrend     Kind = "trend"
	KindSummary   Kind = "summary"
)

// Kinds returns every analysis kind in reporting order.
func Kinds() []Kind {
	return []Kind{
		KindCoupling, KindTemporal, KindChurn, KindHotspot,
		KindOwnership, KindAge, KindTrend, KindSummary,
	}
}

// ModelAnalyzer is the interface all analyzers implement: one pure function
// over a shared read-only revision model. Implementations must not mutate
// the model and must return no partial result on context cancellation.
type ModelAnalyzer[T any] interface {
	Analyze(ctx context.Context, m *revision.Model) (T, error)
}
