package ownership

import (
	"sort"
	"time"

	"github.com/evolens/evolens/pkg/stats"
)

// DefaultMinorThreshold is the contribution share at which an author counts
// toward an entity's fragmentation. Authors below it are drive-by
// contributors and excluded from the bus-factor signal.
const DefaultMinorThreshold = 0.05

// AuthorShare is one author's slice of an entity's churn.
type AuthorShare struct {
	Author string  `json:"author"`
	Lines  int     `json:"lines"`
	Share  float64 `json:"share"`
}

// EntityOwnership is one ownership row. Share is always a fraction of the
// entity's own total churn, never of the repository's.
type EntityOwnership struct {
	Entity        string        `json:"entity"`
	MainDeveloper string        `json:"main_developer"`
	MainShare     float64       `json:"main_share"`
	Fragmentation int           `json:"fragmentation"`
	Authors       int           `json:"authors"`
	Shares        []AuthorShare `json:"shares"`
}

// Summary provides aggregate statistics.
type Summary struct {
	TotalEntities     int     `json:"total_entities"`
	TotalAuthors      int     `json:"total_authors"`
	MeanMainShare     float64 `json:"mean_main_share"`
	MeanFragmentation float64 `json:"mean_fragmentation"`
}

// Analysis represents the full ownership analysis result.
type Analysis struct {
	GeneratedAt    time.Time         `json:"generated_at"`
	MinorThreshold float64           `json:"minor_threshold"`
	Entities       []EntityOwnership `json:"entities"`
	Summary        Summary           `json:"summary"`
}

// CalculateSummary computes aggregate statistics over the entity rows.
func (a *Analysis) CalculateSummary(totalAuthors int) {
	a.Summary.TotalEntities = len(a.Entities)
	a.Summary.TotalAuthors = totalAuthors
	if len(a.Entities) == 0 {
		return
	}

	mains := make([]float64, len(a.Entities))
	frags := make([]float64, len(a.Entities))
	for i, e := range a.Entities {
		mains[i] = e.MainShare
		frags[i] = float64(e.Fragmentation)
	}
	a.Summary.MeanMainShare = stats.Mean(mains)
	a.Summary.MeanFragmentation = stats.Mean(frags)
}

// sortShares orders author shares by descending contribution, ties broken
// by author name.
func sortShares(shares []AuthorShare) {
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Lines != shares[j].Lines {
			return shares[i].Lines > shares[j].Lines
		}
		return shares[i].Author < shares[j].Author
	})
}
