package coupling

import (
	"context"
	"sort"
	"time"

	"github.com/evolens/evolens/internal/parallel"
	"github.com/evolens/evolens/pkg/config"
	"github.com/evolens/evolens/pkg/revision"
)

// BucketKey truncates a timestamp to the start of its window, in UTC.
// Bucketing is author-independent: any two revisions inside the same window
// land in the same bucket. Weeks start on Monday.
func BucketKey(t time.Time, w config.Window) time.Time {
	t = t.UTC()
	switch w {
	case config.WindowHour:
		return t.Truncate(time.Hour)
	case config.WindowWeek:
		days := (int(t.Weekday()) + 6) % 7
		d := t.AddDate(0, 0, -days)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	case config.WindowMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default: // day
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// bucket is the deduplicated entity set of one time window.
type bucket struct {
	entities []string // sorted
}

// AnalyzeTemporal computes temporal coupling: entities are coupled when they
// change within the same time window, even across different commits. The
// co-change count for a pair is the number of windows containing both, and
// the percentage denominator is the smaller of the pair's window-presence
// counts.
func (a *Analyzer) AnalyzeTemporal(ctx context.Context, m *revision.Model, window config.Window) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !window.Valid() {
		window = config.WindowDay
	}

	// Group revisions into window buckets. Built sequentially: the model is
	// chronological, so keys appear in order and the result is deterministic.
	sets := make(map[time.Time]map[string]struct{})
	var keys []time.Time
	analyzed, skipped := 0, 0

	for ord := 0; ord < m.Len(); ord++ {
		r := m.At(ord)
		entities := r.Entities()
		if len(entities) > a.maxEntities {
			skipped++
			continue
		}
		analyzed++
		key := BucketKey(r.Timestamp, window)
		set, ok := sets[key]
		if !ok {
			set = make(map[string]struct{})
			sets[key] = set
			keys = append(keys, key)
		}
		for _, e := range entities {
			set[e] = struct{}{}
		}
	}

	buckets := make([]bucket, 0, len(keys))
	presence := make(map[string]int) // entity -> number of buckets it appears in
	for _, key := range keys {
		set := sets[key]
		entities := make([]string, 0, len(set))
		for e := range set {
			entities = append(entities, e)
			presence[e]++
		}
		sort.Strings(entities)
		buckets = append(buckets, bucket{entities: entities})
	}

	pc := parallel.Reduce(buckets, a.workers,
		newPairCounts,
		func(acc *pairCounts, b bucket) {
			for i := 0; i < len(b.entities); i++ {
				for j := i + 1; j < len(b.entities); j++ {
					// Entities are sorted, so the pair is already canonical.
					acc.counts[Pair{A: b.entities[i], B: b.entities[j]}]++
				}
			}
		},
		func(dst, src *pairCounts) { dst.merge(src) })

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis := &Analysis{
		GeneratedAt: time.Now().UTC(),
		Mode:        ModeTemporal,
		Window:      string(window),
		Couplings:   make([]Coupling, 0, len(pc.counts)),
	}

	for pair, count := range pc.counts {
		if count < a.minCount {
			continue
		}
		bucketsA := presence[pair.A]
		bucketsB := presence[pair.B]
		pct := couplingPercentage(count, bucketsA, bucketsB, a.precision)
		if pct < a.minPercent {
			continue
		}
		analysis.Couplings = append(analysis.Couplings, Coupling{
			EntityA:     pair.A,
			EntityB:     pair.B,
			Cochanges:   count,
			Percentage:  pct,
			AverageRevs: float64(bucketsA+bucketsB) / 2,
		})
	}

	sortCouplings(analysis.Couplings)
	analysis.CalculateSummary(analyzed, skipped)
	return analysis, nil
}
