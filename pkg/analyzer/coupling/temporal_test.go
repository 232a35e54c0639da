package coupling

import (
	"context"
	"testing"
	"time"

	"github.com/evolens/evolens/pkg/config"
	"github.com/evolens/evolens/pkg/revision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketKey(t *testing.T) {
	// Wednesday 2024-03-13 14:37:21 UTC
	at := time.Date(2024, 3, 13, 14, 37, 21, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 13, 14, 0, 0, 0, time.UTC), BucketKey(at, config.WindowHour))
	assert.Equal(t, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), BucketKey(at, config.WindowDay))
	// Week starts Monday 2024-03-11.
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), BucketKey(at, config.WindowWeek))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), BucketKey(at, config.WindowMonth))
}

func TestBucketKeyNormalizesZone(t *testing.T) {
	zone := time.FixedZone("plus5", 5*3600)
	local := time.Date(2024, 3, 13, 2, 0, 0, 0, zone) // 2024-03-12 21:00 UTC

	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), BucketKey(local, config.WindowDay))
}

func TestTemporalCouplesAcrossCommitsInSameWindow(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	m := mustModel(t, []revision.Revision{
		// Same day, different commits and authors.
		{ID: "r1", Author: "alice", Timestamp: day.Add(9 * time.Hour), Changes: changes("a.go")},
		{ID: "r2", Author: "bob", Timestamp: day.Add(16 * time.Hour), Changes: changes("b.go")},
		// Next day, only a.go.
		{ID: "r3", Author: "alice", Timestamp: day.Add(30 * time.Hour), Changes: changes("a.go")},
	})

	result, err := New().AnalyzeTemporal(context.Background(), m, config.WindowDay)
	require.NoError(t, err)

	require.Len(t, result.Couplings, 1)
	c := result.Couplings[0]
	assert.Equal(t, "a.go", c.EntityA)
	assert.Equal(t, "b.go", c.EntityB)
	assert.Equal(t, 1, c.Cochanges)
	// a.go in 2 buckets, b.go in 1: 1/min(2,1)*100.
	assert.Equal(t, 100.0, c.Percentage)
	assert.Equal(t, ModeTemporal, result.Mode)
	assert.Equal(t, "day", result.Window)
}

func TestTemporalDoesNotCoupleAcrossWindows(t *testing.T) {
	m := mustModel(t, []revision.Revision{
		{ID: "r1", Author: "a", Timestamp: ts(1), Changes: changes("a.go")},
		{ID: "r2", Author: "a", Timestamp: ts(2), Changes: changes("b.go")},
	})

	result, err := New().AnalyzeTemporal(context.Background(), m, config.WindowDay)
	require.NoError(t, err)
	assert.Empty(t, result.Couplings)
}

func TestTemporalWiderWindowCouplesMore(t *testing.T) {
	m := mustModel(t, []revision.Revision{
		{ID: "r1", Author: "a", Timestamp: ts(4), Changes: changes("a.go")}, // Monday
		{ID: "r2", Author: "a", Timestamp: ts(6), Changes: changes("b.go")}, // Wednesday
	})

	daily, err := New().AnalyzeTemporal(context.Background(), m, config.WindowDay)
	require.NoError(t, err)
	assert.Empty(t, daily.Couplings)

	weekly, err := New().AnalyzeTemporal(context.Background(), m, config.WindowWeek)
	require.NoError(t, err)
	require.Len(t, weekly.Couplings, 1)
	assert.Equal(t, 1, weekly.Couplings[0].Cochanges)
}

func TestTemporalDeduplicatesWithinBucket(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	// a.go and b.go both touched twice in the same day: still one bucket,
	// one co-change.
	m := mustModel(t, []revision.Revision{
		{ID: "r1", Author: "a", Timestamp: day.Add(1 * time.Hour), Changes: changes("a.go", "b.go")},
		{ID: "r2", Author: "a", Timestamp: day.Add(2 * time.Hour), Changes: changes("a.go")},
		{ID: "r3", Author: "a", Timestamp: day.Add(3 * time.Hour), Changes: changes("b.go")},
	})

	result, err := New().AnalyzeTemporal(context.Background(), m, config.WindowDay)
	require.NoError(t, err)

	require.Len(t, result.Couplings, 1)
	assert.Equal(t, 1, result.Couplings[0].Cochanges)
}

func TestTemporalSkipsShotgunCommits(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	m := mustModel(t, []revision.Revision{
		{ID: "r1", Author: "a", Timestamp: day.Add(time.Hour),
			Changes: changes("a.go", "b.go", "c.go")},
	})

	result, err := New(WithMaxEntities(2)).AnalyzeTemporal(context.Background(), m, config.WindowDay)
	require.NoError(t, err)

	assert.Empty(t, result.Couplings)
	assert.Equal(t, 1, result.Summary.SkippedRevisions)
}

func TestTemporalDeterminismAcrossWorkerCounts(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var revs []revision.Revision
	for i := 0; i < 150; i++ {
		revs = append(revs, revision.Revision{
			ID:        string(rune('a'+i%26)) + "x",
			Author:    "dev",
			Timestamp: start.Add(time.Duration(i*7) * time.Hour),
			Changes: changes(
				[]string{"a.go", "b.go", "c.go", "d.go"}[i%4],
				[]string{"e.go", "f.go"}[i%2],
			),
		})
	}
	m := mustModel(t, revs)

	base, err := New(WithWorkers(1)).AnalyzeTemporal(context.Background(), m, config.WindowDay)
	require.NoError(t, err)
	require.NotEmpty(t, base.Couplings)

	for _, workers := range []int{2, 5, 16} {
		got, err := New(WithWorkers(workers)).AnalyzeTemporal(context.Background(), m, config.WindowDay)
		require.NoError(t, err)
		assert.Equal(t, base.Couplings, got.Couplings, "workers=%d", workers)
	}
}
