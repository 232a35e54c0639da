package churn

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/evolens/evolens/pkg/revision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(day int) time.Time {
	return time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC)
}

func mustModel(t *testing.T, revs []revision.Revision) *revision.Model {
	t.Helper()
	m, err := revision.Ingest(revs)
	require.NoError(t, err)
	return m
}

func TestChurnAccumulation(t *testing.T) {
	m := mustModel(t, []revision.Revision{
		{ID: "r1", Author: "authorX", Timestamp: ts(1), Changes: []revision.Change{
			{Entity: "fileA", Added: 10},
			{Entity: "fileB", Added: 5},
		}},
		{ID: "r2", Author: "authorY", Timestamp: ts(2), Changes: []revision.Change{
			{Entity: "fileA", Added: 2, Deleted: 1},
		}},
	})

	result, err := New().Analyze(context.Background(), m)
	require.NoError(t, err)

	require.Len(t, result.Entities, 2)
	a := result.Entities[0]
	assert.Equal(t, "fileA", a.Entity)
	assert.Equal(t, 12, a.Added)
	assert.Equal(t, 1, a.Deleted)
	assert.Equal(t, 2, a.Revisions)
	assert.Equal(t, 2, a.Authors)
	assert.Equal(t, ts(1), a.FirstCommit)
	assert.Equal(t, ts(2), a.LastCommit)

	b := result.Entities[1]
	assert.Equal(t, "fileB", b.Entity)
	assert.Equal(t, 5, b.Added)
	assert.Equal(t, 1, b.Revisions)
	assert.Equal(t, 1, b.Authors)
}

func TestChurnConservation(t *testing.T) {
	var revs []revision.Revision
	wantAdded, wantDeleted := 0, 0
	for i := 0; i < 40; i++ {
		changes := []revision.Change{
			{Entity: fmt.Sprintf("pkg%d/a.go", i%5), Added: i + 1, Deleted: i % 3},
			{Entity: fmt.Sprintf("pkg%d/b.go", i%7), Added: 2 * i, Deleted: i % 2},
		}
		for _, ch := range changes {
			wantAdded += ch.Added
			wantDeleted += ch.Deleted
		}
		revs = append(revs, revision.Revision{
			ID:        fmt.Sprintf("r%02d", i),
			Author:    fmt.Sprintf("dev%d", i%3),
			Timestamp: ts(1).Add(time.Duration(i) * time.Hour),
			Changes:   changes,
		})
	}
	m := mustModel(t, revs)

	result, err := New().Analyze(context.Background(), m)
	require.NoError(t, err)

	gotAdded, gotDeleted := 0, 0
	for _, e := range result.Entities {
		gotAdded += e.Added
		gotDeleted += e.Deleted
	}
	assert.Equal(t, wantAdded, gotAdded, "added lines conserved across grouping")
	assert.Equal(t, wantDeleted, gotDeleted, "deleted lines conserved across grouping")
	assert.Equal(t, wantAdded, result.Summary.TotalAdded)
	assert.Equal(t, wantDeleted, result.Summary.TotalDeleted)
}

func TestChurnSortedByTotalDescending(t *testing.T) {
	m := mustModel(t, []revision.Revision{
		{ID: "r1", Author: "a", Timestamp: ts(1), Changes: []revision.Change{
			{Entity: "small.go", Added: 1},
			{Entity: "big.go", Added: 100, Deleted: 20},
			{Entity: "mid.go", Added: 30},
		}},
	})

	result, err := New().Analyze(context.Background(), m)
	require.NoError(t, err)

	require.Len(t, result.Entities, 3)
	assert.Equal(t, "big.go", result.Entities[0].Entity)
	assert.Equal(t, "mid.go", result.Entities[1].Entity)
	assert.Equal(t, "small.go", result.Entities[2].Entity)
}

func TestChurnMinRevisionsFilter(t *testing.T) {
	m := mustModel(t, []revision.Revision{
		{ID: "r1", Author: "a", Timestamp: ts(1), Changes: []revision.Change{
			{Entity: "hot.go", Added: 1},
			{Entity: "cold.go", Added: 1},
		}},
		{ID: "r2", Author: "a", Timestamp: ts(2), Changes: []revision.Change{
			{Entity: "hot.go", Added: 1},
		}},
	})

	result, err := New(WithMinRevisions(2)).Analyze(context.Background(), m)
	require.NoError(t, err)

	require.Len(t, result.Entities, 1)
	assert.Equal(t, "hot.go", result.Entities[0].Entity)
}

func TestChurnSummaryStatistics(t *testing.T) {
	m := mustModel(t, []revision.Revision{
		{ID: "r1", Author: "a", Timestamp: ts(1), Changes: []revision.Change{
			{Entity: "a.go", Added: 10},
			{Entity: "b.go", Added: 20},
		}},
	})

	result, err := New().Analyze(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Summary.TotalEntities)
	assert.Equal(t, 1, result.Summary.TotalRevisions)
	assert.Equal(t, 15.0, result.Summary.MeanChurn)
}

func TestChurnCancelledContext(t *testing.T) {
	m := mustModel(t, []revision.Revision{
		{ID: "r1", Author: "a", Timestamp: ts(1), Changes: []revision.Change{
			{Entity: "a.go", Added: 1},
		}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New().Analyze(ctx, m)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}
