package trend

import (
	"context"
	"testing"
	"time"

	"github.com/evolens/evolens/pkg/complexity"
	"github.com/evolens/evolens/pkg/revision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(day int) time.Time {
	return time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC)
}

func mustModel(t *testing.T, entities ...string) *revision.Model {
	t.Helper()
	changes := make([]revision.Change, len(entities))
	for i, e := range entities {
		changes[i] = revision.Change{Entity: e, Added: 1}
	}
	m, err := revision.Ingest([]revision.Revision{
		{ID: "r1", Author: "a", Timestamp: ts(1), Changes: changes},
	})
	require.NoError(t, err)
	return m
}

func TestSeriesOrderedWithDeltas(t *testing.T) {
	m := mustModel(t, "f.go")
	// Samples arrive out of order; the series must come back chronological.
	scores := complexity.NewMap([]complexity.Sample{
		{Entity: "f.go", Timestamp: ts(10), Score: 18},
		{Entity: "f.go", Timestamp: ts(1), Score: 10},
		{Entity: "f.go", Timestamp: ts(5), Score: 14},
	})

	result, err := New().Analyze(context.Background(), m, scores)
	require.NoError(t, err)

	require.Len(t, result.Entities, 1)
	s := result.Entities[0]
	require.Len(t, s.Points, 3)
	assert.Equal(t, []Point{
		{Timestamp: ts(1), Complexity: 10, Delta: 0},
		{Timestamp: ts(5), Complexity: 14, Delta: 4},
		{Timestamp: ts(10), Complexity: 18, Delta: 4},
	}, s.Points)
	assert.Equal(t, 8.0, s.TotalDelta)
}

func TestSortedByNetDriftDescending(t *testing.T) {
	m := mustModel(t, "up.go", "down.go", "flat.go")
	scores := complexity.NewMap([]complexity.Sample{
		{Entity: "up.go", Timestamp: ts(1), Score: 5},
		{Entity: "up.go", Timestamp: ts(2), Score: 9},
		{Entity: "down.go", Timestamp: ts(1), Score: 9},
		{Entity: "down.go", Timestamp: ts(2), Score: 5},
		{Entity: "flat.go", Timestamp: ts(1), Score: 7},
	})

	result, err := New().Analyze(context.Background(), m, scores)
	require.NoError(t, err)

	require.Len(t, result.Entities, 3)
	assert.Equal(t, "up.go", result.Entities[0].Entity)
	assert.Equal(t, "flat.go", result.Entities[1].Entity)
	assert.Equal(t, "down.go", result.Entities[2].Entity)

	assert.Equal(t, 1, result.Summary.Rising)
	assert.Equal(t, 1, result.Summary.Falling)
	assert.Equal(t, 1, result.Summary.Flat)
}

func TestUntrackedEntitiesExcludedByDefault(t *testing.T) {
	m := mustModel(t, "tracked.go")
	scores := complexity.NewMap([]complexity.Sample{
		{Entity: "tracked.go", Timestamp: ts(1), Score: 3},
		{Entity: "ghost.go", Timestamp: ts(1), Score: 9},
	})

	result, err := New().Analyze(context.Background(), m, scores)
	require.NoError(t, err)
	require.Len(t, result.Entities, 1)
	assert.Equal(t, "tracked.go", result.Entities[0].Entity)

	result, err = New(WithUntracked()).Analyze(context.Background(), m, scores)
	require.NoError(t, err)
	assert.Len(t, result.Entities, 2)
}

func TestNilComplexityMapYieldsEmptyAnalysis(t *testing.T) {
	m := mustModel(t, "f.go")

	result, err := New().Analyze(context.Background(), m, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Entities)
	assert.Equal(t, 0, result.Summary.TotalEntities)
}

func TestCancelledContext(t *testing.T) {
	m := mustModel(t, "f.go")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New().Analyze(ctx, m, nil)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}
