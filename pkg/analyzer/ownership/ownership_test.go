package ownership

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

func findEntity(t *testing.T, a *Analysis, entity string) EntityOwnership {
	t.Helper()
	for _, e := range a.Entities {
		if e.Entity == entity {
			return e
		}
	}
	t.Fatalf("entity %q not in result", entity)
	return EntityOwnership{}
}

func TestMainDeveloperAndShares(t *testing.T) {
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

	a := findEntity(t, result, "fileA")
	assert.Equal(t, "authorX", a.MainDeveloper)
	assert.InDelta(t, 10.0/13.0, a.MainShare, 1e-9)
	assert.Equal(t, 2, a.Authors)
	require.Len(t, a.Shares, 2)
	assert.Equal(t, "authorX", a.Shares[0].Author)
	assert.InDelta(t, 3.0/13.0, a.Shares[1].Share, 1e-9)

	b := findEntity(t, result, "fileB")
	assert.Equal(t, "authorX", b.MainDeveloper)
	assert.Equal(t, 1.0, b.MainShare)
}

func TestSharesSumToOne(t *testing.T) {
	var revs []revision.Revision
	for i := 0; i < 30; i++ {
		revs = append(revs, revision.Revision{
			ID:        fmt.Sprintf("r%02d", i),
			Author:    fmt.Sprintf("dev%d", i%4),
			Timestamp: ts(1).Add(time.Duration(i) * time.Hour),
			Changes: []revision.Change{
				{Entity: fmt.Sprintf("pkg%d/f.go", i%3), Added: i + 1, Deleted: i % 5},
			},
		})
	}
	m := mustModel(t, revs)

	result, err := New().Analyze(context.Background(), m)
	require.NoError(t, err)

	require.NotEmpty(t, result.Entities)
	for _, e := range result.Entities {
		sum := 0.0
		for _, s := range e.Shares {
			sum += s.Share
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "entity %s", e.Entity)
	}
}

func TestMainDeveloperTieBrokenByFirstContribution(t *testing.T) {
	m := mustModel(t, []revision.Revision{
		{ID: "r1", Author: "late", Timestamp: ts(5), Changes: []revision.Change{
			{Entity: "f.go", Added: 10},
		}},
		{ID: "r2", Author: "early", Timestamp: ts(1), Changes: []revision.Change{
			{Entity: "f.go", Added: 10},
		}},
	})

	result, err := New().Analyze(context.Background(), m)
	require.NoError(t, err)

	e := findEntity(t, result, "f.go")
	assert.Equal(t, "early", e.MainDeveloper)
	assert.Equal(t, 0.5, e.MainShare)
}

func TestFragmentationCountsAuthorsAboveThreshold(t *testing.T) {
	m := mustModel(t, []revision.Revision{
		{ID: "r1", Author: "major", Timestamp: ts(1), Changes: []revision.Change{
			{Entity: "f.go", Added: 90},
		}},
		{ID: "r2", Author: "minor", Timestamp: ts(2), Changes: []revision.Change{
			{Entity: "f.go", Added: 8},
		}},
		{ID: "r3", Author: "driveby", Timestamp: ts(3), Changes: []revision.Change{
			{Entity: "f.go", Added: 2},
		}},
	})

	// Default 5%: driveby's 2% does not count.
	result, err := New().Analyze(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 2, findEntity(t, result, "f.go").Fragmentation)

	// At 1% every author counts.
	result, err = New(WithMinorThreshold(0.01)).Analyze(context.Background(), m)
	require.NoError(t, err)
	e := findEntity(t, result, "f.go")
	assert.Equal(t, 3, e.Fragmentation)
	assert.Equal(t, 3, e.Authors)
}

func TestZeroChurnEntityHasNoMainDeveloper(t *testing.T) {
	m := mustModel(t, []revision.Revision{
		{ID: "r1", Author: "a", Timestamp: ts(1), Changes: []revision.Change{
			{Entity: "moved.go"},
		}},
	})

	result, err := New().Analyze(context.Background(), m)
	require.NoError(t, err)

	e := findEntity(t, result, "moved.go")
	assert.Empty(t, e.MainDeveloper)
	assert.Equal(t, 0.0, e.MainShare)
	assert.Equal(t, 0, e.Fragmentation)
	assert.Equal(t, 1, e.Authors)
}

func TestSortedByMainShareDescending(t *testing.T) {
	m := mustModel(t, []revision.Revision{
		{ID: "r1", Author: "a", Timestamp: ts(1), Changes: []revision.Change{
			{Entity: "solo.go", Added: 10},
			{Entity: "shared.go", Added: 5},
		}},
		{ID: "r2", Author: "b", Timestamp: ts(2), Changes: []revision.Change{
			{Entity: "shared.go", Added: 5},
		}},
	})

	result, err := New().Analyze(context.Background(), m)
	require.NoError(t, err)

	require.Len(t, result.Entities, 2)
	assert.Equal(t, "solo.go", result.Entities[0].Entity)
	assert.Equal(t, "shared.go", result.Entities[1].Entity)
}

func TestCancelledContext(t *testing.T) {
	m := mustModel(t, []revision.Revision{
		{ID: "r1", Author: "a", Timestamp: ts(1), Changes: []revision.Change{
			{Entity: "f.go", Added: 1},
		}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New().Analyze(ctx, m)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}
