package complexity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapScoreReturnsLatest(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	m := NewMap([]Sample{
		{Entity: "a.go", Timestamp: t2, Score: 20},
		{Entity: "a.go", Timestamp: t1, Score: 10},
		{Entity: "b.go", Score: 5}, // snapshot
	})

	score, ok := m.Score("a.go")
	require.True(t, ok)
	assert.Equal(t, 20.0, score)

	score, ok = m.Score("b.go")
	require.True(t, ok)
	assert.Equal(t, 5.0, score)

	_, ok = m.Score("missing.go")
	assert.False(t, ok)
}

func TestMapSeriesIsChronological(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	m := NewMap([]Sample{
		{Entity: "a.go", Timestamp: t2, Score: 20},
		{Entity: "a.go", Timestamp: t1, Score: 10},
	})

	series := m.Series("a.go")
	require.Len(t, series, 2)
	assert.Equal(t, 10.0, series[0].Score)
	assert.Equal(t, 20.0, series[1].Score)
}

func TestSnapshotSortsAfterTimestamped(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMap([]Sample{
		{Entity: "a.go", Score: 7}, // snapshot, no timestamp
		{Entity: "a.go", Timestamp: t1, Score: 3},
	})

	score, ok := m.Score("a.go")
	require.True(t, ok)
	assert.Equal(t, 7.0, score, "snapshot counts as the most recent value")
}

func TestLoadCSVSnapshot(t *testing.T) {
	input := "entity,score\nsrc/a.go,12.5\nsrc/b.go,3\n"

	m, err := LoadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len())
	score, ok := m.Score("src/a.go")
	require.True(t, ok)
	assert.Equal(t, 12.5, score)
}

func TestLoadCSVTimestamped(t *testing.T) {
	input := "src/a.go,2024-01-01T00:00:00Z,10\nsrc/a.go,2024-02-01T00:00:00Z,15\n"

	m, err := LoadCSV(strings.NewReader(input))
	require.NoError(t, err)

	series := m.Series("src/a.go")
	require.Len(t, series, 2)
	assert.Equal(t, 10.0, series[0].Score)
	assert.Equal(t, 15.0, series[1].Score)
}

func TestLoadCSVErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"bad score", "a.go,notanumber\n"},
		{"bad timestamp", "a.go,tomorrow,3\n"},
		{"negative score", "a.go,-1\n"},
		{"too many fields", "a.go,2024-01-01T00:00:00Z,3,extra\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(tc.input))
			assert.Error(t, err)
		})
	}
}

func TestLoadJSON(t *testing.T) {
	input := `[
		{"entity": "src/a.go", "score": 12},
		{"entity": "src/b.go", "score": 4, "timestamp": "2024-01-01T00:00:00Z"}
	]`

	m, err := LoadJSON([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	score, ok := m.Score("src/a.go")
	require.True(t, ok)
	assert.Equal(t, 12.0, score)
}

func TestLoadJSONRejectsSchemaViolations(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"missing score", `[{"entity": "a.go"}]`},
		{"empty entity", `[{"entity": "", "score": 1}]`},
		{"negative score", `[{"entity": "a.go", "score": -1}]`},
		{"not an array", `{"entity": "a.go", "score": 1}`},
		{"unknown field", `[{"entity": "a.go", "score": 1, "extra": true}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadJSON([]byte(tc.input))
			assert.Error(t, err)
		})
	}
}
