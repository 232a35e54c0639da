package revision

import (
	"fmt"
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// entityStats is the per-entity slice of the indices built at ingestion.
type entityStats struct {
	revs        *roaring.Bitmap // ordinals into Model.revs
	firstChange time.Time
	lastChange  time.Time
}

// Model is the read-only, chronologically indexed view of a revision stream.
// It is built once by Ingest and safe for concurrent readers; analyzers
// borrow it and never mutate it.
type Model struct {
	revs       []Revision
	entities   []string // sorted
	entityIdx  map[string]*entityStats
	authorRevs map[string]*roaring.Bitmap
}

// Ingest validates and indexes a sequence of revisions.
//
// Input may arrive out of chronological order; the model re-sorts stably by
// timestamp, breaking ties by position in the input sequence. Any revision
// with a non-positive timestamp, an empty change set, or a negative line
// delta aborts ingestion with a *MalformedRevisionError.
func Ingest(revs []Revision) (*Model, error) {
	for i, r := range revs {
		if err := validate(&r, i); err != nil {
			return nil, err
		}
	}

	ordered := make([]Revision, len(revs))
	copy(ordered, revs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	m := &Model{
		revs:       ordered,
		entityIdx:  make(map[string]*entityStats),
		authorRevs: make(map[string]*roaring.Bitmap),
	}

	for ord, r := range ordered {
		ab, ok := m.authorRevs[r.Author]
		if !ok {
			ab = roaring.New()
			m.authorRevs[r.Author] = ab
		}
		ab.Add(uint32(ord))

		for _, entity := range r.Entities() {
			es, ok := m.entityIdx[entity]
			if !ok {
				es = &entityStats{
					revs:        roaring.New(),
					firstChange: r.Timestamp,
					lastChange:  r.Timestamp,
				}
				m.entityIdx[entity] = es
				m.entities = append(m.entities, entity)
			}
			es.revs.Add(uint32(ord))
			if r.Timestamp.Before(es.firstChange) {
				es.firstChange = r.Timestamp
			}
			if r.Timestamp.After(es.lastChange) {
				es.lastChange = r.Timestamp
			}
		}
	}

	sort.Strings(m.entities)
	return m, nil
}

func validate(r *Revision, index int) error {
	if r.Timestamp.IsZero() || r.Timestamp.Unix() <= 0 {
		return &MalformedRevisionError{ID: r.ID, Index: index, Reason: "non-positive timestamp"}
	}
	if len(r.Changes) == 0 {
		return &MalformedRevisionError{ID: r.ID, Index: index, Reason: "empty change set"}
	}
	for _, c := range r.Changes {
		if c.Entity == "" {
			return &MalformedRevisionError{ID: r.ID, Index: index, Reason: "change with empty entity path"}
		}
		if c.Added < 0 || c.Deleted < 0 {
			return &MalformedRevisionError{
				ID:    r.ID,
				Index: index,
				Reason: fmt.Sprintf("negative line delta for %q (+%d/-%d)",
					c.Entity, c.Added, c.Deleted),
			}
		}
	}
	return nil
}

// Len returns the number of ingested revisions.
func (m *Model) Len() int { return len(m.revs) }

// At returns the i-th revision in chronological order.
func (m *Model) At(i int) *Revision { return &m.revs[i] }

// ForEach iterates all revisions in chronological order.
func (m *Model) ForEach(fn func(ord int, r *Revision) error) error {
	for i := range m.revs {
		if err := fn(i, &m.revs[i]); err != nil {
			return err
		}
	}
	return nil
}

// Entities returns all entity paths in lexicographic order. The returned
// slice is shared; callers must not modify it.
func (m *Model) Entities() []string { return m.entities }

// HasEntity reports whether the entity appears anywhere in the history.
func (m *Model) HasEntity(entity string) bool {
	_, ok := m.entityIdx[entity]
	return ok
}

// RevisionCount returns how many revisions touched the entity.
func (m *Model) RevisionCount(entity string) int {
	es, ok := m.entityIdx[entity]
	if !ok {
		return 0
	}
	return int(es.revs.GetCardinality())
}

// RevisionOrdinals returns a copy of the entity's revision-ordinal bitmap.
func (m *Model) RevisionOrdinals(entity string) *roaring.Bitmap {
	es, ok := m.entityIdx[entity]
	if !ok {
		return roaring.New()
	}
	return es.revs.Clone()
}

// AuthorRevisionCount returns how many revisions the author committed.
func (m *Model) AuthorRevisionCount(author string) int {
	ab, ok := m.authorRevs[author]
	if !ok {
		return 0
	}
	return int(ab.GetCardinality())
}

// Authors returns all authors in lexicographic order.
func (m *Model) Authors() []string {
	out := make([]string, 0, len(m.authorRevs))
	for a := range m.authorRevs {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// FirstChange returns the timestamp of the entity's first revision.
// The second return is false if the entity is unknown.
func (m *Model) FirstChange(entity string) (time.Time, bool) {
	es, ok := m.entityIdx[entity]
	if !ok {
		return time.Time{}, false
	}
	return es.firstChange, true
}

// LastChange returns the timestamp of the entity's most recent revision.
func (m *Model) LastChange(entity string) (time.Time, bool) {
	es, ok := m.entityIdx[entity]
	if !ok {
		return time.Time{}, false
	}
	return es.lastChange, true
}

// LatestTimestamp returns the timestamp of the newest revision, the default
// analysis reference point. Zero time when the model is empty.
func (m *Model) LatestTimestamp() time.Time {
	if len(m.revs) == 0 {
		return time.Time{}
	}
	return m.revs[len(m.revs)-1].Timestamp
}

// EarliestTimestamp returns the timestamp of the oldest revision.
func (m *Model) EarliestTimestamp() time.Time {
	if len(m.revs) == 0 {
		return time.Time{}
	}
	return m.revs[0].Timestamp
}
