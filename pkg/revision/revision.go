// Package revision holds the normalized in-memory model of a commit stream.
//
// Extraction from a VCS backend is a collaborator concern (internal/vcs,
// internal/revlog); this package only validates, orders, and indexes
// already-parsed revision records. Entity identity is the path string as
// delivered: rename resolution, if wanted, must happen before ingestion.
package revision

import "time"

// Change is one (entity, added-lines, deleted-lines) triple within a revision.
type Change struct {
	Entity  string `json:"entity"`
	Added   int    `json:"added"`
	Deleted int    `json:"deleted"`
}

// Revision is a single VCS commit as delivered by an extraction collaborator.
// Immutable once ingested.
type Revision struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	Changes   []Change  `json:"changes"`
}

// Entities returns the distinct entity paths touched by the revision,
// in first-appearance order.
func (r *Revision) Entities() []string {
	seen := make(map[string]struct{}, len(r.Changes))
	out := make([]string, 0, len(r.Changes))
	for _, c := range r.Changes {
		if _, ok := seen[c.Entity]; ok {
			continue
		}
		seen[c.Entity] = struct{}{}
		out = append(out, c.Entity)
	}
	return out
}
