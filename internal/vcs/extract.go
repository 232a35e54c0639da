package vcs

import (
	"context"

	"github.com/evolens/evolens/pkg/revision"
)

// Extractor walks a repository log and produces revision records ready for
// ingestion.
type Extractor struct {
	opener        Opener
	includeMerges bool
	onCommit      func(n int)
}

// ExtractorOption is a functional option for configuring Extractor.
type ExtractorOption func(*Extractor)

// WithOpener substitutes the repository opener (useful for testing).
func WithOpener(o Opener) ExtractorOption {
	return func(e *Extractor) { e.opener = o }
}

// WithMerges includes merge commits in the extracted history. They are
// skipped by default: their stats repeat the merged branches' changes and
// double-count churn.
func WithMerges() ExtractorOption {
	return func(e *Extractor) { e.includeMerges = true }
}

// WithCommitCallback reports progress after every extracted commit.
func WithCommitCallback(fn func(n int)) ExtractorOption {
	return func(e *Extractor) { e.onCommit = fn }
}

// NewExtractor creates an extractor using the default git opener.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{opener: DefaultOpener()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract walks the repository's log and converts each commit into a
// revision record. The log comes back newest first; the revision model
// re-sorts chronologically on ingest, so order here does not matter.
func (e *Extractor) Extract(ctx context.Context, path string, opts *LogOptions) ([]revision.Revision, error) {
	repo, err := e.opener.PlainOpenWithDetect(path)
	if err != nil {
		return nil, err
	}

	iter, err := repo.Log(opts)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []revision.Revision
	err = iter.ForEach(func(c Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !e.includeMerges && c.NumParents() > 1 {
			return nil
		}

		stats, err := c.Stats()
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			return nil
		}

		rev := revision.Revision{
			ID:        c.Hash().String(),
			Author:    c.Author().Name,
			Timestamp: c.Author().When,
			Changes:   make([]revision.Change, 0, len(stats)),
		}
		for _, s := range stats {
			rev.Changes = append(rev.Changes, revision.Change{
				Entity:  s.Name,
				Added:   s.Addition,
				Deleted: s.Deletion,
			})
		}
		out = append(out, rev)
		if e.onCommit != nil {
			e.onCommit(len(out))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
