// Package analysis orchestrates history extraction and analyzer execution.
package analysis

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/evolens/evolens/internal/cache"
	"github.com/evolens/evolens/internal/vcs"
	"github.com/evolens/evolens/pkg/analyzer"
	"github.com/evolens/evolens/pkg/analyzer/age"
	"github.com/evolens/evolens/pkg/analyzer/churn"
	"github.com/evolens/evolens/pkg/analyzer/coupling"
	"github.com/evolens/evolens/pkg/analyzer/hotspot"
	"github.com/evolens/evolens/pkg/analyzer/ownership"
	"github.com/evolens/evolens/pkg/analyzer/trend"
	"github.com/evolens/evolens/pkg/complexity"
	"github.com/evolens/evolens/pkg/config"
	"github.com/evolens/evolens/pkg/revision"
)

// Service orchestrates history analysis operations.
type Service struct {
	config *config.Config
	opener vcs.Opener
	store  *cache.Cache
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithOpener sets the VCS opener (for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) {
		s.opener = opener
	}
}

// WithCache sets the revision-stream cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.store = c
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.LoadOrDefault(),
		opener: vcs.DefaultOpener(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HistoryOptions bounds history extraction.
type HistoryOptions struct {
	After    *time.Time
	Before   *time.Time
	Merges   bool
	OnCommit func(n int)
}

// LoadHistory extracts a repository's history and builds the revision
// model. Unbounded extractions go through the cache keyed on the head
// commit; date-filtered walks are cheap enough to redo and skip it.
func (s *Service) LoadHistory(ctx context.Context, path string, opts HistoryOptions) (*revision.Model, error) {
	bounded := opts.After != nil || opts.Before != nil

	var key string
	if s.store != nil && !bounded {
		if repo, err := s.opener.PlainOpenWithDetect(path); err == nil {
			if head, err := repo.Head(); err == nil {
				key = cache.RevisionKey(path, head.Hash().String())
				if revs, ok := s.store.LoadRevisions(key); ok {
					return revision.Ingest(revs)
				}
			}
		}
	}

	extractorOpts := []vcs.ExtractorOption{vcs.WithOpener(s.opener)}
	if opts.Merges {
		extractorOpts = append(extractorOpts, vcs.WithMerges())
	}
	if opts.OnCommit != nil {
		extractorOpts = append(extractorOpts, vcs.WithCommitCallback(opts.OnCommit))
	}

	logOpts := &vcs.LogOptions{Since: opts.After, Until: opts.Before}
	revs, err := vcs.NewExtractor(extractorOpts...).Extract(ctx, path, logOpts)
	if err != nil {
		return nil, err
	}

	if s.store != nil && key != "" {
		// A failed store only costs the next run a re-extraction.
		_ = s.store.StoreRevisions(key, revs)
	}
	return revision.Ingest(revs)
}

// Request selects which analyses to run and their shared inputs.
type Request struct {
	Kinds      []analyzer.Kind
	Complexity *complexity.Map
}

// Results holds the output of one Run. Only requested kinds are non-nil.
type Results struct {
	Coupling  *coupling.Analysis
	Temporal  *coupling.Analysis
	Churn     *churn.Analysis
	Hotspot   *hotspot.Analysis
	Ownership *ownership.Analysis
	Age       *age.Analysis
	Trend     *trend.Analysis
}

// Run executes the requested analyzers concurrently over the shared model.
// Each analyzer writes only its own result field, so the fan-out needs no
// locking, just the join. Any failure cancels the rest and returns nothing.
func (s *Service) Run(ctx context.Context, m *revision.Model, req Request) (*Results, error) {
	results := &Results{}
	p := pool.New().WithContext(ctx).WithCancelOnError()

	for _, kind := range req.Kinds {
		switch kind {
		case analyzer.KindCoupling:
			p.Go(func(ctx context.Context) error {
				a, err := s.couplingAnalyzer().Analyze(ctx, m)
				results.Coupling = a
				return err
			})
		case analyzer.KindTemporal:
			p.Go(func(ctx context.Context) error {
				window := config.Window(s.config.Coupling.Window)
				a, err := s.couplingAnalyzer().AnalyzeTemporal(ctx, m, window)
				results.Temporal = a
				return err
			})
		case analyzer.KindChurn:
			p.Go(func(ctx context.Context) error {
				a, err := churn.New().Analyze(ctx, m)
				results.Churn = a
				return err
			})
		case analyzer.KindHotspot:
			p.Go(func(ctx context.Context) error {
				a, err := hotspot.New(
					hotspot.WithStrategy(hotspot.Strategy(s.config.Hotspot.Strategy)),
				).Analyze(ctx, m, req.Complexity)
				results.Hotspot = a
				return err
			})
		case analyzer.KindOwnership:
			p.Go(func(ctx context.Context) error {
				a, err := ownership.New(
					ownership.WithMinorThreshold(s.config.Ownership.MinorThreshold),
				).Analyze(ctx, m)
				results.Ownership = a
				return err
			})
		case analyzer.KindAge:
			p.Go(func(ctx context.Context) error {
				a, err := age.New(
					age.WithReferenceTime(s.config.ReferenceTime()),
				).Analyze(ctx, m)
				results.Age = a
				return err
			})
		case analyzer.KindTrend:
			p.Go(func(ctx context.Context) error {
				a, err := trend.New().Analyze(ctx, m, req.Complexity)
				results.Trend = a
				return err
			})
		}
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

func (s *Service) couplingAnalyzer() *coupling.Analyzer {
	return coupling.New(
		coupling.WithMaxEntities(s.config.Coupling.MaxEntitiesPerCommit),
		coupling.WithMinCount(s.config.Coupling.MinCouplingCount),
		coupling.WithMinPercent(s.config.Coupling.MinCouplingPercent),
		coupling.WithPrecision(s.config.Coupling.Precision),
	)
}
