package stats

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"comptrack/internal/domain"
	"comptrack/internal/stats/metrics"
	dErrors "comptrack/pkg/domain-errors"
)

// Store supplies fact snapshots. Snapshots are built fresh on every read;
// the service holds no cache across requests.
type Store interface {
	Requirements(ctx context.Context) ([]domain.Requirement, error)
	CountAgencies(ctx context.Context) (int, error)
}

// Service computes the dashboard aggregates. It loads snapshots from the
// store and delegates all derivation to the pure folds in this package;
// a store failure surfaces to the caller rather than producing partial
// aggregates.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats returns the global dashboard counters. The requirement snapshot
// and the agency count come from independent queries and are loaded
// concurrently.
func (s *Service) Stats(ctx context.Context) (GlobalCounts, error) {
	var (
		reqs     []domain.Requirement
		agencies int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reqs, err = s.store.Requirements(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		agencies, err = s.store.CountAgencies(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return GlobalCounts{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load fact snapshot")
	}

	s.observe("stats", len(reqs))
	return Fold(reqs, agencies), nil
}

// ComplianceByAgency returns the per-agency breakdown rows.
func (s *Service) ComplianceByAgency(ctx context.Context) ([]AgencyRow, error) {
	reqs, err := s.store.Requirements(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load fact snapshot")
	}

	s.observe("by_agency", len(reqs))
	return BreakdownByAgency(reqs), nil
}

// Calendar returns the deadline calendar index.
func (s *Service) Calendar(ctx context.Context) (map[string][]CalendarEntry, error) {
	reqs, err := s.store.Requirements(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load fact snapshot")
	}

	s.observe("calendar", len(reqs))
	return BuildCalendar(reqs), nil
}

func (s *Service) observe(view string, snapshotSize int) {
	if s.metrics != nil {
		s.metrics.ObserveAggregate(view, snapshotSize)
	}
}
