// Package dashboard computes the year-filtered chart views served by the API.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-dashboard/internal/domain"
	"github.com/couchcryptid/storm-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
)

// ErrYearNotFound is returned for a year with no observations.
var ErrYearNotFound = errors.New("year not found in dataset")

// View names used in metrics and logs.
const (
	ViewMap       = "map"
	ViewClass     = "class"
	ViewMonthly   = "monthly"
	ViewPressure  = "pressure"
	ViewDashboard = "dashboard"
)

// Dashboard bundles all four views for one year.
type Dashboard struct {
	Year        int                     `json:"year"`
	GeneratedAt time.Time               `json:"generated_at"`
	Map         []domain.StormTrack     `json:"map"`
	Class       []domain.ClassCount     `json:"class"`
	Monthly     []domain.MonthlySeries  `json:"monthly"`
	MonthNames  []string                `json:"month_names"`
	Pressure    []domain.PressureSeries `json:"pressure"`
}

// Service computes views over a read-only dataset. Every call filters and
// aggregates from scratch; nothing is cached between requests.
type Service struct {
	dataset *domain.Dataset
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewService creates a Service over ds.
func NewService(ds *domain.Dataset, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Service {
	metrics.ObservationsLoaded.Set(float64(ds.Len()))
	return &Service{
		dataset: ds,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

// CheckReadiness returns nil once a non-empty dataset is loaded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.dataset == nil || s.dataset.Len() == 0 {
		return errors.New("no storm observations loaded")
	}
	return nil
}

// Years returns the year selector options in ascending order.
func (s *Service) Years() []domain.YearOption {
	return domain.YearOptions(s.dataset.Years())
}

// LoadedAt returns when the dataset was loaded.
func (s *Service) LoadedAt() time.Time {
	return s.dataset.LoadedAt()
}

// DefaultYear returns the first selectable year.
func (s *Service) DefaultYear() (int, bool) {
	years := s.dataset.Years()
	if len(years) == 0 {
		return 0, false
	}
	return years[0], true
}

// Build computes all four views for year.
func (s *Service) Build(ctx context.Context, year int) (Dashboard, error) {
	return compute(ctx, s, ViewDashboard, year, func(obs []domain.StormObservation) Dashboard {
		return Dashboard{
			Year:        year,
			GeneratedAt: s.clock.Now().UTC(),
			Map:         domain.MapView(obs),
			Class:       domain.ClassView(obs),
			Monthly:     domain.MonthlyView(obs),
			MonthNames:  domain.MonthNames(),
			Pressure:    domain.PressureView(obs),
		}
	})
}

// Map returns the storm tracks for year.
func (s *Service) Map(ctx context.Context, year int) ([]domain.StormTrack, error) {
	return compute(ctx, s, ViewMap, year, domain.MapView)
}

// Class returns the per-type counts for year.
func (s *Service) Class(ctx context.Context, year int) ([]domain.ClassCount, error) {
	return compute(ctx, s, ViewClass, year, domain.ClassView)
}

// Monthly returns the gap-filled monthly counts per type for year.
func (s *Service) Monthly(ctx context.Context, year int) ([]domain.MonthlySeries, error) {
	return compute(ctx, s, ViewMonthly, year, domain.MonthlyView)
}

// Pressure returns the pressure series per type for year.
func (s *Service) Pressure(ctx context.Context, year int) ([]domain.PressureSeries, error) {
	return compute(ctx, s, ViewPressure, year, domain.PressureView)
}

func compute[T any](ctx context.Context, s *Service, view string, year int, fn func([]domain.StormObservation) T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	start := time.Now()
	obs := s.dataset.FilterByYear(year)
	if len(obs) == 0 {
		s.metrics.ViewBuilds.WithLabelValues(view, "not_found").Inc()
		return zero, ErrYearNotFound
	}

	out := fn(obs)

	s.metrics.ViewBuilds.WithLabelValues(view, "success").Inc()
	s.metrics.ViewDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
	s.logger.Debug("view built", "view", view, "year", year, "observations", len(obs))
	return out, nil
}
