package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"jyotish-platform/internal/astro"
	"jyotish-platform/internal/geo"
	"jyotish-platform/internal/models"
	"jyotish-platform/internal/repository"
	"jyotish-platform/pkg/logging"
	"jyotish-platform/pkg/metrics"
)

// ChartRequest carries the birth details submitted for a chart
type ChartRequest struct {
	Name       string `json:"name"`
	BirthDate  string `json:"birth_date"`
	BirthTime  string `json:"birth_time"`
	BirthPlace string `json:"birth_place"`
}

// Validate checks the request for missing or malformed fields
func (r *ChartRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := time.Parse(astro.DateLayout, r.BirthDate); err != nil {
		return fmt.Errorf("invalid birth_date %q, expected YYYY-MM-DD", r.BirthDate)
	}
	if _, err := astro.ParseBirthTime(r.BirthTime); err != nil {
		return err
	}
	if strings.TrimSpace(r.BirthPlace) == "" {
		return fmt.Errorf("birth_place is required")
	}
	return nil
}

// ChartService orchestrates a chart request end to end: geocode the place,
// resolve its timezone, run the chart engine, and persist the result.
// Collaborator failures are terminal for the invocation; the service
// defines no retry policy of its own.
type ChartService struct {
	calculator *astro.Calculator
	geocoder   geo.Geocoder
	timezone   geo.TimezoneResolver
	repo       repository.ChartRepository
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
}

// NewChartService creates a new chart service
func NewChartService(
	calculator *astro.Calculator,
	geocoder geo.Geocoder,
	timezone geo.TimezoneResolver,
	repo repository.ChartRepository,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *ChartService {
	return &ChartService{
		calculator: calculator,
		geocoder:   geocoder,
		timezone:   timezone,
		repo:       repo,
		logger:     logger,
		metrics:    metricsCollector,
	}
}

// GenerateChart computes and stores a birth chart for the request. The
// stored chart for the subject is replaced: a chart is only ever corrected
// by recomputing it from the resolved instant and coordinates.
func (s *ChartService) GenerateChart(ctx context.Context, req *ChartRequest) (*models.ChartRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()

	s.logger.Info(ctx, "[CHART_REQUEST] Generating birth chart", logging.Fields{
		"subject":     req.Name,
		"birth_place": req.BirthPlace,
	})

	coord, err := s.geocoder.Resolve(ctx, req.BirthPlace)
	if err != nil {
		s.logger.Error(ctx, "[GEOCODE_ERROR] Failed to resolve birth place", logging.Fields{
			"birth_place": req.BirthPlace,
		}, err)
		return nil, err
	}

	zone, err := s.timezone.Lookup(ctx, coord.Latitude, coord.Longitude)
	if err != nil {
		s.logger.Error(ctx, "[TIMEZONE_ERROR] Failed to resolve timezone", logging.Fields{
			"latitude":  coord.Latitude,
			"longitude": coord.Longitude,
		}, err)
		return nil, err
	}

	chart, err := s.calculator.Compute(ctx, astro.ChartInput{
		Name:        req.Name,
		BirthDate:   req.BirthDate,
		BirthTime:   req.BirthTime,
		BirthPlace:  req.BirthPlace,
		Coordinates: coord,
		Timezone:    zone,
	})
	if err != nil {
		return nil, err
	}

	record, err := s.buildRecord(chart)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpsertChart(ctx, record); err != nil {
		s.logger.Error(ctx, "[CHART_SAVE_ERROR] Failed to store chart", logging.Fields{
			"subject": req.Name,
		}, err)
		return nil, err
	}

	s.logger.Info(ctx, "[CHART_REQUEST_COMPLETE] Birth chart generated and stored", logging.Fields{
		"subject":        req.Name,
		"chart_id":       record.ID,
		"timezone":       zone,
		"ascendant_sign": chart.AscendantSign.String(),
		"duration_ms":    time.Since(startTime).Milliseconds(),
	})

	return record, nil
}

// buildRecord packages an assembled chart into its persisted form
func (s *ChartService) buildRecord(chart *models.BirthChart) (*models.ChartRecord, error) {
	data, err := json.Marshal(chart)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize chart: %w", err)
	}

	birthDate, err := time.Parse(astro.DateLayout, chart.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chart birth date: %w", err)
	}

	now := time.Now().UTC()
	return &models.ChartRecord{
		SubjectName: chart.Name,
		BirthDate:   birthDate,
		BirthTime:   chart.BirthTime,
		BirthPlace:  chart.BirthPlace,
		Latitude:    chart.Coordinates.Latitude,
		Longitude:   chart.Coordinates.Longitude,
		Timezone:    chart.Timezone,
		ChartData:   data,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GetChart retrieves a stored chart by ID
func (s *ChartService) GetChart(ctx context.Context, id int64) (*models.ChartRecord, error) {
	return s.repo.GetChart(ctx, id)
}

// GetChartBySubject retrieves a stored chart by subject name
func (s *ChartService) GetChartBySubject(ctx context.Context, subjectName string) (*models.ChartRecord, error) {
	return s.repo.GetChartBySubject(ctx, subjectName)
}

// ListCharts retrieves stored charts with filtering and pagination
func (s *ChartService) ListCharts(ctx context.Context, filter repository.ChartFilter) ([]*models.ChartRecord, int, error) {
	return s.repo.ListCharts(ctx, filter)
}

// HealthCheck reports whether the service's storage is reachable
func (s *ChartService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
