package astro

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"jyotish-platform/internal/models"
	"jyotish-platform/pkg/logging"
	"jyotish-platform/pkg/metrics"
)

// ChartInput carries everything the engine needs for one chart computation.
// Coordinates and timezone have already been resolved by the geocoding and
// timezone collaborators.
type ChartInput struct {
	Name        string
	BirthDate   string
	BirthTime   string
	BirthPlace  string
	Coordinates models.GeoCoordinate
	Timezone    string
}

// Calculator assembles complete birth charts. Stateless per invocation:
// no shared mutable state between computations, so a single Calculator is
// safe for concurrent use.
type Calculator struct {
	eph              Ephemeris
	system           HouseSystem
	ayanamsaFallback float64
	logger           *logging.StructuredLogger
	metrics          *metrics.Collector
}

// NewCalculator creates a chart calculator using the given ephemeris
// provider and house system
func NewCalculator(eph Ephemeris, system HouseSystem, ayanamsaFallback float64, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) (*Calculator, error) {
	if !system.Valid() {
		return nil, fmt.Errorf("unrecognized house system %q", string(system))
	}

	return &Calculator{
		eph:              eph,
		system:           system,
		ayanamsaFallback: ayanamsaFallback,
		logger:           logger,
		metrics:          metricsCollector,
	}, nil
}

// Compute runs the full pipeline for one birth: instant resolution, house
// cusps, sidereal positions, house assignment, divisional charts, and the
// dasha snapshot, assembled into an immutable BirthChart. Houses and
// positions depend only on the instant and run concurrently. Any stage
// failure aborts the whole computation; a partial chart is never returned.
func (c *Calculator) Compute(ctx context.Context, in ChartInput) (*models.BirthChart, error) {
	startTime := time.Now()
	defer func() {
		c.metrics.ChartComputationDuration.Observe(time.Since(startTime).Seconds())
	}()

	c.logger.Info(ctx, "[CHART_COMPUTE_START] Starting chart computation", logging.Fields{
		"subject":    in.Name,
		"birth_date": in.BirthDate,
		"timezone":   in.Timezone,
	})

	instant, err := timedStage(c, "instant", func() (*models.Instant, error) {
		return ResolveInstant(ctx, c.eph, in.BirthDate, in.BirthTime, in.Timezone)
	})
	if err != nil {
		return nil, c.fail(ctx, "instant", err)
	}

	var (
		houses    *models.HouseCusps
		positions map[models.Planet]*models.PlanetaryPosition
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result, err := timedStage(c, "houses", func() (*models.HouseCusps, error) {
			return ComputeHouses(gctx, c.eph, instant.JulianDay, in.Coordinates, c.system)
		})
		if err != nil {
			return err
		}
		houses = result
		return nil
	})

	g.Go(func() error {
		result, err := timedStage(c, "positions", func() (map[models.Planet]*models.PlanetaryPosition, error) {
			ayanamsa, err := ResolveAyanamsa(gctx, c.eph, instant.JulianDay, c.ayanamsaFallback)
			if err != nil {
				return nil, err
			}
			return ComputePositions(gctx, c.eph, instant.JulianDay, ayanamsa)
		})
		if err != nil {
			return err
		}
		positions = result
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, c.fail(ctx, "geometry", err)
	}

	if err := AssignHouses(houses, positions); err != nil {
		return nil, c.fail(ctx, "house_assignment", err)
	}

	divisional := map[string]*models.DivisionalChart{
		NavamsaLabel: ComputeDivisionalChart(NavamsaLabel, NavamsaFactor, positions),
		DasamsaLabel: ComputeDivisionalChart(DasamsaLabel, DasamsaFactor, positions),
	}

	dasha := ComputeDasha(positions[models.Moon].Longitude)

	chart := &models.BirthChart{
		Name:             in.Name,
		BirthDate:        in.BirthDate,
		BirthTime:        in.BirthTime,
		BirthPlace:       in.BirthPlace,
		Coordinates:      in.Coordinates,
		Timezone:         in.Timezone,
		JulianDay:        instant.JulianDay,
		Houses:           houses,
		Planets:          positions,
		DivisionalCharts: divisional,
		Dasha:            dasha,
		AscendantSign:    SignFromLongitude(houses.Ascendant),
		SunSign:          positions[models.Sun].Sign,
		MoonSign:         positions[models.Moon].Sign,
	}

	c.metrics.ChartComputationsTotal.Inc()
	c.logger.Info(ctx, "[CHART_COMPUTE_COMPLETE] Chart computed", logging.Fields{
		"subject":        in.Name,
		"julian_day":     instant.JulianDay,
		"ascendant_sign": chart.AscendantSign.String(),
		"current_dasha":  dasha.Current.String(),
		"duration_ms":    time.Since(startTime).Milliseconds(),
	})

	return chart, nil
}

// timedStage records a per-stage duration histogram around a pipeline step
func timedStage[T any](c *Calculator, stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := fn()
	c.metrics.ChartStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	return result, err
}

func (c *Calculator) fail(ctx context.Context, stage string, err error) error {
	c.metrics.ChartErrorsTotal.WithLabelValues(ErrorKind(err)).Inc()
	c.logger.Error(ctx, "[CHART_COMPUTE_ERROR] Chart computation aborted", logging.Fields{
		"stage":      stage,
		"error_kind": ErrorKind(err),
	}, err)
	return err
}

// ErrorKind labels an engine error for metrics and HTTP status mapping
func ErrorKind(err error) string {
	var (
		invalidTZ    *InvalidTimeZoneError
		outOfRange   *OutOfRangeError
		geometry     *GeometryUndefinedError
		inconsistent *InconsistentHouseDataError
		unavailable  *EphemerisUnavailableError
	)

	switch {
	case errors.As(err, &invalidTZ):
		return "invalid_timezone"
	case errors.As(err, &outOfRange):
		return "out_of_range"
	case errors.As(err, &geometry):
		return "geometry_undefined"
	case errors.As(err, &inconsistent):
		return "inconsistent_house_data"
	case errors.As(err, &unavailable):
		return "ephemeris_unavailable"
	default:
		return "internal"
	}
}
