package astro

import (
	"context"

	"jyotish-platform/internal/models"
	"jyotish-platform/pkg/logging"
	"jyotish-platform/pkg/metrics"
)

// Shared test fixtures. The collector registers with the default prometheus
// registry, so it is created exactly once for the test binary.
var (
	testLogger  = logging.NewStructuredLogger("astro-test", "test", logging.FatalLevel)
	testMetrics = metrics.NewCollector("jyotish_astro_test")
)

// stubEphemeris is a scriptable in-memory ephemeris provider. Unset
// functions fall back to deterministic defaults so tests only script the
// calls they care about.
type stubEphemeris struct {
	julianDayFn       func(year, month, day int, hourUT float64) (float64, error)
	planetLongitudeFn func(jd float64, body int) (float64, error)
	housesFn          func(jd, lat, lon float64, system HouseSystem) ([12]float64, float64, float64, error)
	ayanamsaFn        func(jd float64) (float64, error)
}

func (s *stubEphemeris) JulianDay(ctx context.Context, year, month, day int, hourUT float64) (float64, error) {
	if s.julianDayFn != nil {
		return s.julianDayFn(year, month, day, hourUT)
	}
	return 2451545.0, nil
}

func (s *stubEphemeris) PlanetLongitude(ctx context.Context, jd float64, body int) (float64, error) {
	if s.planetLongitudeFn != nil {
		return s.planetLongitudeFn(jd, body)
	}
	// Spread the bodies across the circle so every default position is distinct
	return NormalizeLongitude(float64(body)*37.0 + 24.18), nil
}

func (s *stubEphemeris) Houses(ctx context.Context, jd, lat, lon float64, system HouseSystem) ([12]float64, float64, float64, error) {
	if s.housesFn != nil {
		return s.housesFn(jd, lat, lon, system)
	}
	var cusps [12]float64
	for i := range cusps {
		cusps[i] = float64(i) * 30.0
	}
	return cusps, 10.0, 280.0, nil
}

func (s *stubEphemeris) Ayanamsa(ctx context.Context, jd float64) (float64, error) {
	if s.ayanamsaFn != nil {
		return s.ayanamsaFn(jd)
	}
	return 24.18, nil
}

// equalCusps returns 12 cusps of equal width starting from the given ascendant
func equalCusps(start float64) *models.HouseCusps {
	hc := &models.HouseCusps{Ascendant: start, Midheaven: NormalizeLongitude(start + 270)}
	for i := range hc.Cusps {
		hc.Cusps[i] = NormalizeLongitude(start + float64(i)*30.0)
	}
	return hc
}
