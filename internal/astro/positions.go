package astro

import (
	"context"
	"errors"
	"fmt"

	"jyotish-platform/internal/models"
)

// Provider body codes for the eight bodies queried from the ephemeris.
// Ketu has no entry: it is derived from Rahu, never queried. Indexing by
// the closed Planet enum keeps the table exhaustive for queried bodies.
var bodyCodes = [...]int{
	models.Sun:     0,
	models.Moon:    1,
	models.Mars:    4,
	models.Mercury: 2,
	models.Jupiter: 5,
	models.Venus:   3,
	models.Saturn:  6,
	models.Rahu:    11, // true lunar node
}

// queriedPlanets are the bodies requested from the provider, in canonical order
var queriedPlanets = [8]models.Planet{
	models.Sun, models.Moon, models.Mars, models.Mercury,
	models.Jupiter, models.Venus, models.Saturn, models.Rahu,
}

// positionFromLongitude builds a full placement from a sidereal longitude.
// House stays 0 until house assignment runs.
func positionFromLongitude(planet models.Planet, longitude float64) *models.PlanetaryPosition {
	l := NormalizeLongitude(longitude)
	return &models.PlanetaryPosition{
		Planet:    planet,
		Longitude: l,
		Sign:      SignFromLongitude(l),
		Nakshatra: NakshatraFromLongitude(l),
	}
}

// ComputePositions derives the sidereal placement of all nine bodies at the
// given instant. Tropical longitudes come from the ephemeris provider; the
// ayanamsa is subtracted and the result normalized into [0,360). Ketu is
// placed exactly 180 degrees from Rahu with sign and nakshatra derived the
// same way as every other body.
func ComputePositions(ctx context.Context, eph Ephemeris, jd, ayanamsa float64) (map[models.Planet]*models.PlanetaryPosition, error) {
	positions := make(map[models.Planet]*models.PlanetaryPosition, len(models.Planets))

	for _, planet := range queriedPlanets {
		tropical, err := eph.PlanetLongitude(ctx, jd, bodyCodes[planet])
		if err != nil {
			return nil, fmt.Errorf("position of %s: %w", planet, err)
		}

		sidereal := tropical - ayanamsa
		if sidereal < 0 {
			sidereal += 360
		}
		positions[planet] = positionFromLongitude(planet, sidereal)
	}

	ketu := NormalizeLongitude(positions[models.Rahu].Longitude + 180)
	positions[models.Ketu] = positionFromLongitude(models.Ketu, ketu)

	return positions, nil
}

// ResolveAyanamsa returns the sidereal correction for the instant,
// preferring the provider's precise function. The configured constant is a
// fallback only: a fixed-epoch ayanamsa accumulates error over decades.
// Transport failures still abort, so a flaky provider is not silently
// papered over with the approximation.
func ResolveAyanamsa(ctx context.Context, eph Ephemeris, jd, fallback float64) (float64, error) {
	value, err := eph.Ayanamsa(ctx, jd)
	if err == nil {
		return value, nil
	}

	var unavailable *EphemerisUnavailableError
	if errors.As(err, &unavailable) {
		return 0, err
	}

	if fallback > 0 {
		return fallback, nil
	}
	return 0, fmt.Errorf("ayanamsa: %w", err)
}
