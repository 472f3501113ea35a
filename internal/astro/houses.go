package astro

import (
	"context"

	"jyotish-platform/internal/models"
)

// ComputeHouses requests house cusps and angles from the ephemeris provider
// for the given instant and location. Degenerate geometry (Placidus at the
// poles) surfaces as *GeometryUndefinedError from the provider.
func ComputeHouses(ctx context.Context, eph Ephemeris, jd float64, coord models.GeoCoordinate, system HouseSystem) (*models.HouseCusps, error) {
	cusps, asc, mc, err := eph.Houses(ctx, jd, coord.Latitude, coord.Longitude, system)
	if err != nil {
		return nil, err
	}

	return &models.HouseCusps{
		Cusps:     cusps,
		Ascendant: asc,
		Midheaven: mc,
	}, nil
}

// AssignHouse returns the 1-indexed house containing the longitude. A
// longitude falls in house i when it lies in [cusp[i], cusp[i+1]); at the
// pair where the next cusp wraps past 360 the interval is [cusp[i], 360)
// plus [0, cusp[i+1]). The wrap pair is detected dynamically rather than
// assumed at the 12th-to-1st boundary. Exactly one house matches any
// longitude under well-formed cusps; no match means the cusp data is
// inconsistent.
func AssignHouse(cusps *models.HouseCusps, longitude float64) (int, error) {
	l := NormalizeLongitude(longitude)

	for i := 0; i < 12; i++ {
		cusp := cusps.Cusps[i]
		next := cusps.Cusps[(i+1)%12]

		if next < cusp {
			if l >= cusp || l < next {
				return i + 1, nil
			}
		} else if l >= cusp && l < next {
			return i + 1, nil
		}
	}

	return 0, &InconsistentHouseDataError{Longitude: l}
}

// AssignHouses fills in the house number of every position in place.
// Any single failure aborts: a chart with partially assigned houses is
// never returned.
func AssignHouses(cusps *models.HouseCusps, positions map[models.Planet]*models.PlanetaryPosition) error {
	for _, pos := range positions {
		house, err := AssignHouse(cusps, pos.Longitude)
		if err != nil {
			return err
		}
		pos.House = house
	}
	return nil
}
