package astro

import "context"

// HouseSystem selects the house-division method the ephemeris provider
// applies. Codes follow the provider convention.
type HouseSystem string

const (
	Placidus HouseSystem = "P"
	Koch     HouseSystem = "K"
	Equal    HouseSystem = "E"
)

// Valid reports whether the system code is a recognized option
func (h HouseSystem) Valid() bool {
	switch h {
	case Placidus, Koch, Equal:
		return true
	}
	return false
}

// Ephemeris is the positional-astronomy collaborator. The engine consumes
// it as a black box: raw tropical longitudes and house geometry in, no
// astronomical model implemented here.
//
// Implementations must return *OutOfRangeError for dates outside their
// coverage, *GeometryUndefinedError for degenerate house geometry, and
// *EphemerisUnavailableError for transport failures.
type Ephemeris interface {
	// JulianDay converts a UT calendar date plus fractional hour to a Julian Day
	JulianDay(ctx context.Context, year, month, day int, hourUT float64) (float64, error)

	// PlanetLongitude returns the tropical ecliptic longitude of a body,
	// identified by its provider body code, in [0,360)
	PlanetLongitude(ctx context.Context, jd float64, body int) (float64, error)

	// Houses returns the 12 house cusps plus Ascendant and Midheaven for
	// the given instant and location under the requested house system
	Houses(ctx context.Context, jd, lat, lon float64, system HouseSystem) (cusps [12]float64, asc, mc float64, err error)

	// Ayanamsa returns the provider's precise sidereal correction for the
	// instant. Providers without one should return an error so the engine
	// can fall back to its configured constant.
	Ayanamsa(ctx context.Context, jd float64) (float64, error)
}
