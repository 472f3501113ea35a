package astro

import "jyotish-platform/internal/models"

// Division factors for the two harmonic charts carried on every birth chart:
// the navamsa (marriage indicator) and dasamsa (career indicator).
const (
	NavamsaFactor = 9
	DasamsaFactor = 10
)

// Divisional chart labels as persisted
const (
	NavamsaLabel = "D9"
	DasamsaLabel = "D10"
)

// ComputeDivisionalChart derives a harmonic chart from the main positions:
// each longitude is multiplied by the division factor modulo 360 and the
// sign derived from the result. Purely multiplicative, with no house
// recomputation and no ephemeris queries, so re-deriving from the same main
// longitudes always yields the same chart.
func ComputeDivisionalChart(label string, factor int, positions map[models.Planet]*models.PlanetaryPosition) *models.DivisionalChart {
	chart := &models.DivisionalChart{
		Label:     label,
		Factor:    factor,
		Positions: make(map[models.Planet]models.DivisionalPosition, len(positions)),
	}

	for planet, pos := range positions {
		derived := NormalizeLongitude(pos.Longitude * float64(factor))
		chart.Positions[planet] = models.DivisionalPosition{
			Longitude: derived,
			Sign:      SignFromLongitude(derived),
		}
	}

	return chart
}
