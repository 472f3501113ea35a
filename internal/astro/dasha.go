package astro

import (
	"math"

	"jyotish-platform/internal/models"
)

// VimshottariTotalYears is the full cycle length; the period table below
// always sums to it.
const VimshottariTotalYears = 120.0

// Vimshottari lords in cyclic order with their period lengths in years.
// The ruling lord at birth is the entry at (Moon nakshatra index mod 9).
var (
	dashaLords = [9]models.Planet{
		models.Ketu, models.Venus, models.Sun, models.Moon, models.Mars,
		models.Rahu, models.Jupiter, models.Saturn, models.Mercury,
	}
	dashaYears = [9]float64{7, 20, 6, 10, 7, 18, 16, 19, 17}
)

// ComputeDasha builds the Vimshottari snapshot from the Moon's sidereal
// longitude at birth. The fraction of the birth nakshatra already traversed
// determines how much of the ruling period has elapsed; the sequence is the
// full nine-period cycle starting from the ruling lord. Valid as a snapshot
// at the birth instant only; sub-periods are not modeled.
func ComputeDasha(moonLongitude float64) *models.DashaSnapshot {
	l := NormalizeLongitude(moonLongitude)

	nakshatraIndex := int(l / NakshatraSpan)
	if nakshatraIndex > 26 {
		nakshatraIndex = 26
	}
	start := nakshatraIndex % 9

	portion := math.Mod(l, NakshatraSpan) / NakshatraSpan
	elapsed := dashaYears[start] * portion

	sequence := make([]models.DashaPeriod, 9)
	for i := 0; i < 9; i++ {
		idx := (start + i) % 9
		sequence[i] = models.DashaPeriod{
			Lord:  dashaLords[idx],
			Years: dashaYears[idx],
		}
	}

	return &models.DashaSnapshot{
		Current:        dashaLords[start],
		ElapsedYears:   elapsed,
		RemainingYears: dashaYears[start] - elapsed,
		Sequence:       sequence,
	}
}
