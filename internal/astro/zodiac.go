package astro

import (
	"math"

	"jyotish-platform/internal/models"
)

const (
	// SignSpan is the width of one zodiac sign in degrees
	SignSpan = 30.0

	// NakshatraSpan is the width of one lunar mansion: 13°20'
	NakshatraSpan = 360.0 / 27.0

	// PadaSpan is the width of one nakshatra quarter: 3°20'
	PadaSpan = NakshatraSpan / 4.0
)

// NormalizeLongitude reduces a longitude into [0,360)
func NormalizeLongitude(longitude float64) float64 {
	l := math.Mod(longitude, 360.0)
	if l < 0 {
		l += 360.0
	}
	return l
}

// SignFromLongitude derives the zodiac sign of a longitude. The input is
// normalized first, so longitudes shifted by whole circles map identically.
func SignFromLongitude(longitude float64) models.Sign {
	l := NormalizeLongitude(longitude)
	return models.Sign(int(l / SignSpan))
}

// NakshatraFromLongitude derives the lunar mansion and pada of a longitude
func NakshatraFromLongitude(longitude float64) models.Nakshatra {
	l := NormalizeLongitude(longitude)

	index := int(l / NakshatraSpan)
	if index > 26 {
		// Guard against float rounding at the top of the circle
		index = 26
	}

	pada := int(math.Mod(l, NakshatraSpan)/PadaSpan) + 1
	if pada > 4 {
		pada = 4
	}

	return models.Nakshatra{
		Index: index,
		Name:  models.NakshatraNames[index],
		Pada:  pada,
	}
}
