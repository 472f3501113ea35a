package models

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Planet identifies one of the nine classical bodies of the sidereal chart.
// Rahu is the lunar north node; Ketu is the shadow point opposite it and is
// always derived, never computed independently.
type Planet int

const (
	Sun Planet = iota
	Moon
	Mars
	Mercury
	Jupiter
	Venus
	Saturn
	Rahu
	Ketu
)

// Planets lists all nine bodies in their canonical order.
var Planets = [9]Planet{Sun, Moon, Mars, Mercury, Jupiter, Venus, Saturn, Rahu, Ketu}

var planetNames = [...]string{
	Sun:     "Sun",
	Moon:    "Moon",
	Mars:    "Mars",
	Mercury: "Mercury",
	Jupiter: "Jupiter",
	Venus:   "Venus",
	Saturn:  "Saturn",
	Rahu:    "Rahu",
	Ketu:    "Ketu",
}

// String returns the planet name
func (p Planet) String() string {
	if p < Sun || p > Ketu {
		return "Unknown"
	}
	return planetNames[p]
}

// MarshalText serializes the planet as its name, so planet-keyed maps
// round-trip through JSON with readable keys
func (p Planet) MarshalText() ([]byte, error) {
	if p < Sun || p > Ketu {
		return nil, fmt.Errorf("invalid planet value %d", int(p))
	}
	return []byte(planetNames[p]), nil
}

// UnmarshalText parses a planet name
func (p *Planet) UnmarshalText(text []byte) error {
	name := string(text)
	for i, n := range planetNames {
		if n == name {
			*p = Planet(i)
			return nil
		}
	}
	return fmt.Errorf("unknown planet %q", name)
}

// Sign identifies one of the 12 zodiac signs, each spanning exactly 30 degrees
// of sidereal longitude, 0-indexed from Aries.
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [...]string{
	Aries:       "Aries",
	Taurus:      "Taurus",
	Gemini:      "Gemini",
	Cancer:      "Cancer",
	Leo:         "Leo",
	Virgo:       "Virgo",
	Libra:       "Libra",
	Scorpio:     "Scorpio",
	Sagittarius: "Sagittarius",
	Capricorn:   "Capricorn",
	Aquarius:    "Aquarius",
	Pisces:      "Pisces",
}

// String returns the sign name
func (s Sign) String() string {
	if s < Aries || s > Pisces {
		return "Unknown"
	}
	return signNames[s]
}

// MarshalText serializes the sign as its name
func (s Sign) MarshalText() ([]byte, error) {
	if s < Aries || s > Pisces {
		return nil, fmt.Errorf("invalid sign value %d", int(s))
	}
	return []byte(signNames[s]), nil
}

// UnmarshalText parses a sign name
func (s *Sign) UnmarshalText(text []byte) error {
	name := string(text)
	for i, n := range signNames {
		if n == name {
			*s = Sign(i)
			return nil
		}
	}
	return fmt.Errorf("unknown sign %q", name)
}

// NakshatraNames lists the 27 lunar mansions in order, each spanning
// 13°20' of sidereal longitude.
var NakshatraNames = [27]string{
	"Ashwini", "Bharani", "Krittika", "Rohini", "Mrigashira", "Ardra",
	"Punarvasu", "Pushya", "Ashlesha", "Magha", "Purva Phalguni", "Uttara Phalguni",
	"Hasta", "Chitra", "Swati", "Vishakha", "Anuradha", "Jyeshta",
	"Mula", "Purva Ashadha", "Uttara Ashadha", "Shravana", "Dhanishta",
	"Shatabhisha", "Purva Bhadrapada", "Uttara Bhadrapada", "Revati",
}

// Nakshatra is a lunar-mansion placement: mansion index 0-26 plus the
// quarter (pada 1-4) within it.
type Nakshatra struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Pada  int    `json:"pada"`
}

// GeoCoordinate is a geographic position in decimal degrees
type GeoCoordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Instant is the astronomical timestamp of a chart: Julian Day in UT with
// fractional-day precision, plus the resolved UTC wall time for reference.
type Instant struct {
	JulianDay float64   `json:"julian_day"`
	UTC       time.Time `json:"utc"`
}

// HouseCusps holds the 12 house-cusp longitudes in cyclic order plus the
// Ascendant and Midheaven angles. Consecutive cusps may wrap past 360->0
// exactly once under a correctly ordered house system.
type HouseCusps struct {
	Cusps     [12]float64 `json:"cusps"`
	Ascendant float64     `json:"asc"`
	Midheaven float64     `json:"mc"`
}

// PlanetaryPosition is one body's placement in the main chart. House is
// 1-12 once assigned, 0 until house assignment has run.
type PlanetaryPosition struct {
	Planet    Planet    `json:"planet"`
	Longitude float64   `json:"longitude"`
	Sign      Sign      `json:"sign"`
	Nakshatra Nakshatra `json:"nakshatra"`
	House     int       `json:"house,omitempty"`
}

// DivisionalPosition is a body's placement in a harmonic chart. Houses are
// never recomputed for divisional charts.
type DivisionalPosition struct {
	Longitude float64 `json:"longitude"`
	Sign      Sign    `json:"sign"`
}

// DivisionalChart is a harmonic subdivision of the main chart, derived by
// multiplying each main longitude by the division factor modulo 360.
type DivisionalChart struct {
	Label     string                        `json:"label"`
	Factor    int                           `json:"factor"`
	Positions map[Planet]DivisionalPosition `json:"positions"`
}

// DashaPeriod is one planetary period in the Vimshottari cycle
type DashaPeriod struct {
	Lord  Planet  `json:"lord"`
	Years float64 `json:"years"`
}

// DashaSnapshot is the planetary-period state at the birth instant: the
// ruling planet, progress within its period, and the full 120-year cycle
// starting from it. Sub-period nesting is not modeled.
type DashaSnapshot struct {
	Current        Planet        `json:"current_dasha"`
	ElapsedYears   float64       `json:"elapsed_years"`
	RemainingYears float64       `json:"remaining_years"`
	Sequence       []DashaPeriod `json:"sequence"`
}

// BirthChart is the complete, immutable result of a chart computation.
// Any correction to birth details requires recomputing the whole chart.
type BirthChart struct {
	Name             string                        `json:"name"`
	BirthDate        string                        `json:"birth_date"`
	BirthTime        string                        `json:"birth_time"`
	BirthPlace       string                        `json:"birth_place"`
	Coordinates      GeoCoordinate                 `json:"coordinates"`
	Timezone         string                        `json:"timezone"`
	JulianDay        float64                       `json:"julian_day"`
	Houses           *HouseCusps                   `json:"houses"`
	Planets          map[Planet]*PlanetaryPosition `json:"planets"`
	DivisionalCharts map[string]*DivisionalChart   `json:"divisional_charts"`
	Dasha            *DashaSnapshot                `json:"dasha"`
	AscendantSign    Sign                          `json:"ascendant_sign"`
	SunSign          Sign                          `json:"sun_sign"`
	MoonSign         Sign                          `json:"moon_sign"`
}

// ChartRecord is the persisted form of a birth chart: the subject's birth
// details as columns for querying, the full chart as a JSON document.
type ChartRecord struct {
	ID          int64          `json:"id" db:"id"`
	SubjectName string         `json:"subject_name" db:"subject_name"`
	BirthDate   time.Time      `json:"birth_date" db:"birth_date"`
	BirthTime   string         `json:"birth_time" db:"birth_time"`
	BirthPlace  string         `json:"birth_place" db:"birth_place"`
	Latitude    float64        `json:"latitude" db:"latitude"`
	Longitude   float64        `json:"longitude" db:"longitude"`
	Timezone    string         `json:"timezone" db:"timezone"`
	ChartData   types.JSONText `json:"chart_data" db:"chart_data"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}
