package astro

import (
	"context"
	"fmt"
	"time"

	"jyotish-platform/internal/models"
)

// Civil date/time layouts accepted for birth details
const (
	DateLayout        = "2006-01-02"
	TimeLayout        = "15:04"
	TimeLayoutSeconds = "15:04:05"
)

// ParseBirthTime parses a civil time-of-day, with or without seconds
func ParseBirthTime(value string) (time.Time, error) {
	if t, err := time.Parse(TimeLayoutSeconds, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(TimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid birth time %q, expected HH:MM or HH:MM:SS", value)
	}
	return t, nil
}

// ResolveInstant combines a civil date, time-of-day, and IANA zone
// identifier into the astronomical instant of birth. The local wall time is
// converted to UT using the zone's offset at that specific date, so DST
// transitions are honored, then handed to the ephemeris provider's Julian
// Day conversion.
//
// Pure and deterministic: any failure is a caller data problem or an
// out-of-range date, surfaced immediately without retry.
func ResolveInstant(ctx context.Context, eph Ephemeris, birthDate, birthTime, zone string) (*models.Instant, error) {
	date, err := time.Parse(DateLayout, birthDate)
	if err != nil {
		return nil, fmt.Errorf("invalid birth date %q, expected YYYY-MM-DD: %w", birthDate, err)
	}

	clock, err := ParseBirthTime(birthTime)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, &InvalidTimeZoneError{Zone: zone}
	}

	local := time.Date(
		date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0,
		loc,
	)
	utc := local.UTC()

	hour := float64(utc.Hour()) +
		float64(utc.Minute())/60.0 +
		float64(utc.Second())/3600.0

	jd, err := eph.JulianDay(ctx, utc.Year(), int(utc.Month()), utc.Day(), hour)
	if err != nil {
		return nil, err
	}

	return &models.Instant{JulianDay: jd, UTC: utc}, nil
}
