package astro

import "fmt"

// InvalidTimeZoneError indicates an unrecognized time-zone identifier.
// Caller data problem; never retried.
type InvalidTimeZoneError struct {
	Zone string
}

func (e *InvalidTimeZoneError) Error() string {
	return fmt.Sprintf("invalid time zone: %q", e.Zone)
}

// IsTransient returns false as the zone identifier will not become valid on retry
func (e *InvalidTimeZoneError) IsTransient() bool {
	return false
}

// OutOfRangeError indicates a date outside the ephemeris provider's
// supported coverage.
type OutOfRangeError struct {
	Detail string
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("date outside ephemeris coverage: %s", e.Detail)
}

func (e *OutOfRangeError) IsTransient() bool {
	return false
}

// GeometryUndefinedError indicates the house system is degenerate for the
// given location, e.g. Placidus near the poles. Surfaced, never defaulted.
type GeometryUndefinedError struct {
	Latitude float64
	System   HouseSystem
}

func (e *GeometryUndefinedError) Error() string {
	return fmt.Sprintf("house geometry undefined for system %q at latitude %.4f", string(e.System), e.Latitude)
}

func (e *GeometryUndefinedError) IsTransient() bool {
	return false
}

// InconsistentHouseDataError indicates no house interval matched a planet
// longitude, which means the cusp data is malformed. Fatal for the chart.
type InconsistentHouseDataError struct {
	Longitude float64
}

func (e *InconsistentHouseDataError) Error() string {
	return fmt.Sprintf("no house matched longitude %.4f: malformed cusp data", e.Longitude)
}

func (e *InconsistentHouseDataError) IsTransient() bool {
	return false
}

// EphemerisUnavailableError wraps a transport failure talking to the
// ephemeris provider. The only transient error kind in the engine.
type EphemerisUnavailableError struct {
	Op  string
	Err error
}

func (e *EphemerisUnavailableError) Error() string {
	return fmt.Sprintf("ephemeris unavailable during %s: %v", e.Op, e.Err)
}

func (e *EphemerisUnavailableError) IsTransient() bool {
	return true
}

func (e *EphemerisUnavailableError) Unwrap() error {
	return e.Err
}
