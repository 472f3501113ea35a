// Package ephemeris adapts a remote ephemeris service to the engine's
// provider interface. The astronomical model lives entirely on the service
// side; this client only moves numbers and translates error codes into the
// engine's typed error kinds.
package ephemeris

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"jyotish-platform/internal/astro"
	"jyotish-platform/pkg/logging"
	"jyotish-platform/pkg/metrics"
)

// Error codes the ephemeris service reports in its JSON error body
const (
	codeOutOfRange        = "out_of_range"
	codeGeometryUndefined = "geometry_undefined"
)

// Client talks to the ephemeris service over HTTP. Implements astro.Ephemeris.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewClient creates an ephemeris service client
func NewClient(baseURL string, timeout time.Duration, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metricsCollector,
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type julianDayResponse struct {
	JulianDay float64 `json:"julian_day"`
}

type longitudeResponse struct {
	Longitude float64 `json:"longitude"`
}

type housesResponse struct {
	Cusps []float64 `json:"cusps"`
	Asc   float64   `json:"asc"`
	MC    float64   `json:"mc"`
}

type ayanamsaResponse struct {
	Ayanamsa float64 `json:"ayanamsa"`
}

// JulianDay converts a UT calendar date to a Julian Day via the service
func (c *Client) JulianDay(ctx context.Context, year, month, day int, hourUT float64) (float64, error) {
	params := url.Values{}
	params.Set("year", strconv.Itoa(year))
	params.Set("month", strconv.Itoa(month))
	params.Set("day", strconv.Itoa(day))
	params.Set("hour", strconv.FormatFloat(hourUT, 'f', -1, 64))

	var resp julianDayResponse
	if err := c.get(ctx, "julian_day", "/api/v1/julian-day", params, &resp, 0, ""); err != nil {
		return 0, err
	}
	return resp.JulianDay, nil
}

// PlanetLongitude returns the tropical longitude of a body at the instant
func (c *Client) PlanetLongitude(ctx context.Context, jd float64, body int) (float64, error) {
	params := url.Values{}
	params.Set("jd", strconv.FormatFloat(jd, 'f', -1, 64))
	params.Set("body", strconv.Itoa(body))

	var resp longitudeResponse
	if err := c.get(ctx, "planet_longitude", "/api/v1/longitude", params, &resp, 0, ""); err != nil {
		return 0, err
	}
	return resp.Longitude, nil
}

// Houses returns the 12 house cusps plus Ascendant and Midheaven
func (c *Client) Houses(ctx context.Context, jd, lat, lon float64, system astro.HouseSystem) (cusps [12]float64, asc, mc float64, err error) {
	params := url.Values{}
	params.Set("jd", strconv.FormatFloat(jd, 'f', -1, 64))
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("system", string(system))

	var resp housesResponse
	if err = c.get(ctx, "houses", "/api/v1/houses", params, &resp, lat, system); err != nil {
		return cusps, 0, 0, err
	}

	if len(resp.Cusps) < 12 {
		return cusps, 0, 0, fmt.Errorf("ephemeris returned %d cusps, expected 12", len(resp.Cusps))
	}
	copy(cusps[:], resp.Cusps[:12])
	return cusps, resp.Asc, resp.MC, nil
}

// Ayanamsa returns the service's precise sidereal correction for the instant
func (c *Client) Ayanamsa(ctx context.Context, jd float64) (float64, error) {
	params := url.Values{}
	params.Set("jd", strconv.FormatFloat(jd, 'f', -1, 64))

	var resp ayanamsaResponse
	if err := c.get(ctx, "ayanamsa", "/api/v1/ayanamsa", params, &resp, 0, ""); err != nil {
		return 0, err
	}
	return resp.Ayanamsa, nil
}

// get performs a GET against the service and decodes the response, mapping
// transport failures and service error codes to the engine's error kinds.
// lat and system are carried through only to populate GeometryUndefined.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, dest interface{}, lat float64, system astro.HouseSystem) error {
	timer := time.Now()
	defer func() {
		c.metrics.EphemerisRequestDuration.WithLabelValues(op).Observe(time.Since(timer).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("ephemeris: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordEphemerisError("transport")
		return &astro.EphemerisUnavailableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		c.metrics.RecordEphemerisError("server_error")
		return &astro.EphemerisUnavailableError{
			Op:  op,
			Err: fmt.Errorf("ephemeris service returned status %d", resp.StatusCode),
		}
	}

	if resp.StatusCode != http.StatusOK {
		var body errorBody
		if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr != nil {
			c.metrics.RecordEphemerisError("bad_response")
			return fmt.Errorf("ephemeris: status %d with undecodable body", resp.StatusCode)
		}

		switch body.Error {
		case codeOutOfRange:
			c.metrics.RecordEphemerisError("out_of_range")
			return &astro.OutOfRangeError{Detail: body.Message}
		case codeGeometryUndefined:
			c.metrics.RecordEphemerisError("geometry_undefined")
			return &astro.GeometryUndefinedError{Latitude: lat, System: system}
		default:
			c.metrics.RecordEphemerisError("unexpected")
			return fmt.Errorf("ephemeris: %s: %s", body.Error, body.Message)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		c.metrics.RecordEphemerisError("bad_response")
		return fmt.Errorf("ephemeris: decode %s response: %w", op, err)
	}

	c.logger.Debug(ctx, "[EPHEMERIS_REQUEST] Request completed", logging.Fields{
		"operation":   op,
		"duration_ms": time.Since(timer).Milliseconds(),
	})

	return nil
}
