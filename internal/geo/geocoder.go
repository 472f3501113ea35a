// Package geo provides the geocoding and timezone-resolution collaborators
// consumed when turning a birth place into coordinates and a civil zone.
// Both are external services specified at their interface boundary; redis
// read-through caches sit in front of them since birth places repeat heavily.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"jyotish-platform/internal/models"
	"jyotish-platform/pkg/logging"
	"jyotish-platform/pkg/metrics"
)

// Geocoder resolves a free-text place name to geographic coordinates
type Geocoder interface {
	Resolve(ctx context.Context, place string) (models.GeoCoordinate, error)
}

// PlaceNotFoundError indicates the geocoder found no match for a place name
type PlaceNotFoundError struct {
	Place string
}

func (e *PlaceNotFoundError) Error() string {
	return fmt.Sprintf("place not found: %q", e.Place)
}

func (e *PlaceNotFoundError) IsTransient() bool {
	return false
}

// NominatimClient is a Geocoder backed by a Nominatim-compatible search API
type NominatimClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    *logging.StructuredLogger
	metrics   *metrics.Collector
}

// NewNominatimClient creates a geocoder client. Nominatim's usage policy
// requires an identifying User-Agent.
func NewNominatimClient(baseURL, userAgent string, timeout time.Duration, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *NominatimClient {
	return &NominatimClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		client: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metricsCollector,
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve looks up the coordinates of a place name. An empty result set is
// a PlaceNotFoundError; transport failures propagate as plain errors for
// the caller's retry policy to judge.
func (g *NominatimClient) Resolve(ctx context.Context, place string) (models.GeoCoordinate, error) {
	timer := time.Now()
	defer func() {
		g.metrics.GeocodeRequestDuration.Observe(time.Since(timer).Seconds())
	}()

	params := url.Values{}
	params.Set("q", place)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return models.GeoCoordinate{}, fmt.Errorf("geocoder: create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return models.GeoCoordinate{}, fmt.Errorf("geocoder: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.GeoCoordinate{}, fmt.Errorf("geocoder: unexpected status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return models.GeoCoordinate{}, fmt.Errorf("geocoder: decode response: %w", err)
	}

	if len(results) == 0 {
		return models.GeoCoordinate{}, &PlaceNotFoundError{Place: place}
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return models.GeoCoordinate{}, fmt.Errorf("geocoder: invalid latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return models.GeoCoordinate{}, fmt.Errorf("geocoder: invalid longitude %q: %w", results[0].Lon, err)
	}

	coord := models.GeoCoordinate{Latitude: lat, Longitude: lon}

	g.logger.Debug(ctx, "[GEOCODE] Place resolved", logging.Fields{
		"place":     place,
		"latitude":  lat,
		"longitude": lon,
	})

	return coord, nil
}
