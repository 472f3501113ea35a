package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"jyotish-platform/pkg/logging"
)

// TimezoneResolver maps geographic coordinates to an IANA zone identifier
type TimezoneResolver interface {
	Lookup(ctx context.Context, lat, lon float64) (string, error)
}

// TimezoneClient is a TimezoneResolver backed by a coordinate-to-zone HTTP
// service returning {"timezone": "Asia/Kolkata"}
type TimezoneClient struct {
	baseURL string
	client  *http.Client
	logger  *logging.StructuredLogger
}

// NewTimezoneClient creates a timezone resolver client
func NewTimezoneClient(baseURL string, timeout time.Duration, logger *logging.StructuredLogger) *TimezoneClient {
	return &TimezoneClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type timezoneResponse struct {
	Timezone string `json:"timezone"`
}

// Lookup returns the IANA zone identifier for the coordinates
func (t *TimezoneClient) Lookup(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/timezone?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("timezone: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("timezone: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("timezone: unexpected status %d", resp.StatusCode)
	}

	var result timezoneResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("timezone: decode response: %w", err)
	}

	if result.Timezone == "" {
		return "", fmt.Errorf("timezone: empty zone for lat=%.4f lon=%.4f", lat, lon)
	}

	t.logger.Debug(ctx, "[TIMEZONE_LOOKUP] Zone resolved", logging.Fields{
		"latitude":  lat,
		"longitude": lon,
		"timezone":  result.Timezone,
	})

	return result.Timezone, nil
}
