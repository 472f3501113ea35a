package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"jyotish-platform/internal/models"
	"jyotish-platform/pkg/logging"
	"jyotish-platform/pkg/metrics"
)

// Redis key prefixes for the two lookup kinds
const (
	geocodeKeyPrefix  = "geo:place:"
	timezoneKeyPrefix = "geo:tz:"
)

// CachedGeocoder wraps a Geocoder with a redis read-through cache. Place
// names are normalized before keying so "Delhi" and " delhi " share an
// entry. Negative results are not cached: a place missing today may be a
// typo the user corrects next request.
type CachedGeocoder struct {
	inner   Geocoder
	rdb     *goredis.Client
	ttl     time.Duration
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewCachedGeocoder wraps a geocoder with a redis cache
func NewCachedGeocoder(inner Geocoder, rdb *goredis.Client, ttl time.Duration, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		rdb:     rdb,
		ttl:     ttl,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Resolve returns the cached coordinates for a place, falling through to
// the wrapped geocoder on a miss. Cache failures degrade to the inner
// lookup rather than failing the request.
func (c *CachedGeocoder) Resolve(ctx context.Context, place string) (models.GeoCoordinate, error) {
	key := geocodeKeyPrefix + normalizePlace(place)

	if data, err := c.rdb.Get(ctx, key).Result(); err == nil {
		var coord models.GeoCoordinate
		if json.Unmarshal([]byte(data), &coord) == nil {
			c.metrics.RecordGeoCacheHit("geocode")
			return coord, nil
		}
	}
	c.metrics.RecordGeoCacheMiss("geocode")

	coord, err := c.inner.Resolve(ctx, place)
	if err != nil {
		return models.GeoCoordinate{}, err
	}

	if data, err := json.Marshal(coord); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn(ctx, "[GEO_CACHE_WARNING] Failed to cache geocode result", logging.Fields{
				"place": place,
				"error": err.Error(),
			})
		}
	}

	return coord, nil
}

// CachedTimezoneResolver wraps a TimezoneResolver with a redis read-through
// cache keyed by rounded coordinates. Four decimal places (~11m) is far
// finer than any timezone boundary.
type CachedTimezoneResolver struct {
	inner   TimezoneResolver
	rdb     *goredis.Client
	ttl     time.Duration
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewCachedTimezoneResolver wraps a timezone resolver with a redis cache
func NewCachedTimezoneResolver(inner TimezoneResolver, rdb *goredis.Client, ttl time.Duration, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *CachedTimezoneResolver {
	return &CachedTimezoneResolver{
		inner:   inner,
		rdb:     rdb,
		ttl:     ttl,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Lookup returns the cached zone for the coordinates, falling through to
// the wrapped resolver on a miss
func (c *CachedTimezoneResolver) Lookup(ctx context.Context, lat, lon float64) (string, error) {
	key := fmt.Sprintf("%s%.4f:%.4f", timezoneKeyPrefix, lat, lon)

	if zone, err := c.rdb.Get(ctx, key).Result(); err == nil && zone != "" {
		c.metrics.RecordGeoCacheHit("timezone")
		return zone, nil
	}
	c.metrics.RecordGeoCacheMiss("timezone")

	zone, err := c.inner.Lookup(ctx, lat, lon)
	if err != nil {
		return "", err
	}

	if err := c.rdb.Set(ctx, key, zone, c.ttl).Err(); err != nil {
		c.logger.Warn(ctx, "[GEO_CACHE_WARNING] Failed to cache timezone result", logging.Fields{
			"latitude":  lat,
			"longitude": lon,
			"error":     err.Error(),
		})
	}

	return zone, nil
}

// normalizePlace canonicalizes a place name for cache keying
func normalizePlace(place string) string {
	return strings.ToLower(strings.Join(strings.Fields(place), " "))
}
