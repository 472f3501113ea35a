package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig holds the geo-lookup cache settings
type RedisConfig struct {
	Addr     string
	Password string
	CacheTTL time.Duration
}

// EphemerisConfig holds the ephemeris service client settings
type EphemerisConfig struct {
	BaseURL string
	Timeout time.Duration
}

// GeocoderConfig holds the geocoder client settings
type GeocoderConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// TimezoneConfig holds the timezone resolver client settings
type TimezoneConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ChartConfig holds chart engine options
type ChartConfig struct {
	// HouseSystem is the house-division method code: P (Placidus),
	// K (Koch), or E (Equal)
	HouseSystem string

	// AyanamsaFallback is the fixed sidereal correction used only when the
	// ephemeris provider cannot supply its precise value. Lahiri for the
	// modern era; drifts over decades, so provider values are preferred.
	AyanamsaFallback float64
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// Config is the full application configuration, loaded from environment
// variables with development defaults
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Ephemeris EphemerisConfig
	Geocoder  GeocoderConfig
	Timezone  TimezoneConfig
	Chart     ChartConfig
	Logging   LoggingConfig
}

// LoadConfig reads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "jyotish"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "jyotish"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			CacheTTL: getEnvDuration("GEO_CACHE_TTL", 30*24*time.Hour),
		},
		Ephemeris: EphemerisConfig{
			BaseURL: getEnv("EPHEMERIS_BASE_URL", "http://localhost:8090"),
			Timeout: getEnvDuration("EPHEMERIS_TIMEOUT", 10*time.Second),
		},
		Geocoder: GeocoderConfig{
			BaseURL:   getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
			UserAgent: getEnv("GEOCODER_USER_AGENT", "jyotish-platform"),
			Timeout:   getEnvDuration("GEOCODER_TIMEOUT", 10*time.Second),
		},
		Timezone: TimezoneConfig{
			BaseURL: getEnv("TIMEZONE_BASE_URL", "http://localhost:8091"),
			Timeout: getEnvDuration("TIMEZONE_TIMEOUT", 10*time.Second),
		},
		Chart: ChartConfig{
			HouseSystem:      getEnv("CHART_HOUSE_SYSTEM", "P"),
			AyanamsaFallback: getEnvFloat("CHART_AYANAMSA_FALLBACK", 24.18),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Validate checks the configuration for values that would fail at runtime
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("db max open conns must be positive, got %d", c.Database.MaxOpenConns)
	}
	if c.Ephemeris.BaseURL == "" {
		return fmt.Errorf("ephemeris base URL is required")
	}
	if c.Geocoder.BaseURL == "" {
		return fmt.Errorf("geocoder base URL is required")
	}
	if c.Timezone.BaseURL == "" {
		return fmt.Errorf("timezone base URL is required")
	}
	switch c.Chart.HouseSystem {
	case "P", "K", "E":
	default:
		return fmt.Errorf("unrecognized house system %q, expected P, K, or E", c.Chart.HouseSystem)
	}
	if c.Chart.AyanamsaFallback < 0 || c.Chart.AyanamsaFallback >= 360 {
		return fmt.Errorf("ayanamsa fallback %f out of range", c.Chart.AyanamsaFallback)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
