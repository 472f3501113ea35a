package ephemeris

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jyotish-platform/internal/astro"
	"jyotish-platform/pkg/logging"
	"jyotish-platform/pkg/metrics"
)

// Shared test fixtures. The collector registers with the default prometheus
// registry, so it is created exactly once for the test binary.
var (
	testLogger  = logging.NewStructuredLogger("ephemeris-test", "test", logging.FatalLevel)
	testMetrics = metrics.NewCollector("jyotish_ephemeris_test")
)

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, 5*time.Second, testLogger, testMetrics)
}

func TestClient_JulianDay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/julian-day" {
			t.Errorf("path = %q, want /api/v1/julian-day", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("year") != "1990" || q.Get("month") != "5" || q.Get("day") != "15" {
			t.Errorf("date params = %s-%s-%s, want 1990-5-15", q.Get("year"), q.Get("month"), q.Get("day"))
		}
		if q.Get("hour") != "5" {
			t.Errorf("hour = %q, want 5", q.Get("hour"))
		}
		json.NewEncoder(w).Encode(map[string]float64{"julian_day": 2448026.708333})
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).JulianDay(context.Background(), 1990, 5, 15, 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2448026.708333 {
		t.Errorf("JulianDay = %v, want 2448026.708333", got)
	}
}

func TestClient_PlanetLongitude(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/longitude" {
			t.Errorf("path = %q, want /api/v1/longitude", r.URL.Path)
		}
		if got := r.URL.Query().Get("body"); got != "11" {
			t.Errorf("body = %q, want 11", got)
		}
		json.NewEncoder(w).Encode(map[string]float64{"longitude": 124.18})
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).PlanetLongitude(context.Background(), 2448026.708333, 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 124.18 {
		t.Errorf("PlanetLongitude = %v, want 124.18", got)
	}
}

func TestClient_Houses(t *testing.T) {
	wantCusps := []float64{350, 20, 50, 80, 110, 140, 170, 200, 230, 260, 290, 320}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("system"); got != "P" {
			t.Errorf("system = %q, want P", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"cusps": wantCusps,
			"asc":   350.0,
			"mc":    260.0,
		})
	}))
	defer server.Close()

	cusps, asc, mc, err := newTestClient(server.URL).Houses(context.Background(), 2448026.708333, 28.61, 77.21, astro.Placidus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range wantCusps {
		if cusps[i] != want {
			t.Errorf("cusps[%d] = %v, want %v", i, cusps[i], want)
		}
	}
	if asc != 350 || mc != 260 {
		t.Errorf("asc, mc = %v, %v, want 350, 260", asc, mc)
	}
}

func TestClient_Houses_ShortCuspArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"cusps": []float64{1, 2, 3}, "asc": 0, "mc": 0})
	}))
	defer server.Close()

	if _, _, _, err := newTestClient(server.URL).Houses(context.Background(), 2448026.708333, 28.61, 77.21, astro.Placidus); err == nil {
		t.Fatal("expected error for short cusp array, got nil")
	}
}

func TestClient_Ayanamsa(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/ayanamsa" {
			t.Errorf("path = %q, want /api/v1/ayanamsa", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]float64{"ayanamsa": 24.2112})
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).Ayanamsa(context.Background(), 2448026.708333)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 24.2112 {
		t.Errorf("Ayanamsa = %v, want 24.2112", got)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		check      func(t *testing.T, err error)
	}{
		{
			name:   "out_of_range code maps to OutOfRangeError",
			status: http.StatusBadRequest,
			body:   `{"error": "out_of_range", "message": "year -20000 unsupported"}`,
			check: func(t *testing.T, err error) {
				var outOfRange *astro.OutOfRangeError
				if !errors.As(err, &outOfRange) {
					t.Errorf("error = %v, want *OutOfRangeError", err)
				}
			},
		},
		{
			name:   "geometry_undefined code maps to GeometryUndefinedError",
			status: http.StatusUnprocessableEntity,
			body:   `{"error": "geometry_undefined", "message": "placidus undefined at 89.9"}`,
			check: func(t *testing.T, err error) {
				var geometry *astro.GeometryUndefinedError
				if !errors.As(err, &geometry) {
					t.Errorf("error = %v, want *GeometryUndefinedError", err)
				}
			},
		},
		{
			name:   "5xx maps to EphemerisUnavailableError",
			status: http.StatusBadGateway,
			body:   `oops`,
			check: func(t *testing.T, err error) {
				var unavailable *astro.EphemerisUnavailableError
				if !errors.As(err, &unavailable) {
					t.Errorf("error = %v, want *EphemerisUnavailableError", err)
				}
				if !unavailable.IsTransient() {
					t.Error("5xx failure should be transient")
				}
			},
		},
		{
			name:   "unknown error code stays a plain error",
			status: http.StatusBadRequest,
			body:   `{"error": "weird", "message": "what"}`,
			check: func(t *testing.T, err error) {
				var unavailable *astro.EphemerisUnavailableError
				if errors.As(err, &unavailable) {
					t.Error("unknown code must not map to transient unavailability")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, _, _, err := newTestClient(server.URL).Houses(context.Background(), 2448026.708333, 89.9, 0, astro.Placidus)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			tt.check(t, err)
		})
	}
}

// TestClient_TransportFailure exercises the connection-refused path by
// pointing the client at a closed server
func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := newTestClient(server.URL).Ayanamsa(context.Background(), 2448026.708333)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var unavailable *astro.EphemerisUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("error = %v, want *EphemerisUnavailableError", err)
	}
	if unavailable.Op != "ayanamsa" {
		t.Errorf("Op = %q, want ayanamsa", unavailable.Op)
	}
}
