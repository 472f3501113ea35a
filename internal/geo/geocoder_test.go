package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jyotish-platform/pkg/logging"
	"jyotish-platform/pkg/metrics"
)

// Shared test fixtures. The collector registers with the default prometheus
// registry, so it is created exactly once for the test binary.
var (
	testLogger  = logging.NewStructuredLogger("geo-test", "test", logging.FatalLevel)
	testMetrics = metrics.NewCollector("jyotish_geo_test")
)

func TestNominatimClient_Resolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("format = %q, want json", got)
		}
		if got := r.Header.Get("User-Agent"); got != "jyotish-test" {
			t.Errorf("User-Agent = %q, want jyotish-test", got)
		}

		switch r.URL.Query().Get("q") {
		case "New Delhi, India":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"lat": "28.6139", "lon": "77.2090"}]`))
		default:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	client := NewNominatimClient(server.URL, "jyotish-test", 5*time.Second, testLogger, testMetrics)

	t.Run("known place", func(t *testing.T) {
		coord, err := client.Resolve(context.Background(), "New Delhi, India")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if coord.Latitude != 28.6139 {
			t.Errorf("Latitude = %v, want 28.6139", coord.Latitude)
		}
		if coord.Longitude != 77.2090 {
			t.Errorf("Longitude = %v, want 77.2090", coord.Longitude)
		}
	})

	t.Run("unknown place", func(t *testing.T) {
		_, err := client.Resolve(context.Background(), "Xyzzyville")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		var notFound *PlaceNotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("error = %v, want *PlaceNotFoundError", err)
		}
		if notFound.Place != "Xyzzyville" {
			t.Errorf("Place = %q, want Xyzzyville", notFound.Place)
		}
		if notFound.IsTransient() {
			t.Error("PlaceNotFoundError should not be transient")
		}
	})
}

func TestNominatimClient_Resolve_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewNominatimClient(server.URL, "jyotish-test", 5*time.Second, testLogger, testMetrics)

	_, err := client.Resolve(context.Background(), "New Delhi, India")
	if err == nil {
		t.Fatal("expected error for 502 response, got nil")
	}

	var notFound *PlaceNotFoundError
	if errors.As(err, &notFound) {
		t.Error("server failure must not be reported as place-not-found")
	}
}

func TestTimezoneClient_Lookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/timezone" {
			t.Errorf("path = %q, want /timezone", r.URL.Path)
		}
		if got := r.URL.Query().Get("lat"); got != "28.6139" {
			t.Errorf("lat = %q, want 28.6139", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"timezone": "Asia/Kolkata"}`))
	}))
	defer server.Close()

	client := NewTimezoneClient(server.URL, 5*time.Second, testLogger)

	zone, err := client.Lookup(context.Background(), 28.6139, 77.209)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zone != "Asia/Kolkata" {
		t.Errorf("zone = %q, want Asia/Kolkata", zone)
	}
}

func TestTimezoneClient_Lookup_EmptyZone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"timezone": ""}`))
	}))
	defer server.Close()

	client := NewTimezoneClient(server.URL, 5*time.Second, testLogger)

	if _, err := client.Lookup(context.Background(), 0, 0); err == nil {
		t.Fatal("expected error for empty zone, got nil")
	}
}

func TestNormalizePlace(t *testing.T) {
	tests := []struct {
		name  string
		place string
		want  string
	}{
		{name: "lowercased", place: "New Delhi", want: "new delhi"},
		{name: "surrounding whitespace stripped", place: "  Mumbai  ", want: "mumbai"},
		{name: "inner whitespace collapsed", place: "New   Delhi,   India", want: "new delhi, india"},
		{name: "already canonical", place: "pune", want: "pune"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizePlace(tt.place); got != tt.want {
				t.Errorf("normalizePlace(%q) = %q, want %q", tt.place, got, tt.want)
			}
		})
	}
}
