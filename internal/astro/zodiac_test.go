package astro

import (
	"math"
	"testing"

	"jyotish-platform/internal/models"
)

func TestNormalizeLongitude(t *testing.T) {
	tests := []struct {
		name      string
		longitude float64
		want      float64
	}{
		{name: "zero stays zero", longitude: 0, want: 0},
		{name: "full circle wraps to zero", longitude: 360, want: 0},
		{name: "over one circle", longitude: 365, want: 5},
		{name: "over two circles", longitude: 725, want: 5},
		{name: "negative wraps up", longitude: -5, want: 355},
		{name: "large negative wraps up", longitude: -725, want: 355},
		{name: "in range unchanged", longitude: 213.5, want: 213.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLongitude(tt.longitude)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("NormalizeLongitude(%v) = %v, want %v", tt.longitude, got, tt.want)
			}
			if got < 0 || got >= 360 {
				t.Errorf("NormalizeLongitude(%v) = %v, outside [0,360)", tt.longitude, got)
			}
		})
	}
}

func TestSignFromLongitude(t *testing.T) {
	tests := []struct {
		name      string
		longitude float64
		want      models.Sign
	}{
		{name: "start of circle is Aries", longitude: 0, want: models.Aries},
		{name: "just below first boundary", longitude: 29.999, want: models.Aries},
		{name: "first boundary is Taurus", longitude: 30, want: models.Taurus},
		{name: "middle of circle", longitude: 100, want: models.Cancer},
		{name: "top of circle is Pisces", longitude: 359.9, want: models.Pisces},
		{name: "negative longitude normalized first", longitude: -5, want: models.Pisces},
		{name: "whole circle shift maps identically", longitude: 460, want: models.Cancer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SignFromLongitude(tt.longitude); got != tt.want {
				t.Errorf("SignFromLongitude(%v) = %v, want %v", tt.longitude, got, tt.want)
			}
		})
	}
}

func TestNakshatraFromLongitude(t *testing.T) {
	tests := []struct {
		name      string
		longitude float64
		wantIndex int
		wantName  string
		wantPada  int
	}{
		{name: "start of circle", longitude: 0, wantIndex: 0, wantName: "Ashwini", wantPada: 1},
		{name: "last quarter of first mansion", longitude: 13.0, wantIndex: 0, wantName: "Ashwini", wantPada: 4},
		{name: "start of second mansion", longitude: 13.34, wantIndex: 1, wantName: "Bharani", wantPada: 1},
		{name: "deep in Punarvasu", longitude: 93.0, wantIndex: 6, wantName: "Punarvasu", wantPada: 4},
		{name: "top of circle", longitude: 359.99, wantIndex: 26, wantName: "Revati", wantPada: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NakshatraFromLongitude(tt.longitude)
			if got.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d", got.Index, tt.wantIndex)
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if got.Pada != tt.wantPada {
				t.Errorf("Pada = %d, want %d", got.Pada, tt.wantPada)
			}
		})
	}
}

// TestNakshatraFromLongitude_Sweep checks index and pada stay in range over
// the whole circle, including values right at the mansion boundaries
func TestNakshatraFromLongitude_Sweep(t *testing.T) {
	for l := 0.0; l < 360.0; l += 0.1 {
		n := NakshatraFromLongitude(l)
		if n.Index < 0 || n.Index > 26 {
			t.Fatalf("longitude %v: index %d out of range", l, n.Index)
		}
		if n.Pada < 1 || n.Pada > 4 {
			t.Fatalf("longitude %v: pada %d out of range", l, n.Pada)
		}
		if n.Name != models.NakshatraNames[n.Index] {
			t.Fatalf("longitude %v: name %q does not match index %d", l, n.Name, n.Index)
		}
	}
}
