package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"jyotish-platform/internal/astro"
	"jyotish-platform/internal/geo"
	"jyotish-platform/internal/models"
	"jyotish-platform/internal/repository"
	"jyotish-platform/pkg/logging"
	"jyotish-platform/pkg/metrics"
)

// Shared test fixtures. The collector registers with the default prometheus
// registry, so it is created exactly once for the test binary.
var (
	testLogger  = logging.NewStructuredLogger("services-test", "test", logging.FatalLevel)
	testMetrics = metrics.NewCollector("jyotish_services_test")
)

// fakeEphemeris returns fixed, well-formed astronomy for every call
type fakeEphemeris struct{}

func (fakeEphemeris) JulianDay(ctx context.Context, year, month, day int, hourUT float64) (float64, error) {
	return 2448026.5, nil
}

func (fakeEphemeris) PlanetLongitude(ctx context.Context, jd float64, body int) (float64, error) {
	return astro.NormalizeLongitude(float64(body)*37.0 + 24.18), nil
}

func (fakeEphemeris) Houses(ctx context.Context, jd, lat, lon float64, system astro.HouseSystem) ([12]float64, float64, float64, error) {
	var cusps [12]float64
	for i := range cusps {
		cusps[i] = float64(i) * 30.0
	}
	return cusps, 10.0, 280.0, nil
}

func (fakeEphemeris) Ayanamsa(ctx context.Context, jd float64) (float64, error) {
	return 24.18, nil
}

type fakeGeocoder struct {
	coord models.GeoCoordinate
	err   error
	calls int
}

func (f *fakeGeocoder) Resolve(ctx context.Context, place string) (models.GeoCoordinate, error) {
	f.calls++
	return f.coord, f.err
}

type fakeTimezoneResolver struct {
	zone string
	err  error
}

func (f *fakeTimezoneResolver) Lookup(ctx context.Context, lat, lon float64) (string, error) {
	return f.zone, f.err
}

// fakeChartRepository records upserts in memory
type fakeChartRepository struct {
	records   map[string]*models.ChartRecord
	nextID    int64
	upsertErr error
}

func newFakeChartRepository() *fakeChartRepository {
	return &fakeChartRepository{records: make(map[string]*models.ChartRecord), nextID: 1}
}

func (f *fakeChartRepository) UpsertChart(ctx context.Context, record *models.ChartRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if existing, ok := f.records[record.SubjectName]; ok {
		record.ID = existing.ID
	} else {
		record.ID = f.nextID
		f.nextID++
	}
	f.records[record.SubjectName] = record
	return nil
}

func (f *fakeChartRepository) GetChart(ctx context.Context, id int64) (*models.ChartRecord, error) {
	for _, record := range f.records {
		if record.ID == id {
			return record, nil
		}
	}
	return nil, &repository.NotFoundError{Resource: "birth_chart", ID: fmt.Sprintf("%d", id)}
}

func (f *fakeChartRepository) GetChartBySubject(ctx context.Context, subjectName string) (*models.ChartRecord, error) {
	if record, ok := f.records[subjectName]; ok {
		return record, nil
	}
	return nil, &repository.NotFoundError{Resource: "birth_chart", ID: subjectName}
}

func (f *fakeChartRepository) ListCharts(ctx context.Context, filter repository.ChartFilter) ([]*models.ChartRecord, int, error) {
	var out []*models.ChartRecord
	for _, record := range f.records {
		out = append(out, record)
	}
	return out, len(out), nil
}

func (f *fakeChartRepository) HealthCheck(ctx context.Context) error {
	return nil
}

func newTestService(t *testing.T, geocoder geo.Geocoder, tz geo.TimezoneResolver, repo repository.ChartRepository) *ChartService {
	t.Helper()
	calc, err := astro.NewCalculator(fakeEphemeris{}, astro.Placidus, 24.18, testLogger, testMetrics)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	return NewChartService(calc, geocoder, tz, repo, testLogger, testMetrics)
}

func validRequest() *ChartRequest {
	return &ChartRequest{
		Name:       "Test Subject",
		BirthDate:  "1990-05-15",
		BirthTime:  "10:30",
		BirthPlace: "New Delhi, India",
	}
}

func TestChartRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ChartRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *ChartRequest) {}},
		{name: "valid with seconds", mutate: func(r *ChartRequest) { r.BirthTime = "10:30:45" }},
		{name: "missing name", mutate: func(r *ChartRequest) { r.Name = "  " }, wantErr: true},
		{name: "bad date format", mutate: func(r *ChartRequest) { r.BirthDate = "15/05/1990" }, wantErr: true},
		{name: "bad time", mutate: func(r *ChartRequest) { r.BirthTime = "25:99" }, wantErr: true},
		{name: "missing place", mutate: func(r *ChartRequest) { r.BirthPlace = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			err := req.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestChartService_GenerateChart(t *testing.T) {
	geocoder := &fakeGeocoder{coord: models.GeoCoordinate{Latitude: 28.6139, Longitude: 77.209}}
	tz := &fakeTimezoneResolver{zone: "Asia/Kolkata"}
	repo := newFakeChartRepository()
	svc := newTestService(t, geocoder, tz, repo)

	record, err := svc.GenerateChart(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.ID == 0 {
		t.Error("record ID not assigned")
	}
	if record.SubjectName != "Test Subject" {
		t.Errorf("SubjectName = %q, want Test Subject", record.SubjectName)
	}
	if record.Timezone != "Asia/Kolkata" {
		t.Errorf("Timezone = %q, want Asia/Kolkata", record.Timezone)
	}
	if record.Latitude != 28.6139 {
		t.Errorf("Latitude = %v, want 28.6139", record.Latitude)
	}

	var chart models.BirthChart
	if err := json.Unmarshal(record.ChartData, &chart); err != nil {
		t.Fatalf("stored chart document does not decode: %v", err)
	}
	if len(chart.Planets) != 9 {
		t.Errorf("stored chart has %d planets, want 9", len(chart.Planets))
	}
	if chart.Dasha == nil || len(chart.Dasha.Sequence) != 9 {
		t.Error("stored chart missing full dasha snapshot")
	}
	if _, ok := chart.DivisionalCharts["D9"]; !ok {
		t.Error("stored chart missing D9")
	}
	if _, ok := chart.DivisionalCharts["D10"]; !ok {
		t.Error("stored chart missing D10")
	}
}

// TestChartService_GenerateChart_ReplacesSubject verifies recomputing a
// subject's chart replaces the stored record instead of duplicating it
func TestChartService_GenerateChart_ReplacesSubject(t *testing.T) {
	geocoder := &fakeGeocoder{coord: models.GeoCoordinate{Latitude: 28.6139, Longitude: 77.209}}
	tz := &fakeTimezoneResolver{zone: "Asia/Kolkata"}
	repo := newFakeChartRepository()
	svc := newTestService(t, geocoder, tz, repo)

	first, err := svc.GenerateChart(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("first generation: %v", err)
	}

	corrected := validRequest()
	corrected.BirthTime = "11:45"
	second, err := svc.GenerateChart(context.Background(), corrected)
	if err != nil {
		t.Fatalf("second generation: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("recomputed chart ID = %d, want original %d", second.ID, first.ID)
	}
	if len(repo.records) != 1 {
		t.Errorf("repository has %d records, want 1", len(repo.records))
	}
	if repo.records["Test Subject"].BirthTime != "11:45" {
		t.Errorf("stored BirthTime = %q, want 11:45", repo.records["Test Subject"].BirthTime)
	}
}

func TestChartService_GenerateChart_CollaboratorErrors(t *testing.T) {
	placeErr := &geo.PlaceNotFoundError{Place: "Xyzzyville"}

	tests := []struct {
		name     string
		geocoder geo.Geocoder
		tz       geo.TimezoneResolver
		check    func(t *testing.T, err error)
	}{
		{
			name:     "geocoder miss propagates place-not-found",
			geocoder: &fakeGeocoder{err: placeErr},
			tz:       &fakeTimezoneResolver{zone: "UTC"},
			check: func(t *testing.T, err error) {
				var notFound *geo.PlaceNotFoundError
				if !errors.As(err, &notFound) {
					t.Errorf("error = %v, want *PlaceNotFoundError", err)
				}
			},
		},
		{
			name:     "timezone failure aborts",
			geocoder: &fakeGeocoder{coord: models.GeoCoordinate{Latitude: 1, Longitude: 1}},
			tz:       &fakeTimezoneResolver{err: fmt.Errorf("zone service down")},
			check: func(t *testing.T, err error) {
				if err == nil {
					t.Error("expected error, got nil")
				}
			},
		},
		{
			name:     "bad zone surfaces engine error",
			geocoder: &fakeGeocoder{coord: models.GeoCoordinate{Latitude: 1, Longitude: 1}},
			tz:       &fakeTimezoneResolver{zone: "Not/AZone"},
			check: func(t *testing.T, err error) {
				var invalidTZ *astro.InvalidTimeZoneError
				if !errors.As(err, &invalidTZ) {
					t.Errorf("error = %v, want *InvalidTimeZoneError", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeChartRepository()
			svc := newTestService(t, tt.geocoder, tt.tz, repo)

			_, err := svc.GenerateChart(context.Background(), validRequest())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			tt.check(t, err)

			if len(repo.records) != 0 {
				t.Error("no record should be stored on failure")
			}
		})
	}
}

func TestChartService_GenerateChart_StorageFailure(t *testing.T) {
	geocoder := &fakeGeocoder{coord: models.GeoCoordinate{Latitude: 28.6139, Longitude: 77.209}}
	tz := &fakeTimezoneResolver{zone: "Asia/Kolkata"}
	repo := newFakeChartRepository()
	repo.upsertErr = fmt.Errorf("connection reset")
	svc := newTestService(t, geocoder, tz, repo)

	if _, err := svc.GenerateChart(context.Background(), validRequest()); err == nil {
		t.Fatal("expected error when storage fails, got nil")
	}
}
