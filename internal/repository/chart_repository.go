package repository

import (
	"context"
	"database/sql"
	"fmt"

	"jyotish-platform/internal/models"
	"jyotish-platform/pkg/database"
	"jyotish-platform/pkg/logging"
	"jyotish-platform/pkg/metrics"
)

// ChartRepository provides data access for stored birth charts
type ChartRepository interface {
	// UpsertChart stores a chart record, replacing any previous chart for
	// the same subject. Corrections always recompute the whole chart, so
	// the stored document is replaced wholesale, never patched.
	UpsertChart(ctx context.Context, record *models.ChartRecord) error

	GetChart(ctx context.Context, id int64) (*models.ChartRecord, error)
	GetChartBySubject(ctx context.Context, subjectName string) (*models.ChartRecord, error)
	ListCharts(ctx context.Context, filter ChartFilter) ([]*models.ChartRecord, int, error)

	HealthCheck(ctx context.Context) error
}

// ChartFilter defines filters for querying stored charts
type ChartFilter struct {
	BirthPlace *string
	Limit      int
	Offset     int
}

// chartRepository implements ChartRepository
type chartRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewChartRepository creates a new chart repository
func NewChartRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) ChartRepository {
	return &chartRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// UpsertChart stores or replaces a subject's chart
func (r *chartRepository) UpsertChart(ctx context.Context, record *models.ChartRecord) error {
	query := `
		INSERT INTO birth_charts (
			subject_name, birth_date, birth_time, birth_place,
			latitude, longitude, timezone, chart_data,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (subject_name) DO UPDATE SET
			birth_date = EXCLUDED.birth_date,
			birth_time = EXCLUDED.birth_time,
			birth_place = EXCLUDED.birth_place,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			timezone = EXCLUDED.timezone,
			chart_data = EXCLUDED.chart_data,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		record.SubjectName,
		record.BirthDate,
		record.BirthTime,
		record.BirthPlace,
		record.Latitude,
		record.Longitude,
		record.Timezone,
		record.ChartData,
		record.CreatedAt,
		record.UpdatedAt,
	).Scan(&record.ID)

	if err != nil {
		r.metrics.RecordDBError("upsert_error")
		return fmt.Errorf("failed to upsert chart: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_UPSERT_CHART] Chart stored", logging.Fields{
		"chart_id":     record.ID,
		"subject_name": record.SubjectName,
	})

	return nil
}

// GetChart retrieves a chart record by ID
func (r *chartRepository) GetChart(ctx context.Context, id int64) (*models.ChartRecord, error) {
	query := `
		SELECT id, subject_name, birth_date, birth_time, birth_place,
		       latitude, longitude, timezone, chart_data,
		       created_at, updated_at
		FROM birth_charts
		WHERE id = $1
	`

	var record models.ChartRecord
	err := r.db.GetContext(ctx, "get_chart", &record, query, id)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "birth_chart",
			ID:       fmt.Sprintf("%d", id),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get chart: %w", err)
	}

	return &record, nil
}

// GetChartBySubject retrieves a chart record by subject name
func (r *chartRepository) GetChartBySubject(ctx context.Context, subjectName string) (*models.ChartRecord, error) {
	query := `
		SELECT id, subject_name, birth_date, birth_time, birth_place,
		       latitude, longitude, timezone, chart_data,
		       created_at, updated_at
		FROM birth_charts
		WHERE subject_name = $1
	`

	var record models.ChartRecord
	err := r.db.GetContext(ctx, "get_chart_by_subject", &record, query, subjectName)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "birth_chart",
			ID:       subjectName,
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get chart by subject: %w", err)
	}

	return &record, nil
}

// ListCharts retrieves chart records with filtering and pagination
func (r *chartRepository) ListCharts(ctx context.Context, filter ChartFilter) ([]*models.ChartRecord, int, error) {
	query := `
		SELECT id, subject_name, birth_date, birth_time, birth_place,
		       latitude, longitude, timezone, chart_data,
		       created_at, updated_at
		FROM birth_charts
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.BirthPlace != nil {
		query += fmt.Sprintf(" AND birth_place ILIKE $%d", argNum)
		args = append(args, "%"+*filter.BirthPlace+"%")
		argNum++
	}

	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var totalCount int
	err := r.db.GetContext(ctx, "count_charts", &totalCount, countQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count charts: %w", err)
	}

	query += " ORDER BY updated_at DESC, subject_name"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var records []*models.ChartRecord
	err = r.db.SelectContext(ctx, "list_charts", &records, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list charts: %w", err)
	}

	return records, totalCount, nil
}

// HealthCheck performs a repository health check
func (r *chartRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
