package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"jyotish-platform/internal/astro"
	"jyotish-platform/internal/geo"
	"jyotish-platform/internal/repository"
	"jyotish-platform/internal/services"
	"jyotish-platform/pkg/logging"
	"jyotish-platform/pkg/metrics"
)

// ChartHandler handles birth chart API endpoints
type ChartHandler struct {
	chartService *services.ChartService
	logger       *logging.StructuredLogger
	metrics      *metrics.Collector
}

// NewChartHandler creates a new chart handler
func NewChartHandler(chartService *services.ChartService, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ChartHandler {
	return &ChartHandler{
		chartService: chartService,
		logger:       logger,
		metrics:      metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// GenerateChart handles POST /api/charts
func (h *ChartHandler) GenerateChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/charts").Observe(time.Since(startTime).Seconds())
	}()

	var req services.ChartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, "invalid JSON request body", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	record, err := h.chartService.GenerateChart(ctx, &req)
	if err != nil {
		h.handleChartError(w, r, "/api/charts", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/charts", "POST", "201")
	h.sendJSON(w, record, http.StatusCreated)
}

// GetChart handles GET /api/charts/{id}
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/charts/{id}").Observe(time.Since(startTime).Seconds())
	}()

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.sendError(w, r, "invalid chart id", http.StatusBadRequest)
		return
	}

	record, err := h.chartService.GetChart(ctx, id)
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			h.sendError(w, r, "chart not found", http.StatusNotFound)
			return
		}
		h.logger.Error(ctx, "[API_GET_CHART_ERROR] Failed to get chart", logging.Fields{
			"chart_id": id,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/charts/{id}")
		h.sendError(w, r, "failed to retrieve chart", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/charts/{id}", "GET", "200")
	h.sendJSON(w, record, http.StatusOK)
}

// ListCharts handles GET /api/charts
func (h *ChartHandler) ListCharts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/charts").Observe(time.Since(startTime).Seconds())
	}()

	place := r.URL.Query().Get("place")
	pageStr := r.URL.Query().Get("page")
	limitStr := r.URL.Query().Get("limit")

	page := 1
	limit := 100

	if pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	filter := repository.ChartFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if place != "" {
		filter.BirthPlace = &place
	}

	records, total, err := h.chartService.ListCharts(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_LIST_CHARTS_ERROR] Failed to list charts", logging.Fields{
			"filter": filter,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/charts")
		h.sendError(w, r, "failed to retrieve charts", http.StatusInternalServerError)
		return
	}

	totalPages := (total + limit - 1) / limit

	response := PaginatedResponse{
		Data:       records,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}

	h.metrics.RecordAPIRequest("/api/charts", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *ChartHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.chartService.HealthCheck(ctx); err != nil {
		h.logger.Error(ctx, "[HEALTH_CHECK_ERROR] Storage unreachable", logging.Fields{}, err)
		h.sendJSON(w, map[string]string{
			"status":    "unhealthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}, http.StatusServiceUnavailable)
		return
	}

	h.sendJSON(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleChartError maps engine and collaborator errors to HTTP responses.
// Internal error kinds are never leaked verbatim; the caller gets a message
// it can act on (usually: correct the input).
func (h *ChartHandler) handleChartError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	ctx := r.Context()

	var (
		placeNotFound *geo.PlaceNotFoundError
		invalidTZ     *astro.InvalidTimeZoneError
		outOfRange    *astro.OutOfRangeError
		geometry      *astro.GeometryUndefinedError
		unavailable   *astro.EphemerisUnavailableError
	)

	switch {
	case errors.As(err, &placeNotFound):
		h.metrics.RecordAPIError("place_not_found", endpoint)
		h.sendError(w, r, "birth place could not be found, try a different spelling", http.StatusUnprocessableEntity)

	case errors.As(err, &invalidTZ):
		h.metrics.RecordAPIError("invalid_timezone", endpoint)
		h.sendError(w, r, "timezone for the birth place is not recognized", http.StatusUnprocessableEntity)

	case errors.As(err, &outOfRange):
		h.metrics.RecordAPIError("out_of_range", endpoint)
		h.sendError(w, r, "birth date is outside the supported range", http.StatusUnprocessableEntity)

	case errors.As(err, &geometry):
		h.metrics.RecordAPIError("geometry_undefined", endpoint)
		h.sendError(w, r, "house geometry is undefined for this location, try a different house system", http.StatusUnprocessableEntity)

	case errors.As(err, &unavailable):
		h.metrics.RecordAPIError("ephemeris_unavailable", endpoint)
		h.sendError(w, r, "chart computation is temporarily unavailable, try again shortly", http.StatusServiceUnavailable)

	default:
		h.logger.Error(ctx, "[API_CHART_ERROR] Chart generation failed", logging.Fields{
			"endpoint": endpoint,
		}, err)
		h.metrics.RecordAPIError("internal_error", endpoint)
		h.sendError(w, r, "failed to generate chart", http.StatusInternalServerError)
	}
}

// sendJSON sends a JSON response
func (h *ChartHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *ChartHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all chart API routes
func (h *ChartHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/charts", h.GenerateChart).Methods("POST")
	router.HandleFunc("/api/charts", h.ListCharts).Methods("GET")
	router.HandleFunc("/api/charts/{id:[0-9]+}", h.GetChart).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
