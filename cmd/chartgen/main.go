package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"jyotish-platform/internal/astro"
	"jyotish-platform/internal/config"
	"jyotish-platform/internal/ephemeris"
	"jyotish-platform/internal/geo"
	"jyotish-platform/internal/repository"
	"jyotish-platform/internal/services"
	"jyotish-platform/pkg/database"
	"jyotish-platform/pkg/logging"
	"jyotish-platform/pkg/metrics"
)

// batchResult accumulates the outcome of a bulk chart run
type batchResult struct {
	TotalSubjects int
	Successful    int
	Failed        int
	Duration      time.Duration
	Errors        []string
}

func main() {
	// Parse command-line flags
	subjectsFile := flag.String("subjects", "./subjects.tsv", "Tab-separated file of subjects: name, birth date, birth time, birth place")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("jyotish-chartgen", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[CHARTGEN_START] Starting bulk chart generation", logging.Fields{
		"version":       "1.0.0",
		"subjects_file": *subjectsFile,
		"house_system":  cfg.Chart.HouseSystem,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("jyotish_chartgen")

	// Initialize database
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[CHARTGEN_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Initialize redis for geo-lookup caching
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	defer rdb.Close()

	// Initialize external collaborators
	geocoder := geo.NewCachedGeocoder(
		geo.NewNominatimClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout, logger, metricsCollector),
		rdb, cfg.Redis.CacheTTL, logger, metricsCollector,
	)
	timezoneResolver := geo.NewCachedTimezoneResolver(
		geo.NewTimezoneClient(cfg.Timezone.BaseURL, cfg.Timezone.Timeout, logger),
		rdb, cfg.Redis.CacheTTL, logger, metricsCollector,
	)
	ephemerisClient := ephemeris.NewClient(cfg.Ephemeris.BaseURL, cfg.Ephemeris.Timeout, logger, metricsCollector)

	// Initialize chart engine
	calculator, err := astro.NewCalculator(
		ephemerisClient,
		astro.HouseSystem(cfg.Chart.HouseSystem),
		cfg.Chart.AyanamsaFallback,
		logger,
		metricsCollector,
	)
	if err != nil {
		logger.Fatal(ctx, "[CHARTGEN_ERROR] Failed to initialize chart calculator", logging.Fields{}, err)
	}

	// Initialize repository and service
	chartRepo := repository.NewChartRepository(db, logger, metricsCollector)
	chartService := services.NewChartService(calculator, geocoder, timezoneResolver, chartRepo, logger, metricsCollector)

	// Load subjects and generate charts
	requests, err := loadSubjects(*subjectsFile)
	if err != nil {
		logger.Fatal(ctx, "[CHARTGEN_ERROR] Failed to read subjects file", logging.Fields{
			"subjects_file": *subjectsFile,
		}, err)
	}

	result := generateCharts(ctx, chartService, logger, requests)

	// Print results
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("CHART GENERATION COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Total Subjects:    %d\n", result.TotalSubjects)
	fmt.Printf("Charts Generated:  %d\n", result.Successful)
	fmt.Printf("Failed Subjects:   %d\n", result.Failed)
	fmt.Printf("Duration:          %v\n", result.Duration)

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for i, errMsg := range result.Errors {
			if i < 10 {
				fmt.Printf("  - %s\n", errMsg)
			}
		}
		if len(result.Errors) > 10 {
			fmt.Printf("  ... and %d more errors\n", len(result.Errors)-10)
		}
	}

	logger.Info(ctx, "[CHARTGEN_COMPLETE] Bulk chart generation finished", logging.Fields{
		"total_subjects":   result.TotalSubjects,
		"successful":       result.Successful,
		"failed":           result.Failed,
		"duration_seconds": result.Duration.Seconds(),
	})

	if result.Failed > 0 {
		os.Exit(1)
	}
}

// loadSubjects parses the tab-separated subjects file. Each non-empty,
// non-comment line carries four fields: name, birth date (YYYY-MM-DD),
// birth time (HH:MM), birth place.
func loadSubjects(path string) ([]*services.ChartRequest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var requests []*services.ChartRequest
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %d: expected 4 tab-separated fields, got %d", lineNum, len(fields))
		}

		requests = append(requests, &services.ChartRequest{
			Name:       strings.TrimSpace(fields[0]),
			BirthDate:  strings.TrimSpace(fields[1]),
			BirthTime:  strings.TrimSpace(fields[2]),
			BirthPlace: strings.TrimSpace(fields[3]),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

// generateCharts runs the subjects through the chart service one at a time.
// Subjects share geocode and timezone cache entries, so runs over rosters
// from the same region get faster as they go.
func generateCharts(ctx context.Context, chartService *services.ChartService, logger *logging.StructuredLogger, requests []*services.ChartRequest) *batchResult {
	startTime := time.Now()
	result := &batchResult{TotalSubjects: len(requests)}

	for _, req := range requests {
		record, err := chartService.GenerateChart(ctx, req)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", req.Name, err))
			logger.Error(ctx, "[CHARTGEN_SUBJECT_ERROR] Chart generation failed", logging.Fields{
				"subject": req.Name,
			}, err)
			continue
		}

		result.Successful++
		logger.Info(ctx, "[CHARTGEN_SUBJECT] Chart stored", logging.Fields{
			"subject":  req.Name,
			"chart_id": record.ID,
		})
	}

	result.Duration = time.Since(startTime)
	return result
}
