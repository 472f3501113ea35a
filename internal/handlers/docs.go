package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Jyotish Platform API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Jyotish Platform API",
			"description": "Vedic sidereal birth chart computation service: planetary positions, houses, divisional charts, and Vimshottari dasha timelines",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "Jyotish Platform Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/charts": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Generate a birth chart",
					"description": "Computes a complete sidereal birth chart from birth details and stores it; a subject's existing chart is replaced",
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]interface{}{
									"type":     "object",
									"required": []string{"name", "birth_date", "birth_time", "birth_place"},
									"properties": map[string]interface{}{
										"name":        map[string]string{"type": "string"},
										"birth_date":  map[string]string{"type": "string", "format": "date"},
										"birth_time":  map[string]string{"type": "string", "example": "10:30"},
										"birth_place": map[string]string{"type": "string"},
									},
								},
							},
						},
					},
					"responses": map[string]interface{}{
						"201": map[string]interface{}{
							"description": "Chart computed and stored",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": chartRecordSchema(),
								},
							},
						},
						"400": map[string]interface{}{"description": "Malformed request"},
						"422": map[string]interface{}{"description": "Birth details could not be resolved (unknown place, unsupported date, degenerate house geometry)"},
						"503": map[string]interface{}{"description": "Ephemeris provider temporarily unavailable"},
					},
				},
				"get": map[string]interface{}{
					"summary":     "List stored charts",
					"description": "Retrieve stored charts with filtering and pagination",
					"parameters": []map[string]interface{}{
						{
							"name":        "place",
							"in":          "query",
							"description": "Filter by birth place substring",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
						{
							"name":        "page",
							"in":          "query",
							"description": "Page number (default: 1)",
							"required":    false,
							"schema":      map[string]interface{}{"type": "integer", "default": 1},
						},
						{
							"name":        "limit",
							"in":          "query",
							"description": "Records per page (default: 100)",
							"required":    false,
							"schema":      map[string]interface{}{"type": "integer", "default": 100},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"data":        map[string]interface{}{"type": "array", "items": chartRecordSchema()},
											"total":       map[string]string{"type": "integer"},
											"page":        map[string]string{"type": "integer"},
											"limit":       map[string]string{"type": "integer"},
											"total_pages": map[string]string{"type": "integer"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/api/charts/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get a stored chart",
					"description": "Retrieve a stored chart record by ID",
					"parameters": []map[string]interface{}{
						{
							"name":     "id",
							"in":       "path",
							"required": true,
							"schema":   map[string]string{"type": "integer"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": chartRecordSchema(),
								},
							},
						},
						"404": map[string]interface{}{"description": "Chart not found"},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check if the API and its storage are reachable",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "API is healthy",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"status": map[string]string{"type": "string"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}

// chartRecordSchema describes the stored chart record, including the full
// chart document shape consumed by downstream consultation layers
func chartRecordSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"id":           map[string]string{"type": "integer"},
			"subject_name": map[string]string{"type": "string"},
			"birth_date":   map[string]string{"type": "string", "format": "date-time"},
			"birth_time":   map[string]string{"type": "string"},
			"birth_place":  map[string]string{"type": "string"},
			"latitude":     map[string]string{"type": "number"},
			"longitude":    map[string]string{"type": "number"},
			"timezone":     map[string]string{"type": "string"},
			"chart_data": map[string]interface{}{
				"type":        "object",
				"description": "Full chart document: houses, planets (longitude, sign, nakshatra, pada, house), divisional charts D9/D10, dasha snapshot, convenience signs",
			},
			"created_at": map[string]string{"type": "string", "format": "date-time"},
			"updated_at": map[string]string{"type": "string", "format": "date-time"},
		},
	}
}
