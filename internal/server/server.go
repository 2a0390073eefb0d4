package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"MetroScraper/internal/database"
	"MetroScraper/internal/logger"
	"MetroScraper/internal/models"
	"MetroScraper/pkg/config"
)

const (
	defaultLimit = 20
	maxLimit     = 200
)

// NewRouter registers the read-only product endpoints.
func NewRouter(repo *database.DBRepository, log logger.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", productsHandler(repo, log))
	mux.HandleFunc("GET /cities", citiesHandler(repo, log))
	return mux
}

// Start serves the API until the listener fails.
func Start(repo *database.DBRepository, cfg *config.Config, log logger.Logger) error {
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           NewRouter(repo, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infof("Starting API server on port %s", port)
	log.Infof("Endpoints available at http://localhost:%s/products and /cities", port)
	return srv.ListenAndServe()
}

func writeJSON(w http.ResponseWriter, log logger.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func productsHandler(repo *database.DBRepository, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// 1. Parse Pagination Parameters
		queryParams := r.URL.Query()
		page, _ := strconv.Atoi(queryParams.Get("page"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(queryParams.Get("limit"))
		if limit < 1 {
			limit = defaultLimit
		}
		if limit > maxLimit {
			limit = maxLimit
		}
		offset := (page - 1) * limit

		filters := models.ProductFilters{
			City:   queryParams.Get("city"),
			Brand:  queryParams.Get("brand"),
			Limit:  limit,
			Offset: offset,
		}
		if v := queryParams.Get("min_price"); v != "" {
			filters.MinPrice, _ = strconv.ParseFloat(v, 64)
		}
		if v := queryParams.Get("max_price"); v != "" {
			filters.MaxPrice, _ = strconv.ParseFloat(v, 64)
		}

		// 2. Get Total Count for Pagination
		totalProducts, err := repo.CountProducts(r.Context(), filters)
		if err != nil {
			log.Errorf("Failed to count products: %v", err)
			http.Error(w, "Failed to count products", http.StatusInternalServerError)
			return
		}
		totalPages := int(math.Ceil(float64(totalProducts) / float64(limit)))

		// 3. Get Paginated Products
		products, err := repo.GetProducts(r.Context(), filters)
		if err != nil {
			log.Errorf("Failed to get products: %v", err)
			http.Error(w, "Failed to get products", http.StatusInternalServerError)
			return
		}

		writeJSON(w, log, models.ProductsResponse{
			Data: products,
			Pagination: models.Pagination{
				TotalItems:  totalProducts,
				TotalPages:  totalPages,
				CurrentPage: page,
			},
		})
	}
}

func citiesHandler(repo *database.DBRepository, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cities, err := repo.GetCities(r.Context())
		if err != nil {
			log.Errorf("Failed to get cities: %v", err)
			http.Error(w, "Failed to get cities", http.StatusInternalServerError)
			return
		}
		writeJSON(w, log, models.CitiesResponse{Data: cities})
	}
}
