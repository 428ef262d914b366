package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/stoktakip/catalog-view/internal/catalog/domain"
	"github.com/stoktakip/catalog-view/internal/catalog/session"
	"github.com/stoktakip/catalog-view/internal/catalog/usecase/command"
	"github.com/stoktakip/catalog-view/internal/catalog/usecase/query"
	"github.com/stoktakip/catalog-view/pkg/logger"
)

// CatalogHandler exposes the catalog view engine to the UI layer using the
// CQRS pattern
type CatalogHandler struct {
	// Command handlers
	toggleFavoriteHandler  *command.ToggleFavoriteHandler
	updateThresholdHandler *command.UpdateThresholdHandler
	changeSortHandler      *command.ChangeSortHandler
	setFiltersHandler      *command.SetFiltersHandler

	// Query handlers
	getViewHandler    *query.GetViewHandler
	listFacetsHandler *query.ListFacetsHandler
	exportViewHandler *query.ExportViewHandler

	sessions *session.Registry

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	visibleRows    prometheus.Gauge
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(
	toggleFavoriteHandler *command.ToggleFavoriteHandler,
	updateThresholdHandler *command.UpdateThresholdHandler,
	changeSortHandler *command.ChangeSortHandler,
	setFiltersHandler *command.SetFiltersHandler,
	getViewHandler *query.GetViewHandler,
	listFacetsHandler *query.ListFacetsHandler,
	exportViewHandler *query.ExportViewHandler,
	sessions *session.Registry,
) *CatalogHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_view_requests_total",
			Help: "Total number of requests to the catalog view service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_view_request_duration_seconds",
			Help:    "Duration of catalog view requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	visibleRows := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_view_visible_rows",
			Help: "Number of rows in the most recently computed view projection",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(visibleRows)

	return &CatalogHandler{
		toggleFavoriteHandler:  toggleFavoriteHandler,
		updateThresholdHandler: updateThresholdHandler,
		changeSortHandler:      changeSortHandler,
		setFiltersHandler:      setFiltersHandler,
		getViewHandler:         getViewHandler,
		listFacetsHandler:      listFacetsHandler,
		exportViewHandler:      exportViewHandler,
		sessions:               sessions,
		requestCounter:         requestCounter,
		requestLatency:         requestLatency,
		visibleRows:            visibleRows,
	}
}

// Response is the JSON envelope for every endpoint
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *CatalogHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

// RegisterRoutes registers all catalog routes. Exports run behind the rate
// limiter; facets behind the response cache. Both middlewares degrade to
// pass-through when Redis is unavailable.
func (h *CatalogHandler) RegisterRoutes(router *mux.Router, redisClient *redis.Client) {
	limiter := ExportRateLimiter(redisClient)

	router.HandleFunc("/api/catalog/products",
		h.metricsMiddleware("/api/catalog/products", OptionalAuthMiddleware(h.GetProducts))).Methods("GET")
	router.HandleFunc("/api/catalog/sort",
		h.metricsMiddleware("/api/catalog/sort", OptionalAuthMiddleware(h.ChangeSort))).Methods("PUT")
	router.HandleFunc("/api/catalog/filters",
		h.metricsMiddleware("/api/catalog/filters", OptionalAuthMiddleware(h.SetFilters))).Methods("PUT")
	router.HandleFunc("/api/catalog/products/{id}/favorite",
		h.metricsMiddleware("/api/catalog/products/{id}/favorite", RequireAuthMiddleware(h.ToggleFavorite))).Methods("POST")
	router.HandleFunc("/api/catalog/threshold",
		h.metricsMiddleware("/api/catalog/threshold", OptionalAuthMiddleware(h.GetThreshold))).Methods("GET")
	router.HandleFunc("/api/catalog/threshold",
		h.metricsMiddleware("/api/catalog/threshold", OptionalAuthMiddleware(h.UpdateThreshold))).Methods("PUT")
	router.HandleFunc("/api/catalog/facets",
		h.metricsMiddleware("/api/catalog/facets", CacheMiddleware(redisClient, facetCacheTTL, h.GetFacets))).Methods("GET")
	router.HandleFunc("/api/catalog/notices",
		h.metricsMiddleware("/api/catalog/notices", OptionalAuthMiddleware(h.GetNotices))).Methods("GET")
	router.HandleFunc("/api/catalog/export/xlsx",
		h.metricsMiddleware("/api/catalog/export/xlsx", OptionalAuthMiddleware(limiter.Middleware(h.exportHandler(query.FormatXLSX))))).Methods("GET")
	router.HandleFunc("/api/catalog/export/pdf",
		h.metricsMiddleware("/api/catalog/export/pdf", OptionalAuthMiddleware(limiter.Middleware(h.exportHandler(query.FormatPDF))))).Methods("GET")
}

// RegisterHealthCheck registers the health check endpoint
func (h *CatalogHandler) RegisterHealthCheck(router *mux.Router) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Catalog view service is healthy",
		})
	}).Methods("GET")
}

// GetProducts handles GET /api/catalog/products
// @Summary Get the catalog view
// @Description Filtered, sorted, classified product rows for display
// @Tags Catalog
// @Produce json
// @Param page query int false "Display page (1-based)"
// @Param page_size query int false "Rows per display page"
// @Success 200 {object} Response
// @Router /api/catalog/products [get]
func (h *CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	result, err := h.getViewHandler.Handle(r.Context(), query.GetViewQuery{
		UserID:   UserIDFromContext(r.Context()),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to compute view projection")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to compute view",
		})
		return
	}

	h.visibleRows.Set(float64(result.Total))

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// ChangeSort handles PUT /api/catalog/sort
// @Summary Change the sort key
// @Description Activates a (field, direction) pair and re-fetches the collection in that order
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body object{field=string,direction=string} true "Sort key"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /api/catalog/sort [put]
func (h *CatalogHandler) ChangeSort(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field     string `json:"field"`
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	key, err := h.changeSortHandler.Handle(r.Context(), command.ChangeSortCommand{
		UserID:    UserIDFromContext(r.Context()),
		Field:     req.Field,
		Direction: req.Direction,
	})
	if err != nil {
		if key == (domain.SortKey{}) {
			respondJSON(w, http.StatusBadRequest, Response{
				Success: false,
				Error:   err.Error(),
			})
			return
		}
		// Valid key, failed fetch: the key is active, the previous rows stay.
		respondJSON(w, http.StatusBadGateway, Response{
			Success: false,
			Error:   "Product list could not be refreshed",
			Data:    key,
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Sort key updated",
		Data:    key,
	})
}

// SetFilters handles PUT /api/catalog/filters
// @Summary Replace the filter state
// @Description Status, search and facet selections combined by logical AND
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body object{status=string,search=string,category_ids=[]int,brand_ids=[]int} true "Filter state"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /api/catalog/filters [put]
func (h *CatalogHandler) SetFilters(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status      string       `json:"status"`
		Search      string       `json:"search"`
		CategoryIDs domain.IDSet `json:"category_ids"`
		BrandIDs    domain.IDSet `json:"brand_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	filter, err := h.setFiltersHandler.Handle(r.Context(), command.SetFiltersCommand{
		UserID:      UserIDFromContext(r.Context()),
		Status:      req.Status,
		Search:      req.Search,
		CategoryIDs: req.CategoryIDs,
		BrandIDs:    req.BrandIDs,
	})
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Filters updated",
		Data:    filter,
	})
}

// ToggleFavorite handles POST /api/catalog/products/{id}/favorite
// @Summary Toggle a favorite flag
// @Description Optimistic flip, confirmed against the inventory service
// @Tags Catalog
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 502 {object} Response
// @Router /api/catalog/products/{id}/favorite [post]
func (h *CatalogHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid product ID",
		})
		return
	}

	state, err := h.toggleFavoriteHandler.Handle(r.Context(), command.ToggleFavoriteCommand{
		UserID:    UserIDFromContext(r.Context()),
		ProductID: uint(id),
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Uint64("product_id", id).Msg("Favorite toggle failed")
		respondJSON(w, http.StatusBadGateway, Response{
			Success: false,
			Error:   "Favorite could not be updated",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Favorite updated",
		Data:    state,
	})
}

// GetThreshold handles GET /api/catalog/threshold
// @Summary Get the critical stock threshold
// @Tags Catalog
// @Produce json
// @Success 200 {object} Response
// @Router /api/catalog/threshold [get]
func (h *CatalogHandler) GetThreshold(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(r.Context(), UserIDFromContext(r.Context()))
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    map[string]int{"value": sess.Threshold()},
	})
}

// UpdateThreshold handles PUT /api/catalog/threshold
// @Summary Update the critical stock threshold
// @Description Applied locally, propagated to the inventory service (last-writer-wins)
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body object{value=int} true "Threshold"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 502 {object} Response
// @Router /api/catalog/threshold [put]
func (h *CatalogHandler) UpdateThreshold(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value *int `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	err := h.updateThresholdHandler.Handle(r.Context(), command.UpdateThresholdCommand{
		UserID: UserIDFromContext(r.Context()),
		Value:  *req.Value,
	})
	if err != nil {
		if *req.Value < 0 {
			respondJSON(w, http.StatusBadRequest, Response{
				Success: false,
				Error:   err.Error(),
			})
			return
		}
		// The local value is already applied; only the propagation failed.
		respondJSON(w, http.StatusBadGateway, Response{
			Success: false,
			Error:   "Critical threshold could not be saved",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Critical threshold updated",
		Data:    map[string]int{"value": *req.Value},
	})
}

// GetFacets handles GET /api/catalog/facets
// @Summary List filter facets
// @Description Category and brand facets; last good value on fetch failure
// @Tags Catalog
// @Produce json
// @Success 200 {object} Response
// @Router /api/catalog/facets [get]
func (h *CatalogHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	result := h.listFacetsHandler.Handle(r.Context())
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// GetNotices handles GET /api/catalog/notices
// @Summary List transient notices
// @Tags Catalog
// @Produce json
// @Success 200 {object} Response
// @Router /api/catalog/notices [get]
func (h *CatalogHandler) GetNotices(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(r.Context(), UserIDFromContext(r.Context()))
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    sess.Notices(),
	})
}

// exportHandler builds the handler for one export format
// @Summary Export the visible rows
// @Description Projects the currently visible rows into a workbook or PDF table
// @Tags Export
// @Produce application/octet-stream
// @Success 200 {file} binary
// @Failure 500 {object} Response
// @Router /api/catalog/export/{format} [get]
func (h *CatalogHandler) exportHandler(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.exportViewHandler.Handle(r.Context(), query.ExportViewQuery{
			UserID: UserIDFromContext(r.Context()),
			Format: format,
		})
		if err != nil {
			logger.Error(r.Context()).Err(err).Str("format", format).Msg("Export failed")
			respondJSON(w, http.StatusInternalServerError, Response{
				Success: false,
				Error:   "Export failed",
			})
			return
		}

		w.Header().Set("Content-Type", result.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
		w.WriteHeader(http.StatusOK)
		w.Write(result.Data)
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
