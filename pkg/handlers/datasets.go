package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/datavisiting/fdp-explorer/pkg/logging"
	"github.com/datavisiting/fdp-explorer/pkg/models"
	"github.com/datavisiting/fdp-explorer/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// DatasetView is a listed dataset with its route handle and basket state.
type DatasetView struct {
	models.Dataset
	Hash     string `json:"hash"`
	InBasket bool   `json:"in_basket"`
}

// DatasetListResponse for GET /api/datasets
type DatasetListResponse struct {
	Datasets   []DatasetView  `json:"datasets"`
	Themes     []models.Theme `json:"themes"` // Computed before any filter
	Query      string         `json:"query"`
	Theme      string         `json:"theme"`
	Sort       string         `json:"sort"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	Total      int            `json:"total"`
	FDPCount   int            `json:"fdp_count"`
}

// DatasetDetailResponse for GET /api/datasets/{hash}
type DatasetDetailResponse struct {
	DatasetView
	ThemeRefs []models.ThemeRef `json:"theme_refs"`
}

// RefreshDatasetsResponse for POST /api/datasets/refresh
type RefreshDatasetsResponse struct {
	Total int `json:"total"`
}

// ============================================================================
// Handler
// ============================================================================

// DatasetHandler serves the aggregated dataset listing of a session's FDPs.
type DatasetHandler struct {
	sessions SessionStore
	client   services.FDPClient
	listings services.ListingService
	logger   *zap.Logger
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(
	sessions SessionStore,
	client services.FDPClient,
	listings services.ListingService,
	logger *zap.Logger,
) *DatasetHandler {
	return &DatasetHandler{
		sessions: sessions,
		client:   client,
		listings: listings,
		logger:   logger.Named("dataset-handler"),
	}
}

// RegisterRoutes registers the dataset handler's routes on the given mux.
func (h *DatasetHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/datasets", h.List)
	mux.HandleFunc("POST /api/datasets/refresh", h.Refresh)
	mux.HandleFunc("GET /api/datasets/{hash}", h.Get)
}

// List handles GET /api/datasets?q=&theme=&sort=&page=
// The search runs first, then the theme filter, then sorting and pagination.
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	st, ok := loadState(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	theme := r.URL.Query().Get("theme")
	sortBy := r.URL.Query().Get("sort")
	if sortBy == "" {
		sortBy = services.SortByTitle
	}
	page := queryInt(r, "page", 1)

	datasets := h.listings.Get(r.Context(), st.FDPURIs())
	themes := services.GetAvailableThemes(datasets)

	filtered := services.Search(datasets, query)
	if theme != "" {
		filtered = services.FilterByTheme(filtered, theme)
	}
	// Search returns its input for an empty query; never sort the cached slice.
	filtered = append([]models.Dataset(nil), filtered...)
	services.SortDatasets(filtered, sortBy)

	p := services.Paginate(filtered, page, services.DatasetsPerPage)
	inBasket := st.BasketHashes()

	views := make([]DatasetView, len(p.Datasets))
	for i, d := range p.Datasets {
		hash := models.URIHash(d.URI)
		views[i] = DatasetView{Dataset: d, Hash: hash, InBasket: inBasket[hash]}
	}

	writeData(w, http.StatusOK, DatasetListResponse{
		Datasets:   views,
		Themes:     themes,
		Query:      query,
		Theme:      theme,
		Sort:       sortBy,
		Page:       p.Page,
		TotalPages: p.TotalPages,
		Total:      p.Total,
		FDPCount:   len(st.FDPs),
	}, h.logger)
}

// Refresh handles POST /api/datasets/refresh
func (h *DatasetHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	st, ok := loadState(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	if len(st.FDPs) == 0 {
		writeError(w, http.StatusBadRequest, "no_fdps", "No FDPs configured. Add an FDP first.", h.logger)
		return
	}

	datasets := h.listings.Refresh(r.Context(), st.FDPURIs())
	h.logger.Info("Refreshed dataset listing",
		zap.Int("fdps", len(st.FDPs)),
		zap.Int("datasets", len(datasets)))

	writeData(w, http.StatusOK, RefreshDatasetsResponse{Total: len(datasets)}, h.logger)
}

// Get handles GET /api/datasets/{hash}
// Datasets are looked up in the cached listing only. With full=true the
// dataset is fetched again from its FDP for the complete metadata.
func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	hash, ok := ParseURIHash(w, r, h.logger)
	if !ok {
		return
	}
	st, ok := loadState(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	ds, found := h.listings.Find(r.Context(), st.FDPURIs(), hash)
	if !found {
		writeError(w, http.StatusNotFound, "dataset_not_found", "Dataset not found.", h.logger)
		return
	}

	if r.URL.Query().Get("full") == "true" {
		full, err := h.client.FetchDataset(r.Context(), ds.URI, ds.CatalogURI, ds.FDPURI, ds.FDPTitle)
		if err != nil {
			h.logger.Warn("Failed to fetch dataset",
				zap.String("uri", logging.SanitizeURL(ds.URI)),
				zap.Error(err))
			fetchErrorResponse(w, err, h.logger)
			return
		}
		ds = full
	}

	writeData(w, http.StatusOK, DatasetDetailResponse{
		DatasetView: DatasetView{Dataset: *ds, Hash: hash, InBasket: st.InBasket(ds.URI)},
		ThemeRefs:   ds.ThemeRefs(),
	}, h.logger)
}
