package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/datavisiting/fdp-explorer/pkg/fdp"
	"github.com/datavisiting/fdp-explorer/pkg/logging"
	"github.com/datavisiting/fdp-explorer/pkg/models"
	"github.com/datavisiting/fdp-explorer/pkg/services"
	"github.com/datavisiting/fdp-explorer/pkg/workerpool"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// FDPView is a configured FDP with its route handle.
type FDPView struct {
	models.FairDataPoint
	Hash string `json:"hash"`
}

func newFDPView(f models.FairDataPoint) FDPView {
	return FDPView{FairDataPoint: f, Hash: models.URIHash(f.URI)}
}

// FDPListResponse for GET /api/fdps
type FDPListResponse struct {
	FDPs  []FDPView `json:"fdps"`
	Total int       `json:"total"`
}

// AddFDPRequest for POST /api/fdps
type AddFDPRequest struct {
	URL     string `json:"url"`
	IsIndex bool   `json:"is_index"`
}

// AddFDPResponse lists the FDPs that were added. An index may add none when
// every linked FDP is already configured.
type AddFDPResponse struct {
	Added int       `json:"added"`
	FDPs  []FDPView `json:"fdps"`
}

// CatalogListResponse for GET /api/fdps/{hash}/catalogs
type CatalogListResponse struct {
	FDP      FDPView          `json:"fdp"`
	Catalogs []models.Catalog `json:"catalogs"`
	Failed   int              `json:"failed"`
}

// SummaryResponse for GET /api/summary
type SummaryResponse struct {
	FDPCount    int `json:"fdp_count"`
	BasketCount int `json:"basket_count"`
}

// ============================================================================
// Handler
// ============================================================================

// FDPHandler manages the FAIR Data Points configured for a session.
type FDPHandler struct {
	sessions SessionStore
	client   services.FDPClient
	listings services.ListingService
	pool     *workerpool.Pool
	logger   *zap.Logger
}

// NewFDPHandler creates a new FDP handler.
func NewFDPHandler(
	sessions SessionStore,
	client services.FDPClient,
	listings services.ListingService,
	pool *workerpool.Pool,
	logger *zap.Logger,
) *FDPHandler {
	return &FDPHandler{
		sessions: sessions,
		client:   client,
		listings: listings,
		pool:     pool,
		logger:   logger.Named("fdp-handler"),
	}
}

// RegisterRoutes registers the FDP handler's routes on the given mux.
func (h *FDPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/summary", h.Summary)
	mux.HandleFunc("GET /api/fdps", h.List)
	mux.HandleFunc("POST /api/fdps", h.Add)
	mux.HandleFunc("POST /api/fdps/{hash}/refresh", h.Refresh)
	mux.HandleFunc("DELETE /api/fdps/{hash}", h.Remove)
	mux.HandleFunc("GET /api/fdps/{hash}/catalogs", h.Catalogs)
}

// Summary handles GET /api/summary
func (h *FDPHandler) Summary(w http.ResponseWriter, r *http.Request) {
	st, ok := loadState(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, SummaryResponse{FDPCount: len(st.FDPs), BasketCount: len(st.Basket)}, h.logger)
}

// List handles GET /api/fdps
func (h *FDPHandler) List(w http.ResponseWriter, r *http.Request) {
	st, ok := loadState(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	views := make([]FDPView, len(st.FDPs))
	for i, f := range st.FDPs {
		views[i] = newFDPView(f)
	}
	writeData(w, http.StatusOK, FDPListResponse{FDPs: views, Total: len(views)}, h.logger)
}

// Add handles POST /api/fdps
func (h *FDPHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddFDPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", h.logger)
		return
	}

	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "missing_url", "Please enter a valid URL.", h.logger)
		return
	}
	if err := fdp.ValidateURI(rawURL); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_url", "URL must start with http:// or https://", h.logger)
		return
	}

	st, ok := loadState(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	if st.HasFDP(fdp.NormalizeURI(rawURL)) {
		writeError(w, http.StatusConflict, "fdp_exists", "This FDP is already configured.", h.logger)
		return
	}

	var fetched []models.FairDataPoint
	if req.IsIndex {
		all, err := h.client.FetchAllFromIndex(r.Context(), rawURL)
		if err != nil {
			h.logger.Warn("Failed to fetch index FDP",
				zap.String("uri", logging.SanitizeURL(rawURL)),
				zap.Error(err))
			fetchErrorResponse(w, err, h.logger)
			return
		}
		fetched = all
	} else {
		f, err := h.client.FetchFDP(r.Context(), rawURL)
		if err != nil {
			h.logger.Warn("Failed to fetch FDP",
				zap.String("uri", logging.SanitizeURL(rawURL)),
				zap.Error(err))
			fetchErrorResponse(w, err, h.logger)
			return
		}
		fetched = []models.FairDataPoint{*f}
	}

	resp := AddFDPResponse{FDPs: []FDPView{}}
	for _, f := range fetched {
		if st.AddFDP(f) {
			resp.FDPs = append(resp.FDPs, newFDPView(f))
		}
	}
	resp.Added = len(resp.FDPs)

	if !saveState(w, r, h.sessions, st, h.logger) {
		return
	}

	h.logger.Info("Added FDPs",
		zap.String("uri", logging.SanitizeURL(rawURL)),
		zap.Bool("index", req.IsIndex),
		zap.Int("added", resp.Added))

	status := http.StatusCreated
	if resp.Added == 0 {
		status = http.StatusOK
	}
	writeData(w, status, resp, h.logger)
}

// Refresh handles POST /api/fdps/{hash}/refresh
// A failed refresh keeps the FDP but marks it with status "error".
func (h *FDPHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	hash, ok := ParseURIHash(w, r, h.logger)
	if !ok {
		return
	}
	st, ok := loadState(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	i := st.FindFDP(hash)
	if i < 0 {
		writeError(w, http.StatusNotFound, "fdp_not_found", "FDP not found.", h.logger)
		return
	}
	uri := st.FDPs[i].URI

	f, err := h.client.FetchFDP(r.Context(), uri)
	if err != nil {
		h.logger.Warn("Failed to refresh FDP",
			zap.String("uri", logging.SanitizeURL(uri)),
			zap.Error(err))

		st.FDPs[i].Status = models.FDPStatusError
		st.FDPs[i].ErrorMessage = services.FetchStatusMessage(err)
		if !saveState(w, r, h.sessions, st, h.logger) {
			return
		}
		fetchErrorResponse(w, err, h.logger)
		return
	}

	st.FDPs[i] = *f
	if !saveState(w, r, h.sessions, st, h.logger) {
		return
	}
	h.listings.Invalidate(r.Context(), st.FDPURIs())

	writeData(w, http.StatusOK, newFDPView(*f), h.logger)
}

// Remove handles DELETE /api/fdps/{hash}
func (h *FDPHandler) Remove(w http.ResponseWriter, r *http.Request) {
	hash, ok := ParseURIHash(w, r, h.logger)
	if !ok {
		return
	}
	st, ok := loadState(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	previous := st.FDPURIs()
	removed, ok := st.RemoveFDP(hash)
	if !ok {
		writeError(w, http.StatusNotFound, "fdp_not_found", "FDP not found.", h.logger)
		return
	}
	if !saveState(w, r, h.sessions, st, h.logger) {
		return
	}
	h.listings.Invalidate(r.Context(), previous)

	writeData(w, http.StatusOK, newFDPView(removed), h.logger)
}

// Catalogs handles GET /api/fdps/{hash}/catalogs
// Catalogs that cannot be fetched are skipped and counted in Failed.
func (h *FDPHandler) Catalogs(w http.ResponseWriter, r *http.Request) {
	hash, ok := ParseURIHash(w, r, h.logger)
	if !ok {
		return
	}
	st, ok := loadState(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	i := st.FindFDP(hash)
	if i < 0 {
		writeError(w, http.StatusNotFound, "fdp_not_found", "FDP not found.", h.logger)
		return
	}
	f := st.FDPs[i]

	items := make([]workerpool.WorkItem[*models.Catalog], len(f.Catalogs))
	for j, catalogURI := range f.Catalogs {
		items[j] = workerpool.WorkItem[*models.Catalog]{
			ID: catalogURI,
			Execute: func(ctx context.Context) (*models.Catalog, error) {
				return h.client.FetchCatalog(ctx, catalogURI, f.URI)
			},
		}
	}

	resp := CatalogListResponse{FDP: newFDPView(f), Catalogs: []models.Catalog{}}
	for _, res := range workerpool.Process(r.Context(), h.pool, items, nil) {
		if res.Err != nil {
			h.logger.Warn("Skipping catalog",
				zap.String("catalog", logging.SanitizeURL(res.ID)),
				zap.Error(res.Err))
			resp.Failed++
			continue
		}
		resp.Catalogs = append(resp.Catalogs, *res.Result)
	}

	writeData(w, http.StatusOK, resp, h.logger)
}
