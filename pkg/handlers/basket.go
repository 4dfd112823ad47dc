package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/datavisiting/fdp-explorer/pkg/models"
	"github.com/datavisiting/fdp-explorer/pkg/services"
)

// NoContactEmail labels basket items whose dataset has no contact email.
const NoContactEmail = "No contact email"

// BasketGroup is a set of basket items sharing one contact email.
type BasketGroup struct {
	Email string              `json:"email"`
	Items []models.BasketItem `json:"items"`
}

// BasketResponse for GET /api/basket
type BasketResponse struct {
	Items     []models.BasketItem `json:"items"`
	ByContact []BasketGroup       `json:"by_contact"`
	Total     int                 `json:"total"`
}

// BasketChangeResponse reports the outcome of a basket mutation.
type BasketChangeResponse struct {
	Changed     bool `json:"changed"`
	BasketCount int  `json:"basket_count"`
}

// BasketHandler manages the datasets selected for a data request.
type BasketHandler struct {
	sessions SessionStore
	listings services.ListingService
	logger   *zap.Logger
}

// NewBasketHandler creates a new basket handler.
func NewBasketHandler(sessions SessionStore, listings services.ListingService, logger *zap.Logger) *BasketHandler {
	return &BasketHandler{
		sessions: sessions,
		listings: listings,
		logger:   logger.Named("basket-handler"),
	}
}

// RegisterRoutes registers the basket handler's routes on the given mux.
func (h *BasketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/basket", h.Get)
	mux.HandleFunc("POST /api/basket/{hash}", h.Add)
	mux.HandleFunc("DELETE /api/basket/{hash}", h.Remove)
	mux.HandleFunc("DELETE /api/basket", h.Clear)
}

// Get handles GET /api/basket
func (h *BasketHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, ok := loadState(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	items := st.Basket
	if items == nil {
		items = []models.BasketItem{}
	}
	writeData(w, http.StatusOK, BasketResponse{
		Items:     items,
		ByContact: groupBasket(items),
		Total:     len(items),
	}, h.logger)
}

// Add handles POST /api/basket/{hash}
// Adding a dataset that is already in the basket is not an error.
func (h *BasketHandler) Add(w http.ResponseWriter, r *http.Request) {
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

	added := st.AddToBasket(models.NewBasketItem(*ds))
	if added && !saveState(w, r, h.sessions, st, h.logger) {
		return
	}

	writeData(w, http.StatusOK, BasketChangeResponse{Changed: added, BasketCount: len(st.Basket)}, h.logger)
}

// Remove handles DELETE /api/basket/{hash}
func (h *BasketHandler) Remove(w http.ResponseWriter, r *http.Request) {
	hash, ok := ParseURIHash(w, r, h.logger)
	if !ok {
		return
	}
	st, ok := loadState(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	if !st.RemoveFromBasket(hash) {
		writeError(w, http.StatusNotFound, "not_in_basket", "Dataset not found in basket.", h.logger)
		return
	}
	if !saveState(w, r, h.sessions, st, h.logger) {
		return
	}

	writeData(w, http.StatusOK, BasketChangeResponse{Changed: true, BasketCount: len(st.Basket)}, h.logger)
}

// Clear handles DELETE /api/basket
func (h *BasketHandler) Clear(w http.ResponseWriter, r *http.Request) {
	st, ok := loadState(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	changed := len(st.Basket) > 0
	st.Basket = nil
	if !saveState(w, r, h.sessions, st, h.logger) {
		return
	}

	writeData(w, http.StatusOK, BasketChangeResponse{Changed: changed}, h.logger)
}

// groupBasket groups items by contact email in order of first appearance.
func groupBasket(items []models.BasketItem) []BasketGroup {
	groups := []BasketGroup{}
	index := make(map[string]int)
	for _, item := range items {
		email := NoContactEmail
		if item.ContactPoint != nil && item.ContactPoint.Email != "" {
			email = item.ContactPoint.Email
		}
		pos, ok := index[email]
		if !ok {
			pos = len(groups)
			index[email] = pos
			groups = append(groups, BasketGroup{Email: email})
		}
		groups[pos].Items = append(groups[pos].Items, item)
	}
	return groups
}
