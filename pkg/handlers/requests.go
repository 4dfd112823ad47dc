package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/datavisiting/fdp-explorer/pkg/models"
	"github.com/datavisiting/fdp-explorer/pkg/services"
)

// UnknownContactEmail addresses datasets that publish no contact email.
const UnknownContactEmail = "unknown@example.com"

// Compose modes
const (
	ComposeModeByContact = "by_contact" // One email per contact
	ComposeModeCombined  = "combined"   // One email to every contact
)

// ============================================================================
// Request/Response Types
// ============================================================================

// ComposeRequest for POST /api/requests/compose
type ComposeRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Affiliation       string `json:"affiliation"`
	ORCID             string `json:"orcid,omitempty"`
	Query             string `json:"query"`
	Purpose           string `json:"purpose"`
	OutputConstraints string `json:"output_constraints,omitempty"`
	Timeline          string `json:"timeline,omitempty"`
	Mode              string `json:"mode,omitempty"` // Default by_contact
}

// trim strips surrounding whitespace from every field.
func (c *ComposeRequest) trim() {
	for _, f := range []*string{
		&c.Name, &c.Email, &c.Affiliation, &c.ORCID, &c.Query,
		&c.Purpose, &c.OutputConstraints, &c.Timeline, &c.Mode,
	} {
		*f = strings.TrimSpace(*f)
	}
}

// validate returns one message per missing required field.
func (c *ComposeRequest) validate() []string {
	var problems []string
	required := []struct {
		value string
		msg   string
	}{
		{c.Name, "Name is required."},
		{c.Email, "Email is required."},
		{c.Affiliation, "Affiliation is required."},
		{c.Query, "Query description is required."},
		{c.Purpose, "Purpose is required."},
	}
	for _, r := range required {
		if r.value == "" {
			problems = append(problems, r.msg)
		}
	}
	return problems
}

// ComposeFormResponse for GET /api/requests/compose
type ComposeFormResponse struct {
	Basket          []models.BasketItem `json:"basket"`
	MissingContacts []string            `json:"missing_contacts"` // Titles of datasets without a contact email
}

// ComposedRequestResponse for POST /api/requests/compose and GET /api/requests/preview
type ComposedRequestResponse struct {
	Request *models.DataRequest    `json:"request"`
	Emails  []models.ComposedEmail `json:"emails"`
}

// ============================================================================
// Handler
// ============================================================================

// RequestHandler composes data access request emails from the basket.
type RequestHandler struct {
	sessions SessionStore
	composer services.EmailComposer
	logger   *zap.Logger
	now      func() time.Time
}

// NewRequestHandler creates a new request handler.
func NewRequestHandler(sessions SessionStore, composer services.EmailComposer, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{
		sessions: sessions,
		composer: composer,
		logger:   logger.Named("request-handler"),
		now:      time.Now,
	}
}

// RegisterRoutes registers the request handler's routes on the given mux.
func (h *RequestHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/requests/compose", h.ComposeForm)
	mux.HandleFunc("POST /api/requests/compose", h.Compose)
	mux.HandleFunc("GET /api/requests/preview", h.Preview)
	mux.HandleFunc("POST /api/requests/finish", h.Finish)
}

// ComposeForm handles GET /api/requests/compose
func (h *RequestHandler) ComposeForm(w http.ResponseWriter, r *http.Request) {
	st, ok := loadState(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	if len(st.Basket) == 0 {
		writeError(w, http.StatusConflict, "empty_basket", "Your basket is empty. Add datasets before composing a request.", h.logger)
		return
	}

	missing := []string{}
	for _, item := range st.Basket {
		if item.ContactPoint == nil || item.ContactPoint.Email == "" {
			missing = append(missing, item.Title)
		}
	}
	writeData(w, http.StatusOK, ComposeFormResponse{Basket: st.Basket, MissingContacts: missing}, h.logger)
}

// Compose handles POST /api/requests/compose
func (h *RequestHandler) Compose(w http.ResponseWriter, r *http.Request) {
	var req ComposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", h.logger)
		return
	}
	req.trim()

	if problems := req.validate(); len(problems) > 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", strings.Join(problems, " "), h.logger)
		return
	}
	if req.Mode == "" {
		req.Mode = ComposeModeByContact
	}
	if req.Mode != ComposeModeByContact && req.Mode != ComposeModeCombined {
		writeError(w, http.StatusBadRequest, "invalid_mode", "Mode must be by_contact or combined.", h.logger)
		return
	}

	st, ok := loadState(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	if len(st.Basket) == 0 {
		writeError(w, http.StatusConflict, "empty_basket", "Your basket is empty. Add datasets before composing a request.", h.logger)
		return
	}

	refs := make([]models.DatasetReference, len(st.Basket))
	for i, item := range st.Basket {
		email := UnknownContactEmail
		if item.ContactPoint != nil && item.ContactPoint.Email != "" {
			email = item.ContactPoint.Email
		}
		refs[i] = models.DatasetReference{
			URI:          item.URI,
			Title:        item.Title,
			FDPTitle:     item.FDPTitle,
			ContactEmail: email,
		}
	}

	dataRequest := &models.DataRequest{
		ID:                   uuid.New(),
		RequesterName:        req.Name,
		RequesterEmail:       req.Email,
		RequesterAffiliation: req.Affiliation,
		RequesterORCID:       req.ORCID,
		Query:                req.Query,
		Purpose:              req.Purpose,
		OutputConstraints:    req.OutputConstraints,
		Timeline:             req.Timeline,
		Datasets:             refs,
		CreatedAt:            h.now().UTC(),
	}

	var emails []models.ComposedEmail
	if req.Mode == ComposeModeCombined {
		emails = []models.ComposedEmail{h.composer.ComposeRequestEmail(dataRequest)}
	} else {
		emails = h.composer.ComposeEmailsByContact(dataRequest)
	}

	st.DataRequest = dataRequest
	st.ComposedEmails = emails
	if !saveState(w, r, h.sessions, st, h.logger) {
		return
	}

	h.logger.Info("Composed data request",
		zap.String("request_id", dataRequest.ID.String()),
		zap.String("mode", req.Mode),
		zap.Int("datasets", len(refs)),
		zap.Int("emails", len(emails)))

	writeData(w, http.StatusCreated, ComposedRequestResponse{Request: dataRequest, Emails: emails}, h.logger)
}

// Preview handles GET /api/requests/preview
func (h *RequestHandler) Preview(w http.ResponseWriter, r *http.Request) {
	st, ok := loadState(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	if len(st.ComposedEmails) == 0 || st.DataRequest == nil {
		writeError(w, http.StatusNotFound, "no_request", "No request to preview. Please compose a request first.", h.logger)
		return
	}
	writeData(w, http.StatusOK, ComposedRequestResponse{Request: st.DataRequest, Emails: st.ComposedEmails}, h.logger)
}

// Finish handles POST /api/requests/finish
// The basket and the composed request are cleared; FDPs are kept.
func (h *RequestHandler) Finish(w http.ResponseWriter, r *http.Request) {
	st, ok := loadState(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	st.ClearRequest()
	if !saveState(w, r, h.sessions, st, h.logger) {
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"finished": true}, h.logger)
}
