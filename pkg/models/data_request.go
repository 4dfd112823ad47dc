package models

import (
	"time"

	"github.com/google/uuid"
)

// DataRequest is a researcher's request for access to a set of datasets under a
// data visiting arrangement.
type DataRequest struct {
	ID                   uuid.UUID          `json:"id"`
	RequesterName        string             `json:"requester_name"`
	RequesterEmail       string             `json:"requester_email"`
	RequesterAffiliation string             `json:"requester_affiliation"`
	RequesterORCID       string             `json:"requester_orcid,omitempty"`
	Query                string             `json:"query"`
	Purpose              string             `json:"purpose"`
	OutputConstraints    string             `json:"output_constraints,omitempty"`
	Timeline             string             `json:"timeline,omitempty"`
	Datasets             []DatasetReference `json:"datasets"`
	CreatedAt            time.Time          `json:"created_at"`
}

// DatasetReference identifies a requested dataset and who to ask for it.
type DatasetReference struct {
	URI          string `json:"uri"`
	Title        string `json:"title"`
	FDPTitle     string `json:"fdp_title"`
	ContactEmail string `json:"contact_email"`
}

// ComposedEmail is a ready-to-send request email.
type ComposedEmail struct {
	To         []string           `json:"to"`
	Subject    string             `json:"subject"`
	Body       string             `json:"body"`
	Datasets   []DatasetReference `json:"datasets"`
	MailtoLink string             `json:"mailto_link,omitempty"`
}

// BasketItem is a dataset the user has selected for a request.
type BasketItem struct {
	URI          string        `json:"uri"`
	URIHash      string        `json:"uri_hash"`
	Title        string        `json:"title"`
	FDPTitle     string        `json:"fdp_title"`
	ContactPoint *ContactPoint `json:"contact_point,omitempty"`
}

// NewBasketItem builds a basket entry from a dataset.
func NewBasketItem(d Dataset) BasketItem {
	return BasketItem{
		URI:          d.URI,
		URIHash:      URIHash(d.URI),
		Title:        d.Title,
		FDPTitle:     d.FDPTitle,
		ContactPoint: d.ContactPoint,
	}
}
