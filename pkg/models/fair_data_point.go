package models

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Status values for FAIR Data Points
const (
	FDPStatusPending = "pending" // Registered, not fetched yet
	FDPStatusActive  = "active"  // Last fetch succeeded
	FDPStatusError   = "error"   // Last fetch failed (see ErrorMessage)
)

// FairDataPoint is a metadata endpoint publishing catalogs of datasets.
// An FDP that links to other FDPs via fdp:metadataService is an index.
type FairDataPoint struct {
	URI          string     `json:"uri"` // Trailing slash stripped
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Publisher    string     `json:"publisher,omitempty"`
	IsIndex      bool       `json:"is_index"`
	Catalogs     []string   `json:"catalogs"`
	LinkedFDPs   []string   `json:"linked_fdps,omitempty"`
	LastFetched  *time.Time `json:"last_fetched,omitempty"`
	Status       string     `json:"status"` // "pending", "active", "error"
	ErrorMessage string     `json:"error_message,omitempty"`
}

// Catalog is a dcat:Catalog served by an FDP.
type Catalog struct {
	URI         string   `json:"uri"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	FDPURI      string   `json:"fdp_uri"`
	Datasets    []string `json:"datasets"`
	Themes      []string `json:"themes,omitempty"` // dcat:themeTaxonomy
}

// URIHash returns the MD5 hex digest of a URI. It is used as an opaque,
// URL-safe handle for FDPs and datasets in routes and session keys.
func URIHash(uri string) string {
	sum := md5.Sum([]byte(uri))
	return hex.EncodeToString(sum[:])
}
