package models

import (
	"strings"
	"time"
)

// ContactPoint is the dcat:contactPoint of a dataset. Email has any mailto:
// prefix removed.
type ContactPoint struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	URL   string `json:"url,omitempty"`
}

// IsEmpty reports whether no field is set.
func (c ContactPoint) IsEmpty() bool {
	return c.Name == "" && c.Email == "" && c.URL == ""
}

// Dataset is a dcat:Dataset with the provenance of the catalog and FDP it was
// discovered through.
type Dataset struct {
	URI           string        `json:"uri"`
	Title         string        `json:"title"` // Falls back to URI
	CatalogURI    string        `json:"catalog_uri"`
	FDPURI        string        `json:"fdp_uri"`
	FDPTitle      string        `json:"fdp_title"`
	Description   string        `json:"description,omitempty"`
	Publisher     string        `json:"publisher,omitempty"`
	Creator       string        `json:"creator,omitempty"`
	Issued        *time.Time    `json:"issued,omitempty"`
	Modified      *time.Time    `json:"modified,omitempty"`
	Themes        []string      `json:"themes,omitempty"`
	ThemeLabels   []string      `json:"theme_labels,omitempty"` // Index-aligned with Themes, may be shorter
	Keywords      []string      `json:"keywords,omitempty"`
	ContactPoint  *ContactPoint `json:"contact_point,omitempty"`
	LandingPage   string        `json:"landing_page,omitempty"`
	Distributions []string      `json:"distributions,omitempty"`
}

// ThemeLabel returns the display label of the i-th theme: the aligned label
// when one is present, otherwise the last path segment of the theme URI.
func (d Dataset) ThemeLabel(i int) string {
	if i < len(d.ThemeLabels) && d.ThemeLabels[i] != "" {
		return d.ThemeLabels[i]
	}
	if i < 0 || i >= len(d.Themes) {
		return ""
	}
	return lastPathSegment(d.Themes[i])
}

// ThemeRefs pairs every theme URI with its display label.
func (d Dataset) ThemeRefs() []ThemeRef {
	refs := make([]ThemeRef, len(d.Themes))
	for i, uri := range d.Themes {
		refs[i] = ThemeRef{URI: uri, Label: d.ThemeLabel(i)}
	}
	return refs
}

// ContactEmail returns the contact email or "" when there is none.
func (d Dataset) ContactEmail() string {
	if d.ContactPoint == nil {
		return ""
	}
	return d.ContactPoint.Email
}

// ThemeRef is a theme URI with its display label.
type ThemeRef struct {
	URI   string `json:"uri"`
	Label string `json:"label"`
}

// Theme is an aggregated theme across a set of datasets.
type Theme struct {
	URI   string `json:"uri"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

func lastPathSegment(uri string) string {
	trimmed := strings.TrimRight(uri, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
