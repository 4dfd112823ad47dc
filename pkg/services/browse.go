package services

import (
	"sort"
	"strings"

	"github.com/datavisiting/fdp-explorer/pkg/models"
)

// DatasetsPerPage is the page size of the dataset browser.
const DatasetsPerPage = 10

// Sort orders accepted by SortDatasets.
const (
	SortByTitle     = "title"     // Case-insensitive title, A-Z
	SortByModified  = "modified"  // Newest first, undated last
	SortByFDP       = "fdp"       // Case-insensitive FDP title, A-Z
	SortByRelevance = "relevance" // Keep the incoming order
)

// SortDatasets sorts datasets in place. Unknown orders leave the slice as is.
func SortDatasets(datasets []models.Dataset, by string) {
	switch by {
	case SortByTitle:
		sort.SliceStable(datasets, func(i, j int) bool {
			return strings.ToLower(datasets[i].Title) < strings.ToLower(datasets[j].Title)
		})
	case SortByModified:
		sort.SliceStable(datasets, func(i, j int) bool {
			a, b := datasets[i].Modified, datasets[j].Modified
			if a == nil || b == nil {
				return a != nil && b == nil
			}
			return a.After(*b)
		})
	case SortByFDP:
		sort.SliceStable(datasets, func(i, j int) bool {
			return strings.ToLower(datasets[i].FDPTitle) < strings.ToLower(datasets[j].FDPTitle)
		})
	}
}

// Page is one page of a dataset listing.
type Page struct {
	Datasets   []models.Dataset `json:"datasets"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	Total      int              `json:"total"`
}

// Paginate returns the requested page, clamping page into [1, TotalPages].
// An empty listing is a single empty page 1.
func Paginate(datasets []models.Dataset, page, perPage int) Page {
	if perPage < 1 {
		perPage = DatasetsPerPage
	}
	total := len(datasets)
	totalPages := (total + perPage - 1) / perPage

	if totalPages == 0 {
		page = 1
	} else {
		page = max(1, min(page, totalPages))
	}

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	return Page{
		Datasets:   append([]models.Dataset{}, datasets[start:end]...),
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}
}
