package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/datavisiting/fdp-explorer/pkg/models"
)

func TestSortDatasets(t *testing.T) {
	older := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	build := func() []models.Dataset {
		return []models.Dataset{
			{Title: "beta", FDPTitle: "Zeta FDP", Modified: &older},
			{Title: "Alpha", FDPTitle: "alpha FDP"},
			{Title: "gamma", FDPTitle: "Mid FDP", Modified: &newer},
		}
	}

	ds := build()
	SortDatasets(ds, SortByTitle)
	assert.Equal(t, []string{"Alpha", "beta", "gamma"}, titles(ds))

	ds = build()
	SortDatasets(ds, SortByModified)
	assert.Equal(t, []string{"gamma", "beta", "Alpha"}, titles(ds))

	ds = build()
	SortDatasets(ds, SortByFDP)
	assert.Equal(t, []string{"Alpha", "gamma", "beta"}, titles(ds))

	ds = build()
	SortDatasets(ds, SortByRelevance)
	assert.Equal(t, []string{"beta", "Alpha", "gamma"}, titles(ds))
}

func TestPaginate(t *testing.T) {
	ds := make([]models.Dataset, 23)
	for i := range ds {
		ds[i] = models.Dataset{Title: fmt.Sprintf("d%02d", i)}
	}

	first := Paginate(ds, 1, DatasetsPerPage)
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, 23, first.Total)
	assert.Len(t, first.Datasets, 10)
	assert.Equal(t, "d00", first.Datasets[0].Title)

	last := Paginate(ds, 3, DatasetsPerPage)
	assert.Len(t, last.Datasets, 3)
	assert.Equal(t, "d20", last.Datasets[0].Title)

	clampedHigh := Paginate(ds, 99, DatasetsPerPage)
	assert.Equal(t, 3, clampedHigh.Page)

	clampedLow := Paginate(ds, -4, DatasetsPerPage)
	assert.Equal(t, 1, clampedLow.Page)
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate(nil, 5, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.TotalPages)
	assert.NotNil(t, p.Datasets)
	assert.Empty(t, p.Datasets)
}
