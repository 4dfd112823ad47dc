package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datavisiting/fdp-explorer/pkg/models"
)

func basketFixture() []models.Dataset {
	return []models.Dataset{
		{URI: "https://a.org/d/1", Title: "One", FDPTitle: "FDP A", ContactPoint: &models.ContactPoint{Email: "a@a.org"}},
		{URI: "https://a.org/d/2", Title: "Two", FDPTitle: "FDP A"},
		{URI: "https://a.org/d/3", Title: "Three", FDPTitle: "FDP A", ContactPoint: &models.ContactPoint{Email: "a@a.org"}},
	}
}

func TestBasketHandler_AddIsIdempotent(t *testing.T) {
	b := newDatasetTestBrowser(t, &mockFDPClient{}, &mockListings{datasets: basketFixture()}, oneFDP)
	hash := models.URIHash("https://a.org/d/1")

	rec := b.do(http.MethodPost, "/api/basket/"+hash, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var change BasketChangeResponse
	decodeData(t, rec, &change)
	assert.Equal(t, BasketChangeResponse{Changed: true, BasketCount: 1}, change)

	rec = b.do(http.MethodPost, "/api/basket/"+hash, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &change)
	assert.Equal(t, BasketChangeResponse{Changed: false, BasketCount: 1}, change)
}

func TestBasketHandler_AddUnknownDataset(t *testing.T) {
	b := newDatasetTestBrowser(t, &mockFDPClient{}, &mockListings{datasets: basketFixture()}, oneFDP)

	rec := b.do(http.MethodPost, "/api/basket/"+models.URIHash("https://a.org/d/404"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "dataset_not_found", decodeError(t, rec))
}

func TestBasketHandler_GetGroupsByContact(t *testing.T) {
	b := newDatasetTestBrowser(t, &mockFDPClient{}, &mockListings{datasets: basketFixture()}, oneFDP)
	for _, uri := range []string{"https://a.org/d/1", "https://a.org/d/2", "https://a.org/d/3"} {
		require.Equal(t, http.StatusOK, b.do(http.MethodPost, "/api/basket/"+models.URIHash(uri), nil).Code)
	}

	rec := b.do(http.MethodGet, "/api/basket", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BasketResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.ByContact, 2)
	assert.Equal(t, "a@a.org", resp.ByContact[0].Email)
	assert.Len(t, resp.ByContact[0].Items, 2)
	assert.Equal(t, NoContactEmail, resp.ByContact[1].Email)
	assert.Equal(t, "Two", resp.ByContact[1].Items[0].Title)
}

func TestBasketHandler_RemoveAndClear(t *testing.T) {
	b := newDatasetTestBrowser(t, &mockFDPClient{}, &mockListings{datasets: basketFixture()}, oneFDP)
	one := models.URIHash("https://a.org/d/1")
	two := models.URIHash("https://a.org/d/2")
	b.do(http.MethodPost, "/api/basket/"+one, nil)
	b.do(http.MethodPost, "/api/basket/"+two, nil)

	rec := b.do(http.MethodDelete, "/api/basket/"+one, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var change BasketChangeResponse
	decodeData(t, rec, &change)
	assert.Equal(t, 1, change.BasketCount)

	rec = b.do(http.MethodDelete, "/api/basket/"+one, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_in_basket", decodeError(t, rec))

	rec = b.do(http.MethodDelete, "/api/basket", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &change)
	assert.True(t, change.Changed)

	rec = b.do(http.MethodGet, "/api/basket", nil)
	var resp BasketResponse
	decodeData(t, rec, &resp)
	assert.Zero(t, resp.Total)
	assert.Empty(t, resp.ByContact)
}

func TestBasketHandler_EmptyBasketIsNotNull(t *testing.T) {
	b := newDatasetTestBrowser(t, &mockFDPClient{}, &mockListings{}, nil)

	rec := b.do(http.MethodGet, "/api/basket", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
	assert.Contains(t, rec.Body.String(), `"by_contact":[]`)
}
