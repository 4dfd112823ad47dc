package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/datavisiting/fdp-explorer/pkg/cache"
	"github.com/datavisiting/fdp-explorer/pkg/models"
)

type mockDatasetService struct {
	mu       sync.Mutex
	datasets []models.Dataset
	calls    int
}

func (m *mockDatasetService) GetAllDatasets(ctx context.Context, fdpURIs []string) []models.Dataset {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.datasets
}

type mockListingObserver struct {
	aggregations []int
	cache        []string
}

func (m *mockListingObserver) ObserveAggregation(datasets int, duration time.Duration) {
	m.aggregations = append(m.aggregations, datasets)
}

func (m *mockListingObserver) ObserveCache(result string) {
	m.cache = append(m.cache, result)
}

// failingCache errors on every call.
type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) ([]models.Dataset, bool, error) {
	return nil, false, errors.New("cache down")
}
func (failingCache) Set(ctx context.Context, key string, datasets []models.Dataset) error {
	return errors.New("cache down")
}
func (failingCache) Delete(ctx context.Context, key string) error { return errors.New("cache down") }
func (failingCache) Close() error                                 { return nil }

var listingFDPs = []string{"https://fdp.example.org"}

func TestListingService_GetCachesAggregation(t *testing.T) {
	ds := &mockDatasetService{datasets: []models.Dataset{{URI: "https://fdp.example.org/dataset/1", Title: "One"}}}
	obs := &mockListingObserver{}
	svc := NewListingService(ds, cache.NewMemoryCache(time.Minute), obs, zap.NewNop())
	ctx := context.Background()

	first := svc.Get(ctx, listingFDPs)
	second := svc.Get(ctx, listingFDPs)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, ds.calls, "second Get must be served from cache")
	assert.Equal(t, []int{1}, obs.aggregations)
	assert.Equal(t, []string{cacheMiss, cacheHit}, obs.cache)
}

func TestListingService_RefreshBypassesCache(t *testing.T) {
	ds := &mockDatasetService{datasets: []models.Dataset{{URI: "u1"}}}
	svc := NewListingService(ds, cache.NewMemoryCache(time.Minute), nil, zap.NewNop())
	ctx := context.Background()

	svc.Get(ctx, listingFDPs)
	ds.datasets = []models.Dataset{{URI: "u1"}, {URI: "u2"}}

	refreshed := svc.Refresh(ctx, listingFDPs)
	assert.Len(t, refreshed, 2)
	assert.Len(t, svc.Get(ctx, listingFDPs), 2)
	assert.Equal(t, 2, ds.calls)
}

func TestListingService_NoFDPs(t *testing.T) {
	ds := &mockDatasetService{}
	svc := NewListingService(ds, cache.NewMemoryCache(time.Minute), nil, zap.NewNop())

	got := svc.Get(context.Background(), nil)

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, ds.calls)
}

func TestListingService_FindAndInvalidate(t *testing.T) {
	ds := &mockDatasetService{datasets: []models.Dataset{
		{URI: "https://fdp.example.org/dataset/1", Title: "One"},
		{URI: "https://fdp.example.org/dataset/2", Title: "Two"},
	}}
	svc := NewListingService(ds, cache.NewMemoryCache(time.Minute), nil, zap.NewNop())
	ctx := context.Background()

	_, ok := svc.Find(ctx, listingFDPs, models.URIHash("https://fdp.example.org/dataset/2"))
	assert.False(t, ok, "Find must not aggregate")

	svc.Get(ctx, listingFDPs)
	found, ok := svc.Find(ctx, listingFDPs, models.URIHash("https://fdp.example.org/dataset/2"))
	require.True(t, ok)
	assert.Equal(t, "Two", found.Title)

	svc.Invalidate(ctx, listingFDPs)
	_, ok = svc.Cached(ctx, listingFDPs)
	assert.False(t, ok)
}

func TestListingService_CacheFailureStillServes(t *testing.T) {
	ds := &mockDatasetService{datasets: []models.Dataset{{URI: "u1"}}}
	obs := &mockListingObserver{}
	svc := NewListingService(ds, failingCache{}, obs, zap.NewNop())

	got := svc.Get(context.Background(), listingFDPs)

	assert.Len(t, got, 1)
	assert.Equal(t, []string{cacheError}, obs.cache)
}
