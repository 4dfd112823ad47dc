package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/datavisiting/fdp-explorer/pkg/cache"
	"github.com/datavisiting/fdp-explorer/pkg/models"
)

// ListingObserver receives aggregation and cache statistics.
type ListingObserver interface {
	ObserveAggregation(datasets int, duration time.Duration)
	ObserveCache(result string)
}

// Cache lookup results reported to a ListingObserver.
const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

// ListingService serves the aggregated dataset listing of a list of FDPs,
// aggregating on a cache miss.
type ListingService interface {
	// Get returns the listing, aggregating and caching it when not cached.
	Get(ctx context.Context, fdpURIs []string) []models.Dataset

	// Cached returns the listing only if it is already cached.
	Cached(ctx context.Context, fdpURIs []string) ([]models.Dataset, bool)

	// Refresh aggregates the listing again and replaces the cached copy.
	Refresh(ctx context.Context, fdpURIs []string) []models.Dataset

	// Find returns the cached dataset whose URI hashes to hash.
	Find(ctx context.Context, fdpURIs []string, hash string) (*models.Dataset, bool)

	// Invalidate drops the cached listing.
	Invalidate(ctx context.Context, fdpURIs []string)
}

type listingService struct {
	datasets DatasetService
	cache    cache.DatasetCache
	observer ListingObserver
	logger   *zap.Logger
	now      func() time.Time
}

// NewListingService creates a listing service. observer may be nil.
func NewListingService(datasets DatasetService, c cache.DatasetCache, observer ListingObserver, logger *zap.Logger) ListingService {
	return &listingService{
		datasets: datasets,
		cache:    c,
		observer: observer,
		logger:   logger.Named("listing-service"),
		now:      time.Now,
	}
}

var _ ListingService = (*listingService)(nil)

func (s *listingService) Get(ctx context.Context, fdpURIs []string) []models.Dataset {
	if datasets, ok := s.Cached(ctx, fdpURIs); ok {
		return datasets
	}
	return s.Refresh(ctx, fdpURIs)
}

func (s *listingService) Cached(ctx context.Context, fdpURIs []string) ([]models.Dataset, bool) {
	if len(fdpURIs) == 0 {
		return []models.Dataset{}, true
	}

	datasets, ok, err := s.cache.Get(ctx, cache.KeyFor(fdpURIs))
	switch {
	case err != nil:
		s.logger.Warn("Dataset cache lookup failed", zap.Error(err))
		s.observe(cacheError)
		return nil, false
	case !ok:
		s.observe(cacheMiss)
		return nil, false
	}
	s.observe(cacheHit)
	return datasets, true
}

func (s *listingService) Refresh(ctx context.Context, fdpURIs []string) []models.Dataset {
	if len(fdpURIs) == 0 {
		return []models.Dataset{}
	}

	start := s.now()
	datasets := s.datasets.GetAllDatasets(ctx, fdpURIs)
	if s.observer != nil {
		s.observer.ObserveAggregation(len(datasets), s.now().Sub(start))
	}

	if err := s.cache.Set(ctx, cache.KeyFor(fdpURIs), datasets); err != nil {
		s.logger.Warn("Failed to cache datasets", zap.Error(err))
	}
	return datasets
}

func (s *listingService) Find(ctx context.Context, fdpURIs []string, hash string) (*models.Dataset, bool) {
	datasets, ok := s.Cached(ctx, fdpURIs)
	if !ok {
		return nil, false
	}
	for i := range datasets {
		if models.URIHash(datasets[i].URI) == hash {
			return &datasets[i], true
		}
	}
	return nil, false
}

func (s *listingService) Invalidate(ctx context.Context, fdpURIs []string) {
	if len(fdpURIs) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, cache.KeyFor(fdpURIs)); err != nil {
		s.logger.Warn("Failed to drop cached datasets", zap.Error(err))
	}
}

func (s *listingService) observe(result string) {
	if s.observer != nil {
		s.observer.ObserveCache(result)
	}
}
