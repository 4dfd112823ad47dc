package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/datavisiting/fdp-explorer/pkg/logging"
	"github.com/datavisiting/fdp-explorer/pkg/models"
	"github.com/datavisiting/fdp-explorer/pkg/workerpool"
)

// FDPResolver is the subset of the FDP client the aggregation needs.
type FDPResolver interface {
	FetchFDP(ctx context.Context, uri string) (*models.FairDataPoint, error)
	FetchCatalogWithDatasets(ctx context.Context, catalogURI, fdpURI, fdpTitle string) ([]models.Dataset, error)
}

// FDPClient is the full FDP client surface used by the HTTP and MCP layers.
type FDPClient interface {
	FDPResolver
	FetchAllFromIndex(ctx context.Context, uri string) ([]models.FairDataPoint, error)
	FetchCatalog(ctx context.Context, uri, fdpURI string) (*models.Catalog, error)
	FetchDataset(ctx context.Context, uri, catalogURI, fdpURI, fdpTitle string) (*models.Dataset, error)
}

// DatasetService aggregates datasets across FAIR Data Points.
type DatasetService interface {
	// GetAllDatasets resolves every FDP and collects the datasets of all of
	// its catalogs. Unreachable or unparsable FDPs and catalogs are logged and
	// skipped; the call itself never fails. Order: FDP input order, then
	// catalog order, then dataset order within each catalog.
	GetAllDatasets(ctx context.Context, fdpURIs []string) []models.Dataset
}

type datasetService struct {
	resolver FDPResolver
	pool     *workerpool.Pool
	logger   *zap.Logger
}

// NewDatasetService creates a dataset service. FDPs and catalogs are fetched
// through pool; a pool limited to one item gives fully sequential fetching.
func NewDatasetService(resolver FDPResolver, pool *workerpool.Pool, logger *zap.Logger) DatasetService {
	return &datasetService{
		resolver: resolver,
		pool:     pool,
		logger:   logger.Named("dataset-service"),
	}
}

var _ DatasetService = (*datasetService)(nil)

type catalogJob struct {
	catalogURI string
	fdpURI     string
	fdpTitle   string
}

func (s *datasetService) GetAllDatasets(ctx context.Context, fdpURIs []string) []models.Dataset {
	fdpItems := make([]workerpool.WorkItem[*models.FairDataPoint], len(fdpURIs))
	for i, uri := range fdpURIs {
		fdpItems[i] = workerpool.WorkItem[*models.FairDataPoint]{
			ID: uri,
			Execute: func(ctx context.Context) (*models.FairDataPoint, error) {
				return s.resolver.FetchFDP(ctx, uri)
			},
		}
	}

	var jobs []catalogJob
	for _, r := range workerpool.Process(ctx, s.pool, fdpItems, nil) {
		if r.Err != nil {
			s.logger.Warn("Skipping FDP",
				zap.String("uri", logging.SanitizeURL(r.ID)),
				zap.Error(r.Err))
			continue
		}
		for _, catalogURI := range r.Result.Catalogs {
			jobs = append(jobs, catalogJob{catalogURI: catalogURI, fdpURI: r.Result.URI, fdpTitle: r.Result.Title})
		}
	}

	catalogItems := make([]workerpool.WorkItem[[]models.Dataset], len(jobs))
	for i, job := range jobs {
		catalogItems[i] = workerpool.WorkItem[[]models.Dataset]{
			ID: job.catalogURI,
			Execute: func(ctx context.Context) ([]models.Dataset, error) {
				return s.resolver.FetchCatalogWithDatasets(ctx, job.catalogURI, job.fdpURI, job.fdpTitle)
			},
		}
	}

	datasets := []models.Dataset{}
	for i, r := range workerpool.Process(ctx, s.pool, catalogItems, nil) {
		if r.Err != nil {
			s.logger.Warn("Skipping catalog",
				zap.String("catalog", logging.SanitizeURL(r.ID)),
				zap.String("fdp", logging.SanitizeURL(jobs[i].fdpURI)),
				zap.Error(r.Err))
			continue
		}
		datasets = append(datasets, r.Result...)
	}

	s.logger.Info("Aggregated datasets",
		zap.Int("fdps", len(fdpURIs)),
		zap.Int("catalogs", len(jobs)),
		zap.Int("datasets", len(datasets)))
	return datasets
}
