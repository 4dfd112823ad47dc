package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/datavisiting/fdp-explorer/pkg/fdp"
	"github.com/datavisiting/fdp-explorer/pkg/logging"
	"github.com/datavisiting/fdp-explorer/pkg/models"
	"github.com/datavisiting/fdp-explorer/pkg/seeds"
)

// SeedFetcher is the part of the FDP client needed to resolve seeds.
type SeedFetcher interface {
	FetchFDP(ctx context.Context, uri string) (*models.FairDataPoint, error)
	FetchAllFromIndex(ctx context.Context, uri string) ([]models.FairDataPoint, error)
}

// ResolveSeeds fetches every seed, expanding index seeds into the FDPs they
// link to. The result holds each FDP once, in seed order. A seed that cannot
// be fetched is kept with status "error" so that it can be refreshed later.
func ResolveSeeds(ctx context.Context, client SeedFetcher, list []seeds.Seed, logger *zap.Logger) []models.FairDataPoint {
	logger = logger.Named("seeds")

	var out []models.FairDataPoint
	seen := make(map[string]bool)
	add := func(f models.FairDataPoint) {
		if seen[f.URI] {
			return
		}
		seen[f.URI] = true
		out = append(out, f)
	}

	for _, seed := range list {
		if seed.Index {
			all, err := client.FetchAllFromIndex(ctx, seed.URI)
			if err != nil {
				logger.Warn("Failed to expand index seed",
					zap.String("uri", logging.SanitizeURL(seed.URI)),
					zap.Error(err))
				add(unreachableSeed(seed, err))
				continue
			}
			for _, f := range all {
				add(f)
			}
			continue
		}

		f, err := client.FetchFDP(ctx, seed.URI)
		if err != nil {
			logger.Warn("Failed to fetch seed FDP",
				zap.String("uri", logging.SanitizeURL(seed.URI)),
				zap.Error(err))
			add(unreachableSeed(seed, err))
			continue
		}
		add(*f)
	}

	logger.Info("Resolved seed FDPs", zap.Int("seeds", len(list)), zap.Int("fdps", len(out)))
	return out
}

// FetchStatusMessage is the short error message stored on an FDP whose last
// fetch failed with err.
func FetchStatusMessage(err error) string {
	switch fdp.KindOf(err) {
	case fdp.KindParse:
		return "Could not parse metadata"
	case fdp.KindTimeout:
		return "Request timed out"
	default:
		return "Could not connect"
	}
}

func unreachableSeed(seed seeds.Seed, err error) models.FairDataPoint {
	return models.FairDataPoint{
		URI:          fdp.NormalizeURI(seed.URI),
		Title:        seed.URI,
		IsIndex:      seed.Index,
		Catalogs:     []string{},
		Status:       models.FDPStatusError,
		ErrorMessage: FetchStatusMessage(err),
	}
}
