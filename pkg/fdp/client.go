// Package fdp reads FAIR Data Point metadata: it fetches RDF documents over
// HTTP and turns FDP, catalog and dataset descriptions into typed models.
package fdp

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/datavisiting/fdp-explorer/pkg/apperrors"
	"github.com/datavisiting/fdp-explorer/pkg/logging"
	"github.com/datavisiting/fdp-explorer/pkg/models"
	"github.com/datavisiting/fdp-explorer/pkg/rdf"
	"github.com/datavisiting/fdp-explorer/pkg/vocab"
)

// GraphFetcher retrieves and parses one RDF document.
type GraphFetcher interface {
	Fetch(ctx context.Context, uri string) (*rdf.Graph, error)
}

// Client resolves FDPs, catalogs and datasets from their URIs. Nothing is
// cached: every call fetches.
type Client struct {
	fetcher GraphFetcher
	logger  *zap.Logger
	now     func() time.Time
}

// NewClient creates a client with an HTTP fetcher configured from opts.
func NewClient(opts Options, logger *zap.Logger) *Client {
	return NewClientWithFetcher(NewFetcher(opts, logger), logger)
}

// NewClientWithFetcher creates a client on top of an existing fetcher.
func NewClientWithFetcher(fetcher GraphFetcher, logger *zap.Logger) *Client {
	return &Client{
		fetcher: fetcher,
		logger:  logger.Named("fdp-client"),
		now:     time.Now,
	}
}

// NormalizeURI strips one trailing slash.
func NormalizeURI(uri string) string {
	return strings.TrimSuffix(uri, "/")
}

// subjectForms lists the subjects an FDP may be described under, in lookup
// priority order. FDP servers are inconsistent about the trailing slash, so
// both the normalized URI and its slashed variant are tried.
func subjectForms(normalized string) []rdf.Term {
	return []rdf.Term{rdf.IRI(normalized), rdf.IRI(normalized + "/")}
}

// literalAcross returns the first non-empty Literal across the forms.
func literalAcross(g *rdf.Graph, forms []rdf.Term, predicate string) string {
	for _, s := range forms {
		if v := Literal(g, s, predicate); v != "" {
			return v
		}
	}
	return ""
}

// urisAcross returns the first non-empty URIList across the forms.
func urisAcross(g *rdf.Graph, forms []rdf.Term, predicate string) []string {
	for _, s := range forms {
		if v := URIList(g, s, predicate); len(v) > 0 {
			return v
		}
	}
	return nil
}

// containerMembers collects the ldp:contains objects of every
// ldp:DirectContainer whose ldp:membershipResource is one of the given
// resources.
func containerMembers(g *rdf.Graph, resources []rdf.Term) []string {
	var out []string
	for _, container := range g.SubjectsWith(vocab.RDFType, rdf.IRI(vocab.LDPDirectContainer)) {
		if !isMemberOf(g, container, resources) {
			continue
		}
		out = append(out, URIList(g, container, vocab.LDPContains)...)
	}
	return out
}

func isMemberOf(g *rdf.Graph, container rdf.Term, resources []rdf.Term) bool {
	for _, m := range g.Objects(container, vocab.LDPMembershipResource) {
		for _, r := range resources {
			if m == r {
				return true
			}
		}
	}
	return false
}

// mergeUnique appends extra to base, skipping anything already present, and
// keeps first-seen order.
func mergeUnique(base []string, extra ...[]string) []string {
	seen := make(map[string]struct{}, len(base))
	out := make([]string, 0, len(base))
	for _, list := range append([][]string{base}, extra...) {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// titleOf applies the dct:title, rdfs:label, URI fallback chain.
func titleOf(g *rdf.Graph, forms []rdf.Term, fallback string) string {
	if v := literalAcross(g, forms, vocab.DCTTitle); v != "" {
		return v
	}
	if v := literalAcross(g, forms, vocab.RDFSLabel); v != "" {
		return v
	}
	return fallback
}

// FetchFDP fetches and parses the metadata of one FAIR Data Point.
//
// Every FDP-level predicate is looked up under both subject forms. Catalogs
// come from fdp:metadataCatalog; when that is empty, LDP DirectContainers
// pointing at the FDP are used instead.
func (c *Client) FetchFDP(ctx context.Context, uri string) (*models.FairDataPoint, error) {
	normalized := NormalizeURI(uri)
	g, err := c.fetcher.Fetch(ctx, normalized)
	if err != nil {
		return nil, err
	}

	forms := subjectForms(normalized)

	catalogs := urisAcross(g, forms, vocab.FDPMetadataCatalog)
	if len(catalogs) == 0 {
		catalogs = mergeUnique(nil, containerMembers(g, forms))
	}
	linked := urisAcross(g, forms, vocab.FDPMetadataService)

	now := c.now()
	fdp := &models.FairDataPoint{
		URI:         normalized,
		Title:       titleOf(g, forms, normalized),
		Description: literalAcross(g, forms, vocab.DCTDescription),
		Publisher:   literalAcross(g, forms, vocab.DCTPublisher),
		IsIndex:     len(linked) > 0,
		Catalogs:    catalogs,
		LinkedFDPs:  linked,
		LastFetched: &now,
		Status:      models.FDPStatusActive,
	}
	if fdp.Catalogs == nil {
		fdp.Catalogs = []string{}
	}

	c.logger.Debug("Resolved FDP",
		zap.String("uri", logging.SanitizeURL(normalized)),
		zap.Int("catalogs", len(fdp.Catalogs)),
		zap.Int("linked_fdps", len(linked)))
	return fdp, nil
}

// FetchCatalog fetches a catalog and lists its datasets. Unlike FetchFDP only
// the URI exactly as given is used as subject.
func (c *Client) FetchCatalog(ctx context.Context, uri, fdpURI string) (*models.Catalog, error) {
	g, err := c.fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}

	forms := []rdf.Term{rdf.IRI(uri)}
	return &models.Catalog{
		URI:         uri,
		Title:       titleOf(g, forms, uri),
		Description: literalAcross(g, forms, vocab.DCTDescription),
		Publisher:   literalAcross(g, forms, vocab.DCTPublisher),
		FDPURI:      fdpURI,
		Datasets:    catalogDatasetURIs(g, forms[0]),
		Themes:      URIList(g, forms[0], vocab.DCATThemeTaxonomy),
	}, nil
}

// catalogDatasetURIs merges dcat:dataset objects with LDP container members,
// deduplicated in first-seen order.
func catalogDatasetURIs(g *rdf.Graph, catalog rdf.Term) []string {
	return mergeUnique(
		URIList(g, catalog, vocab.DCATDataset),
		containerMembers(g, []rdf.Term{catalog}),
	)
}

// FetchCatalogWithDatasets fetches a catalog once and extracts a reduced
// description of each of its datasets from that same graph: title,
// description, publisher, creator and themes. No per-dataset request is made,
// so fields only present in the dataset's own document are left empty.
func (c *Client) FetchCatalogWithDatasets(ctx context.Context, catalogURI, fdpURI, fdpTitle string) ([]models.Dataset, error) {
	g, err := c.fetcher.Fetch(ctx, catalogURI)
	if err != nil {
		return nil, err
	}

	uris := catalogDatasetURIs(g, rdf.IRI(catalogURI))
	datasets := make([]models.Dataset, 0, len(uris))
	for _, uri := range uris {
		subject := []rdf.Term{rdf.IRI(uri)}
		datasets = append(datasets, models.Dataset{
			URI:         uri,
			Title:       titleOf(g, subject, uri),
			CatalogURI:  catalogURI,
			FDPURI:      fdpURI,
			FDPTitle:    fdpTitle,
			Description: Literal(g, subject[0], vocab.DCTDescription),
			Publisher:   Literal(g, subject[0], vocab.DCTPublisher),
			Creator:     Literal(g, subject[0], vocab.DCTCreator),
			Themes:      URIList(g, subject[0], vocab.DCATTheme),
		})
	}

	c.logger.Debug("Extracted catalog datasets",
		zap.String("catalog", logging.SanitizeURL(catalogURI)),
		zap.Int("datasets", len(datasets)))
	return datasets, nil
}

// FetchDataset fetches one dataset document and extracts every field,
// including dates, keywords, contact point and a label for each theme.
// ThemeLabels is aligned with Themes; a theme without a label gets "".
func (c *Client) FetchDataset(ctx context.Context, uri, catalogURI, fdpURI, fdpTitle string) (*models.Dataset, error) {
	g, err := c.fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}

	subject := rdf.IRI(uri)
	themes := URIList(g, subject, vocab.DCATTheme)
	var labels []string
	if len(themes) > 0 {
		labels = make([]string, len(themes))
		for i, theme := range themes {
			labels[i] = Literal(g, rdf.IRI(theme), vocab.RDFSLabel)
		}
	}

	var keywords []string
	for _, kw := range g.Objects(subject, vocab.DCATKeyword) {
		if kw.IsLiteral() {
			keywords = append(keywords, kw.Value)
		}
	}

	var landingPage string
	for _, lp := range g.Objects(subject, vocab.DCATLandingPage) {
		landingPage = lp.Value
		break
	}

	return &models.Dataset{
		URI:           uri,
		Title:         titleOf(g, []rdf.Term{subject}, uri),
		CatalogURI:    catalogURI,
		FDPURI:        fdpURI,
		FDPTitle:      fdpTitle,
		Description:   Literal(g, subject, vocab.DCTDescription),
		Publisher:     Literal(g, subject, vocab.DCTPublisher),
		Creator:       Literal(g, subject, vocab.DCTCreator),
		Issued:        ParseDate(Literal(g, subject, vocab.DCTIssued)),
		Modified:      ParseDate(Literal(g, subject, vocab.DCTModified)),
		Themes:        themes,
		ThemeLabels:   labels,
		Keywords:      keywords,
		ContactPoint:  ExtractContactPoint(g, subject),
		LandingPage:   landingPage,
		Distributions: URIList(g, subject, vocab.DCATDistribution),
	}, nil
}

// DiscoverFDPsFromIndex returns the fdp:metadataService links of an index FDP,
// using the URI exactly as given.
func (c *Client) DiscoverFDPsFromIndex(ctx context.Context, uri string) ([]string, error) {
	g, err := c.fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	return URIList(g, rdf.IRI(uri), vocab.FDPMetadataService), nil
}

// FetchAllFromIndex fetches an index FDP and every FDP it links to. A failure
// on the index itself is returned; a failure on a linked FDP becomes a
// placeholder entry with status error, so one bad endpoint does not hide the
// others. Placeholders carry the normalized URI and the advertised one as title. The index comes first, then linked FDPs in discovery order.
func (c *Client) FetchAllFromIndex(ctx context.Context, uri string) ([]models.FairDataPoint, error) {
	index, err := c.FetchFDP(ctx, uri)
	if err != nil {
		return nil, err
	}

	result := make([]models.FairDataPoint, 0, len(index.LinkedFDPs)+1)
	result = append(result, *index)

	for _, linked := range index.LinkedFDPs {
		fdp, err := c.FetchFDP(ctx, linked)
		if err != nil {
			c.logger.Warn("Failed to fetch linked FDP",
				zap.String("index", logging.SanitizeURL(index.URI)),
				zap.String("uri", logging.SanitizeURL(linked)),
				zap.Error(err))
			result = append(result, models.FairDataPoint{
				URI:          NormalizeURI(linked),
				Title:        linked,
				Catalogs:     []string{},
				Status:       models.FDPStatusError,
				ErrorMessage: err.Error(),
			})
			continue
		}
		result = append(result, *fdp)
	}
	return result, nil
}

// ValidateURI checks that uri is an absolute http or https URL. Failures wrap
// apperrors.ErrInvalidURL.
func ValidateURI(uri string) error {
	u, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", apperrors.ErrInvalidURL, uri, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q must use http or https", apperrors.ErrInvalidURL, uri)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q has no host", apperrors.ErrInvalidURL, uri)
	}
	return nil
}
