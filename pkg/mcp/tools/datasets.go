package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/datavisiting/fdp-explorer/pkg/fdp"
	"github.com/datavisiting/fdp-explorer/pkg/logging"
	"github.com/datavisiting/fdp-explorer/pkg/models"
	"github.com/datavisiting/fdp-explorer/pkg/services"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	maxDescriptionLen  = 500
)

// DatasetToolDeps contains dependencies for the dataset tools.
type DatasetToolDeps struct {
	Listings services.ListingService
	Client   services.FDPClient
	FDPURIs  []string // FDPs searched by search_datasets and list_themes
	Logger   *zap.Logger
}

// RegisterDatasetTools registers search_datasets, list_themes and fetch_fdp.
func RegisterDatasetTools(s *server.MCPServer, deps *DatasetToolDeps) {
	registerSearchDatasetsTool(s, deps)
	registerListThemesTool(s, deps)
	registerFetchFDPTool(s, deps)
}

// datasetSummary is the compact dataset form returned to MCP clients.
type datasetSummary struct {
	URI          string            `json:"uri"`
	Title        string            `json:"title"`
	FDPTitle     string            `json:"fdp_title"`
	Description  string            `json:"description,omitempty"`
	Themes       []models.ThemeRef `json:"themes,omitempty"`
	Keywords     []string          `json:"keywords,omitempty"`
	ContactEmail string            `json:"contact_email,omitempty"`
	LandingPage  string            `json:"landing_page,omitempty"`
}

func summarize(d models.Dataset) datasetSummary {
	return datasetSummary{
		URI:          d.URI,
		Title:        d.Title,
		FDPTitle:     d.FDPTitle,
		Description:  logging.TruncateString(d.Description, maxDescriptionLen),
		Themes:       d.ThemeRefs(),
		Keywords:     d.Keywords,
		ContactEmail: d.ContactEmail(),
		LandingPage:  d.LandingPage,
	}
}

type searchDatasetsResult struct {
	Query    string           `json:"query,omitempty"`
	Theme    string           `json:"theme,omitempty"`
	Total    int              `json:"total"`
	Datasets []datasetSummary `json:"datasets"`
}

func registerSearchDatasetsTool(s *server.MCPServer, deps *DatasetToolDeps) {
	tool := mcp.NewTool(
		"search_datasets",
		mcp.WithDescription(
			"Search datasets published by the configured FAIR Data Points. "+
				"Results are ranked by relevance: title matches first, then description, keywords and themes. "+
				"An empty query returns every dataset. "+
				"Example: search_datasets(query='cancer registry', limit=5).",
		),
		mcp.WithString(
			"query",
			mcp.Description("Free-text query; whitespace-separated terms are matched case-insensitively"),
		),
		mcp.WithString(
			"theme",
			mcp.Description("Only return datasets with this exact theme URI (see list_themes)"),
		),
		mcp.WithNumber(
			"limit",
			mcp.Description(fmt.Sprintf("Maximum number of results (default %d, max %d)", defaultSearchLimit, maxSearchLimit)),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := strings.TrimSpace(req.GetString("query", ""))
		theme := strings.TrimSpace(req.GetString("theme", ""))

		limit := req.GetInt("limit", defaultSearchLimit)
		if limit < 1 {
			return NewErrorResult("invalid_parameters", "limit must be at least 1"), nil
		}
		limit = min(limit, maxSearchLimit)

		datasets := deps.Listings.Get(ctx, deps.FDPURIs)
		datasets = services.Search(datasets, query)
		if theme != "" {
			datasets = services.FilterByTheme(datasets, theme)
		}

		result := searchDatasetsResult{
			Query:    query,
			Theme:    theme,
			Total:    len(datasets),
			Datasets: make([]datasetSummary, 0, min(limit, len(datasets))),
		}
		for i := 0; i < len(datasets) && i < limit; i++ {
			result.Datasets = append(result.Datasets, summarize(datasets[i]))
		}

		deps.Logger.Debug("search_datasets",
			zap.String("query", query),
			zap.String("theme", theme),
			zap.Int("matches", result.Total))

		return jsonResult(result)
	})
}

func registerListThemesTool(s *server.MCPServer, deps *DatasetToolDeps) {
	tool := mcp.NewTool(
		"list_themes",
		mcp.WithDescription(
			"List the themes used by datasets of the configured FAIR Data Points, "+
				"with the number of datasets per theme, most common first. "+
				"Pass a theme URI to search_datasets to filter by it.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		themes := services.GetAvailableThemes(deps.Listings.Get(ctx, deps.FDPURIs))
		return jsonResult(map[string]any{
			"themes": themes,
			"total":  len(themes),
		})
	})
}

func registerFetchFDPTool(s *server.MCPServer, deps *DatasetToolDeps) {
	tool := mcp.NewTool(
		"fetch_fdp",
		mcp.WithDescription(
			"Fetch the metadata of a FAIR Data Point: title, publisher, catalogs and, "+
				"for index FDPs, the linked FDPs. Works for any FDP URL, not only configured ones.",
		),
		mcp.WithString(
			"uri",
			mcp.Required(),
			mcp.Description("FDP root URL (http or https)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		uri, err := req.RequireString("uri")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		uri = strings.TrimSpace(uri)
		if err := fdp.ValidateURI(uri); err != nil {
			return NewErrorResult("invalid_parameters", "uri must be an http or https URL"), nil
		}

		f, err := deps.Client.FetchFDP(ctx, uri)
		if err != nil {
			deps.Logger.Warn("fetch_fdp failed",
				zap.String("uri", logging.SanitizeURL(uri)),
				zap.Error(err))
			return NewFetchErrorResult(err), nil
		}
		return jsonResult(f)
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
