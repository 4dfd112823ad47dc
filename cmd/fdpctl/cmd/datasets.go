package cmd

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/datavisiting/fdp-explorer/pkg/models"
	"github.com/datavisiting/fdp-explorer/pkg/seeds"
	"github.com/datavisiting/fdp-explorer/pkg/services"
)

// errNoFDPs is returned when an aggregating command has nothing to aggregate.
var errNoFDPs = errors.New("no FDPs given: pass FDP URIs, --fdp or --seeds")

// sourceFlags selects the FDPs an aggregating command reads.
type sourceFlags struct {
	fdps      []string
	seedsFile string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&s.fdps, "fdp", nil, "FDP URI to aggregate (repeatable)")
	cmd.Flags().StringVar(&s.seedsFile, "seeds", "", "YAML seeds file listing FDPs and indexes")
}

// aggregate fetches every dataset of the selected FDPs. Index seeds are
// expanded first; FDPs that fail are skipped.
func (s *sourceFlags) aggregate(cmd *cobra.Command, opts *options, extra []string) ([]models.Dataset, error) {
	list, err := seeds.Load(s.seedsFile)
	if err != nil {
		return nil, err
	}
	uris := append(append([]string{}, extra...), s.fdps...)
	if len(uris) > 0 {
		direct, err := seeds.Parse(seedsYAML(uris))
		if err != nil {
			return nil, err
		}
		list = seeds.Merge(direct, list)
	}
	if len(list) == 0 {
		return nil, errNoFDPs
	}

	logger := opts.logger()
	client := opts.client(logger)

	fdpURIs := seeds.URIs(list)
	if hasIndex(list) {
		fdpURIs = fdpURIs[:0]
		for _, f := range services.ResolveSeeds(cmd.Context(), client, list, logger) {
			if f.Status != models.FDPStatusError {
				fdpURIs = append(fdpURIs, f.URI)
			}
		}
	}

	start := time.Now()
	datasets := opts.datasetService(client, logger).GetAllDatasets(cmd.Context(), fdpURIs)
	logger.Debug("Aggregated datasets",
		zap.Int("fdps", len(fdpURIs)),
		zap.Int("datasets", len(datasets)),
		zap.Duration("elapsed", time.Since(start)))
	return datasets, nil
}

func hasIndex(list []seeds.Seed) bool {
	for _, s := range list {
		if s.Index {
			return true
		}
	}
	return false
}

// seedsYAML renders plain URIs as a seeds document so they go through the
// same validation as a seeds file.
func seedsYAML(uris []string) []byte {
	var b strings.Builder
	for _, uri := range uris {
		b.WriteString("- uri: " + strconv.Quote(uri) + "\n")
	}
	return []byte(b.String())
}

func newDatasetsCmd(opts *options) *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "datasets [fdp-uri...]",
		Short: "List the datasets of one or more FDPs",
		RunE: func(cmd *cobra.Command, args []string) error {
			datasets, err := src.aggregate(cmd, opts, args)
			if err != nil {
				return err
			}
			return printResult(cmd, opts, datasets, func(w io.Writer) {
				printDatasetTable(w, datasets)
			})
		},
	}
	src.register(cmd)
	return cmd
}

func newSearchCmd(opts *options) *cobra.Command {
	var (
		src    sourceFlags
		theme  string
		sortBy string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the datasets of one or more FDPs",
		Long: `Rank datasets by relevance to the query. Title matches weigh most, then
keywords, description and theme labels.

Examples:
  fdpctl search "cancer registry" --seeds fdps.yaml
  fdpctl search tumour --fdp https://fdp.example.org --theme http://example.org/theme/Oncology`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			datasets, err := src.aggregate(cmd, opts, nil)
			if err != nil {
				return err
			}

			results := services.Search(datasets, strings.TrimSpace(args[0]))
			if theme != "" {
				results = services.FilterByTheme(results, theme)
			}
			results = append([]models.Dataset{}, results...)
			services.SortDatasets(results, sortBy)
			if limit > 0 && len(results) > limit {
				results = results[:limit]
			}

			return printResult(cmd, opts, results, func(w io.Writer) {
				printDatasetTable(w, results)
			})
		},
	}
	src.register(cmd)
	cmd.Flags().StringVar(&theme, "theme", "", "Only datasets with this theme URI")
	cmd.Flags().StringVar(&sortBy, "sort", services.SortByRelevance, "Sort order (relevance, title, modified, fdp)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results (0 for all)")
	return cmd
}

func newThemesCmd(opts *options) *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "themes [fdp-uri...]",
		Short: "List the themes used by the datasets of one or more FDPs",
		RunE: func(cmd *cobra.Command, args []string) error {
			datasets, err := src.aggregate(cmd, opts, args)
			if err != nil {
				return err
			}
			themes := services.GetAvailableThemes(datasets)
			return printResult(cmd, opts, themes, func(w io.Writer) {
				rows := make([][]string, len(themes))
				for i, t := range themes {
					rows[i] = []string{t.Label, strconv.Itoa(t.Count), t.URI}
				}
				printRows(w, []string{"THEME", "DATASETS", "URI"}, rows)
			})
		},
	}
	src.register(cmd)
	return cmd
}

func printDatasetTable(w io.Writer, datasets []models.Dataset) {
	rows := make([][]string, len(datasets))
	for i, d := range datasets {
		labels := make([]string, len(d.Themes))
		for j := range d.Themes {
			labels[j] = d.ThemeLabel(j)
		}
		rows[i] = []string{d.Title, d.FDPTitle, strings.Join(labels, ", "), d.URI}
	}
	printRows(w, []string{"TITLE", "FDP", "THEMES", "URI"}, rows)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
