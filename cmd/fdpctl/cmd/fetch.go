package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datavisiting/fdp-explorer/pkg/models"
)

func newFDPCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fdp <uri>",
		Short: "Fetch the metadata of one FAIR Data Point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger()
			f, err := opts.client(logger).FetchFDP(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, opts, f, func(w io.Writer) {
				printFields(w, [][2]string{
					{"URI", f.URI},
					{"Title", f.Title},
					{"Description", f.Description},
					{"Publisher", f.Publisher},
					{"Index", yesNo(f.IsIndex)},
					{"Catalogs", strings.Join(f.Catalogs, "\n\t")},
					{"Linked FDPs", strings.Join(f.LinkedFDPs, "\n\t")},
				})
			})
		},
	}
}

func newIndexCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "index <uri>",
		Short: "List the FAIR Data Points an index links to",
		Long: `Fetch an index FDP and every FDP it links to through fdp:metadataService.
The index itself is listed first. FDPs that cannot be fetched are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger()
			fdps, err := opts.client(logger).FetchAllFromIndex(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, opts, fdps, func(w io.Writer) {
				printFDPTable(w, fdps)
			})
		},
	}
}

func printFDPTable(w io.Writer, fdps []models.FairDataPoint) {
	rows := make([][]string, len(fdps))
	for i, f := range fdps {
		rows[i] = []string{f.Title, strconv.Itoa(len(f.Catalogs)), f.Status, f.URI}
	}
	printRows(w, []string{"TITLE", "CATALOGS", "STATUS", "URI"}, rows)
}

func newCatalogCmd(opts *options) *cobra.Command {
	var fdpURI string

	cmd := &cobra.Command{
		Use:   "catalog <uri>",
		Short: "Fetch the metadata of one catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger()
			c, err := opts.client(logger).FetchCatalog(cmd.Context(), args[0], fdpURI)
			if err != nil {
				return err
			}
			return printResult(cmd, opts, c, func(w io.Writer) {
				printFields(w, [][2]string{
					{"URI", c.URI},
					{"Title", c.Title},
					{"Description", c.Description},
					{"Publisher", c.Publisher},
					{"FDP", c.FDPURI},
					{"Datasets", fmt.Sprintf("%d", len(c.Datasets))},
				})
				for _, uri := range c.Datasets {
					fmt.Fprintf(w, "\t%s\n", uri)
				}
			})
		},
	}
	cmd.Flags().StringVar(&fdpURI, "fdp", "", "URI of the FDP serving the catalog")
	return cmd
}

func newDatasetCmd(opts *options) *cobra.Command {
	var catalogURI, fdpURI, fdpTitle string

	cmd := &cobra.Command{
		Use:   "dataset <uri>",
		Short: "Fetch the full metadata of one dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger()
			d, err := opts.client(logger).FetchDataset(cmd.Context(), args[0], catalogURI, fdpURI, fdpTitle)
			if err != nil {
				return err
			}
			return printResult(cmd, opts, d, func(w io.Writer) {
				printDataset(w, d)
			})
		},
	}
	cmd.Flags().StringVar(&catalogURI, "catalog", "", "URI of the catalog listing the dataset")
	cmd.Flags().StringVar(&fdpURI, "fdp", "", "URI of the FDP serving the dataset")
	cmd.Flags().StringVar(&fdpTitle, "fdp-title", "", "Title of the FDP serving the dataset")
	return cmd
}

func printDataset(w io.Writer, d *models.Dataset) {
	themes := make([]string, 0, len(d.Themes))
	for _, ref := range d.ThemeRefs() {
		themes = append(themes, ref.Label)
	}
	contact := ""
	if d.ContactPoint != nil {
		contact = strings.TrimSpace(d.ContactPoint.Name + " <" + d.ContactPoint.Email + ">")
		if d.ContactPoint.Email == "" {
			contact = d.ContactPoint.Name
		}
	}

	printFields(w, [][2]string{
		{"URI", d.URI},
		{"Title", d.Title},
		{"Description", d.Description},
		{"Publisher", d.Publisher},
		{"Creator", d.Creator},
		{"Issued", formatDate(d.Issued)},
		{"Modified", formatDate(d.Modified)},
		{"Themes", strings.Join(themes, ", ")},
		{"Keywords", strings.Join(d.Keywords, ", ")},
		{"Contact", contact},
		{"Landing page", d.LandingPage},
		{"Distributions", strings.Join(d.Distributions, "\n\t")},
		{"Catalog", d.CatalogURI},
		{"FDP", d.FDPURI},
	})
}
