package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/datavisiting/fdp-explorer/pkg/logging"
)

// Output formats
const (
	outputJSON  = "json"
	outputYAML  = "yaml"
	outputTable = "table"
)

// maxCellLen bounds table cells.
const maxCellLen = 60

// printResult writes data in the selected format. table renders the table
// format; json and yaml encode data itself.
func printResult(cmd *cobra.Command, opts *options, data any, table func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	switch opts.output {
	case outputJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case outputYAML:
		return writeYAML(out, data)
	default:
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		table(w)
		return w.Flush()
	}
}

// writeYAML encodes data with the same keys as its JSON form.
func writeYAML(out io.Writer, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	encoder := yaml.NewEncoder(out)
	defer encoder.Close()
	return encoder.Encode(generic)
}

// printFields prints label/value rows, skipping empty values.
func printFields(w io.Writer, rows [][2]string) {
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(w, "%s:\t%s\n", row[0], row[1])
	}
}

// printRows prints a header line followed by one line per row.
func printRows(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = cell(c)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
}

func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return logging.TruncateString(s, maxCellLen)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
