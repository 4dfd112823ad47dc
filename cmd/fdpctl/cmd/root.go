// Package cmd implements fdpctl, a command-line client for FAIR Data Points.
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/datavisiting/fdp-explorer/pkg/fdp"
	"github.com/datavisiting/fdp-explorer/pkg/logging"
	"github.com/datavisiting/fdp-explorer/pkg/services"
	"github.com/datavisiting/fdp-explorer/pkg/workerpool"
)

// options holds the global flags.
type options struct {
	output      string // json, yaml, table
	timeout     time.Duration
	insecure    bool
	retries     int
	rateLimit   float64
	concurrency int
	verbose     bool
}

// NewRootCmd builds the fdpctl command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "fdpctl",
		Short: "Query FAIR Data Points from the command line",
		Long: `fdpctl fetches FAIR Data Point metadata, aggregates the datasets of one or
more FDPs and searches them, using the same extraction rules as the
fdp-explorer server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case outputJSON, outputYAML, outputTable:
				return nil
			default:
				return fmt.Errorf("unsupported output format: %s", opts.output)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.output, "output", "o", outputTable, "Output format (json, yaml, table)")
	flags.DurationVar(&opts.timeout, "timeout", fdp.DefaultTimeout, "Timeout per HTTP request")
	flags.BoolVar(&opts.insecure, "insecure", false, "Skip TLS certificate verification")
	flags.IntVar(&opts.retries, "retries", 0, "Extra attempts for retryable failures")
	flags.Float64Var(&opts.rateLimit, "rate", 0, "Maximum requests per second (0 for no limit)")
	flags.IntVar(&opts.concurrency, "concurrency", 4, "Maximum concurrent fetches when aggregating")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log fetches to stderr")

	rootCmd.AddCommand(
		newFDPCmd(opts),
		newIndexCmd(opts),
		newCatalogCmd(opts),
		newDatasetCmd(opts),
		newDatasetsCmd(opts),
		newSearchCmd(opts),
		newThemesCmd(opts),
	)
	return rootCmd
}

func (o *options) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	logger, err := logging.NewLogger("debug", "local")
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (o *options) client(logger *zap.Logger) *fdp.Client {
	return fdp.NewClient(fdp.Options{
		Timeout:       o.timeout,
		SkipTLSVerify: o.insecure,
		MaxRetries:    o.retries,
		RateLimit:     o.rateLimit,
	}, logger)
}

func (o *options) datasetService(client *fdp.Client, logger *zap.Logger) services.DatasetService {
	pool := workerpool.New(workerpool.Config{MaxConcurrent: o.concurrency}, logger)
	return services.NewDatasetService(client, pool, logger)
}
