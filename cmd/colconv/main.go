package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/colconv/internal/pipeline"
	"github.com/ajitpratap0/colconv/pkg/config"
	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/connector/registry"
	"github.com/ajitpratap0/colconv/pkg/conversion"
	"github.com/ajitpratap0/colconv/pkg/culture"
	"github.com/ajitpratap0/colconv/pkg/logger"
	"github.com/ajitpratap0/colconv/pkg/models"
	"github.com/ajitpratap0/colconv/pkg/observability"

	// Import all available connectors to register them
	_ "github.com/ajitpratap0/colconv/pkg/connector/destinations"
	_ "github.com/ajitpratap0/colconv/pkg/connector/sources"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "colconv",
		Short: "colconv - typed column conversion",
		Long: `colconv reads a table, converts columns between the String, Int, DateTime,
Boolean, Double and Duration types and writes the table with the converted
columns appended.`,
		SilenceUsage: true,
	}

	root.AddCommand(versionCommand(), listCommand(), typesCommand(), matrixCommand(), runCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "colconv v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available connectors",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Available Source Connectors:")
			printConnectors(out, core.ConnectorTypeSource, registry.ListSources())
			fmt.Fprintln(out, "\nAvailable Destination Connectors:")
			printConnectors(out, core.ConnectorTypeDestination, registry.ListDestinations())
			fmt.Fprintf(out, "\nLocales: %s\n", strings.Join(culture.Supported(), ", "))
		},
	}
}

func printConnectors(out io.Writer, t core.ConnectorType, names []string) {
	for _, name := range names {
		if info, err := registry.GetConnectorInfo(t, name); err == nil {
			fmt.Fprintf(out, "  - %-10s %s\n", name, info.Description)
			continue
		}
		fmt.Fprintf(out, "  - %s\n", name)
	}
}

func typesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the scalar types accepted by --to",
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range models.ScalarTypes {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (alias of %s)\n", models.DurationAlias, models.Duration)
		},
	}
}

func matrixCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "matrix",
		Short: "Print which types each type converts to",
		Run: func(cmd *cobra.Command, args []string) {
			printMatrix(cmd.OutOrStdout())
		},
	}
}

func printMatrix(out io.Writer) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "from \\ to")
	for _, t := range models.ScalarTypes {
		fmt.Fprintf(tw, "\t%s", t)
	}
	fmt.Fprintln(tw)
	for _, s := range models.ScalarTypes {
		fmt.Fprint(tw, s)
		for _, t := range models.ScalarTypes {
			mark := "-"
			if conversion.IsSupported(s, t) {
				mark = "x"
			}
			fmt.Fprintf(tw, "\t%s", mark)
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()
}

func runCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a conversion",
		Long: `Run a conversion described by a YAML config file, by flags, or both.
Flags and COLCONV_* environment variables override the file; a conversion
given with --column and --to is appended to the configured ones.

Example:
  colconv run --source orders.csv --destination out.parquet \
    --column amount --to Double --name amount_num --locale de-DE`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err := resolveConfig(configFile, v)
			if err != nil {
				return err
			}
			return runPipeline(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "Path to a YAML run configuration")
	f.StringP("source", "s", "", "Input file, - for stdin")
	f.String("source-type", "", "Source connector (default: from the file extension)")
	f.StringP("destination", "d", "", "Output file, - for stdout")
	f.String("dest-type", "", "Destination connector (default: from the file extension)")
	f.String("delimiter", ",", "CSV field separator of the source")
	f.Bool("no-header", false, "The CSV source has no header line")
	f.Bool("annotations", false, "Write the annotation of every cell next to its value")
	f.String("compression", "auto", "Output compression (none, auto, gzip, zstd, s2, snappy, lz4)")
	f.String("column", "", "Column to convert")
	f.String("to", "", "Target type (see 'colconv types')")
	f.String("name", "", "Name of the converted column (default: '<column> (as <type>)')")
	f.String("exception-value", "", "Annotation of rows that fail to convert (default: N/A)")
	f.String("locale", culture.InvariantName, "Culture used to read and write text values")
	f.String("time-zone", "UTC", "IANA time zone of date-times without an offset")
	f.Int("batch-size", 1000, "Rows read before each conversion step")
	f.Int("workers", runtime.NumCPU(), "Goroutines converting a batch")
	f.Duration("timeout", 0, "Run timeout, 0 for none")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "json", "Log encoding (json, console)")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	f.Bool("trace", false, "Export trace spans to stderr")

	return cmd
}

// runPipeline executes the conversion described by cfg
func runPipeline(ctx context.Context, out io.Writer, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := logger.Init(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Encoding:    cfg.Observability.LogFormat,
		OutputPaths: []string{"stderr"},
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get().With(
		zap.String("component", "colconv-cli"),
		zap.String("source", cfg.Source.Type),
		zap.String("destination", cfg.Destination.Type),
	)

	tracing := observability.DefaultTracingConfig()
	tracing.Enabled = cfg.Observability.EnableTracing
	tracing.ServiceVersion = version
	tracing.SamplingRate = cfg.Observability.TracingSampleRate
	shutdown, err := observability.Init(tracing)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	if addr := cfg.Observability.MetricsAddr; addr != "" {
		srv := serveMetrics(addr, log)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	p, err := pipeline.FromConfig(cfg, log)
	if err != nil {
		return err
	}
	result, err := p.Run(ctx)
	if result != nil {
		printSummary(out, result)
	}
	if err != nil {
		return fmt.Errorf("pipeline execution failed: %w", err)
	}
	return nil
}

func serveMetrics(addr string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))
	return srv
}

func printSummary(out io.Writer, r *pipeline.Result) {
	// Keep stdout clean when it carries the output table.
	if out == os.Stdout {
		out = os.Stderr
	}
	fmt.Fprintf(out, "run %s: %d rows in %s\n", r.RunID, r.Rows, r.Duration.Round(time.Millisecond))
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "column\tconverted\tfailed")
	for _, op := range r.Operators() {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", op.Name, op.Rows-op.Failed, op.Failed)
	}
	_ = tw.Flush()
}
