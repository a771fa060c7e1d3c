// Command snapshot builds point-in-time fundamental snapshots from SEC EDGAR.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/config"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/data"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/edgar"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/report"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/snapshot"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/store"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/utils"
)

var (
	flagTickers     []string
	flagTickersFile string
	flagCutoff      string
	flagPeriod      string
	flagOut         string
	flagFormat      string
	flagUserAgent   string
	flagAmendments  bool
	flagLogLevel    string
	flagConcurrency int
	flagValidate    bool
	flagStore       bool
)

func main() {
	root := &cobra.Command{
		Use:   "snapshot",
		Short: "Point-in-time fundamental snapshots from SEC EDGAR",
		Long: "Builds standardized financial-statement snapshots containing only data\n" +
			"that was publicly available on a given cutoff date.",
		SilenceUsage: true,
	}

	pull := &cobra.Command{
		Use:   "pull",
		Short: "Build a snapshot and write the output tables",
		RunE:  runPull,
	}
	pull.Flags().StringSliceVarP(&flagTickers, "tickers", "t", nil, "tickers to snapshot (comma-separated)")
	pull.Flags().StringVar(&flagTickersFile, "tickers-file", "", "watchlist file (JSON or HJSON) with tickers")
	pull.Flags().StringVarP(&flagCutoff, "cutoff", "c", "", "point-in-time cutoff date, YYYY-MM-DD (required)")
	pull.Flags().StringVarP(&flagPeriod, "period", "p", "annual", "period type: annual or quarterly")
	pull.Flags().StringVarP(&flagOut, "out", "o", "", "output directory (default from config)")
	pull.Flags().StringVar(&flagFormat, "fmt", "csv", "output format: csv or json")
	pull.Flags().StringVar(&flagUserAgent, "user-agent", "", "SEC User-Agent header, \"Name/Version email\"")
	pull.Flags().BoolVar(&flagAmendments, "amendments", true, "prefer /A amendments over original filings")
	pull.Flags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	pull.Flags().IntVar(&flagConcurrency, "concurrency", 0, "parallel ticker workers (default from config)")
	pull.Flags().BoolVar(&flagValidate, "validate", true, "fail the run on schema violations")
	pull.Flags().BoolVar(&flagStore, "store", false, "also persist the snapshot to Postgres (DATABASE_URL)")
	pull.MarkFlagRequired("cutoff")
	root.AddCommand(pull)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runPull(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagUserAgent != "" {
		cfg.UserAgent = flagUserAgent
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagConcurrency > 0 {
		cfg.Concurrency = flagConcurrency
	}
	if flagOut != "" {
		cfg.OutputDir = flagOut
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	config.SetupLogging(cfg.LogLevel, cfg.LogJSON)

	cutoff, err := utils.ParseDate(flagCutoff)
	if err != nil {
		return fmt.Errorf("invalid --cutoff: %w", err)
	}
	format, err := data.ParseFormat(flagFormat)
	if err != nil {
		return err
	}

	tickers := flagTickers
	if flagTickersFile != "" {
		raw, err := os.ReadFile(flagTickersFile)
		if err != nil {
			return fmt.Errorf("read tickers file: %w", err)
		}
		fromFile, err := utils.LoadWatchlist(raw)
		if err != nil {
			return err
		}
		tickers = append(tickers, fromFile...)
	}
	if len(tickers) == 0 {
		return fmt.Errorf("no tickers given: use --tickers or --tickers-file")
	}

	// Ctrl-C cancels cooperatively: in-flight requests finish, no new ones
	// start, and whatever was built is still written out.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cache edgar.Cache
	if flagStore {
		if err := store.InitDB(ctx, cfg.DatabaseURL); err != nil {
			return err
		}
		defer store.Close()
		files, err := edgar.NewFileCache(cfg.CacheDir, cfg.CacheSizeGB)
		if err != nil {
			return err
		}
		cache = store.NewHybridHTTPCache(store.GetPool(), files)
	}

	client, err := edgar.NewClient(edgar.ClientConfig{
		UserAgent:   cfg.UserAgent,
		CacheDir:    cfg.CacheDir,
		CacheSizeGB: cfg.CacheSizeGB,
		RateLimit:   cfg.SECRateLimitRPS,
		Cache:       cache,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	builder := snapshot.NewBuilder(cfg, client, flagValidate)
	result, err := builder.Build(ctx, snapshot.Request{
		Tickers:           tickers,
		Cutoff:            cutoff,
		PeriodType:        edgar.PeriodType(flagPeriod),
		IncludeAmendments: &flagAmendments,
	})
	if err != nil {
		return err
	}

	outDir := filepath.Join(cfg.OutputDir, utils.FormatDate(result.Cutoff))
	written, err := data.WriteTables(outDir, &result.Tables, format, flagValidate)
	if err != nil {
		return err
	}

	if err := writeReports(outDir, result); err != nil {
		return err
	}

	if flagStore {
		if err := store.NewSnapshotRepo().Save(ctx, result); err != nil {
			return err
		}
		log.Info().Str("run_id", result.RunID).Msg("snapshot persisted to database")
	}

	fmt.Printf("\nSnapshot %s complete: %d/%d tickers, %d filings\n",
		result.RunID, len(result.Coverage.FoundTickers),
		result.Coverage.TotalTickers, len(result.Tables.Filings))
	for name, path := range written {
		fmt.Printf("  %-20s %s\n", name, path)
	}
	fmt.Printf("  %-20s %s\n", "report", filepath.Join(outDir, "report.md"))
	return nil
}

func writeReports(outDir string, result *snapshot.Result) error {
	coverageJSON, err := json.MarshalIndent(result.Coverage, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal coverage report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "coverage_report.json"), coverageJSON, 0o644); err != nil {
		return fmt.Errorf("write coverage report: %w", err)
	}

	md := report.RenderMarkdown(result)
	if err := os.WriteFile(filepath.Join(outDir, "report.md"), []byte(md), 0o644); err != nil {
		return fmt.Errorf("write report.md: %w", err)
	}
	html, err := report.RenderHTML(result)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "report.html"), []byte(html), 0o644); err != nil {
		return fmt.Errorf("write report.html: %w", err)
	}
	return nil
}
