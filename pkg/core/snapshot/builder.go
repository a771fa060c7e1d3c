package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/config"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/data"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/edgar"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/utils"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/xbrl"
)

// Builder runs snapshot builds. One Client is shared across all workers so
// the token bucket and response cache throttle the whole build; the CIK map
// is loaded once and read-only afterwards.
type Builder struct {
	cfg      config.EngineConfig
	client   *edgar.Client
	ciks     *edgar.CIKMapper
	validate bool
	log      zerolog.Logger
}

// NewBuilder wires a builder over an engine config and a ready client.
// With validate true, schema violations in the assembled tables fail the
// build; otherwise they are logged as warnings.
func NewBuilder(cfg config.EngineConfig, client *edgar.Client, validate bool) *Builder {
	return &Builder{
		cfg:      cfg,
		client:   client,
		ciks:     edgar.NewCIKMapper(client),
		validate: validate,
		log:      config.ComponentLogger("snapshot"),
	}
}

// tickerResult is one worker's output. Rows for the ticker stay contiguous
// when merged: results are collected by request slot, not completion order.
type tickerResult struct {
	ticker   string
	company  *data.CompanyRow
	filings  []data.FilingRow
	income   []data.IncomeRow
	balance  []data.BalanceRow
	cashflow []data.CashflowRow
	err      error
}

// Build executes the full pipeline for one request and returns the
// assembled tables plus a coverage report. Per-ticker failures are recorded
// in the report instead of failing the run; a CutoffViolationError anywhere
// aborts the build, because it means the point-in-time gate is broken.
func (b *Builder) Build(ctx context.Context, req Request) (*Result, error) {
	opts := ResolveOptions(req, &b.cfg)
	if err := opts.AssertPITSafe(); err != nil {
		return nil, err
	}
	if len(req.Tickers) == 0 {
		return nil, fmt.Errorf("snapshot request has no tickers")
	}
	if req.Cutoff.IsZero() {
		return nil, fmt.Errorf("snapshot request has no cutoff date")
	}
	if req.PeriodType != edgar.PeriodAnnual && req.PeriodType != edgar.PeriodQuarterly {
		return nil, fmt.Errorf("unsupported period type %q (want annual or quarterly)", req.PeriodType)
	}

	start := time.Now()
	b.log.Info().
		Int("tickers", len(req.Tickers)).
		Str("cutoff", utils.FormatDate(req.Cutoff)).
		Str("period", string(req.PeriodType)).
		Bool("amendments", opts.AllowAmendments).
		Msg("starting snapshot build")

	if err := b.ciks.Load(ctx); err != nil {
		return nil, err
	}

	results := make([]tickerResult, len(req.Tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Concurrency)

	for i, raw := range req.Tickers {
		i, ticker := i, strings.ToUpper(strings.TrimSpace(raw))
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i] = tickerResult{ticker: ticker, err: gctx.Err()}
				return nil
			}
			res := b.buildTicker(gctx, ticker, req, opts)
			results[i] = res

			// A cutoff violation is never a per-ticker condition: it means
			// filings the index should have dropped reached the selector.
			var cv *CutoffViolationError
			if errors.As(res.err, &cv) {
				return cv
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tables, reasons := b.assemble(results)

	data.CheckBalanceSheetIdentity(tables.Balance)
	data.CheckCashflowReconciliation(tables.Cashflow)
	tables.Derived = ComputeDerived(tables.Income, tables.Balance)

	if b.validate {
		if err := data.AssertValid(tables); err != nil {
			return nil, err
		}
	} else {
		for table, violations := range data.Validate(tables) {
			b.log.Warn().Str("table", table).Strs("violations", violations).Msg("schema validation warnings")
		}
	}

	coverage := BuildCoverage(req.Tickers, tables, reasons)
	b.log.Info().
		Int("found", len(coverage.FoundTickers)).
		Int("missing", len(coverage.MissingTickers)).
		Dur("elapsed", time.Since(start)).
		Msg("snapshot build complete")

	return &Result{
		RunID:      uuid.NewString(),
		Cutoff:     utils.DateOnly(req.Cutoff),
		PeriodType: req.PeriodType,
		BuiltAt:    time.Now(),
		Tables:     *tables,
		Coverage:   coverage,
	}, nil
}

// buildTicker runs the sequential per-ticker chain: resolve CIK, fetch the
// PIT-gated filings index, select one filing per period, fetch companyfacts,
// and build the statement rows. Panics in the chain are converted into a
// per-ticker error so one bad payload cannot sink the pool.
func (b *Builder) buildTicker(ctx context.Context, ticker string, req Request, opts Options) (res tickerResult) {
	res.ticker = ticker
	defer func() {
		if r := recover(); r != nil {
			res = tickerResult{ticker: ticker, err: fmt.Errorf("panic while processing %s: %v", ticker, r)}
		}
	}()

	cik, err := b.ciks.Resolve(ctx, ticker)
	if err != nil {
		b.log.Warn().Str("ticker", ticker).Err(err).Msg("skipping ticker")
		res.err = err
		return res
	}

	filings, err := b.client.GetFilings(ctx, cik, ticker, req.Cutoff, req.PeriodType, opts.AllowAmendments)
	if err != nil {
		var notFound *edgar.FilingNotFoundError
		if errors.As(err, &notFound) {
			b.log.Warn().Str("ticker", ticker).Msg("no filings survive the cutoff, skipping")
		}
		res.err = err
		return res
	}

	selected, err := SelectFilings(filings, req.Cutoff, opts.AllowAmendments)
	if err != nil {
		res.err = err
		return res
	}

	facts, err := xbrl.FetchAllFacts(ctx, b.client, cik, ticker)
	if err != nil {
		b.log.Warn().Str("ticker", ticker).Err(err).Msg("companyfacts unavailable, skipping ticker")
		res.err = err
		return res
	}

	res.company = b.companyRow(ctx, ticker, cik)
	parser := xbrl.NewParser(ticker, cik)

	for _, f := range selected {
		res.filings = append(res.filings, data.FilingRow{
			Ticker:             f.Ticker,
			CIK:                f.CIK,
			Accession:          f.Accession,
			FormType:           f.FormType,
			FilingDate:         utils.FormatDate(f.FilingDate),
			AcceptanceDatetime: utils.FormatDateTime(f.AcceptanceDatetime),
			PeriodOfReport:     utils.FormatDate(f.PeriodOfReport),
			PrimaryDocURL:      b.primaryDocURL(ctx, f),
			Source:             "edgar",
		})

		annual := strings.HasPrefix(f.FormType, "10-K")
		asof := utils.DateOnly(f.AcceptanceDatetime)
		if inc := parser.BuildIncomeRow(facts, f.Accession, f.PeriodOfReport, req.Cutoff, asof, annual); inc != nil {
			res.income = append(res.income, *inc)
		}
		if bal := parser.BuildBalanceRow(facts, f.Accession, f.PeriodOfReport, req.Cutoff, asof); bal != nil {
			res.balance = append(res.balance, *bal)
		}
		if cf := parser.BuildCashflowRow(facts, f.Accession, f.PeriodOfReport, req.Cutoff, asof, annual); cf != nil {
			res.cashflow = append(res.cashflow, *cf)
		}
	}
	return res
}

// primaryDocURL locates the filing's main document. Modern submissions name
// it directly; older filings need the archive index scrape. Either way the
// URL is informational, so failures degrade to an empty column.
func (b *Builder) primaryDocURL(ctx context.Context, f edgar.FilingRecord) string {
	if url := edgar.PrimaryDocumentURL(f.CIK, f.Accession, f.PrimaryDocument); url != "" {
		return url
	}
	url, err := b.client.ResolvePrimaryDocument(ctx, f.CIK, f.Accession)
	if err != nil {
		b.log.Debug().Str("accession", f.Accession).Err(err).Msg("primary document not resolved")
		return ""
	}
	return url
}

// companyRow reads registrant metadata for the master table. The profile
// shares a cache entry with the filings fetch, so this never costs a second
// network round trip; failures degrade to a name-only row.
func (b *Builder) companyRow(ctx context.Context, ticker, cik string) *data.CompanyRow {
	row := &data.CompanyRow{Ticker: ticker, CIK: cik}
	if name, err := b.ciks.CompanyName(ctx, ticker); err == nil {
		row.CompanyName = name
	}
	profile, err := b.client.GetCompanyProfile(ctx, cik)
	if err != nil {
		b.log.Debug().Str("ticker", ticker).Err(err).Msg("company profile unavailable")
		return row
	}
	if profile.Name != "" {
		row.CompanyName = profile.Name
	}
	if profile.SIC != "" {
		row.SIC = data.String(profile.SIC)
	}
	if len(profile.Exchanges) > 0 {
		row.Exchange = data.String(profile.Exchanges[0])
	}
	return row
}

// assemble merges worker outputs in request order, so each ticker's rows are
// contiguous in every table, and collects skip reasons for the coverage
// report.
func (b *Builder) assemble(results []tickerResult) (*data.Tables, map[string]string) {
	tables := &data.Tables{}
	reasons := make(map[string]string)
	for _, res := range results {
		if res.err != nil {
			terr := &TickerError{Ticker: res.ticker, Err: res.err}
			b.log.Warn().Err(terr).Msg("ticker excluded from snapshot")
			reasons[res.ticker] = res.err.Error()
			continue
		}
		if res.company != nil {
			tables.Companies = append(tables.Companies, *res.company)
		}
		tables.Filings = append(tables.Filings, res.filings...)
		tables.Income = append(tables.Income, res.income...)
		tables.Balance = append(tables.Balance, res.balance...)
		tables.Cashflow = append(tables.Cashflow, res.cashflow...)
	}
	return tables, reasons
}
