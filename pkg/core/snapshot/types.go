// Package snapshot orchestrates point-in-time snapshot builds: it resolves
// tickers, walks the PIT-filtered filings index, selects one filing per
// fiscal period, parses XBRL facts into standardized rows, and assembles
// the output tables with derived metrics and a coverage report.
package snapshot

import (
	"fmt"
	"time"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/config"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/data"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/edgar"
)

// Request describes one snapshot build: which tickers, the knowledge
// cutoff, and the period selection flags.
//
// IncludeAmendments is a tri-state: nil defers to the engine config
// default, a non-nil value wins. AllowLTM and AllowEstimates default to
// false, the only PIT-safe setting.
type Request struct {
	Tickers           []string
	Cutoff            time.Time
	PeriodType        edgar.PeriodType
	IncludeAmendments *bool
	AllowLTM          bool
	AllowEstimates    bool
}

// Options is the merged view of a Request over the engine config, with one
// authoritative value per flag. Request fields win wherever they carry a
// value; the user agent always comes from config since it identifies the
// operator, not the request.
type Options struct {
	AllowAmendments bool
	AllowLTM        bool
	AllowEstimates  bool
	UserAgent       string
}

// ResolveOptions merges request overrides on top of engine defaults.
// Downstream components read flags only from the result, never from the
// request and config separately.
func ResolveOptions(req Request, cfg *config.EngineConfig) Options {
	allowAmendments := cfg.AllowAmendments
	if req.IncludeAmendments != nil {
		allowAmendments = *req.IncludeAmendments
	}
	return Options{
		AllowAmendments: allowAmendments,
		AllowLTM:        req.AllowLTM,
		AllowEstimates:  req.AllowEstimates,
		UserAgent:       cfg.UserAgent,
	}
}

// AssertPITSafe rejects option combinations that would leak future
// information into a backtest. Called at the top of every build so a
// misconfigured request fails before any network traffic.
func (o Options) AssertPITSafe() error {
	if o.AllowEstimates {
		return fmt.Errorf("allow_estimates=true is not permitted in point-in-time snapshots: estimate columns contain forward-looking data")
	}
	return nil
}

// CoverageReport documents snapshot completeness: which tickers produced
// rows, which fields never populated, and fill ratios per statement and
// per ticker.
type CoverageReport struct {
	TotalTickers       int                 `json:"total_tickers"`
	FoundTickers       []string            `json:"found_tickers"`
	MissingTickers     []string            `json:"missing_tickers"`
	MissingReasons     map[string]string   `json:"missing_reasons,omitempty"`
	MissingFields      map[string][]string `json:"missing_fields"`
	FilingCounts       map[string]int      `json:"filing_counts"`
	CoverageRatio      float64             `json:"coverage_ratio"`
	OverallCoveragePct float64             `json:"overall_coverage_pct"`
	StatementCoverage  map[string]float64  `json:"statement_coverage"`
	TickerCoverage     map[string]float64  `json:"ticker_coverage"`
}

// Result is the output of one snapshot build.
type Result struct {
	RunID      string             `json:"run_id"`
	Cutoff     time.Time          `json:"cutoff"`
	PeriodType edgar.PeriodType   `json:"period_type"`
	BuiltAt    time.Time          `json:"built_at"`
	Tables     data.Tables        `json:"tables"`
	Coverage   CoverageReport     `json:"coverage_report"`
}
