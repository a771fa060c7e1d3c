package snapshot

import (
	"math"
	"strings"
	"testing"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/data"
)

func TestBuildCoverageTickerPartition(t *testing.T) {
	tables := &data.Tables{
		Filings: []data.FilingRow{
			{Ticker: "AAPL", CIK: "0000320193", Accession: "0000320193-16-000106"},
			{Ticker: "AAPL", CIK: "0000320193", Accession: "0000320193-15-000106"},
		},
	}
	reasons := map[string]string{"FAKETICK": "ticker not in registry"}

	report := BuildCoverage([]string{"aapl", "FAKETICK"}, tables, reasons)
	if report.TotalTickers != 2 {
		t.Errorf("total_tickers = %d", report.TotalTickers)
	}
	if len(report.FoundTickers) != 1 || report.FoundTickers[0] != "AAPL" {
		t.Errorf("found = %v", report.FoundTickers)
	}
	if len(report.MissingTickers) != 1 || report.MissingTickers[0] != "FAKETICK" {
		t.Errorf("missing = %v", report.MissingTickers)
	}
	if report.MissingReasons["FAKETICK"] != "ticker not in registry" {
		t.Errorf("missing reason not carried: %v", report.MissingReasons)
	}
	if report.CoverageRatio != 0.5 {
		t.Errorf("coverage_ratio = %v", report.CoverageRatio)
	}
	if report.FilingCounts["AAPL"] != 2 {
		t.Errorf("filing count = %d", report.FilingCounts["AAPL"])
	}
}

func TestBuildCoverageFillRatios(t *testing.T) {
	full := data.IncomeRow{StatementMeta: data.StatementMeta{Ticker: "AAPL"}}
	full.Revenue = data.Float(1)
	full.NetIncome = data.Float(1)
	full.EBIT = data.Float(1)

	partial := data.IncomeRow{StatementMeta: data.StatementMeta{Ticker: "MSFT"}}
	partial.Revenue = data.Float(1)
	// net_income and ebit unresolved.

	tables := &data.Tables{
		Filings: []data.FilingRow{{Ticker: "AAPL"}, {Ticker: "MSFT"}},
		Income:  []data.IncomeRow{full, partial},
	}
	report := BuildCoverage([]string{"AAPL", "MSFT"}, tables, nil)

	// 4 of 6 core income cells filled.
	if got := report.StatementCoverage[data.TableIncome]; math.Abs(got-4.0/6.0) > 1e-9 {
		t.Errorf("income coverage = %v, want 4/6", got)
	}
	if got := report.TickerCoverage["AAPL"]; got != 1.0 {
		t.Errorf("AAPL coverage = %v, want 1", got)
	}
	if got := report.TickerCoverage["MSFT"]; math.Abs(got-1.0/3.0) > 1e-9 {
		t.Errorf("MSFT coverage = %v, want 1/3", got)
	}
}

func TestBuildCoverageMissingFields(t *testing.T) {
	row := data.IncomeRow{StatementMeta: data.StatementMeta{Ticker: "AAPL"}}
	row.Revenue = data.Float(1)

	tables := &data.Tables{
		Filings: []data.FilingRow{{Ticker: "AAPL"}},
		Income:  []data.IncomeRow{row},
	}
	report := BuildCoverage([]string{"AAPL"}, tables, nil)

	missing := report.MissingFields[data.TableIncome]
	if contains(missing, "revenue") {
		t.Error("revenue resolved but reported missing")
	}
	if !contains(missing, "ebitda") {
		t.Errorf("ebitda never resolved but not reported: %v", missing)
	}

	// Empty tables mark every field with the no-data suffix.
	balMissing := report.MissingFields[data.TableBalance]
	if len(balMissing) == 0 {
		t.Fatal("empty balance table should report all fields")
	}
	for _, f := range balMissing {
		if !strings.HasSuffix(f, " (no_data)") {
			t.Errorf("empty-table field %q lacks (no_data) marker", f)
		}
	}
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
