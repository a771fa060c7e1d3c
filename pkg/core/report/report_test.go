package report

import (
	"strings"
	"testing"
	"time"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/data"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/snapshot"
)

func sampleResult() *snapshot.Result {
	return &snapshot.Result{
		RunID:      "3f2c1ab0-0000-0000-0000-000000000000",
		Cutoff:     time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC),
		PeriodType: "annual",
		BuiltAt:    time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
		Tables: data.Tables{
			Companies: []data.CompanyRow{{Ticker: "AAPL", CIK: "0000320193"}},
			Filings:   []data.FilingRow{{Ticker: "AAPL"}},
			Income:    []data.IncomeRow{{}},
		},
		Coverage: snapshot.CoverageReport{
			TotalTickers:   2,
			FoundTickers:   []string{"AAPL"},
			MissingTickers: []string{"FAKETICK"},
			MissingReasons: map[string]string{"FAKETICK": "ticker not in registry"},
			MissingFields: map[string][]string{
				data.TableIncome: {"ebitda"},
			},
			FilingCounts:       map[string]int{"AAPL": 1},
			CoverageRatio:      0.5,
			OverallCoveragePct: 44.4,
			StatementCoverage:  map[string]float64{data.TableIncome: 0.66},
			TickerCoverage:     map[string]float64{"AAPL": 0.66},
		},
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(sampleResult())

	for _, want := range []string{
		"# Snapshot Run 3f2c1ab0",
		"**Cutoff:** 2016-12-31",
		"2 requested, 1 found, 1 missing",
		"| statements_income | 66.0% |",
		"| AAPL | 66.0% | 1 |",
		"`FAKETICK`: ticker not in registry",
		"**statements_income:** ebitda",
		"| filings | 1 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<table>") {
		t.Error("HTML rendering lost the heading or the GFM tables")
	}
}
