// Package report renders a human-readable summary of one snapshot build:
// coverage ratios, missing tickers, and missing fields, as Markdown with an
// optional HTML rendering.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/snapshot"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/utils"
)

// RenderMarkdown produces the run report for one build result.
func RenderMarkdown(result *snapshot.Result) string {
	var b strings.Builder
	cov := result.Coverage

	fmt.Fprintf(&b, "# Snapshot Run %s\n\n", result.RunID)
	fmt.Fprintf(&b, "- **Cutoff:** %s\n", utils.FormatDate(result.Cutoff))
	fmt.Fprintf(&b, "- **Period type:** %s\n", result.PeriodType)
	fmt.Fprintf(&b, "- **Built at:** %s\n", result.BuiltAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- **Tickers:** %d requested, %d found, %d missing\n\n",
		cov.TotalTickers, len(cov.FoundTickers), len(cov.MissingTickers))

	b.WriteString("## Coverage\n\n")
	fmt.Fprintf(&b, "Overall core-field coverage: **%.1f%%**\n\n", cov.OverallCoveragePct)
	b.WriteString("| Statement | Fill ratio |\n|---|---|\n")
	for _, name := range sortedKeys(cov.StatementCoverage) {
		fmt.Fprintf(&b, "| %s | %.1f%% |\n", name, 100*cov.StatementCoverage[name])
	}
	b.WriteString("\n")

	if len(cov.TickerCoverage) > 0 {
		b.WriteString("## Per-ticker coverage\n\n")
		b.WriteString("| Ticker | Fill ratio | Filings |\n|---|---|---|\n")
		for _, t := range sortedKeys(cov.TickerCoverage) {
			fmt.Fprintf(&b, "| %s | %.1f%% | %d |\n", t, 100*cov.TickerCoverage[t], cov.FilingCounts[t])
		}
		b.WriteString("\n")
	}

	if len(cov.MissingTickers) > 0 {
		b.WriteString("## Missing tickers\n\n")
		for _, t := range cov.MissingTickers {
			if reason := cov.MissingReasons[t]; reason != "" {
				fmt.Fprintf(&b, "- `%s`: %s\n", t, reason)
			} else {
				fmt.Fprintf(&b, "- `%s`\n", t)
			}
		}
		b.WriteString("\n")
	}

	wroteHeader := false
	for _, table := range []string{"statements_income", "statements_balance", "statements_cashflow"} {
		fields := cov.MissingFields[table]
		if len(fields) == 0 {
			continue
		}
		if !wroteHeader {
			b.WriteString("## Fields with no data\n\n")
			wroteHeader = true
		}
		fmt.Fprintf(&b, "- **%s:** %s\n", table, strings.Join(fields, ", "))
	}
	if wroteHeader {
		b.WriteString("\n")
	}

	b.WriteString("## Tables\n\n")
	b.WriteString("| Table | Rows |\n|---|---|\n")
	fmt.Fprintf(&b, "| company_master | %d |\n", len(result.Tables.Companies))
	fmt.Fprintf(&b, "| filings | %d |\n", len(result.Tables.Filings))
	fmt.Fprintf(&b, "| statements_income | %d |\n", len(result.Tables.Income))
	fmt.Fprintf(&b, "| statements_balance | %d |\n", len(result.Tables.Balance))
	fmt.Fprintf(&b, "| statements_cashflow | %d |\n", len(result.Tables.Cashflow))
	fmt.Fprintf(&b, "| derived_metrics | %d |\n", len(result.Tables.Derived))

	return b.String()
}

// RenderHTML converts the Markdown report to standalone HTML.
func RenderHTML(result *snapshot.Result) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(RenderMarkdown(result)), &buf); err != nil {
		return "", fmt.Errorf("failed to render report HTML: %w", err)
	}
	return buf.String(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
