package snapshot

import (
	"sort"
	"strings"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/data"
)

// Core fields per statement: the ones a backtest cannot work without.
// Fill ratios are computed over these rather than the full column set, so
// a company that never tags an optional concept does not drag coverage down.
var coreFields = map[string][]string{
	data.TableIncome:   {"revenue", "net_income", "ebit"},
	data.TableBalance:  {"total_assets", "total_liabilities", "total_equity"},
	data.TableCashflow: {"cfo", "capex"},
}

// BuildCoverage summarizes how complete the snapshot turned out: which
// requested tickers produced rows, the per-statement and per-ticker fill
// ratios over the core fields, fields that never resolved anywhere, and the
// reason each missing ticker dropped out.
func BuildCoverage(requested []string, tables *data.Tables, reasons map[string]string) CoverageReport {
	found := make(map[string]bool)
	filingCounts := make(map[string]int)
	for _, f := range tables.Filings {
		found[f.Ticker] = true
		filingCounts[f.Ticker]++
	}

	var foundList, missingList []string
	missingReasons := make(map[string]string)
	for _, t := range requested {
		key := strings.ToUpper(strings.TrimSpace(t))
		if found[key] {
			foundList = append(foundList, key)
			continue
		}
		missingList = append(missingList, key)
		if r := reasons[key]; r != "" {
			missingReasons[key] = r
		}
	}
	sort.Strings(foundList)
	sort.Strings(missingList)

	income := newFillCounter(coreFields[data.TableIncome])
	for _, r := range tables.Income {
		income.add(r.Ticker, func(field string) bool { return incomeColumn(r, field) != nil })
	}
	balance := newFillCounter(coreFields[data.TableBalance])
	for _, r := range tables.Balance {
		balance.add(r.Ticker, func(field string) bool { return balanceColumn(r, field) != nil })
	}
	cashflow := newFillCounter(coreFields[data.TableCashflow])
	for _, r := range tables.Cashflow {
		cashflow.add(r.Ticker, func(field string) bool { return cashflowColumn(r, field) != nil })
	}

	report := CoverageReport{
		TotalTickers:   len(requested),
		FoundTickers:   foundList,
		MissingTickers: missingList,
		MissingReasons: missingReasons,
		MissingFields:  missingFields(tables),
		FilingCounts:   filingCounts,
		StatementCoverage: map[string]float64{
			data.TableIncome:   income.overall(),
			data.TableBalance:  balance.overall(),
			data.TableCashflow: cashflow.overall(),
		},
		TickerCoverage: mergeTickerFills(income, balance, cashflow),
	}
	if len(requested) > 0 {
		report.CoverageRatio = float64(len(foundList)) / float64(len(requested))
	}
	sum := 0.0
	for _, v := range report.StatementCoverage {
		sum += v
	}
	report.OverallCoveragePct = 100 * sum / float64(len(report.StatementCoverage))
	return report
}

// fillCounter tracks filled vs total core-field cells, overall and per ticker.
type fillCounter struct {
	fields        []string
	filled, total int
	byTicker      map[string]*[2]int // filled, total
}

func newFillCounter(fields []string) *fillCounter {
	return &fillCounter{fields: fields, byTicker: make(map[string]*[2]int)}
}

func (f *fillCounter) add(ticker string, has func(field string) bool) {
	counts := f.byTicker[ticker]
	if counts == nil {
		counts = &[2]int{}
		f.byTicker[ticker] = counts
	}
	for _, field := range f.fields {
		f.total++
		counts[1]++
		if has(field) {
			f.filled++
			counts[0]++
		}
	}
}

func (f *fillCounter) overall() float64 {
	if f.total == 0 {
		return 0
	}
	return float64(f.filled) / float64(f.total)
}

func mergeTickerFills(fills ...*fillCounter) map[string]float64 {
	merged := make(map[string]*[2]int)
	for _, f := range fills {
		for t, c := range f.byTicker {
			m := merged[t]
			if m == nil {
				m = &[2]int{}
				merged[t] = m
			}
			m[0] += c[0]
			m[1] += c[1]
		}
	}
	out := make(map[string]float64, len(merged))
	for t, c := range merged {
		if c[1] > 0 {
			out[t] = float64(c[0]) / float64(c[1])
		}
	}
	return out
}

// missingFields lists, per statement table, the numeric columns that never
// resolved in any row. An empty table reports all of its fields with a
// (no_data) marker so the reader can tell "never tagged" from "no rows".
func missingFields(tables *data.Tables) map[string][]string {
	out := make(map[string][]string)
	out[data.TableIncome] = collectMissing(len(tables.Income),
		numericColumns(data.IncomeSchema), func(i int, col string) bool {
			return incomeColumn(tables.Income[i], col) != nil
		})
	out[data.TableBalance] = collectMissing(len(tables.Balance),
		numericColumns(data.BalanceSchema), func(i int, col string) bool {
			return balanceColumn(tables.Balance[i], col) != nil
		})
	out[data.TableCashflow] = collectMissing(len(tables.Cashflow),
		numericColumns(data.CashflowSchema), func(i int, col string) bool {
			return cashflowColumn(tables.Cashflow[i], col) != nil
		})
	return out
}

func collectMissing(n int, columns []string, filled func(i int, col string) bool) []string {
	var missing []string
	for _, col := range columns {
		if n == 0 {
			missing = append(missing, col+" (no_data)")
			continue
		}
		resolved := false
		for i := 0; i < n; i++ {
			if filled(i, col) {
				resolved = true
				break
			}
		}
		if !resolved {
			missing = append(missing, col)
		}
	}
	return missing
}

func numericColumns(s data.TableSchema) []string {
	var out []string
	for _, c := range s.Columns {
		if c.Kind == data.KindFloat {
			out = append(out, c.Name)
		}
	}
	return out
}

func incomeColumn(r data.IncomeRow, col string) *float64 {
	switch col {
	case "revenue":
		return r.Revenue
	case "cost_of_revenue":
		return r.CostOfRevenue
	case "gross_profit":
		return r.GrossProfit
	case "operating_expenses":
		return r.OperatingExpenses
	case "ebit":
		return r.EBIT
	case "ebitda":
		return r.EBITDA
	case "interest_expense":
		return r.InterestExpense
	case "pretax_income":
		return r.PretaxIncome
	case "income_tax_expense":
		return r.IncomeTaxExpense
	case "net_income":
		return r.NetIncome
	case "eps_basic":
		return r.EPSBasic
	case "eps_diluted":
		return r.EPSDiluted
	case "shares_basic":
		return r.SharesBasic
	case "shares_diluted":
		return r.SharesDiluted
	}
	return nil
}

func balanceColumn(r data.BalanceRow, col string) *float64 {
	switch col {
	case "cash_and_equivalents":
		return r.CashAndEquivalents
	case "short_term_investments":
		return r.ShortTermInvestments
	case "accounts_receivable":
		return r.AccountsReceivable
	case "inventory":
		return r.Inventory
	case "current_assets":
		return r.CurrentAssets
	case "ppe_net":
		return r.PPENet
	case "goodwill":
		return r.Goodwill
	case "intangibles":
		return r.Intangibles
	case "total_assets":
		return r.TotalAssets
	case "accounts_payable":
		return r.AccountsPayable
	case "short_term_debt":
		return r.ShortTermDebt
	case "current_liabilities":
		return r.CurrentLiabilities
	case "long_term_debt":
		return r.LongTermDebt
	case "total_liabilities":
		return r.TotalLiabilities
	case "common_equity":
		return r.CommonEquity
	case "retained_earnings":
		return r.RetainedEarnings
	case "total_equity":
		return r.TotalEquity
	}
	return nil
}

func cashflowColumn(r data.CashflowRow, col string) *float64 {
	switch col {
	case "cfo":
		return r.CFO
	case "capex":
		return r.Capex
	case "free_cash_flow":
		return r.FreeCashFlow
	case "cfi":
		return r.CFI
	case "cff":
		return r.CFF
	case "dividends_paid":
		return r.DividendsPaid
	case "share_repurchases":
		return r.ShareRepurchases
	case "net_change_in_cash":
		return r.NetChangeInCash
	case "depreciation_amortization":
		return r.DepreciationAmortization
	case "stock_based_compensation":
		return r.StockBasedCompensation
	}
	return nil
}
