package snapshot

import (
	"math"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/data"
)

// ComputeDerived joins income and balance rows on (cik, period_end) and
// produces one ratio row per matched period. Rows with only one side still
// emit the ratios that side can support. roic and fcf_yield stay nil (no
// agreed invested-capital definition, no market prices).
func ComputeDerived(income []data.IncomeRow, balance []data.BalanceRow) []data.DerivedRow {
	type joined struct {
		inc *data.IncomeRow
		bal *data.BalanceRow
	}
	byKey := make(map[string]*joined)
	var order []string

	for i := range income {
		k := income[i].CIK + "|" + income[i].PeriodEnd
		byKey[k] = &joined{inc: &income[i]}
		order = append(order, k)
	}
	for i := range balance {
		k := balance[i].CIK + "|" + balance[i].PeriodEnd
		if j, ok := byKey[k]; ok {
			j.bal = &balance[i]
			continue
		}
		byKey[k] = &joined{bal: &balance[i]}
		order = append(order, k)
	}

	out := make([]data.DerivedRow, 0, len(order))
	for _, k := range order {
		j := byKey[k]
		row := data.DerivedRow{StatementMeta: derivedMeta(j.inc, j.bal)}

		if j.inc != nil {
			row.GrossMargin = safeDivide(j.inc.GrossProfit, j.inc.Revenue)
			row.EBITMargin = safeDivide(j.inc.EBIT, j.inc.Revenue)
			row.NetMargin = safeDivide(j.inc.NetIncome, j.inc.Revenue)
		}
		if j.bal != nil {
			row.CurrentRatio = safeDivide(j.bal.CurrentAssets, j.bal.CurrentLiabilities)
			row.QuickRatio = quickRatio(j.bal)
			row.DebtToEquity = safeDivide(j.bal.LongTermDebt, j.bal.TotalEquity)
			row.NetDebt = netDebt(j.bal)
		}
		if j.inc != nil && j.bal != nil {
			row.ROA = safeDivide(j.inc.NetIncome, j.bal.TotalAssets)
			row.ROE = safeDivide(j.inc.NetIncome, j.bal.TotalEquity)
		}
		out = append(out, row)
	}
	return out
}

// derivedMeta prefers the income row's metadata; a balance-only period
// carries the balance filing's accession instead.
func derivedMeta(inc *data.IncomeRow, bal *data.BalanceRow) data.StatementMeta {
	if inc != nil {
		return inc.StatementMeta
	}
	return bal.StatementMeta
}

// safeDivide returns num/den, or nil when either side is missing or the
// denominator is zero. Ratio columns never carry Inf or NaN.
func safeDivide(num, den *float64) *float64 {
	if num == nil || den == nil || math.Abs(*den) == 0 {
		return nil
	}
	return data.Float(*num / *den)
}

func quickRatio(bal *data.BalanceRow) *float64 {
	if bal.CurrentAssets == nil {
		return nil
	}
	quick := *bal.CurrentAssets
	if bal.Inventory != nil {
		quick -= *bal.Inventory
	}
	return safeDivide(&quick, bal.CurrentLiabilities)
}

// netDebt is long-term plus short-term debt less cash. Missing summands
// count as zero, but only when at least one debt component is actually
// reported; a row with no debt figures at all stays nil rather than
// implying zero leverage.
func netDebt(bal *data.BalanceRow) *float64 {
	if bal.LongTermDebt == nil && bal.ShortTermDebt == nil {
		return nil
	}
	total := 0.0
	if bal.LongTermDebt != nil {
		total += *bal.LongTermDebt
	}
	if bal.ShortTermDebt != nil {
		total += *bal.ShortTermDebt
	}
	if bal.CashAndEquivalents != nil {
		total -= *bal.CashAndEquivalents
	}
	return data.Float(total)
}
