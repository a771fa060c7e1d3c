package xbrl

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/config"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/data"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/utils"
)

// Parser turns a company's fact lists into standardized statement rows for
// one ticker. It holds no fact state itself; facts arrive per call so the
// same parser serves every selected filing of the ticker.
type Parser struct {
	ticker string
	cik    string
	log    zerolog.Logger
}

// NewParser builds a parser labeling rows with the given ticker and CIK.
func NewParser(ticker, cik string) *Parser {
	return &Parser{
		ticker: ticker,
		cik:    cik,
		log:    config.ComponentLogger("xbrl").With().Str("ticker", ticker).Logger(),
	}
}

func (p *Parser) meta(accession string, periodEnd, asof time.Time) data.StatementMeta {
	return data.StatementMeta{
		Ticker:    p.ticker,
		CIK:       p.cik,
		Accession: accession,
		AsofDate:  utils.FormatDate(asof),
		PeriodEnd: utils.FormatDate(periodEnd),
		Source:    "edgar",
	}
}

// BuildIncomeRow resolves every income field for one fiscal period.
// Returns nil when no field resolves at all. If EBITDA is not explicitly
// tagged it falls back to EBIT plus depreciation and amortization; D&A is
// a cash flow concept, so companies reporting it only there may carry an
// EBITDA built from a cash flow figure.
func (p *Parser) BuildIncomeRow(facts map[string][]Fact, accession string, periodEnd, cutoff, asof time.Time, annual bool) *data.IncomeRow {
	row := data.IncomeRow{StatementMeta: p.meta(accession, periodEnd, asof)}
	dst := map[string]**float64{
		"revenue":            &row.Revenue,
		"cost_of_revenue":    &row.CostOfRevenue,
		"gross_profit":       &row.GrossProfit,
		"operating_expenses": &row.OperatingExpenses,
		"ebit":               &row.EBIT,
		"ebitda":             &row.EBITDA,
		"interest_expense":   &row.InterestExpense,
		"pretax_income":      &row.PretaxIncome,
		"income_tax_expense": &row.IncomeTaxExpense,
		"net_income":         &row.NetIncome,
		"eps_basic":          &row.EPSBasic,
		"eps_diluted":        &row.EPSDiluted,
		"shares_basic":       &row.SharesBasic,
		"shares_diluted":     &row.SharesDiluted,
	}

	found := false
	for _, m := range Mappings(StatementIncome) {
		v := resolveField(m, facts, periodEnd, cutoff, annual)
		if v == nil {
			continue
		}
		*dst[m.Field] = v
		found = true
	}

	if row.EBITDA == nil && row.EBIT != nil {
		if da, ok := FieldToMapping(StatementCashflow, "depreciation_amortization"); ok {
			if v := resolveField(da, facts, periodEnd, cutoff, annual); v != nil {
				row.EBITDA = data.Float(*row.EBIT + *v)
				found = true
			}
		}
	}

	if !found {
		p.log.Debug().
			Str("accession", accession).
			Str("period_end", utils.FormatDate(periodEnd)).
			Msg("no income facts found")
		return nil
	}
	return &row
}

// BuildBalanceRow resolves every balance sheet field for one period end.
// When exactly one of the three totals is missing, the accounting identity
// fills it in (assets = liabilities + equity). Returns nil when nothing
// resolves.
func (p *Parser) BuildBalanceRow(facts map[string][]Fact, accession string, periodEnd, cutoff, asof time.Time) *data.BalanceRow {
	row := data.BalanceRow{StatementMeta: p.meta(accession, periodEnd, asof)}
	dst := map[string]**float64{
		"cash_and_equivalents":   &row.CashAndEquivalents,
		"short_term_investments": &row.ShortTermInvestments,
		"accounts_receivable":    &row.AccountsReceivable,
		"inventory":              &row.Inventory,
		"current_assets":         &row.CurrentAssets,
		"ppe_net":                &row.PPENet,
		"goodwill":               &row.Goodwill,
		"intangibles":            &row.Intangibles,
		"total_assets":           &row.TotalAssets,
		"accounts_payable":       &row.AccountsPayable,
		"short_term_debt":        &row.ShortTermDebt,
		"current_liabilities":    &row.CurrentLiabilities,
		"long_term_debt":         &row.LongTermDebt,
		"total_liabilities":      &row.TotalLiabilities,
		"common_equity":          &row.CommonEquity,
		"retained_earnings":      &row.RetainedEarnings,
		"total_equity":           &row.TotalEquity,
	}

	found := false
	for _, m := range Mappings(StatementBalance) {
		v := resolveField(m, facts, periodEnd, cutoff, true)
		if v == nil {
			continue
		}
		*dst[m.Field] = v
		found = true
	}

	switch {
	case row.TotalAssets == nil && row.TotalLiabilities != nil && row.TotalEquity != nil:
		row.TotalAssets = data.Float(*row.TotalLiabilities + *row.TotalEquity)
		found = true
	case row.TotalLiabilities == nil && row.TotalAssets != nil && row.TotalEquity != nil:
		row.TotalLiabilities = data.Float(*row.TotalAssets - *row.TotalEquity)
		found = true
	case row.TotalEquity == nil && row.TotalAssets != nil && row.TotalLiabilities != nil:
		row.TotalEquity = data.Float(*row.TotalAssets - *row.TotalLiabilities)
		found = true
	}

	if !found {
		return nil
	}
	return &row
}

// BuildCashflowRow resolves every cash flow field for one fiscal period.
// Sign-flipped fields (capex, dividends_paid, share_repurchases) are stored
// as positive magnitudes. free_cash_flow = cfo - capex when both resolve.
// Returns nil when nothing resolves.
func (p *Parser) BuildCashflowRow(facts map[string][]Fact, accession string, periodEnd, cutoff, asof time.Time, annual bool) *data.CashflowRow {
	row := data.CashflowRow{StatementMeta: p.meta(accession, periodEnd, asof)}
	dst := map[string]**float64{
		"cfo":                       &row.CFO,
		"capex":                     &row.Capex,
		"cfi":                       &row.CFI,
		"cff":                       &row.CFF,
		"dividends_paid":            &row.DividendsPaid,
		"share_repurchases":         &row.ShareRepurchases,
		"net_change_in_cash":        &row.NetChangeInCash,
		"depreciation_amortization": &row.DepreciationAmortization,
		"stock_based_compensation":  &row.StockBasedCompensation,
	}

	found := false
	for _, m := range Mappings(StatementCashflow) {
		v := resolveField(m, facts, periodEnd, cutoff, annual)
		if v == nil {
			continue
		}
		if m.SignFlip {
			v = data.Float(math.Abs(*v))
		}
		*dst[m.Field] = v
		found = true
	}

	if row.CFO != nil && row.Capex != nil {
		row.FreeCashFlow = data.Float(*row.CFO - *row.Capex)
		found = true
	}

	if !found {
		return nil
	}
	return &row
}

// resolveField walks a mapping's tag list in priority order and returns the
// first fact that survives period filtering and best-fact selection, with
// the mapping's sign applied. Frame preference happens inside best-fact
// selection, after period matching; narrowing to framed facts any earlier
// would drop fiscal years for which the company reported no frame at all.
func resolveField(m TagMapping, facts map[string][]Fact, periodEnd, cutoff time.Time, annual bool) *float64 {
	for _, tag := range m.Tags {
		filtered := FilterFactsByPeriodType(facts[tag], m.ContextType(), annual)
		best := SelectBestFactForPeriod(filtered, periodEnd, cutoff)
		if best == nil {
			continue
		}
		v := best.Value
		if m.SignFlip {
			v = -v
		}
		return &v
	}
	return nil
}
