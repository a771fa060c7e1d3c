package data

// Row structs mirror the table schemas field for field, in column order.
// Date columns are pre-formatted strings (YYYY-MM-DD, datetimes with a
// space-separated clock) so CSV, JSON, and database writers all serialize
// the same bytes. Numeric fields are pointers; nil means the field could
// not be resolved from any source.

// CompanyRow is one company_master row.
type CompanyRow struct {
	Ticker      string  `csv:"ticker" json:"ticker"`
	CIK         string  `csv:"cik" json:"cik"`
	CompanyName string  `csv:"company_name" json:"company_name"`
	SIC         *string `csv:"sic" json:"sic"`
	Exchange    *string `csv:"exchange" json:"exchange"`
}

// FilingRow is one filings row.
type FilingRow struct {
	Ticker             string `csv:"ticker" json:"ticker"`
	CIK                string `csv:"cik" json:"cik"`
	Accession          string `csv:"accession" json:"accession"`
	FormType           string `csv:"form_type" json:"form_type"`
	FilingDate         string `csv:"filing_date" json:"filing_date"`
	AcceptanceDatetime string `csv:"acceptance_datetime" json:"acceptance_datetime"`
	PeriodOfReport     string `csv:"period_of_report" json:"period_of_report"`
	PrimaryDocURL      string `csv:"primary_doc_url" json:"primary_doc_url"`
	Source             string `csv:"source" json:"source"`
}

// StatementMeta is the leading column block shared by every statement row.
// AsofDate is the acceptance date of the filing the row came from, so a
// row is usable exactly when its asof_date is on or before the cutoff.
type StatementMeta struct {
	Ticker    string `csv:"ticker" json:"ticker"`
	CIK       string `csv:"cik" json:"cik"`
	Accession string `csv:"accession" json:"accession"`
	AsofDate  string `csv:"asof_date" json:"asof_date"`
	PeriodEnd string `csv:"period_end" json:"period_end"`
	Source    string `csv:"source" json:"source"`
}

// Key returns the unique statement row identifier.
func (m StatementMeta) Key() string {
	return m.CIK + "|" + m.Accession + "|" + m.PeriodEnd
}

// IncomeRow is one statements_income row.
type IncomeRow struct {
	StatementMeta
	Revenue           *float64 `csv:"revenue" json:"revenue"`
	CostOfRevenue     *float64 `csv:"cost_of_revenue" json:"cost_of_revenue"`
	GrossProfit       *float64 `csv:"gross_profit" json:"gross_profit"`
	OperatingExpenses *float64 `csv:"operating_expenses" json:"operating_expenses"`
	EBIT              *float64 `csv:"ebit" json:"ebit"`
	EBITDA            *float64 `csv:"ebitda" json:"ebitda"`
	InterestExpense   *float64 `csv:"interest_expense" json:"interest_expense"`
	PretaxIncome      *float64 `csv:"pretax_income" json:"pretax_income"`
	IncomeTaxExpense  *float64 `csv:"income_tax_expense" json:"income_tax_expense"`
	NetIncome         *float64 `csv:"net_income" json:"net_income"`
	EPSBasic          *float64 `csv:"eps_basic" json:"eps_basic"`
	EPSDiluted        *float64 `csv:"eps_diluted" json:"eps_diluted"`
	SharesBasic       *float64 `csv:"shares_basic" json:"shares_basic"`
	SharesDiluted     *float64 `csv:"shares_diluted" json:"shares_diluted"`
}

// BalanceRow is one statements_balance row. IdentityOK is filled by the
// balance sheet identity check; nil when any of the three totals is
// missing.
type BalanceRow struct {
	StatementMeta
	CashAndEquivalents   *float64 `csv:"cash_and_equivalents" json:"cash_and_equivalents"`
	ShortTermInvestments *float64 `csv:"short_term_investments" json:"short_term_investments"`
	AccountsReceivable   *float64 `csv:"accounts_receivable" json:"accounts_receivable"`
	Inventory            *float64 `csv:"inventory" json:"inventory"`
	CurrentAssets        *float64 `csv:"current_assets" json:"current_assets"`
	PPENet               *float64 `csv:"ppe_net" json:"ppe_net"`
	Goodwill             *float64 `csv:"goodwill" json:"goodwill"`
	Intangibles          *float64 `csv:"intangibles" json:"intangibles"`
	TotalAssets          *float64 `csv:"total_assets" json:"total_assets"`
	AccountsPayable      *float64 `csv:"accounts_payable" json:"accounts_payable"`
	ShortTermDebt        *float64 `csv:"short_term_debt" json:"short_term_debt"`
	CurrentLiabilities   *float64 `csv:"current_liabilities" json:"current_liabilities"`
	LongTermDebt         *float64 `csv:"long_term_debt" json:"long_term_debt"`
	TotalLiabilities     *float64 `csv:"total_liabilities" json:"total_liabilities"`
	CommonEquity         *float64 `csv:"common_equity" json:"common_equity"`
	RetainedEarnings     *float64 `csv:"retained_earnings" json:"retained_earnings"`
	TotalEquity          *float64 `csv:"total_equity" json:"total_equity"`
	IdentityOK           *bool    `csv:"identity_ok" json:"identity_ok"`
}

// CashflowRow is one statements_cashflow row. Outflow fields (capex,
// dividends_paid, share_repurchases) are stored as positive magnitudes.
// Reconciles is filled by the cash flow reconciliation check.
type CashflowRow struct {
	StatementMeta
	CFO                      *float64 `csv:"cfo" json:"cfo"`
	Capex                    *float64 `csv:"capex" json:"capex"`
	FreeCashFlow             *float64 `csv:"free_cash_flow" json:"free_cash_flow"`
	CFI                      *float64 `csv:"cfi" json:"cfi"`
	CFF                      *float64 `csv:"cff" json:"cff"`
	DividendsPaid            *float64 `csv:"dividends_paid" json:"dividends_paid"`
	ShareRepurchases         *float64 `csv:"share_repurchases" json:"share_repurchases"`
	NetChangeInCash          *float64 `csv:"net_change_in_cash" json:"net_change_in_cash"`
	DepreciationAmortization *float64 `csv:"depreciation_amortization" json:"depreciation_amortization"`
	StockBasedCompensation   *float64 `csv:"stock_based_compensation" json:"stock_based_compensation"`
	Reconciles               *bool    `csv:"cashflow_reconciles" json:"cashflow_reconciles"`
}

// DerivedRow is one derived_metrics row. ROIC and fcf_yield columns exist
// for schema stability but are never populated: ROIC has no single agreed
// invested-capital definition and fcf_yield needs market prices, which the
// engine does not ingest.
type DerivedRow struct {
	StatementMeta
	GrossMargin  *float64 `csv:"gross_margin" json:"gross_margin"`
	EBITMargin   *float64 `csv:"ebit_margin" json:"ebit_margin"`
	NetMargin    *float64 `csv:"net_margin" json:"net_margin"`
	ROA          *float64 `csv:"roa" json:"roa"`
	ROE          *float64 `csv:"roe" json:"roe"`
	ROIC         *float64 `csv:"roic" json:"roic"`
	CurrentRatio *float64 `csv:"current_ratio" json:"current_ratio"`
	QuickRatio   *float64 `csv:"quick_ratio" json:"quick_ratio"`
	DebtToEquity *float64 `csv:"debt_to_equity" json:"debt_to_equity"`
	NetDebt      *float64 `csv:"net_debt" json:"net_debt"`
	FCFYield     *float64 `csv:"fcf_yield" json:"fcf_yield"`
}

// Tables bundles all six output tables of one snapshot.
type Tables struct {
	Companies []CompanyRow  `json:"company_master"`
	Filings   []FilingRow   `json:"filings"`
	Income    []IncomeRow   `json:"statements_income"`
	Balance   []BalanceRow  `json:"statements_balance"`
	Cashflow  []CashflowRow `json:"statements_cashflow"`
	Derived   []DerivedRow  `json:"derived_metrics"`
}

// Float returns a pointer to v. Row builders use it for resolved values.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
