// Package data defines the standardized output tables of a snapshot: the
// canonical schemas, the typed row records, validation against those
// schemas, accounting identity checks, and the CSV/JSON writers.
//
// The schema definitions are the single source of truth for column names
// and order; the row structs mirror them field for field and the writers
// serialize them unchanged, so two runs with the same inputs produce
// byte-identical tables.
package data

// ColumnKind is the logical type of a table column.
type ColumnKind string

const (
	KindString   ColumnKind = "string"
	KindFloat    ColumnKind = "float"
	KindDate     ColumnKind = "date"
	KindDatetime ColumnKind = "datetime"
)

// ColumnSpec describes a single output column.
type ColumnSpec struct {
	Name     string
	Kind     ColumnKind
	Nullable bool
}

// TableSchema is the full schema of one named output table.
type TableSchema struct {
	Name       string
	KeyColumns []string
	Columns    []ColumnSpec
}

// ColumnNames returns the column names in canonical order.
func (s TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Table names.
const (
	TableCompanyMaster = "company_master"
	TableFilings       = "filings"
	TableIncome        = "statements_income"
	TableBalance       = "statements_balance"
	TableCashflow      = "statements_cashflow"
	TableDerived       = "derived_metrics"
)

// statementKey is the unique row identifier shared by the three statement
// tables and the derived table.
var statementKey = []string{"cik", "accession", "period_end"}

// statementMeta is the common leading column block of statement rows.
var statementMeta = []ColumnSpec{
	{Name: "ticker", Kind: KindString},
	{Name: "cik", Kind: KindString},
	{Name: "accession", Kind: KindString},
	{Name: "asof_date", Kind: KindDate},
	{Name: "period_end", Kind: KindDate},
	{Name: "source", Kind: KindString},
}

func statementSchema(name string, fields ...string) TableSchema {
	cols := make([]ColumnSpec, 0, len(statementMeta)+len(fields))
	cols = append(cols, statementMeta...)
	for _, f := range fields {
		cols = append(cols, ColumnSpec{Name: f, Kind: KindFloat, Nullable: true})
	}
	return TableSchema{Name: name, KeyColumns: statementKey, Columns: cols}
}

// CompanyMasterSchema keys companies by CIK.
var CompanyMasterSchema = TableSchema{
	Name:       TableCompanyMaster,
	KeyColumns: []string{"cik"},
	Columns: []ColumnSpec{
		{Name: "ticker", Kind: KindString},
		{Name: "cik", Kind: KindString},
		{Name: "company_name", Kind: KindString},
		{Name: "sic", Kind: KindString, Nullable: true},
		{Name: "exchange", Kind: KindString, Nullable: true},
	},
}

// FilingsSchema lists the PIT-filtered filings behind the statement rows.
var FilingsSchema = TableSchema{
	Name:       TableFilings,
	KeyColumns: []string{"cik", "accession"},
	Columns: []ColumnSpec{
		{Name: "ticker", Kind: KindString},
		{Name: "cik", Kind: KindString},
		{Name: "accession", Kind: KindString},
		{Name: "form_type", Kind: KindString},
		{Name: "filing_date", Kind: KindDate},
		{Name: "acceptance_datetime", Kind: KindDatetime},
		{Name: "period_of_report", Kind: KindDate},
		{Name: "primary_doc_url", Kind: KindString, Nullable: true},
		{Name: "source", Kind: KindString},
	},
}

// IncomeSchema covers the normalized income statement.
var IncomeSchema = statementSchema(TableIncome,
	"revenue",
	"cost_of_revenue",
	"gross_profit",
	"operating_expenses",
	"ebit",
	"ebitda",
	"interest_expense",
	"pretax_income",
	"income_tax_expense",
	"net_income",
	"eps_basic",
	"eps_diluted",
	"shares_basic",
	"shares_diluted",
)

// BalanceSchema covers the normalized balance sheet.
var BalanceSchema = statementSchema(TableBalance,
	"cash_and_equivalents",
	"short_term_investments",
	"accounts_receivable",
	"inventory",
	"current_assets",
	"ppe_net",
	"goodwill",
	"intangibles",
	"total_assets",
	"accounts_payable",
	"short_term_debt",
	"current_liabilities",
	"long_term_debt",
	"total_liabilities",
	"common_equity",
	"retained_earnings",
	"total_equity",
)

// CashflowSchema covers the normalized cash flow statement.
var CashflowSchema = statementSchema(TableCashflow,
	"cfo",
	"capex",
	"free_cash_flow",
	"cfi",
	"cff",
	"dividends_paid",
	"share_repurchases",
	"net_change_in_cash",
	"depreciation_amortization",
	"stock_based_compensation",
)

// DerivedSchema covers ratio metrics computed off the statement tables.
var DerivedSchema = statementSchema(TableDerived,
	"gross_margin",
	"ebit_margin",
	"net_margin",
	"roa",
	"roe",
	"roic",
	"current_ratio",
	"quick_ratio",
	"debt_to_equity",
	"net_debt",
	"fcf_yield",
)

// AllSchemas maps table name to schema for every output table.
var AllSchemas = map[string]TableSchema{
	TableCompanyMaster: CompanyMasterSchema,
	TableFilings:       FilingsSchema,
	TableIncome:        IncomeSchema,
	TableBalance:       BalanceSchema,
	TableCashflow:      CashflowSchema,
	TableDerived:       DerivedSchema,
}
