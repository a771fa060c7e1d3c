package data

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
)

// BalanceSheetTolerance is the maximum relative error accepted between
// assets and liabilities plus equity.
const BalanceSheetTolerance = 0.01

// cashflowAbsoluteFloor keeps rounding noise in large filers from tripping
// the relative reconciliation tolerance.
const cashflowAbsoluteFloor = 1_000_000

// SchemaValidationError reports one table's schema violations.
type SchemaValidationError struct {
	Table      string
	Violations []string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("table %s failed schema validation: %s",
		e.Table, strings.Join(e.Violations, "; "))
}

// Validate checks every table in the bundle and returns violations keyed
// by table name. An empty map means all tables are valid.
func Validate(t *Tables) map[string][]string {
	out := make(map[string][]string)
	record := func(table string, v []string) {
		if len(v) > 0 {
			out[table] = v
		}
	}
	record(TableCompanyMaster, ValidateCompanies(t.Companies))
	record(TableFilings, ValidateFilings(t.Filings))
	record(TableIncome, ValidateIncome(t.Income))
	record(TableBalance, ValidateBalance(t.Balance))
	record(TableCashflow, ValidateCashflow(t.Cashflow))
	record(TableDerived, ValidateDerived(t.Derived))
	return out
}

// AssertValid returns a *SchemaValidationError for the first table with
// violations, or nil when the bundle is clean.
func AssertValid(t *Tables) error {
	all := Validate(t)
	for _, name := range []string{
		TableCompanyMaster, TableFilings, TableIncome,
		TableBalance, TableCashflow, TableDerived,
	} {
		if v := all[name]; len(v) > 0 {
			return &SchemaValidationError{Table: name, Violations: v}
		}
	}
	return nil
}

// ValidateCompanies checks company_master: cik unique and identifiers set.
func ValidateCompanies(rows []CompanyRow) []string {
	v := duplicateKeyViolations(rows, []string{"cik"}, func(r CompanyRow) string {
		return r.CIK
	})
	for i, r := range rows {
		if r.Ticker == "" {
			v = append(v, fmt.Sprintf("row %d: empty ticker", i))
		}
		if r.CIK == "" {
			v = append(v, fmt.Sprintf("row %d: empty cik", i))
		}
	}
	return v
}

// ValidateFilings checks the filings table: (cik, accession) unique and
// identifiers set.
func ValidateFilings(rows []FilingRow) []string {
	v := duplicateKeyViolations(rows, []string{"cik", "accession"}, func(r FilingRow) string {
		return r.CIK + "|" + r.Accession
	})
	for i, r := range rows {
		if r.CIK == "" || r.Accession == "" {
			v = append(v, fmt.Sprintf("row %d: empty key column", i))
		}
		if r.FilingDate == "" {
			v = append(v, fmt.Sprintf("row %d: empty filing_date", i))
		}
		if r.AcceptanceDatetime == "" {
			v = append(v, fmt.Sprintf("row %d: empty acceptance_datetime", i))
		}
	}
	return v
}

// ValidateIncome checks statements_income.
func ValidateIncome(rows []IncomeRow) []string {
	return statementViolations(len(rows), func(i int) StatementMeta { return rows[i].StatementMeta })
}

// ValidateBalance checks statements_balance.
func ValidateBalance(rows []BalanceRow) []string {
	return statementViolations(len(rows), func(i int) StatementMeta { return rows[i].StatementMeta })
}

// ValidateCashflow checks statements_cashflow.
func ValidateCashflow(rows []CashflowRow) []string {
	return statementViolations(len(rows), func(i int) StatementMeta { return rows[i].StatementMeta })
}

// ValidateDerived checks derived_metrics.
func ValidateDerived(rows []DerivedRow) []string {
	return statementViolations(len(rows), func(i int) StatementMeta { return rows[i].StatementMeta })
}

// statementViolations applies the shared statement row checks: the
// (cik, accession, period_end) key must be unique and the identifier
// columns non-empty.
func statementViolations(n int, meta func(int) StatementMeta) []string {
	var v []string
	seen := make(map[string]int, n)
	for i := 0; i < n; i++ {
		m := meta(i)
		seen[m.Key()]++
		if m.Ticker == "" || m.CIK == "" || m.Accession == "" {
			v = append(v, fmt.Sprintf("row %d: empty identifier column", i))
		}
		if m.PeriodEnd == "" {
			v = append(v, fmt.Sprintf("row %d: empty period_end", i))
		}
		if m.AsofDate == "" {
			v = append(v, fmt.Sprintf("row %d: empty asof_date", i))
		}
	}
	dups := 0
	for _, count := range seen {
		if count > 1 {
			dups += count - 1
		}
	}
	if dups > 0 {
		v = append(v, fmt.Sprintf("key columns (cik, accession, period_end) are not unique: %d duplicate rows", dups))
	}
	return v
}

func duplicateKeyViolations[T any](rows []T, keyCols []string, key func(T) string) []string {
	seen := make(map[string]int, len(rows))
	dups := 0
	for _, r := range rows {
		k := key(r)
		seen[k]++
		if seen[k] > 1 {
			dups++
		}
	}
	if dups == 0 {
		return nil
	}
	return []string{fmt.Sprintf("key columns (%s) are not unique: %d duplicate rows",
		strings.Join(keyCols, ", "), dups)}
}

// CheckBalanceSheetIdentity flags each row with assets ~= liabilities +
// equity within tolerance. Rows missing any of the three totals, or with
// zero assets, get a nil flag. The flag never drops rows.
func CheckBalanceSheetIdentity(rows []BalanceRow) {
	for i := range rows {
		r := &rows[i]
		if r.TotalAssets == nil || r.TotalLiabilities == nil || r.TotalEquity == nil {
			r.IdentityOK = nil
			continue
		}
		assets := *r.TotalAssets
		if math.Abs(assets) == 0 {
			r.IdentityOK = nil
			continue
		}
		liabPlusEquity := *r.TotalLiabilities + *r.TotalEquity
		relErr := math.Abs(assets-liabPlusEquity) / math.Abs(assets)
		ok := relErr <= BalanceSheetTolerance
		r.IdentityOK = Bool(ok)
		if !ok {
			log.Warn().
				Str("ticker", r.Ticker).
				Str("accession", r.Accession).
				Float64("assets", assets).
				Float64("liab_plus_equity", liabPlusEquity).
				Float64("rel_error", relErr).
				Msg("balance sheet identity violation")
		}
	}
}

// CheckCashflowReconciliation flags each row where cfo + cfi + cff matches
// the reported net change in cash within 1% relative tolerance, floored at
// $1M absolute. Rows missing any of the four fields get a nil flag.
func CheckCashflowReconciliation(rows []CashflowRow) {
	for i := range rows {
		r := &rows[i]
		if r.CFO == nil || r.CFI == nil || r.CFF == nil || r.NetChangeInCash == nil {
			r.Reconciles = nil
			continue
		}
		computed := *r.CFO + *r.CFI + *r.CFF
		reported := *r.NetChangeInCash
		diff := math.Abs(computed - reported)
		tolerance := math.Max(0.01*math.Max(math.Abs(computed), math.Abs(reported)), cashflowAbsoluteFloor)
		ok := diff <= tolerance
		r.Reconciles = Bool(ok)
		if !ok {
			log.Warn().
				Str("ticker", r.Ticker).
				Str("accession", r.Accession).
				Float64("diff", diff).
				Msg("cash flow reconciliation error")
		}
	}
}
