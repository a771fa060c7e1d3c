package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// Format selects the on-disk serialization of the output tables.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name from config or CLI flags.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want csv or json)", s)
	}
}

// WriteTables writes every non-empty table in the bundle to dir, one file
// per table named {table}.{format}. With validate true, any schema
// violation aborts before anything is written; otherwise violations are
// logged as warnings. Returns table name to written path.
func WriteTables(dir string, t *Tables, format Format, validate bool) (map[string]string, error) {
	if validate {
		if err := AssertValid(t); err != nil {
			return nil, err
		}
	} else {
		for table, violations := range Validate(t) {
			log.Warn().
				Str("table", table).
				Strs("violations", violations).
				Msg("schema validation warnings")
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	written := make(map[string]string, 6)
	record := func(name, path string, err error) error {
		if err != nil {
			return fmt.Errorf("write table %s: %w", name, err)
		}
		if path != "" {
			written[name] = path
		}
		return nil
	}

	if err := record(writeTable(dir, TableCompanyMaster, t.Companies, format)); err != nil {
		return nil, err
	}
	if err := record(writeTable(dir, TableFilings, t.Filings, format)); err != nil {
		return nil, err
	}
	if err := record(writeTable(dir, TableIncome, t.Income, format)); err != nil {
		return nil, err
	}
	if err := record(writeTable(dir, TableBalance, t.Balance, format)); err != nil {
		return nil, err
	}
	if err := record(writeTable(dir, TableCashflow, t.Cashflow, format)); err != nil {
		return nil, err
	}
	if err := record(writeTable(dir, TableDerived, t.Derived, format)); err != nil {
		return nil, err
	}
	return written, nil
}

// writeTable writes one table and returns its name, path, and error so the
// caller can thread results through record. Empty tables are skipped with
// a warning and an empty path.
func writeTable[T any](dir, name string, rows []T, format Format) (string, string, error) {
	if len(rows) == 0 {
		log.Warn().Str("table", name).Msg("table is empty, skipping write")
		return name, "", nil
	}

	path := filepath.Join(dir, name+"."+string(format))
	f, err := os.Create(path)
	if err != nil {
		return name, "", err
	}

	switch format {
	case FormatCSV:
		err = gocsv.MarshalFile(&rows, f)
	case FormatJSON:
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(rows)
	default:
		err = fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		f.Close()
		return name, "", err
	}
	if err := f.Close(); err != nil {
		return name, "", err
	}

	log.Info().Str("table", name).Int("rows", len(rows)).Str("path", path).Msg("wrote table")
	return name, path, nil
}
