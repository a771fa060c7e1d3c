package edgar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/utils"
)

// PeriodType selects which fiscal cadence the filings index returns.
type PeriodType string

const (
	PeriodAnnual    PeriodType = "annual"
	PeriodQuarterly PeriodType = "quarterly"
	PeriodAll       PeriodType = "all"
)

var annualForms = []string{"10-K", "10-K/A", "10-KT", "10-KT/A"}
var quarterlyForms = []string{"10-Q", "10-Q/A"}

// allowedForms builds the active form allowlist. With amendments disabled
// the /A variants are stripped before any filing is considered.
func allowedForms(p PeriodType, includeAmendments bool) map[string]bool {
	var forms []string
	switch p {
	case PeriodAnnual:
		forms = annualForms
	case PeriodQuarterly:
		forms = quarterlyForms
	default:
		forms = append(append([]string{}, annualForms...), quarterlyForms...)
	}
	out := make(map[string]bool, len(forms))
	for _, f := range forms {
		if !includeAmendments && strings.HasSuffix(f, "/A") {
			continue
		}
		out[f] = true
	}
	return out
}

// FilingRecord identifies one SEC submission that survived the
// point-in-time gate. Every record past the filings-index boundary satisfies
// AcceptanceDatetime <= 23:59:59 on the cutoff date.
type FilingRecord struct {
	Ticker             string
	CIK                string
	Accession          string
	FormType           string
	FilingDate         time.Time
	AcceptanceDatetime time.Time
	PeriodOfReport     time.Time
	PrimaryDocument    string
}

// IsAmendment reports whether the filing is a corrective /A refiling.
func (f FilingRecord) IsAmendment() bool {
	return strings.HasSuffix(f.FormType, "/A")
}

// NormalizeAccession converts the 18-digit raw accession into the dashed
// canonical NNNNNNNNNN-NN-NNNNNN form. Anything else passes through.
func NormalizeAccession(raw string) string {
	compact := strings.ReplaceAll(raw, "-", "")
	if len(compact) != 18 || !allDigitsASCII(compact) {
		return raw
	}
	return compact[:10] + "-" + compact[10:12] + "-" + compact[12:]
}

func allDigitsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// submissionsResponse mirrors data.sec.gov/submissions/CIK##########.json.
// The recent block and each archive file hold index-aligned parallel arrays.
type submissionsResponse struct {
	CIK     string `json:"cik"`
	Name    string `json:"name"`
	Filings struct {
		Recent filingColumns `json:"recent"`
		Files  []archiveRef  `json:"files"`
	} `json:"filings"`
}

type filingColumns struct {
	AccessionNumber    []string `json:"accessionNumber"`
	FilingDate         []string `json:"filingDate"`
	ReportDate         []string `json:"reportDate"`
	AcceptanceDateTime []string `json:"acceptanceDateTime"`
	Form               []string `json:"form"`
	PrimaryDocument    []string `json:"primaryDocument"`
}

type archiveRef struct {
	Name        string `json:"name"`
	FilingCount int    `json:"filingCount"`
	FilingFrom  string `json:"filingFrom"`
	FilingTo    string `json:"filingTo"`
}

// GetFilings fetches the submission history for a CIK, pages through the
// older-filings archives that could overlap the cutoff, and returns every
// allowlisted filing accepted on or before end-of-day on the cutoff date,
// sorted by period of report descending.
//
// This is the PIT gate. No later component may relax it.
func (c *Client) GetFilings(ctx context.Context, cik, ticker string, cutoff time.Time, period PeriodType, includeAmendments bool) ([]FilingRecord, error) {
	var sub submissionsResponse
	url := fmt.Sprintf(SubmissionsURLTemplate, cik)
	if err := c.GetJSONInto(ctx, url, nil, &sub); err != nil {
		return nil, fmt.Errorf("failed to fetch submissions for %s: %w", ticker, err)
	}

	forms := allowedForms(period, includeAmendments)
	records := c.parseFilingColumns(sub.Filings.Recent, cik, ticker, cutoff, forms)

	for _, archive := range sub.Filings.Files {
		if skipArchive(archive, cutoff) {
			c.log.Debug().
				Str("ticker", ticker).
				Str("archive", archive.Name).
				Msg("archive entirely after cutoff, skipping")
			continue
		}
		var cols filingColumns
		archiveURL := fmt.Sprintf(ArchiveURLTemplate, archive.Name)
		if err := c.GetJSONInto(ctx, archiveURL, nil, &cols); err != nil {
			return nil, fmt.Errorf("failed to fetch archive %s for %s: %w", archive.Name, ticker, err)
		}
		records = append(records, c.parseFilingColumns(cols, cik, ticker, cutoff, forms)...)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PeriodOfReport.After(records[j].PeriodOfReport)
	})

	if len(records) == 0 {
		return nil, &FilingNotFoundError{Ticker: ticker, Cutoff: cutoff, PeriodType: period}
	}
	return records, nil
}

// skipArchive is deliberately conservative: an archive is skipped only when
// its advertised start parses cleanly AND is after the cutoff. Malformed or
// missing ranges fetch the archive rather than risk dropping filings.
func skipArchive(a archiveRef, cutoff time.Time) bool {
	if a.FilingFrom == "" {
		return false
	}
	from, err := utils.ParseDate(a.FilingFrom)
	if err != nil {
		return false
	}
	return from.After(utils.DateOnly(cutoff))
}

// parseFilingColumns walks the parallel arrays defensively: a short array or
// an unparsable mandatory field skips that filing rather than failing the
// index.
func (c *Client) parseFilingColumns(cols filingColumns, cik, ticker string, cutoff time.Time, forms map[string]bool) []FilingRecord {
	endOfCutoff := utils.EndOfDay(cutoff)
	var out []FilingRecord

	for i := range cols.AccessionNumber {
		if i >= len(cols.Form) || i >= len(cols.FilingDate) || i >= len(cols.ReportDate) {
			c.log.Debug().Str("ticker", ticker).Int("index", i).Msg("misaligned filing arrays, skipping entry")
			continue
		}
		form := cols.Form[i]
		if !forms[form] {
			continue
		}

		filingDate, err := utils.ParseDate(cols.FilingDate[i])
		if err != nil {
			c.log.Debug().Str("ticker", ticker).Str("filingDate", cols.FilingDate[i]).Msg("unparsable filing date, skipping entry")
			continue
		}

		// Missing or malformed acceptance falls back to end-of-day on the
		// filing date: the latest instant the filing could have gone public.
		acceptance := utils.EndOfDay(filingDate)
		if i < len(cols.AcceptanceDateTime) && cols.AcceptanceDateTime[i] != "" {
			if ts, err := utils.ParseDateTime(cols.AcceptanceDateTime[i]); err == nil {
				acceptance = ts
			}
		}
		if acceptance.After(endOfCutoff) {
			continue
		}

		if cols.ReportDate[i] == "" {
			continue
		}
		reportDate, err := utils.ParseDate(cols.ReportDate[i])
		if err != nil {
			c.log.Debug().Str("ticker", ticker).Str("reportDate", cols.ReportDate[i]).Msg("unparsable report date, skipping entry")
			continue
		}

		primaryDoc := ""
		if i < len(cols.PrimaryDocument) {
			primaryDoc = cols.PrimaryDocument[i]
		}

		out = append(out, FilingRecord{
			Ticker:             strings.ToUpper(ticker),
			CIK:                cik,
			Accession:          NormalizeAccession(cols.AccessionNumber[i]),
			FormType:           form,
			FilingDate:         filingDate,
			AcceptanceDatetime: acceptance,
			PeriodOfReport:     reportDate,
			PrimaryDocument:    primaryDoc,
		})
	}
	return out
}
