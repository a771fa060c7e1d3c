package snapshot

import (
	"sort"
	"time"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/edgar"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/utils"
)

// SelectFilings reduces a PIT-filtered filings list to one record per fiscal
// period, sorted by period of report descending.
//
// Per period: when amendments are allowed and any /A candidate exists, the
// original filings are discarded and only amendments compete; the survivor
// is the one with the latest acceptance datetime, i.e. the most recent view
// of that period that was public by the cutoff.
//
// The PIT gate is re-asserted on every input record as defense in depth.
// The filings index already enforces it, so a breach here means a bug
// upstream and fails the build with CutoffViolationError.
func SelectFilings(filings []edgar.FilingRecord, cutoff time.Time, allowAmendments bool) ([]edgar.FilingRecord, error) {
	byPeriod := make(map[time.Time][]edgar.FilingRecord)
	for _, f := range filings {
		if !utils.IsWithinCutoff(f.AcceptanceDatetime, cutoff) {
			return nil, &CutoffViolationError{
				Ticker:     f.Ticker,
				Accession:  f.Accession,
				Cutoff:     cutoff,
				Acceptance: f.AcceptanceDatetime,
			}
		}
		key := utils.DateOnly(f.PeriodOfReport)
		byPeriod[key] = append(byPeriod[key], f)
	}

	out := make([]edgar.FilingRecord, 0, len(byPeriod))
	for _, group := range byPeriod {
		out = append(out, pickForPeriod(group, allowAmendments))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PeriodOfReport.After(out[j].PeriodOfReport)
	})
	return out, nil
}

func pickForPeriod(group []edgar.FilingRecord, allowAmendments bool) edgar.FilingRecord {
	candidates := group
	if allowAmendments {
		var amendments []edgar.FilingRecord
		for _, f := range group {
			if f.IsAmendment() {
				amendments = append(amendments, f)
			}
		}
		if len(amendments) > 0 {
			candidates = amendments
		}
	}

	best := candidates[0]
	for _, f := range candidates[1:] {
		if f.AcceptanceDatetime.After(best.AcceptanceDatetime) {
			best = f
		}
	}
	return best
}
