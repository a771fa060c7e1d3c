package xbrl

import (
	"time"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/utils"
)

// periodEndToleranceDays bounds the fuzzy period-end match. Fiscal period
// ends drift by a few days across years for 52/53-week reporters; a week of
// slack recovers those without ever crossing into the next quarter.
const periodEndToleranceDays = 7

// FilterFactsByPeriodType keeps facts whose context matches. Instant facts
// have no start date. Duration facts must span a plausible fiscal window:
// 330..400 days for annual, 75..100 for quarterly, both inclusive.
func FilterFactsByPeriodType(facts []Fact, ct ContextType, annual bool) []Fact {
	var out []Fact
	for _, f := range facts {
		switch ct {
		case ContextInstant:
			if f.Start == nil {
				out = append(out, f)
			}
		case ContextDuration:
			if f.Start == nil {
				continue
			}
			if annual && utils.IsAnnualPeriod(*f.Start, f.End) {
				out = append(out, f)
			} else if !annual && utils.IsQuarterlyPeriod(*f.Start, f.End) {
				out = append(out, f)
			}
		}
	}
	return out
}

// PreferConsolidated narrows to facts carrying a frame label when any do,
// and otherwise returns the input unchanged.
//
// The frame attribute only appears on calendar-aligned facts, so companies
// with September- or June-ending fiscal years report annual totals with no
// frame at all. Treating frame as a hard filter would silently drop those
// companies; it is only ever a tie-breaker after period matching.
func PreferConsolidated(facts []Fact) []Fact {
	var framed []Fact
	for _, f := range facts {
		if f.Frame != "" {
			framed = append(framed, f)
		}
	}
	if len(framed) > 0 {
		return framed
	}
	return facts
}

// SelectBestFactForPeriod picks the single best fact for a period end,
// honoring the point-in-time cutoff:
//
//  1. facts filed after the cutoff are discarded;
//  2. exact end-date matches win, framed preferred, latest filed breaking
//     ties;
//  3. otherwise the closest end within the day tolerance, framed preferred
//     within the winning distance, latest filed last.
//
// Returns nil when nothing qualifies.
func SelectBestFactForPeriod(facts []Fact, periodEnd, cutoff time.Time) *Fact {
	cutoffDate := utils.DateOnly(cutoff)
	target := utils.DateOnly(periodEnd)

	var eligible []Fact
	for _, f := range facts {
		if utils.DateOnly(f.Filed).After(cutoffDate) {
			continue
		}
		eligible = append(eligible, f)
	}
	if len(eligible) == 0 {
		return nil
	}

	var exact []Fact
	for _, f := range eligible {
		if utils.DateOnly(f.End).Equal(target) {
			exact = append(exact, f)
		}
	}
	if len(exact) > 0 {
		return latestFiled(PreferConsolidated(exact))
	}

	var fuzzy []Fact
	bestDist := periodEndToleranceDays + 1
	for _, f := range eligible {
		d := utils.AbsDays(f.End, target)
		if d > periodEndToleranceDays {
			continue
		}
		if d < bestDist {
			bestDist = d
			fuzzy = fuzzy[:0]
		}
		if d == bestDist {
			fuzzy = append(fuzzy, f)
		}
	}
	if len(fuzzy) == 0 {
		return nil
	}
	return latestFiled(PreferConsolidated(fuzzy))
}

// latestFiled returns the fact with the most recent filed date, keeping the
// first on ties.
func latestFiled(facts []Fact) *Fact {
	if len(facts) == 0 {
		return nil
	}
	best := facts[0]
	for _, f := range facts[1:] {
		if f.Filed.After(best.Filed) {
			best = f
		}
	}
	return &best
}
