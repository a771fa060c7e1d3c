package xbrl

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func durationFact(start, end time.Time, filed time.Time, frame string, value float64) Fact {
	return Fact{
		Tag:       "Revenues",
		Namespace: "us-gaap",
		Value:     value,
		Unit:      "USD",
		Start:     &start,
		End:       end,
		Filed:     filed,
		Frame:     frame,
	}
}

func instantFact(end, filed time.Time, value float64) Fact {
	return Fact{
		Tag:       "Assets",
		Namespace: "us-gaap",
		Value:     value,
		Unit:      "USD",
		End:       end,
		Filed:     filed,
	}
}

func TestFilterFactsByPeriodType(t *testing.T) {
	end := day(2016, 9, 24)
	filed := day(2016, 10, 26)

	annualFact := durationFact(end.AddDate(0, 0, -364), end, filed, "", 1)
	quarterFact := durationFact(end.AddDate(0, 0, -91), end, filed, "", 2)
	oddFact := durationFact(end.AddDate(0, 0, -200), end, filed, "", 3)
	pointFact := instantFact(end, filed, 4)

	facts := []Fact{annualFact, quarterFact, oddFact, pointFact}

	instant := FilterFactsByPeriodType(facts, ContextInstant, true)
	if len(instant) != 1 || instant[0].Value != 4 {
		t.Errorf("instant filter kept %v, want only the start-less fact", instant)
	}

	annual := FilterFactsByPeriodType(facts, ContextDuration, true)
	if len(annual) != 1 || annual[0].Value != 1 {
		t.Errorf("annual filter kept %v, want only the ~364-day fact", annual)
	}

	quarterly := FilterFactsByPeriodType(facts, ContextDuration, false)
	if len(quarterly) != 1 || quarterly[0].Value != 2 {
		t.Errorf("quarterly filter kept %v, want only the ~91-day fact", quarterly)
	}
}

func TestFilterFactsByPeriodTypeWindowBoundaries(t *testing.T) {
	end := day(2016, 12, 31)
	filed := day(2017, 2, 1)
	tests := []struct {
		days   int
		annual bool
		keep   bool
	}{
		{330, true, true},
		{329, true, false},
		{400, true, true},
		{401, true, false},
		{75, false, true},
		{74, false, false},
		{100, false, true},
		{101, false, false},
	}
	for _, tc := range tests {
		f := durationFact(end.AddDate(0, 0, -tc.days), end, filed, "", 1)
		got := FilterFactsByPeriodType([]Fact{f}, ContextDuration, tc.annual)
		if kept := len(got) == 1; kept != tc.keep {
			t.Errorf("%d-day duration, annual=%v: kept=%v, want %v", tc.days, tc.annual, kept, tc.keep)
		}
	}
}

func TestPreferConsolidated(t *testing.T) {
	end := day(2016, 12, 31)
	filed := day(2017, 2, 1)
	framed := durationFact(end.AddDate(0, 0, -365), end, filed, "CY2016", 1)
	unframed := durationFact(end.AddDate(0, 0, -365), end, filed, "", 2)

	got := PreferConsolidated([]Fact{framed, unframed})
	if len(got) != 1 || got[0].Frame != "CY2016" {
		t.Errorf("framed subset should win when present, got %v", got)
	}

	// Frame is a preference, never a gate: all-unframed input passes through.
	got = PreferConsolidated([]Fact{unframed})
	if len(got) != 1 || got[0].Value != 2 {
		t.Errorf("unframed-only input should pass through, got %v", got)
	}
}

func TestSelectBestFactForPeriodExactMatch(t *testing.T) {
	periodEnd := day(2016, 9, 24)
	cutoff := day(2017, 1, 1)
	start := periodEnd.AddDate(0, 0, -364)

	original := durationFact(start, periodEnd, day(2016, 10, 26), "", 100)
	restated := durationFact(start, periodEnd, day(2016, 12, 15), "", 101)

	best := SelectBestFactForPeriod([]Fact{original, restated}, periodEnd, cutoff)
	if best == nil {
		t.Fatal("expected a fact")
	}
	if best.Value != 101 {
		t.Errorf("latest-filed should win among exact matches, got value %v", best.Value)
	}
}

func TestSelectBestFactForPeriodNonCalendarFiscalYear(t *testing.T) {
	// September-ending fiscal year: no frame on the annual total. The fact
	// must still be selected.
	periodEnd := day(2016, 9, 24)
	cutoff := day(2017, 1, 1)
	f := durationFact(periodEnd.AddDate(0, 0, -364), periodEnd, day(2016, 10, 26), "", 215639)

	best := SelectBestFactForPeriod([]Fact{f}, periodEnd, cutoff)
	if best == nil {
		t.Fatal("frame-less fact for a non-calendar fiscal year must not be dropped")
	}
	if best.Value != 215639 {
		t.Errorf("value = %v", best.Value)
	}
}

func TestSelectBestFactForPeriodCutoff(t *testing.T) {
	periodEnd := day(2016, 12, 31)
	f := durationFact(periodEnd.AddDate(0, 0, -365), periodEnd, day(2017, 2, 1), "", 1)

	if got := SelectBestFactForPeriod([]Fact{f}, periodEnd, day(2016, 12, 31)); got != nil {
		t.Error("fact filed after the cutoff must be discarded")
	}
	if got := SelectBestFactForPeriod([]Fact{f}, periodEnd, day(2017, 3, 1)); got == nil {
		t.Error("fact filed before the cutoff must be selectable")
	}
}

func TestSelectBestFactForPeriodFuzzyMatch(t *testing.T) {
	cutoff := day(2017, 3, 1)
	filed := day(2017, 1, 31)
	target := day(2016, 12, 31)

	tests := []struct {
		name string
		end  time.Time
		want bool
	}{
		{"three days off", day(2017, 1, 3), true},
		{"seven days off", day(2017, 1, 7), true},
		{"eight days off", day(2017, 1, 8), false},
		{"seven days early", day(2016, 12, 24), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := durationFact(tc.end.AddDate(0, 0, -365), tc.end, filed, "", 1)
			got := SelectBestFactForPeriod([]Fact{f}, target, cutoff)
			if (got != nil) != tc.want {
				t.Errorf("end %s: selected=%v, want %v", tc.end.Format("2006-01-02"), got != nil, tc.want)
			}
		})
	}
}

func TestSelectBestFactForPeriodFuzzyPrefersClosest(t *testing.T) {
	cutoff := day(2017, 3, 1)
	target := day(2016, 12, 31)

	near := durationFact(day(2016, 1, 3), day(2017, 1, 2), day(2017, 1, 31), "", 10)
	far := durationFact(day(2016, 1, 6), day(2017, 1, 5), day(2017, 2, 10), "", 20)

	best := SelectBestFactForPeriod([]Fact{far, near}, target, cutoff)
	if best == nil || best.Value != 10 {
		t.Errorf("closest end should win over later filed, got %v", best)
	}
}

func TestSelectBestFactForPeriodFramePreferenceWithinDistance(t *testing.T) {
	cutoff := day(2017, 6, 1)
	target := day(2016, 12, 31)
	start := day(2016, 1, 1)

	unframedLater := durationFact(start, target, day(2017, 3, 1), "", 1)
	framedEarlier := durationFact(start, target, day(2017, 2, 1), "CY2016", 2)

	best := SelectBestFactForPeriod([]Fact{unframedLater, framedEarlier}, target, cutoff)
	if best == nil || best.Value != 2 {
		t.Errorf("framed fact should win the tie-break even when filed earlier, got %v", best)
	}
}
