package utils

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2016-09-24", date(2016, 9, 24), true},
		{"20160924", date(2016, 9, 24), true},
		{" 2016-09-24 ", date(2016, 9, 24), true},
		{"09/24/2016", date(2016, 9, 24), true},
		{"", time.Time{}, false},
		{"not-a-date", time.Time{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDate(tc.in)
			if tc.ok != (err == nil) {
				t.Fatalf("ParseDate(%q) error = %v, want ok=%v", tc.in, err, tc.ok)
			}
			if tc.ok && !got.Equal(tc.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{"iso", "2016-10-26T16:42:16", time.Date(2016, 10, 26, 16, 42, 16, 0, time.UTC), true},
		{"iso fractional", "2016-10-26T16:42:16.531", time.Date(2016, 10, 26, 16, 42, 16, 531000000, time.UTC), true},
		{"iso zulu", "2016-10-26T16:42:16.000Z", time.Date(2016, 10, 26, 16, 42, 16, 0, time.UTC), true},
		{"space separated", "2016-10-26 16:42:16", time.Date(2016, 10, 26, 16, 42, 16, 0, time.UTC), true},
		{"compact", "20161026164216", time.Date(2016, 10, 26, 16, 42, 16, 0, time.UTC), true},
		{"date only", "2016-10-26", date(2016, 10, 26), true},
		{"colon offset", "2016-10-26T16:42:16-05:00", time.Date(2016, 10, 26, 16, 42, 16, 0, time.UTC), true},
		{"compact offset", "2016-10-26T16:42:16-0500", time.Date(2016, 10, 26, 16, 42, 16, 0, time.UTC), true},
		{"garbage", "yesterday", time.Time{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDateTime(tc.in)
			if tc.ok != (err == nil) {
				t.Fatalf("ParseDateTime(%q) error = %v, want ok=%v", tc.in, err, tc.ok)
			}
			if tc.ok && !got.Equal(tc.want) {
				t.Errorf("ParseDateTime(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsWithinCutoff(t *testing.T) {
	cutoff := date(2016, 12, 31)
	tests := []struct {
		name       string
		acceptance time.Time
		want       bool
	}{
		{"last second of cutoff day in", time.Date(2016, 12, 31, 23, 59, 59, 0, time.UTC), true},
		{"first second of next day out", time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"midday on cutoff", time.Date(2016, 12, 31, 12, 0, 0, 0, time.UTC), true},
		{"well before", time.Date(2016, 2, 26, 16, 42, 16, 0, time.UTC), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsWithinCutoff(tc.acceptance, cutoff); got != tc.want {
				t.Errorf("IsWithinCutoff(%v, %v) = %v, want %v", tc.acceptance, cutoff, got, tc.want)
			}
		})
	}
}

func TestPeriodWindows(t *testing.T) {
	end := date(2016, 12, 31)
	tests := []struct {
		days          int
		annual, qtrly bool
	}{
		{329, false, false},
		{330, true, false},
		{365, true, false},
		{400, true, false},
		{401, false, false},
		{74, false, false},
		{75, false, true},
		{91, false, true},
		{100, false, true},
		{101, false, false},
	}
	for _, tc := range tests {
		start := end.AddDate(0, 0, -tc.days)
		if got := IsAnnualPeriod(start, end); got != tc.annual {
			t.Errorf("IsAnnualPeriod(%d days) = %v, want %v", tc.days, got, tc.annual)
		}
		if got := IsQuarterlyPeriod(start, end); got != tc.qtrly {
			t.Errorf("IsQuarterlyPeriod(%d days) = %v, want %v", tc.days, got, tc.qtrly)
		}
	}
}

func TestAbsDays(t *testing.T) {
	a := date(2016, 12, 31)
	b := date(2017, 1, 3)
	if got := AbsDays(a, b); got != 3 {
		t.Errorf("AbsDays = %d, want 3", got)
	}
	if got := AbsDays(b, a); got != 3 {
		t.Errorf("AbsDays reversed = %d, want 3", got)
	}
	if got := AbsDays(a, a); got != 0 {
		t.Errorf("AbsDays same day = %d, want 0", got)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	d := date(2016, 9, 24)
	if got := FormatDate(d); got != "2016-09-24" {
		t.Errorf("FormatDate = %q", got)
	}
	ts := time.Date(2016, 10, 26, 16, 42, 16, 0, time.UTC)
	if got := FormatDateTime(ts); got != "2016-10-26 16:42:16" {
		t.Errorf("FormatDateTime = %q", got)
	}
}
