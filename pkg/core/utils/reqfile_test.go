package utils

import (
	"reflect"
	"testing"
)

func TestRequestCacheKeyDeterministic(t *testing.T) {
	a := RequestCacheKey("https://data.sec.gov/submissions/CIK0000320193.json", map[string]string{"b": "2", "a": "1"})
	b := RequestCacheKey("https://data.sec.gov/submissions/CIK0000320193.json", map[string]string{"a": "1", "b": "2"})
	if a != b {
		t.Errorf("same logical request produced different keys: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(a))
	}

	c := RequestCacheKey("https://data.sec.gov/submissions/CIK0000320193.json", map[string]string{"a": "1"})
	if a == c {
		t.Error("different params produced the same key")
	}
	d := RequestCacheKey("https://data.sec.gov/submissions/CIK0000789019.json", map[string]string{"a": "1", "b": "2"})
	if a == d {
		t.Error("different URLs produced the same key")
	}
}

func TestLoadWatchlist(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
		ok   bool
	}{
		{
			name: "bare json array",
			in:   `["AAPL", "MSFT"]`,
			want: []string{"AAPL", "MSFT"},
			ok:   true,
		},
		{
			name: "object with tickers",
			in:   `{"tickers": ["msft", "aapl", "AAPL"]}`,
			want: []string{"AAPL", "MSFT"},
			ok:   true,
		},
		{
			name: "hjson with comments",
			in:   "{\n  # research watchlist\n  tickers:\n  [\n    AAPL\n    BRK.B\n  ]\n}",
			want: []string{"AAPL", "BRK.B"},
			ok:   true,
		},
		{
			name: "sloppy json trailing comma",
			in:   `["AAPL", "MSFT",]`,
			want: []string{"AAPL", "MSFT"},
			ok:   true,
		},
		{
			name: "empty object",
			in:   `{"tickers": []}`,
			ok:   false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LoadWatchlist([]byte(tc.in))
			if tc.ok != (err == nil) {
				t.Fatalf("LoadWatchlist error = %v, want ok=%v", err, tc.ok)
			}
			if tc.ok && !reflect.DeepEqual(got, tc.want) {
				t.Errorf("LoadWatchlist = %v, want %v", got, tc.want)
			}
		})
	}
}
