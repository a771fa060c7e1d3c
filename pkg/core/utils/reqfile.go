package utils

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// Request and watchlist files are written by hand, so they arrive with
// comments, trailing commas, single quotes, or no quotes at all. Parsing is
// layered: strict JSON first, then mechanical repair, then HJSON, which is
// the most permissive of the three.

// RepairJSON fixes common hand-editing mistakes (missing quotes, trailing
// commas, comments, stray code fences) and returns standard JSON.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %v", err)
	}
	return repaired, nil
}

// ParseHJSON parses an HJSON document directly into dst.
func ParseHJSON(data []byte, dst interface{}) error {
	if err := hjson.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("hjson parse failed: %v", err)
	}
	return nil
}

// DecodeLenient tries strict JSON, then repaired JSON, then HJSON.
func DecodeLenient(data []byte, dst interface{}) error {
	if err := json.Unmarshal(data, dst); err == nil {
		return nil
	}
	if repaired, err := RepairJSON(string(data)); err == nil {
		if err := json.Unmarshal([]byte(repaired), dst); err == nil {
			return nil
		}
	}
	return ParseHJSON(data, dst)
}

// watchlistDoc is the object form of a watchlist file.
type watchlistDoc struct {
	Tickers []string `json:"tickers"`
}

// LoadWatchlist reads a ticker watchlist from file contents. Accepted shapes:
// a bare array of symbols, or an object with a "tickers" array; either may be
// HJSON. Symbols are upper-cased and de-duplicated, preserving first-seen
// order is not required so the result is sorted for reproducible runs.
func LoadWatchlist(data []byte) ([]string, error) {
	var bare []string
	if err := DecodeLenient(data, &bare); err == nil && len(bare) > 0 {
		return normalizeTickers(bare), nil
	}

	var doc watchlistDoc
	if err := DecodeLenient(data, &doc); err != nil {
		return nil, fmt.Errorf("watchlist not parsable as JSON or HJSON: %v", err)
	}
	if len(doc.Tickers) == 0 {
		return nil, fmt.Errorf("watchlist contains no tickers")
	}
	return normalizeTickers(doc.Tickers), nil
}

func normalizeTickers(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
