// Package xbrl turns SEC companyfacts data into standardized statement rows:
// fetching and flattening facts, selecting the right context per period, and
// mapping GAAP tags onto the standard field set.
package xbrl

import (
	"fmt"
	"time"
)

// ContextType distinguishes period facts from point-in-time facts.
type ContextType string

const (
	ContextDuration ContextType = "duration"
	ContextInstant  ContextType = "instant"
)

// Namespaces is the taxonomy allowlist; everything else in companyfacts is
// ignored.
var Namespaces = []string{"us-gaap", "ifrs-full", "dei"}

// Fact is one reported number with its context. Start is nil for instant
// facts; Filed is always set (entries without it are dropped at parse time).
type Fact struct {
	Tag       string
	Namespace string
	Value     float64
	Unit      string
	Start     *time.Time
	End       time.Time
	Accession string
	Form      string
	Frame     string
	Filed     time.Time
}

// Key returns the fully-qualified "<namespace>:<tag>" name.
func (f Fact) Key() string {
	return f.Namespace + ":" + f.Tag
}

// ParseError means a companyfacts payload could not be turned into facts.
// It fails the affected ticker only.
type ParseError struct {
	Accession string
	Detail    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse XBRL data (%s): %s", e.Accession, e.Detail)
}
