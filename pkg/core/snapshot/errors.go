package snapshot

import (
	"fmt"
	"time"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/utils"
)

// CutoffViolationError means a filing accepted after the cutoff reached the
// selector. The filings index is supposed to make this impossible, so any
// occurrence is a bug in the gate and fails the whole build rather than one
// ticker.
type CutoffViolationError struct {
	Ticker     string
	Accession  string
	Cutoff     time.Time
	Acceptance time.Time
}

func (e *CutoffViolationError) Error() string {
	return fmt.Sprintf("point-in-time violation for %s: filing %s accepted %s is after cutoff %s",
		e.Ticker, e.Accession,
		utils.FormatDateTime(e.Acceptance),
		utils.FormatDate(e.Cutoff))
}

// BloombergParseError is the boundary type for the external Bloomberg
// ingestion path. The core never constructs one; it exists so collaborators
// can surface their failures through the same error taxonomy.
type BloombergParseError struct {
	File   string
	Detail string
}

func (e *BloombergParseError) Error() string {
	return fmt.Sprintf("bloomberg parse error in %s: %s", e.File, e.Detail)
}

// TickerError records why one ticker produced no rows. The builder collects
// these instead of failing the run.
type TickerError struct {
	Ticker string
	Err    error
}

func (e *TickerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Ticker, e.Err)
}

func (e *TickerError) Unwrap() error {
	return e.Err
}
