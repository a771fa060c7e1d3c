package edgar

import (
	"fmt"
	"time"
)

// CIKLookupError means a ticker is absent from the SEC registry.
type CIKLookupError struct {
	Ticker string
}

func (e *CIKLookupError) Error() string {
	return fmt.Sprintf("no CIK found for ticker %q", e.Ticker)
}

// FilingNotFoundError means no filings survived the point-in-time gate.
type FilingNotFoundError struct {
	Ticker     string
	Cutoff     time.Time
	PeriodType PeriodType
}

func (e *FilingNotFoundError) Error() string {
	return fmt.Sprintf("no %s filings for %s accepted on or before %s",
		e.PeriodType, e.Ticker, e.Cutoff.Format("2006-01-02"))
}

// RateLimitError means every retry of a throttled request came back 429.
type RateLimitError struct {
	URL      string
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited after %d attempts: %s", e.Attempts, e.URL)
}

// HTTPStatusError is a non-retryable upstream response (4xx other than 429).
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.URL)
}
