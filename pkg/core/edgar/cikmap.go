package edgar

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// registryEntry mirrors one record of company_tickers.json.
type registryEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

type cikEntry struct {
	cik  string // 10-digit zero-padded
	name string
}

// CIKMapper resolves tickers to zero-padded CIKs using the SEC registry,
// downloaded once on first use and read-only afterwards.
type CIKMapper struct {
	client *Client
	log    zerolog.Logger

	mu       sync.RWMutex
	byTicker map[string]cikEntry
}

// NewCIKMapper wraps a client; nothing is fetched until Load or the first
// lookup.
func NewCIKMapper(client *Client) *CIKMapper {
	return &CIKMapper{
		client: client,
		log:    log.With().Str("component", "cikmap").Logger(),
	}
}

// PadCIK renders a numeric CIK in the 10-digit zero-padded form every EDGAR
// endpoint expects.
func PadCIK(cik int) string {
	return fmt.Sprintf("%010d", cik)
}

// Load downloads the ticker registry if it has not been loaded yet.
// Idempotent and safe for concurrent callers; only the first call fetches.
func (m *CIKMapper) Load(ctx context.Context) error {
	m.mu.RLock()
	loaded := m.byTicker != nil
	m.mu.RUnlock()
	if loaded {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byTicker != nil {
		return nil
	}

	var raw map[string]registryEntry
	if err := m.client.GetJSONInto(ctx, TickerRegistryURL, nil, &raw); err != nil {
		return fmt.Errorf("failed to load ticker registry: %w", err)
	}

	byTicker := make(map[string]cikEntry, len(raw))
	for _, entry := range raw {
		ticker := strings.ToUpper(strings.TrimSpace(entry.Ticker))
		if ticker == "" {
			continue
		}
		byTicker[ticker] = cikEntry{cik: PadCIK(entry.CIK), name: entry.Title}
	}
	m.byTicker = byTicker
	m.log.Info().Int("tickers", len(byTicker)).Msg("loaded SEC ticker registry")
	return nil
}

// Resolve returns the 10-digit CIK for a ticker, loading the registry on
// first use. Unknown tickers fail with CIKLookupError.
func (m *CIKMapper) Resolve(ctx context.Context, ticker string) (string, error) {
	if err := m.Load(ctx); err != nil {
		return "", err
	}
	m.mu.RLock()
	entry, ok := m.byTicker[strings.ToUpper(strings.TrimSpace(ticker))]
	m.mu.RUnlock()
	if !ok {
		return "", &CIKLookupError{Ticker: ticker}
	}
	return entry.cik, nil
}

// ResolveMany resolves a batch, skipping (and logging) unknown tickers so a
// single bad symbol never sinks the request.
func (m *CIKMapper) ResolveMany(ctx context.Context, tickers []string) (map[string]string, error) {
	if err := m.Load(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(tickers))
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range tickers {
		key := strings.ToUpper(strings.TrimSpace(t))
		entry, ok := m.byTicker[key]
		if !ok {
			m.log.Warn().Str("ticker", t).Msg("ticker not found in SEC registry, skipping")
			continue
		}
		out[key] = entry.cik
	}
	return out, nil
}

// CompanyName returns the registry title for a ticker.
func (m *CIKMapper) CompanyName(ctx context.Context, ticker string) (string, error) {
	if err := m.Load(ctx); err != nil {
		return "", err
	}
	m.mu.RLock()
	entry, ok := m.byTicker[strings.ToUpper(strings.TrimSpace(ticker))]
	m.mu.RUnlock()
	if !ok {
		return "", &CIKLookupError{Ticker: ticker}
	}
	return entry.name, nil
}
