package edgar

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/config"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/utils"
)

// Upstream endpoints. Paths are bit-exact; cik placeholders take the
// 10-digit zero-padded form.
const (
	TickerRegistryURL      = "https://www.sec.gov/files/company_tickers.json"
	SubmissionsURLTemplate = "https://data.sec.gov/submissions/CIK%s.json"
	ArchiveURLTemplate     = "https://data.sec.gov/submissions/%s"
	CompanyFactsTemplate   = "https://data.sec.gov/api/xbrl/companyfacts/CIK%s.json"
)

const (
	maxAttempts    = 5
	minBackoff     = 1 * time.Second
	maxBackoff     = 60 * time.Second
	requestTimeout = 30 * time.Second
)

// retryableStatus marks responses worth another attempt. Everything else in
// the 4xx range is a hard failure.
var retryableStatus = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// The connection pool is shared by every client in the process, the Go
// equivalent of the per-user-agent session reuse upstream expects.
var (
	transportOnce   sync.Once
	sharedTransport *http.Transport
)

func transport() *http.Transport {
	transportOnce.Do(func() {
		sharedTransport = &http.Transport{
			MaxIdleConns:        16,
			MaxIdleConnsPerHost: 8,
			IdleConnTimeout:     90 * time.Second,
		}
	})
	return sharedTransport
}

// ClientConfig configures a Client. Zero values fall back to engine defaults.
type ClientConfig struct {
	UserAgent   string
	CacheDir    string
	CacheSizeGB float64
	RateLimit   float64 // requests/sec, ceiling 10
	Cache       Cache   // optional override (e.g. the store-backed hybrid)
}

// Client is the rate-limited, retrying, cached SEC HTTP client. All EDGAR
// traffic in a snapshot build flows through one Client so the token bucket
// and response cache are shared across workers.
type Client struct {
	http      *http.Client
	userAgent string
	cache     Cache
	limiter   *Limiter
	log       zerolog.Logger
}

// NewClient validates the user agent, builds the shared limiter, and opens
// the response cache. Callers own the returned client and must Close it on
// every exit path.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := config.ValidateUserAgent(cfg.UserAgent); err != nil {
		return nil, err
	}
	rps := cfg.RateLimit
	if rps == 0 {
		rps = config.Default().SECRateLimitRPS
	}
	limiter, err := NewLimiter(rps)
	if err != nil {
		return nil, err
	}

	cache := cfg.Cache
	if cache == nil {
		dir := cfg.CacheDir
		if dir == "" {
			dir = config.Default().CacheDir
		}
		sizeGB := cfg.CacheSizeGB
		if sizeGB <= 0 {
			sizeGB = config.Default().CacheSizeGB
		}
		cache, err = NewFileCache(dir, sizeGB)
		if err != nil {
			return nil, err
		}
	}

	return &Client{
		http:      &http.Client{Transport: transport(), Timeout: requestTimeout},
		userAgent: cfg.UserAgent,
		cache:     cache,
		limiter:   limiter,
		log:       log.With().Str("component", "edgar").Logger(),
	}, nil
}

// UserAgent reports the header value this client sends.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Close releases the response cache. The shared transport stays alive for
// other clients.
func (c *Client) Close() error {
	return c.cache.Close()
}

// GetJSONInto fetches url (+params) and decodes the JSON body into dst.
// Cache hits never touch the network or the token bucket.
func (c *Client) GetJSONInto(ctx context.Context, rawURL string, params map[string]string, dst interface{}) error {
	body, err := c.fetch(ctx, rawURL, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to decode JSON from %s: %w", rawURL, err)
	}
	return nil
}

// GetRaw fetches url and returns the response body bytes.
func (c *Client) GetRaw(ctx context.Context, rawURL string) ([]byte, error) {
	return c.fetch(ctx, rawURL, nil)
}

func (c *Client) fetch(ctx context.Context, rawURL string, params map[string]string) ([]byte, error) {
	key := utils.RequestCacheKey(rawURL, params)
	if body, ok := c.cache.Get(key); ok {
		c.log.Debug().Str("url", rawURL).Msg("cache hit")
		return body, nil
	}

	fullURL := rawURL
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		fullURL = rawURL + "?" + q.Encode()
	}

	body, err := c.doWithRetry(ctx, fullURL)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(key, body); err != nil {
		c.log.Warn().Err(err).Str("url", rawURL).Msg("failed to cache response")
	}
	return body, nil
}

// doWithRetry performs the GET with up to maxAttempts tries, exponential
// backoff clamped to [minBackoff, maxBackoff], retrying connection errors,
// timeouts, and the retryable status set. A non-retryable 4xx fails the
// request immediately.
func (c *Client) doWithRetry(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	lastStatus := 0
	backoff := minBackoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			c.log.Debug().
				Str("url", fullURL).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("retrying request")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		if err := c.limiter.Acquire(ctx, 1); err != nil {
			return nil, err
		}

		body, status, err := c.doOnce(ctx, fullURL)
		switch {
		case err == nil && status == http.StatusOK:
			return body, nil
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		case retryableStatus[status]:
			lastStatus = status
			lastErr = fmt.Errorf("status %d from %s", status, fullURL)
		default:
			return nil, &HTTPStatusError{URL: fullURL, StatusCode: status}
		}
	}

	if lastStatus == http.StatusTooManyRequests {
		return nil, &RateLimitError{URL: fullURL, Attempts: maxAttempts}
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", maxAttempts, lastErr)
}

// doOnce issues a single GET. The Accept-Encoding header is set explicitly,
// so gzip bodies are decompressed by hand rather than by the transport.
func (c *Client) doOnce(ctx context.Context, fullURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	req.Header.Set("Accept", "application/json, text/html, */*")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		io.Copy(io.Discard, res.Body)
		return nil, res.StatusCode, nil
	}

	var reader io.Reader = res.Body
	if res.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(res.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to open gzip body: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, 0, fmt.Errorf("failed to read body: %w", err)
	}
	return buf.Bytes(), http.StatusOK, nil
}
