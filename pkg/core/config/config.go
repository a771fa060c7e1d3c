// Package config holds the engine-level configuration. Values resolve in
// three layers: compiled defaults, an optional engine.hjson file, then
// environment variables (a .env file is honored when present).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/utils"
)

// MaxRateLimitRPS is the SEC fair-access ceiling. Construction of any
// limiter above this value is refused outright.
const MaxRateLimitRPS = 10.0

// DefaultUserAgent is a placeholder that satisfies the SEC header format;
// real deployments must override it with a contact address of their own.
const DefaultUserAgent = "ResearchProject/1.0 researcher@example.com"

// EngineConfig is the process-wide configuration for snapshot builds.
type EngineConfig struct {
	UserAgent       string  `json:"user_agent"`
	CacheDir        string  `json:"cache_dir"`
	OutputDir       string  `json:"output_dir"`
	SECRateLimitRPS float64 `json:"sec_rate_limit_rps"`
	CacheSizeGB     float64 `json:"cache_size_gb"`
	AllowAmendments bool    `json:"allow_amendments"`
	AllowLTM        bool    `json:"allow_ltm"`
	AllowEstimates  bool    `json:"allow_estimates"`
	Concurrency     int     `json:"concurrency"`
	LogLevel        string  `json:"log_level"`
	LogJSON         bool    `json:"log_json"`
	DatabaseURL     string  `json:"database_url"`
}

// Default returns the compiled-in configuration.
func Default() EngineConfig {
	return EngineConfig{
		UserAgent:       DefaultUserAgent,
		CacheDir:        ".cache",
		OutputDir:       "out",
		SECRateLimitRPS: 8,
		CacheSizeGB:     5.0,
		AllowAmendments: true,
		AllowLTM:        false,
		AllowEstimates:  false,
		Concurrency:     4,
		LogLevel:        "info",
		LogJSON:         false,
	}
}

// Load resolves the full configuration: defaults, then the HJSON file at
// CHRONOFUND_CONFIG (or ./engine.hjson when present), then environment
// variables. A .env file in the working directory is loaded first so that
// local development matches deployed behavior.
func Load() (EngineConfig, error) {
	godotenv.Load()

	cfg := Default()

	path := os.Getenv("CHRONOFUND_CONFIG")
	if path == "" {
		path = "engine.hjson"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := utils.ParseHJSON(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *EngineConfig) {
	if v := os.Getenv("SEC_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("CHRONOFUND_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("CHRONOFUND_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("CHRONOFUND_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SECRateLimitRPS = f
		}
	}
	if v := os.Getenv("CHRONOFUND_CACHE_SIZE_GB"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.CacheSizeGB = f
		}
	}
	if v := os.Getenv("CHRONOFUND_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Concurrency = n
		}
	}
	if v := os.Getenv("CHRONOFUND_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CHRONOFUND_LOG_JSON"); v != "" {
		cfg.LogJSON = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
}

// Validate enforces the constraints everything downstream relies on. The
// user-agent format check mirrors what the SEC actually rejects: the header
// must identify a product and a contact, separated by whitespace.
func (c EngineConfig) Validate() error {
	if err := ValidateUserAgent(c.UserAgent); err != nil {
		return err
	}
	if c.SECRateLimitRPS <= 0 {
		return fmt.Errorf("sec_rate_limit_rps must be positive, got %v", c.SECRateLimitRPS)
	}
	if c.SECRateLimitRPS > MaxRateLimitRPS {
		return fmt.Errorf("sec_rate_limit_rps %v exceeds the SEC ceiling of %v requests/sec",
			c.SECRateLimitRPS, MaxRateLimitRPS)
	}
	if c.CacheSizeGB <= 0 {
		return fmt.Errorf("cache_size_gb must be positive, got %v", c.CacheSizeGB)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	return nil
}

// ValidateUserAgent checks the `Name/Version email` shape: non-empty and
// containing at least one space.
func ValidateUserAgent(ua string) error {
	ua = strings.TrimSpace(ua)
	if ua == "" {
		return fmt.Errorf("user agent must not be empty")
	}
	if !strings.Contains(ua, " ") {
		return fmt.Errorf("user agent %q must look like \"Name/Version email\"", ua)
	}
	return nil
}
