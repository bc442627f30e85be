package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for trustlens.
type Config struct {
	Scraper Scraper `mapstructure:"scraper" yaml:"scraper"`
	Browser Browser `mapstructure:"browser" yaml:"browser"`
	Server  Server  `mapstructure:"server"  yaml:"server"`
	Logging Logging `mapstructure:"logging" yaml:"logging"`
}

// Scraper controls the retrieval strategies and the extraction pipeline.
type Scraper struct {
	// StrategyOrder lists retrieval strategies by name, tried in order:
	// "browser", "stealth", "backoff".
	StrategyOrder []string `mapstructure:"strategy_order" yaml:"strategy_order"`

	// AllowFallback returns a synthesized placeholder record when every
	// strategy fails. When false, exhaustion is a fatal error to the caller.
	AllowFallback bool `mapstructure:"allow_fallback" yaml:"allow_fallback"`

	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	MaxBodySize    int64         `mapstructure:"max_body_size"   yaml:"max_body_size"`

	// MinContentLength is the smallest body the extractor accepts as a real page.
	MinContentLength int `mapstructure:"min_content_length" yaml:"min_content_length"`

	// Pacing jitter before direct fetches. Zero both to disable (tests).
	StealthDelayMin time.Duration `mapstructure:"stealth_delay_min" yaml:"stealth_delay_min"`
	StealthDelayMax time.Duration `mapstructure:"stealth_delay_max" yaml:"stealth_delay_max"`

	// Backoff strategy: longer initial pause, bounded retries, exponential growth.
	BackoffDelay   time.Duration `mapstructure:"backoff_delay"   yaml:"backoff_delay"`
	BackoffRetries int           `mapstructure:"backoff_retries" yaml:"backoff_retries"`

	UserAgents []string `mapstructure:"user_agents" yaml:"user_agents"`
}

// Browser controls the headless rendering strategy.
type Browser struct {
	Headless bool `mapstructure:"headless" yaml:"headless"`

	// ReadyTimeout bounds the wait for the platform's page-ready indicator.
	// Missing the indicator is a timeout outcome, not a crash.
	ReadyTimeout    time.Duration `mapstructure:"ready_timeout"    yaml:"ready_timeout"`
	NavigateTimeout time.Duration `mapstructure:"navigate_timeout" yaml:"navigate_timeout"`
	WindowSize      string        `mapstructure:"window_size"      yaml:"window_size"`
}

// Server controls the HTTP analyze API.
type Server struct {
	Port        int     `mapstructure:"port"          yaml:"port"`
	RateLimit   float64 `mapstructure:"rate_limit"    yaml:"rate_limit"`
	CacheSize   int     `mapstructure:"cache_size"    yaml:"cache_size"`
	MetricsPath string  `mapstructure:"metrics_path"  yaml:"metrics_path"`
}

// Logging controls logging behavior.
type Logging struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults. The strategy order
// matches the reference deployment: rendering first, direct fetch as backup.
func DefaultConfig() *Config {
	return &Config{
		Scraper: Scraper{
			StrategyOrder:    []string{"browser", "stealth", "backoff"},
			AllowFallback:    true,
			RequestTimeout:   30 * time.Second,
			MaxBodySize:      10 * 1024 * 1024, // 10MB
			MinContentLength: 100,
			StealthDelayMin:  2 * time.Second,
			StealthDelayMax:  5 * time.Second,
			BackoffDelay:     5 * time.Second,
			BackoffRetries:   3,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
		},
		Browser: Browser{
			Headless:        true,
			ReadyTimeout:    10 * time.Second,
			NavigateTimeout: 30 * time.Second,
			WindowSize:      "1920,1080",
		},
		Server: Server{
			Port:        8080,
			RateLimit:   2,
			CacheSize:   256,
			MetricsPath: "/metrics",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}
