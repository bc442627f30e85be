package config

import (
	"fmt"
	"strings"
)

var validStrategies = map[string]bool{
	"browser": true,
	"stealth": true,
	"backoff": true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

// Validate checks the configuration for errors.
func Validate(cfg *Config) error {
	if len(cfg.Scraper.StrategyOrder) == 0 {
		return fmt.Errorf("scraper.strategy_order must name at least one strategy")
	}
	for _, name := range cfg.Scraper.StrategyOrder {
		if !validStrategies[name] {
			return fmt.Errorf("unknown retrieval strategy %q (valid: browser, stealth, backoff)", name)
		}
	}

	if cfg.Scraper.RequestTimeout <= 0 {
		return fmt.Errorf("scraper.request_timeout must be positive")
	}
	if cfg.Scraper.MaxBodySize <= 0 {
		return fmt.Errorf("scraper.max_body_size must be positive")
	}
	if cfg.Scraper.MinContentLength < 0 {
		return fmt.Errorf("scraper.min_content_length cannot be negative")
	}
	if cfg.Scraper.StealthDelayMin > cfg.Scraper.StealthDelayMax {
		return fmt.Errorf("scraper.stealth_delay_min exceeds scraper.stealth_delay_max")
	}
	if cfg.Scraper.BackoffRetries < 1 {
		return fmt.Errorf("scraper.backoff_retries must be at least 1")
	}
	if len(cfg.Scraper.UserAgents) == 0 {
		return fmt.Errorf("scraper.user_agents must list at least one user agent")
	}

	if cfg.Browser.ReadyTimeout <= 0 {
		return fmt.Errorf("browser.ready_timeout must be positive")
	}
	if cfg.Browser.NavigateTimeout <= 0 {
		return fmt.Errorf("browser.navigate_timeout must be positive")
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.RateLimit <= 0 {
		return fmt.Errorf("server.rate_limit must be positive")
	}
	if cfg.Server.CacheSize < 1 {
		return fmt.Errorf("server.cache_size must be at least 1")
	}
	if !strings.HasPrefix(cfg.Server.MetricsPath, "/") {
		return fmt.Errorf("server.metrics_path must start with /")
	}

	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", cfg.Logging.Level)
	}
	if !validLogFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid log format %q (valid: text, json)", cfg.Logging.Format)
	}

	return nil
}
