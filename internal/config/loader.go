package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment.
// Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("TRUSTLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("trustlens")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".trustlens"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("scraper.strategy_order", cfg.Scraper.StrategyOrder)
	v.SetDefault("scraper.allow_fallback", cfg.Scraper.AllowFallback)
	v.SetDefault("scraper.request_timeout", cfg.Scraper.RequestTimeout)
	v.SetDefault("scraper.max_body_size", cfg.Scraper.MaxBodySize)
	v.SetDefault("scraper.min_content_length", cfg.Scraper.MinContentLength)
	v.SetDefault("scraper.stealth_delay_min", cfg.Scraper.StealthDelayMin)
	v.SetDefault("scraper.stealth_delay_max", cfg.Scraper.StealthDelayMax)
	v.SetDefault("scraper.backoff_delay", cfg.Scraper.BackoffDelay)
	v.SetDefault("scraper.backoff_retries", cfg.Scraper.BackoffRetries)
	v.SetDefault("scraper.user_agents", cfg.Scraper.UserAgents)

	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.ready_timeout", cfg.Browser.ReadyTimeout)
	v.SetDefault("browser.navigate_timeout", cfg.Browser.NavigateTimeout)
	v.SetDefault("browser.window_size", cfg.Browser.WindowSize)

	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.rate_limit", cfg.Server.RateLimit)
	v.SetDefault("server.cache_size", cfg.Server.CacheSize)
	v.SetDefault("server.metrics_path", cfg.Server.MetricsPath)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
