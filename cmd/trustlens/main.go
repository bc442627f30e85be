package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"trustlens/internal/api"
	"trustlens/internal/config"
	"trustlens/internal/observability"
	"trustlens/internal/scrape"
	"trustlens/internal/sentiment"
	"trustlens/internal/trust"
)

var (
	cfgFile       string
	verbose       bool
	noFallback    bool
	strategyOrder string
	headful       bool
)

func main() {
	// A missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "trustlens",
		Short: "TrustLens — e-commerce product trust analyzer",
		Long: `TrustLens scrapes e-commerce product pages and scores how trustworthy
a listing looks before you buy.

Features:
  • Platform-aware extraction for Amazon, eBay, Daraz, AliExpress, Walmart
  • Layered retrieval: headless browser, stealth HTTP, exponential backoff
  • Structured data (JSON-LD) and selector-based extraction
  • Review sentiment analysis and weighted trust scoring
  • REST API with response caching, rate limiting, Prometheus metrics`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scrapeCmd creates the "scrape" subcommand: retrieval and extraction only.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Scrape a product page and print the extracted record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg, err := setup()
			if err != nil {
				return err
			}

			scraper, err := scrape.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("create scraper: %w", err)
			}

			ctx, cancel := signalContext()
			defer cancel()

			rec, err := scraper.Scrape(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(rec)
		},
	}
	addScrapeFlags(cmd)
	return cmd
}

// analyzeCmd creates the "analyze" subcommand: the full pipeline including
// sentiment and trust scoring.
func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [url]",
		Short: "Scrape a product and print its trust analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg, err := setup()
			if err != nil {
				return err
			}

			scraper, err := scrape.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("create scraper: %w", err)
			}

			ctx, cancel := signalContext()
			defer cancel()

			rec, err := scraper.Scrape(ctx, args[0])
			if err != nil {
				return err
			}

			summary := sentiment.NewAnalyzer(logger).Analyze(rec.Reviews)
			scorer := trust.NewScorer(logger)
			result := scorer.Score(rec, summary)

			return printJSON(&api.AnalyzeResponse{
				ProductInfo:          rec,
				SentimentAnalysis:    summary,
				TrustScore:           result.Overall / 100.0,
				TrustScoreComponents: result.Components,
				Recommendation:       scorer.Recommend(result),
			})
		},
	}
	addScrapeFlags(cmd)
	return cmd
}

// serveCmd creates the "serve" subcommand: the HTTP analyze API.
func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the trust analysis HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg, err := setup()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}

			registry := prometheus.NewRegistry()
			metrics := observability.NewMetrics(registry)

			scraper, err := scrape.New(cfg, logger, scrape.WithMetrics(metrics))
			if err != nil {
				return fmt.Errorf("create scraper: %w", err)
			}

			srv, err := api.NewServer(&cfg.Server, scraper, registry, logger)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}

			ctx, cancel := signalContext()
			defer cancel()
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	addScrapeFlags(cmd)
	return cmd
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("TrustLens %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Scraper:\n")
			fmt.Printf("  Strategy Order:     %s\n", strings.Join(cfg.Scraper.StrategyOrder, ", "))
			fmt.Printf("  Allow Fallback:     %v\n", cfg.Scraper.AllowFallback)
			fmt.Printf("  Request Timeout:    %s\n", cfg.Scraper.RequestTimeout)
			fmt.Printf("  Max Body Size:      %d bytes\n", cfg.Scraper.MaxBodySize)
			fmt.Printf("  Min Content Length: %d bytes\n", cfg.Scraper.MinContentLength)
			fmt.Printf("  Backoff:            %s base, %d retries\n", cfg.Scraper.BackoffDelay, cfg.Scraper.BackoffRetries)
			fmt.Printf("  User Agents:        %d configured\n", len(cfg.Scraper.UserAgents))
			fmt.Printf("\nBrowser:\n")
			fmt.Printf("  Headless:           %v\n", cfg.Browser.Headless)
			fmt.Printf("  Ready Timeout:      %s\n", cfg.Browser.ReadyTimeout)
			fmt.Printf("  Navigate Timeout:   %s\n", cfg.Browser.NavigateTimeout)
			fmt.Printf("\nServer:\n")
			fmt.Printf("  Port:               %d\n", cfg.Server.Port)
			fmt.Printf("  Rate Limit:         %.1f req/s\n", cfg.Server.RateLimit)
			fmt.Printf("  Cache Size:         %d\n", cfg.Server.CacheSize)
			fmt.Printf("  Metrics Path:       %s\n", cfg.Server.MetricsPath)
			return nil
		},
	}
}

// addScrapeFlags registers the flags shared by every command that scrapes.
func addScrapeFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&noFallback, "no-fallback", false, "fail instead of synthesizing a placeholder record")
	cmd.Flags().StringVar(&strategyOrder, "strategies", "", "comma-separated strategy order (browser,stealth,backoff)")
	cmd.Flags().BoolVar(&headful, "headful", false, "run the browser strategy with a visible window")
}

// setup loads, overrides, and validates configuration, then builds the
// logger it describes.
func setup() (*slog.Logger, *config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if noFallback {
		cfg.Scraper.AllowFallback = false
	}
	if strategyOrder != "" {
		var order []string
		for _, name := range strings.Split(strategyOrder, ",") {
			if name = strings.TrimSpace(name); name != "" {
				order = append(order, name)
			}
		}
		cfg.Scraper.StrategyOrder = order
	}
	if headful {
		cfg.Browser.Headless = false
	}

	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return setupLogger(&cfg.Logging), cfg, nil
}

// setupLogger creates a structured logger per the logging config; --verbose
// overrides the configured level.
func setupLogger(cfg *config.Logging) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// signalContext returns a context canceled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
