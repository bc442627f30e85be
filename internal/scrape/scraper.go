package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"trustlens/internal/config"
	"trustlens/internal/extract"
	"trustlens/internal/fetch"
	"trustlens/internal/observability"
	"trustlens/internal/platform"
	"trustlens/internal/types"
)

// Scraper is the pipeline controller: detect the platform, walk the
// configured retrieval strategies until one yields content that extracts and
// validates, and synthesize a placeholder when everything fails.
type Scraper struct {
	cfg        *config.Config
	rules      platform.Rules
	strategies []fetch.Strategy
	extractor  *extract.Extractor
	metrics    *observability.Metrics
	logger     *slog.Logger
	rng        *rand.Rand
}

// Option configures the Scraper.
type Option func(*Scraper)

// WithStrategies replaces the configured strategy chain. Tests use it to
// inject stubs.
func WithStrategies(strategies ...fetch.Strategy) Option {
	return func(s *Scraper) { s.strategies = strategies }
}

// WithRules replaces the built-in selector tables.
func WithRules(rules platform.Rules) Option {
	return func(s *Scraper) { s.rules = rules }
}

// WithRand sets the random source used for fallback synthesis.
func WithRand(rng *rand.Rand) Option {
	return func(s *Scraper) { s.rng = rng }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Scraper) { s.metrics = m }
}

// New creates a scraper from configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Scraper, error) {
	s := &Scraper{
		cfg:    cfg,
		rules:  platform.DefaultRules(),
		logger: logger.With("component", "scraper"),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.strategies == nil {
		strategies, err := fetch.Build(cfg.Scraper.StrategyOrder, cfg, logger)
		if err != nil {
			return nil, err
		}
		s.strategies = strategies
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetrics(nil)
	}
	s.extractor = extract.NewExtractor(s.rules, cfg.Scraper.MinContentLength, logger)

	return s, nil
}

// Scrape retrieves and extracts the product at rawURL. On strategy
// exhaustion, including a canceled or expired ctx, it returns a synthesized
// placeholder when fallback is allowed, or ErrStrategiesExhausted when it
// is not.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*types.Product, error) {
	start := time.Now()
	defer func() {
		s.metrics.ScrapeDuration.Observe(time.Since(start).Seconds())
	}()

	if err := checkTargetURL(rawURL); err != nil {
		return nil, err
	}

	p := platform.Detect(rawURL)
	log := s.logger.With("url", rawURL, "platform", p)
	log.Info("scrape started", "strategies", len(s.strategies))

	rc, err := fetch.NewRetrievalContext(&s.cfg.Scraper)
	if err != nil {
		return nil, err
	}
	rc.WaitFor = s.rules.WaitFor(p)

	for _, strategy := range s.strategies {
		// An expired context counts as exhaustion: the remaining strategies
		// cannot run, and the fallback gate below decides what the caller gets.
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Warn("context ended before strategies completed", "error", ctxErr)
			break
		}

		res, err := strategy.Fetch(ctx, rc, rawURL)
		if err != nil {
			outcome := types.OutcomeError
			var rerr *types.RetrievalError
			if errors.As(err, &rerr) {
				outcome = rerr.Outcome
			}
			s.metrics.RecordAttempt(strategy.Name(), outcome)
			log.Warn("strategy failed",
				"strategy", strategy.Name(),
				"outcome", outcome,
				"error", err,
			)
			continue
		}
		s.metrics.RecordAttempt(strategy.Name(), types.OutcomeSuccess)

		rec, err := s.extractor.Data(res.Content, p, rawURL)
		if err != nil {
			var inputErr *types.InvalidInputError
			if errors.As(err, &inputErr) && inputErr.Field == "url" {
				// Bad URL will not improve with another strategy.
				return nil, err
			}
			log.Warn("extraction failed", "strategy", strategy.Name(), "error", err)
			continue
		}

		if !Validate(rawURL, rec) {
			s.metrics.ValidationRejects.Inc()
			log.Warn("validation rejected record",
				"strategy", strategy.Name(),
				"error", &types.ValidationError{URL: rawURL, Title: rec.Title},
			)
			continue
		}

		log.Info("scrape complete",
			"strategy", strategy.Name(),
			"title", rec.Title,
			"price", rec.Price,
			"duration", time.Since(start),
		)
		return rec, nil
	}

	if !s.cfg.Scraper.AllowFallback {
		return nil, fmt.Errorf("%w for %s: %w", types.ErrStrategiesExhausted, rawURL, types.ErrFallbackDisabled)
	}

	s.metrics.Fallbacks.Inc()
	log.Warn("all strategies exhausted, synthesizing fallback record")
	return platform.Synthesize(p, rawURL, s.rng), nil
}

// checkTargetURL rejects input that cannot be a product page address: it
// must be absolute http(s) with a dotted host.
func checkTargetURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &types.InvalidInputError{Field: "url", Value: rawURL, Reason: "unparseable"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &types.InvalidInputError{Field: "url", Value: rawURL, Reason: "scheme must be http or https"}
	}
	host := u.Hostname()
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return &types.InvalidInputError{Field: "url", Value: rawURL, Reason: "host is not a domain name"}
	}
	for _, label := range labels {
		if label == "" {
			return &types.InvalidInputError{Field: "url", Value: rawURL, Reason: "host is not a domain name"}
		}
	}
	return nil
}
