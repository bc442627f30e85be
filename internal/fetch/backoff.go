package fetch

import (
	"context"
	"errors"
	"log/slog"

	"trustlens/internal/config"
	"trustlens/internal/types"
)

// BackoffStrategy is the patient last resort: a longer initial pause, then a
// bounded number of attempts with exponentially growing delays between them.
// Sites that throttle by request rate usually let the slow client through.
type BackoffStrategy struct {
	cfg    *config.Scraper
	logger *slog.Logger
}

func NewBackoffStrategy(cfg *config.Scraper, logger *slog.Logger) *BackoffStrategy {
	return &BackoffStrategy{
		cfg:    cfg,
		logger: logger.With("component", "backoff_strategy"),
	}
}

func (s *BackoffStrategy) Name() string { return "backoff" }

// Fetch retries with exponential backoff until an attempt succeeds, retries
// run out, or the outcome is one retrying cannot change.
func (s *BackoffStrategy) Fetch(ctx context.Context, rc *RetrievalContext, url string) (*types.FetchResult, error) {
	var lastErr error

	delay := s.cfg.BackoffDelay
	for attempt := 1; attempt <= s.cfg.BackoffRetries; attempt++ {
		if err := rc.Pause(ctx, delay, delay); err != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, &types.RetrievalError{
				URL: url, Strategy: s.Name(), Outcome: types.OutcomeTimeout, Err: err,
			}
		}

		res, err := doRequest(ctx, rc, s.Name(), url, browserHeaders(rc.UserAgent()))
		if err == nil {
			s.logger.Debug("backoff fetch complete",
				"url", url,
				"attempt", attempt,
				"status", res.StatusCode,
				"duration", res.Duration,
			)
			return res, nil
		}
		lastErr = err

		var rerr *types.RetrievalError
		if errors.As(err, &rerr) && !retryableOutcome(rerr.Outcome) {
			break
		}

		s.logger.Debug("backoff attempt failed",
			"url", url,
			"attempt", attempt,
			"error", err,
		)
		delay *= 2
	}

	return nil, lastErr
}

// retryableOutcome reports whether waiting longer could change the outcome.
// Anti-bot blocks and hard HTTP errors do not clear on their own.
func retryableOutcome(o types.Outcome) bool {
	switch o {
	case types.OutcomeTimeout, types.OutcomeConnectionError, types.OutcomeHTTPError:
		return true
	default:
		return false
	}
}
