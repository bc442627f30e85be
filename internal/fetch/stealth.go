package fetch

import (
	"context"
	"log/slog"
	"net/http"

	"trustlens/internal/config"
	"trustlens/internal/types"
)

// StealthStrategy fetches directly over HTTP with a full browser-like header
// set and a randomized pre-request pause. It is the cheap strategy: no
// rendering, one request, and it passes basic fingerprint checks.
type StealthStrategy struct {
	cfg    *config.Scraper
	logger *slog.Logger
}

func NewStealthStrategy(cfg *config.Scraper, logger *slog.Logger) *StealthStrategy {
	return &StealthStrategy{
		cfg:    cfg,
		logger: logger.With("component", "stealth_strategy"),
	}
}

func (s *StealthStrategy) Name() string { return "stealth" }

// Fetch pauses a random interval, then issues one disguised GET.
func (s *StealthStrategy) Fetch(ctx context.Context, rc *RetrievalContext, url string) (*types.FetchResult, error) {
	if err := rc.Pause(ctx, s.cfg.StealthDelayMin, s.cfg.StealthDelayMax); err != nil {
		return nil, &types.RetrievalError{
			URL: url, Strategy: s.Name(), Outcome: types.OutcomeTimeout, Err: err,
		}
	}

	res, err := doRequest(ctx, rc, s.Name(), url, browserHeaders(rc.UserAgent()))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("stealth fetch complete",
		"url", url,
		"status", res.StatusCode,
		"size", len(res.Content),
		"duration", res.Duration,
	)
	return res, nil
}

// browserHeaders builds the header set a real Chrome navigation sends.
// Sec-Fetch and client-hint headers are what challenge scripts look at first.
func browserHeaders(userAgent string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Accept-Encoding", "gzip, deflate, br")
	h.Set("Referer", "https://www.google.com/")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "cross-site")
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Sec-Ch-Ua", `"Chromium";v="120", "Not?A_Brand";v="8", "Google Chrome";v="120"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", `"Windows"`)
	h.Set("Connection", "keep-alive")
	return h
}
