package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"trustlens/internal/config"
	"trustlens/internal/types"
)

// BrowserStrategy renders the page in a headless Chromium via Rod, with
// stealth patches applied. It is the heavyweight strategy: it defeats
// JavaScript-gated pages and most fingerprint checks, at the cost of a full
// browser launch per fetch. Product pages are one-shot targets, so no browser
// instance is kept warm between scrapes.
type BrowserStrategy struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewBrowserStrategy(cfg *config.Config, logger *slog.Logger) *BrowserStrategy {
	return &BrowserStrategy{
		cfg:    cfg,
		logger: logger.With("component", "browser_strategy"),
	}
}

func (s *BrowserStrategy) Name() string { return "browser" }

// Fetch launches a browser, navigates, waits for the platform's page-ready
// indicator, and returns the rendered HTML. The browser is torn down on every
// exit path.
func (s *BrowserStrategy) Fetch(ctx context.Context, rc *RetrievalContext, url string) (*types.FetchResult, error) {
	start := time.Now()

	launchURL, cleanup, err := s.launch()
	if err != nil {
		return nil, &types.RetrievalError{
			URL: url, Strategy: s.Name(), Outcome: types.OutcomeError,
			Err: fmt.Errorf("launch browser: %w", err),
		}
	}
	defer cleanup()

	browser := rod.New().ControlURL(launchURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, &types.RetrievalError{
			URL: url, Strategy: s.Name(), Outcome: types.OutcomeConnectionError,
			Err: fmt.Errorf("connect browser: %w", err),
		}
	}
	defer browser.Close()

	page, err := stealth.Page(browser)
	if err != nil {
		return nil, &types.RetrievalError{
			URL: url, Strategy: s.Name(), Outcome: types.OutcomeError,
			Err: fmt.Errorf("stealth page: %w", err),
		}
	}
	defer page.Close()

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: rc.UserAgent()}); err != nil {
		s.logger.Warn("failed to set user agent", "error", err)
	}

	if err := page.Timeout(s.cfg.Browser.NavigateTimeout).Navigate(url); err != nil {
		return nil, &types.RetrievalError{
			URL: url, Strategy: s.Name(), Outcome: navigateOutcome(err), Err: err,
		}
	}

	// Each platform defines the selector that marks a usable product page.
	// Not seeing it within the ready window is a timeout, not a crash.
	waitFor := rc.WaitFor
	if waitFor == "" {
		waitFor = "body"
	}
	if _, err := page.Timeout(s.cfg.Browser.ReadyTimeout).Element(waitFor); err != nil {
		return nil, &types.RetrievalError{
			URL: url, Strategy: s.Name(), Outcome: types.OutcomeTimeout,
			Err: fmt.Errorf("page-ready selector %q: %w", waitFor, err),
		}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.RetrievalError{
			URL: url, Strategy: s.Name(), Outcome: types.OutcomeError, Err: err,
		}
	}
	if LooksBlocked(html) {
		return nil, &types.RetrievalError{
			URL: url, Strategy: s.Name(), Outcome: types.OutcomeAntiBot,
			Err: errors.New("rendered page matches an anti-bot challenge"),
		}
	}

	finalURL := url
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	duration := time.Since(start)
	s.logger.Debug("browser fetch complete",
		"url", url,
		"final_url", finalURL,
		"size", len(html),
		"duration", duration,
	)

	return &types.FetchResult{
		Content:    html,
		StatusCode: 200, // Rod does not expose the document status
		FinalURL:   finalURL,
		Strategy:   s.Name(),
		Duration:   duration,
	}, nil
}

// launch starts a Chromium instance with anti-automation flags.
func (s *BrowserStrategy) launch() (string, func(), error) {
	l := launcher.New().
		Headless(s.cfg.Browser.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", s.cfg.Browser.WindowSize)

	launchURL, err := l.Launch()
	if err != nil {
		return "", nil, err
	}
	return launchURL, l.Cleanup, nil
}

// navigateOutcome classifies a navigation failure.
func navigateOutcome(err error) types.Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.OutcomeTimeout
	}
	return types.OutcomeConnectionError
}
