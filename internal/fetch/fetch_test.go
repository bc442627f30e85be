package fetch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"trustlens/internal/config"
	"trustlens/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const productURL = "https://www.example.com/products/widget"

// testScraperConfig removes the pacing delays so strategy tests run fast.
func testScraperConfig() *config.Scraper {
	cfg := &config.DefaultConfig().Scraper
	cfg.StealthDelayMin = 0
	cfg.StealthDelayMax = 0
	cfg.BackoffDelay = time.Millisecond
	cfg.BackoffRetries = 3
	return cfg
}

func newMockedContext(t *testing.T, cfg *config.Scraper) *RetrievalContext {
	t.Helper()
	rc, err := NewRetrievalContext(cfg)
	if err != nil {
		t.Fatalf("NewRetrievalContext: %v", err)
	}
	httpmock.ActivateNonDefault(rc.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return rc
}

func TestLooksBlocked(t *testing.T) {
	cases := []struct {
		content string
		want    bool
	}{
		{"<html><body>Please complete the CAPTCHA to continue</body></html>", true},
		{"<html><body>Access Denied</body></html>", true},
		{"we detected suspicious activity from your network", true},
		{"Verify you are human before proceeding", true},
		{"Are you a robot?", true},
		{"<html><body><h1>Wireless Headphones</h1><p>$49.99</p></body></html>", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := LooksBlocked(tc.content); got != tc.want {
			t.Errorf("LooksBlocked(%q) = %v, want %v", tc.content, got, tc.want)
		}
	}
}

func TestStealthFetchSuccess(t *testing.T) {
	cfg := testScraperConfig()
	rc := newMockedContext(t, cfg)

	httpmock.RegisterResponder("GET", productURL,
		httpmock.NewStringResponder(200, "<html><body>product page body</body></html>"))

	s := NewStealthStrategy(cfg, testLogger)
	res, err := s.Fetch(context.Background(), rc, productURL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if res.StatusCode != 200 {
		t.Errorf("status = %d", res.StatusCode)
	}
	if res.Strategy != "stealth" {
		t.Errorf("strategy = %q", res.Strategy)
	}
	if res.Content == "" {
		t.Error("empty content")
	}
}

func TestStealthFetchSendsBrowserHeaders(t *testing.T) {
	cfg := testScraperConfig()
	rc := newMockedContext(t, cfg)

	var got http.Header
	httpmock.RegisterResponder("GET", productURL,
		func(req *http.Request) (*http.Response, error) {
			got = req.Header.Clone()
			return httpmock.NewStringResponse(200, "ok page content"), nil
		})

	s := NewStealthStrategy(cfg, testLogger)
	if _, err := s.Fetch(context.Background(), rc, productURL); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if got.Get("User-Agent") == "" {
		t.Error("missing User-Agent")
	}
	if got.Get("Referer") != "https://www.google.com/" {
		t.Errorf("Referer = %q", got.Get("Referer"))
	}
	if got.Get("Sec-Fetch-Mode") != "navigate" {
		t.Errorf("Sec-Fetch-Mode = %q", got.Get("Sec-Fetch-Mode"))
	}
	if got.Get("Sec-Ch-Ua") == "" {
		t.Error("missing Sec-Ch-Ua")
	}
}

func TestStealthFetchHTTPError(t *testing.T) {
	cfg := testScraperConfig()
	rc := newMockedContext(t, cfg)

	httpmock.RegisterResponder("GET", productURL,
		httpmock.NewStringResponder(404, "not found"))

	s := NewStealthStrategy(cfg, testLogger)
	_, err := s.Fetch(context.Background(), rc, productURL)

	var rerr *types.RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("want RetrievalError, got %v", err)
	}
	if rerr.Outcome != types.OutcomeHTTPError {
		t.Errorf("outcome = %q, want http_error", rerr.Outcome)
	}
	if rerr.StatusCode != 404 {
		t.Errorf("status = %d, want 404", rerr.StatusCode)
	}
}

func TestStealthFetchAntiBotContent(t *testing.T) {
	cfg := testScraperConfig()
	rc := newMockedContext(t, cfg)

	httpmock.RegisterResponder("GET", productURL,
		httpmock.NewStringResponder(200, "<html><body>please solve this captcha</body></html>"))

	s := NewStealthStrategy(cfg, testLogger)
	_, err := s.Fetch(context.Background(), rc, productURL)

	var rerr *types.RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("want RetrievalError, got %v", err)
	}
	if rerr.Outcome != types.OutcomeAntiBot {
		t.Errorf("outcome = %q, want anti_bot", rerr.Outcome)
	}
}

func TestStealthFetchConnectionError(t *testing.T) {
	cfg := testScraperConfig()
	rc := newMockedContext(t, cfg)

	httpmock.RegisterResponder("GET", productURL,
		httpmock.NewErrorResponder(errors.New("connection refused")))

	s := NewStealthStrategy(cfg, testLogger)
	_, err := s.Fetch(context.Background(), rc, productURL)

	var rerr *types.RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("want RetrievalError, got %v", err)
	}
	if rerr.Outcome == types.OutcomeSuccess {
		t.Error("transport failure cannot be a success outcome")
	}
}

func TestBackoffRetriesThenSucceeds(t *testing.T) {
	cfg := testScraperConfig()
	rc := newMockedContext(t, cfg)

	calls := 0
	httpmock.RegisterResponder("GET", productURL,
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return httpmock.NewStringResponse(503, "service unavailable"), nil
			}
			return httpmock.NewStringResponse(200, "<html><body>finally the product</body></html>"), nil
		})

	s := NewBackoffStrategy(cfg, testLogger)
	res, err := s.Fetch(context.Background(), rc, productURL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if res.Strategy != "backoff" {
		t.Errorf("strategy = %q", res.Strategy)
	}
}

func TestBackoffGivesUpAfterRetries(t *testing.T) {
	cfg := testScraperConfig()
	cfg.BackoffRetries = 2
	rc := newMockedContext(t, cfg)

	calls := 0
	httpmock.RegisterResponder("GET", productURL,
		func(req *http.Request) (*http.Response, error) {
			calls++
			return httpmock.NewStringResponse(503, "service unavailable"), nil
		})

	s := NewBackoffStrategy(cfg, testLogger)
	_, err := s.Fetch(context.Background(), rc, productURL)

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	var rerr *types.RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("want RetrievalError, got %v", err)
	}
	if rerr.Outcome != types.OutcomeHTTPError {
		t.Errorf("outcome = %q, want http_error", rerr.Outcome)
	}
}

func TestBackoffStopsOnAntiBot(t *testing.T) {
	cfg := testScraperConfig()
	rc := newMockedContext(t, cfg)

	calls := 0
	httpmock.RegisterResponder("GET", productURL,
		func(req *http.Request) (*http.Response, error) {
			calls++
			return httpmock.NewStringResponse(200, "access denied"), nil
		})

	s := NewBackoffStrategy(cfg, testLogger)
	_, err := s.Fetch(context.Background(), rc, productURL)

	if calls != 1 {
		t.Errorf("calls = %d, want 1; anti-bot blocks do not clear on retry", calls)
	}
	var rerr *types.RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("want RetrievalError, got %v", err)
	}
	if rerr.Outcome != types.OutcomeAntiBot {
		t.Errorf("outcome = %q, want anti_bot", rerr.Outcome)
	}
}

func TestUserAgentRotation(t *testing.T) {
	cfg := testScraperConfig()
	cfg.UserAgents = []string{"agent-a", "agent-b"}

	rc, err := NewRetrievalContext(cfg)
	if err != nil {
		t.Fatalf("NewRetrievalContext: %v", err)
	}

	first := rc.UserAgent()
	second := rc.UserAgent()
	third := rc.UserAgent()

	if first == second {
		t.Error("consecutive user agents must differ with two configured")
	}
	if first != third {
		t.Error("rotation must wrap around")
	}
}

func TestPauseRespectsContext(t *testing.T) {
	cfg := testScraperConfig()
	rc, err := NewRetrievalContext(cfg)
	if err != nil {
		t.Fatalf("NewRetrievalContext: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := rc.Pause(ctx, time.Minute, time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
}

func TestStrategyBuildOrder(t *testing.T) {
	cfg := config.DefaultConfig()
	strategies, err := Build([]string{"stealth", "backoff"}, cfg, testLogger)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(strategies) != 2 || strategies[0].Name() != "stealth" || strategies[1].Name() != "backoff" {
		t.Errorf("unexpected strategy chain")
	}

	if _, err := Build([]string{"teleport"}, cfg, testLogger); err == nil {
		t.Error("unknown strategy name must fail")
	}
}
