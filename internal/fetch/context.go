package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"trustlens/internal/config"
)

// RetrievalContext carries the per-scrape state shared by the strategies of
// one scrape: the cookie-jarred HTTP client, the user agent rotation, and the
// page-ready selector for the browser strategy. One context per scrape; it is
// never reused across target URLs so cookies and rotation state cannot leak
// between products.
type RetrievalContext struct {
	cfg    *config.Scraper
	client *http.Client

	// WaitFor is the CSS selector the browser strategy waits on before
	// reading the rendered page.
	WaitFor string

	mu      sync.Mutex
	rng     *rand.Rand
	uaIndex int
}

// NewRetrievalContext builds a fresh context for one scrape attempt.
func NewRetrievalContext(cfg *config.Scraper) (*RetrievalContext, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		DisableCompression: true, // We handle decompression ourselves (including brotli)
	}

	rc := &RetrievalContext{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   cfg.RequestTimeout,
		},
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	rc.uaIndex = rc.intn(max(len(cfg.UserAgents), 1))
	return rc, nil
}

// HTTPClient exposes the underlying client so tests can swap its transport.
func (rc *RetrievalContext) HTTPClient() *http.Client {
	return rc.client
}

// SeedRand replaces the random source. Tests use it for determinism.
func (rc *RetrievalContext) SeedRand(rng *rand.Rand) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.rng = rng
}

// UserAgent returns the next user agent in rotation. The starting position is
// random per context; subsequent calls walk the list.
func (rc *RetrievalContext) UserAgent() string {
	if len(rc.cfg.UserAgents) == 0 {
		return "trustlens/" + config.Version
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	ua := rc.cfg.UserAgents[rc.uaIndex%len(rc.cfg.UserAgents)]
	rc.uaIndex++
	return ua
}

// Pause sleeps a random duration in [min, max], or returns early when ctx is
// done. Zero bounds mean no pause.
func (rc *RetrievalContext) Pause(ctx context.Context, min, max time.Duration) error {
	d := min
	if max > min {
		d += time.Duration(rc.int63n(int64(max - min)))
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (rc *RetrievalContext) intn(n int) int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.rng.Intn(n)
}

func (rc *RetrievalContext) int63n(n int64) int64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.rng.Int63n(n)
}
