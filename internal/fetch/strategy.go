package fetch

import (
	"context"
	"fmt"
	"log/slog"

	"trustlens/internal/config"
	"trustlens/internal/types"
)

// Strategy is one way of retrieving a product page. A strategy either returns
// the page content or a *types.RetrievalError carrying a typed outcome; the
// controller uses the outcome for logging and moves on to the next strategy.
type Strategy interface {
	// Name returns the strategy identifier used in config and logs.
	Name() string

	// Fetch retrieves the page at url.
	Fetch(ctx context.Context, rc *RetrievalContext, url string) (*types.FetchResult, error)
}

// Build resolves configured strategy names into strategy instances, in order.
func Build(names []string, cfg *config.Config, logger *slog.Logger) ([]Strategy, error) {
	strategies := make([]Strategy, 0, len(names))
	for _, name := range names {
		switch name {
		case "browser":
			strategies = append(strategies, NewBrowserStrategy(cfg, logger))
		case "stealth":
			strategies = append(strategies, NewStealthStrategy(&cfg.Scraper, logger))
		case "backoff":
			strategies = append(strategies, NewBackoffStrategy(&cfg.Scraper, logger))
		default:
			return nil, fmt.Errorf("unknown retrieval strategy %q", name)
		}
	}
	return strategies, nil
}
