package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trustlens/internal/config"
	"trustlens/internal/sentiment"
	"trustlens/internal/trust"
	"trustlens/internal/types"
)

// Scraper retrieves one product record. The pipeline controller satisfies
// it; tests substitute stubs.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*types.Product, error)
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	URL string `json:"url"`
}

// AnalyzeResponse is the full analysis of one product URL. TrustScore is on
// a 0-1 scale; the component breakdown and verdict ride along.
type AnalyzeResponse struct {
	ProductInfo          *types.Product       `json:"product_info"`
	SentimentAnalysis    sentiment.Summary    `json:"sentiment_analysis"`
	TrustScore           float64              `json:"trust_score"`
	TrustScoreComponents trust.Components     `json:"trust_score_components"`
	Recommendation       trust.Recommendation `json:"recommendation"`
	Cached               bool                 `json:"cached,omitempty"`
}

// Server is the HTTP analyze API. Repeat lookups of the same URL are served
// from an LRU cache so one hot product cannot hammer the target site.
type Server struct {
	cfg      *config.Server
	scraper  Scraper
	analyzer *sentiment.Analyzer
	scorer   *trust.Scorer
	cache    *lru.Cache[string, *AnalyzeResponse]
	registry *prometheus.Registry
	router   chi.Router
	logger   *slog.Logger
}

// NewServer wires the analysis pipeline behind HTTP.
func NewServer(cfg *config.Server, scraper Scraper, registry *prometheus.Registry, logger *slog.Logger) (*Server, error) {
	cache, err := lru.New[string, *AnalyzeResponse](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create response cache: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		scraper:  scraper,
		analyzer: sentiment.NewAnalyzer(logger),
		scorer:   trust.NewScorer(logger),
		cache:    cache,
		registry: registry,
		logger:   logger.With("component", "api_server"),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	lmt := tollbooth.NewLimiter(s.cfg.RateLimit, &limiter.ExpirableOptions{
		DefaultExpirationTTL: time.Hour,
	})
	lmt.SetIPLookups([]string{"RemoteAddr", "X-Forwarded-For", "X-Real-IP"})

	r.Get("/health", s.handleHealth)
	if s.registry != nil {
		r.Method(http.MethodGet, s.cfg.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	r.Route("/api", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return tollbooth.LimitHandler(lmt, next)
		})
		r.Post("/analyze", s.handleAnalyze)
	})

	return r
}

// ServeHTTP makes the server usable directly in tests via httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start runs the server until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.logger.Info("api server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		s.respondError(w, http.StatusBadRequest, "URL is required")
		return
	}

	log := s.logger.With("request_id", requestIDFrom(r.Context()), "url", req.URL)

	if cached, ok := s.cache.Get(req.URL); ok {
		log.Debug("analysis served from cache")
		resp := *cached
		resp.Cached = true
		s.respond(w, http.StatusOK, &resp)
		return
	}

	rec, err := s.scraper.Scrape(r.Context(), req.URL)
	if err != nil {
		var inputErr *types.InvalidInputError
		if errors.As(err, &inputErr) {
			s.respondError(w, http.StatusBadRequest, inputErr.Error())
			return
		}
		log.Error("analysis failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to analyze product")
		return
	}

	summary := s.analyzer.Analyze(rec.Reviews)
	result := s.scorer.Score(rec, summary)

	resp := &AnalyzeResponse{
		ProductInfo:          rec,
		SentimentAnalysis:    summary,
		TrustScore:           result.Overall / 100.0,
		TrustScoreComponents: result.Components,
		Recommendation:       s.scorer.Recommend(result),
	}
	s.cache.Add(req.URL, resp)

	log.Info("analysis complete",
		"title", rec.Title,
		"trust_score", resp.TrustScore,
		"action", resp.Recommendation.Action,
	)
	s.respond(w, http.StatusOK, resp)
}

func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respond(w, status, map[string]string{"error": msg})
}

type ctxKey int

const ctxKeyRequestID ctxKey = 0

// requestID tags every request with a UUID, echoed in the response header
// and attached to log lines.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return id
	}
	return ""
}
