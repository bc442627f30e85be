package trust

import (
	"log/slog"
	"os"
	"strings"
	"testing"

	"trustlens/internal/sentiment"
	"trustlens/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestDomainScore(t *testing.T) {
	cases := []struct {
		url  string
		want float64
	}{
		{"https://www.amazon.com/dp/B0CHX1W1XY", 0.95},
		{"https://daraz.pk/products/x", 0.95},
		{"https://www.shein.com/item", 0.75},
		{"https://www.temu.com/item", 0.15},
		{"https://myshop.example.net/p/1", 0.7},
		{"https://crafts-marketplace.net/p/1", 0.6},
		{"https://mega-discount.example.net/p/1", 0.4},
		{"https://somebrand.net/p/1", 0.8},
		{"https://unknown.example.net/p/1", 0.5},
	}

	for _, tc := range cases {
		if got := domainScore(tc.url); got != tc.want {
			t.Errorf("domainScore(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestReviewQualityScore(t *testing.T) {
	if got := reviewQualityScore(nil); got != 0 {
		t.Errorf("no reviews = %v, want 0", got)
	}

	detailed := []types.Review{
		{Text: strings.Repeat("solid construction and works well in daily use ", 3)},
		{Text: "The battery easily lasts two full days and charging is quick enough for me"},
	}
	if got := reviewQualityScore(detailed); got != 0.3 {
		t.Errorf("all-detailed reviews = %v, want 0.3", got)
	}

	suspicious := []types.Review{
		{Text: "scam scam scam"},
		{Text: "fake"},
	}
	if got := reviewQualityScore(suspicious); got != 0 {
		t.Errorf("all-suspicious reviews = %v, want clamped 0", got)
	}
}

func TestRatingConsistencyScore(t *testing.T) {
	// No rating or no reviews: neutral midpoint.
	if got := ratingConsistencyScore(0, 100, 0.5); got != 0.5 {
		t.Errorf("missing rating = %v, want 0.5", got)
	}
	if got := ratingConsistencyScore(4.5, 0, 0.5); got != 0.5 {
		t.Errorf("missing count = %v, want 0.5", got)
	}

	// Perfect agreement: 4.0 stars (0.8 normalized) vs sentiment 0.6
	// (0.8 normalized), 200 reviews adds the 0.1 bonus, clamped to 1.
	if got := ratingConsistencyScore(4.0, 200, 0.6); got != 1.0 {
		t.Errorf("agreement with bonus = %v, want 1.0", got)
	}

	// Strong disagreement: 5 stars but uniformly negative reviews.
	got := ratingConsistencyScore(5.0, 10, -1.0)
	if got != 0 {
		t.Errorf("disagreement = %v, want 0", got)
	}
}

func TestSellerScore(t *testing.T) {
	cases := []struct {
		seller string
		want   float64
	}{
		{"", 0.5},
		{types.DefaultSeller, 0.5},
		{"Cheap Discount Outlet", 0.3},
		{"Jane's Workshop", 0.3}, // "shop" is inside "Workshop"
		{"Authorized Distributor", 0.8},
		{"Acme Electronics", 0.6},
	}

	for _, tc := range cases {
		if got := sellerScore(tc.seller); got != tc.want {
			t.Errorf("sellerScore(%q) = %v, want %v", tc.seller, got, tc.want)
		}
	}
}

func TestSellerScoreOfficialStoreStaysPenalized(t *testing.T) {
	// "store" is a generic-name marker and takes precedence over "official".
	if got := sellerScore("Official Store"); got != 0.3 {
		t.Errorf("sellerScore(Official Store) = %v, want 0.3", got)
	}
}

func TestPriceScore(t *testing.T) {
	cases := []struct {
		price string
		want  float64
	}{
		{"", 0.5},
		{types.DefaultPrice, 0.5},
		{"$0.50", 0.2},
		{"$49.99", 0.8},
		{"$15,000.00", 0.7},
		{"not a price", 0.5},
	}

	for _, tc := range cases {
		if got := priceScore(tc.price); got != tc.want {
			t.Errorf("priceScore(%q) = %v, want %v", tc.price, got, tc.want)
		}
	}
}

func TestScoreTrustworthyProduct(t *testing.T) {
	s := NewScorer(testLogger)

	rec := types.NewProduct(types.PlatformAmazon, "https://www.amazon.com/dp/B0CHX1W1XY")
	rec.Title = "Wireless Noise Cancelling Headphones"
	rec.Price = "$49.99"
	rec.Rating = 4.4
	rec.ReviewCount = 1200
	rec.Seller = "Acme Electronics"
	rec.Reviews = []types.Review{
		{Text: "The battery easily lasts two full days and charging is quick enough for me"},
		{Text: "Sound quality is excellent and they stay comfortable through long calls"},
	}

	summary := sentiment.Summary{Positive: 2, TotalReviews: 2, Score: 1.0}
	res := s.Score(rec, summary)

	if res.Components.Domain != 0.95 {
		t.Errorf("domain = %v", res.Components.Domain)
	}
	if res.Overall < 60 {
		t.Errorf("overall = %v, want a trustworthy score", res.Overall)
	}
	if res.Overall > 100 {
		t.Errorf("overall = %v, exceeds the percentage scale", res.Overall)
	}
}

func TestScoreSketchyProduct(t *testing.T) {
	s := NewScorer(testLogger)

	rec := types.NewProduct(types.PlatformGeneric, "https://mega-sale.com/deal/1")
	rec.Title = "Luxury Watch"
	rec.Price = "$0.99"
	rec.Rating = 5.0
	rec.ReviewCount = 3
	rec.Seller = "Cheap Discount Outlet"
	rec.Reviews = []types.Review{
		{Text: "scam"},
		{Text: "fake fake fake"},
	}

	summary := sentiment.Summary{Negative: 2, TotalReviews: 2, Score: -1.0}
	res := s.Score(rec, summary)

	if res.Overall >= 60 {
		t.Errorf("overall = %v, want a low score for a sketchy listing", res.Overall)
	}
	if res.Components.Price != 0.2 {
		t.Errorf("price component = %v, want 0.2", res.Components.Price)
	}
}

func TestRecommendThresholds(t *testing.T) {
	s := NewScorer(testLogger)

	cases := []struct {
		overall float64
		action  string
	}{
		{95, "Buy"},
		{80, "Buy"},
		{79.9, "Be Careful"},
		{60, "Be Careful"},
		{59.9, "Avoid"},
		{10, "Avoid"},
	}

	for _, tc := range cases {
		rec := s.Recommend(Result{Overall: tc.overall})
		if rec.Action != tc.action {
			t.Errorf("Recommend(%v) = %q, want %q", tc.overall, rec.Action, tc.action)
		}
		if rec.Message == "" || rec.Color == "" {
			t.Errorf("Recommend(%v) missing message or color", tc.overall)
		}
	}
}
