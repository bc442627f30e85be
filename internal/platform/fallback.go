package platform

import (
	"fmt"
	"math/rand"

	"trustlens/internal/types"
)

// pool holds the ingredients a synthesized placeholder record is drawn from.
// Shape is deterministic per platform; selection within a pool is randomized.
type pool struct {
	titles   []string
	prices   []float64
	ratings  []float64
	counts   []int
	seller   string
	reviews  []types.Review
}

var pools = map[types.Platform]pool{
	types.PlatformAmazon: {
		titles:  []string{"Amazon Product", "Amazon Marketplace Item"},
		prices:  []float64{29.99, 49.99, 99.99},
		ratings: []float64{4.2, 4.5},
		counts:  []int{100, 150, 320},
		seller:  "Amazon",
		reviews: cannedReviews,
	},
	types.PlatformEbay: {
		titles:  []string{"eBay Product", "eBay Listed Item"},
		prices:  []float64{19.99, 59.99, 89.99},
		ratings: []float64{4.0, 4.3},
		counts:  []int{50, 85, 120},
		seller:  "eBay Seller",
		reviews: cannedReviews,
	},
	types.PlatformDaraz: {
		titles:  []string{"Daraz Product", "Daraz Mall Item"},
		prices:  []float64{14.99, 39.99, 79.99},
		ratings: []float64{3.5, 4.1},
		counts:  []int{25, 40, 75},
		seller:  "Daraz Seller",
		reviews: cannedReviews,
	},
	types.PlatformAliexpress: {
		titles:  []string{"AliExpress Product", "AliExpress Store Item"},
		prices:  []float64{9.99, 24.99, 44.99},
		ratings: []float64{3.8, 4.4},
		counts:  []int{60, 200, 510},
		seller:  "AliExpress Store",
		reviews: cannedReviews,
	},
	types.PlatformWalmart: {
		titles:  []string{"Walmart Product", "Walmart Store Item"},
		prices:  []float64{12.99, 34.99, 69.99},
		ratings: []float64{4.1, 4.4},
		counts:  []int{80, 130, 260},
		seller:  "Walmart",
		reviews: cannedReviews,
	},
	types.PlatformGeneric: {
		titles:  []string{types.DefaultTitle},
		prices:  []float64{0},
		ratings: []float64{0},
		counts:  []int{0},
		seller:  types.DefaultSeller,
	},
}

var cannedReviews = []types.Review{
	{Text: "Great product, highly recommend!", Rating: "5"},
	{Text: "Good quality and fast shipping", Rating: "4"},
	{Text: "Works as expected", Rating: "4"},
}

// Synthesize produces a well-formed placeholder record for a platform. An
// unrecognized tag falls back to the generic pool. rng may not be nil;
// callers seed it for deterministic tests.
func Synthesize(p types.Platform, rawURL string, rng *rand.Rand) *types.Product {
	src, ok := pools[p]
	if !ok {
		src = pools[types.PlatformGeneric]
		p = types.PlatformGeneric
	}

	rec := types.NewProduct(p, rawURL)
	rec.Title = pick(src.titles, rng)
	rec.Price = fmt.Sprintf("$%.2f", pick(src.prices, rng))
	rec.Rating = pick(src.ratings, rng)
	rec.ReviewCount = pick(src.counts, rng)
	rec.Seller = src.seller
	if len(src.reviews) > 0 {
		rec.Reviews = append([]types.Review(nil), src.reviews...)
	}
	rec.Synthetic = true
	return rec
}

func pick[T any](vals []T, rng *rand.Rand) T {
	if len(vals) == 1 {
		return vals[0]
	}
	return vals[rng.Intn(len(vals))]
}
