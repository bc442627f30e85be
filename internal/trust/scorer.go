package trust

import (
	"log/slog"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"trustlens/internal/sentiment"
	"trustlens/internal/types"
)

// Components holds the per-signal scores, each on a 0-1 scale.
type Components struct {
	Domain            float64 `json:"domain"`
	ReviewQuality     float64 `json:"review_quality"`
	RatingConsistency float64 `json:"rating_consistency"`
	Seller            float64 `json:"seller"`
	Price             float64 `json:"price"`
}

// Result is the scored trust assessment of one product.
type Result struct {
	// Overall is a percentage, rounded to one decimal.
	Overall    float64    `json:"overall_score"`
	Components Components `json:"component_scores"`
}

// Recommendation is the buy/avoid verdict derived from the overall score.
type Recommendation struct {
	Action     string `json:"action"`
	Confidence string `json:"confidence"`
	Message    string `json:"message"`
	Color      string `json:"color"`
}

// Component weights. The sentiment adjustment is applied after the weighted
// sum, worth up to ±0.1.
const (
	weightDomain            = 0.25
	weightReviewQuality     = 0.25
	weightRatingConsistency = 0.20
	weightSeller            = 0.15
	weightPrice             = 0.15

	sentimentWeight = 0.1
)

var trustedDomains = map[string]bool{
	"amazon.com": true, "amazon.in": true, "amazon.co.uk": true, "amazon.de": true,
	"ebay.com": true, "ebay.co.uk": true, "ebay.de": true,
	"walmart.com": true, "target.com": true, "bestbuy.com": true,
	"homedepot.com": true, "costco.com": true, "macys.com": true, "nordstrom.com": true,
	"daraz.pk": true, "daraz.com.bd": true, "flipkart.com": true, "myntra.com": true,
	"ajio.com": true, "nykaa.com": true, "bigbasket.com": true,
	"aliexpress.com": true, "taobao.com": true, "tmall.com": true, "jd.com": true,
	"zalando.com": true, "otto.de": true, "cdiscount.com": true, "fnac.com": true,
	"asos.com": true, "hm.com": true, "zara.com": true, "uniqlo.com": true,
	"newegg.com": true, "bhphotovideo.com": true, "adorama.com": true,
	"etsy.com": true, "mercadolibre.com": true,
}

var mediumTrustDomains = map[string]bool{
	"shein.com": true, "zaful.com": true, "romwe.com": true,
	"shopify.com": true, "woocommerce.com": true, "magento.com": true,
	"dell.com": true, "hp.com": true, "lenovo.com": true, "samsung.com": true,
}

var suspiciousDomains = map[string]bool{
	"temu.com": true, "wish.com": true, "pinduoduo.com": true,
	"cheap-deals.com": true, "super-discount.com": true, "mega-sale.com": true,
}

var suspiciousReviewKeywords = []string{
	"fake", "scam", "fraud", "counterfeit", "knockoff", "replica",
	"cheap quality", "waste of money", "terrible", "awful",
	"don't buy", "avoid", "regret", "disappointed", "ripoff",
}

var priceValueRe = regexp.MustCompile(`[\d]+\.?\d*`)

// Scorer combines domain reputation, review quality, rating consistency,
// seller reputation, and price plausibility into one trust score.
type Scorer struct {
	logger *slog.Logger
}

func NewScorer(logger *slog.Logger) *Scorer {
	return &Scorer{logger: logger.With("component", "trust_scorer")}
}

// Score computes the trust assessment for a scraped product and its
// sentiment summary.
func (s *Scorer) Score(rec *types.Product, sent sentiment.Summary) Result {
	c := Components{
		Domain:            round2(domainScore(rec.URL)),
		ReviewQuality:     round2(reviewQualityScore(rec.Reviews)),
		RatingConsistency: round2(ratingConsistencyScore(rec.Rating, rec.ReviewCount, sent.Score)),
		Seller:            round2(sellerScore(rec.Seller)),
		Price:             round2(priceScore(rec.Price)),
	}

	overall := c.Domain*weightDomain +
		c.ReviewQuality*weightReviewQuality +
		c.RatingConsistency*weightRatingConsistency +
		c.Seller*weightSeller +
		c.Price*weightPrice

	overall += sent.Score * sentimentWeight
	overall = clamp01(overall)

	s.logger.Info("trust score computed",
		"url", rec.URL,
		"domain", c.Domain,
		"review_quality", c.ReviewQuality,
		"rating_consistency", c.RatingConsistency,
		"seller", c.Seller,
		"price", c.Price,
		"overall", overall,
	)

	return Result{
		Overall:    math.Round(overall*1000) / 10,
		Components: c,
	}
}

// Recommend maps an overall score to a verdict: 80 and up is a buy, 60 and
// up warrants caution, anything lower is an avoid.
func (s *Scorer) Recommend(res Result) Recommendation {
	switch {
	case res.Overall >= 80:
		return Recommendation{
			Action:     "Buy",
			Confidence: "High",
			Message:    "This product appears to be trustworthy with high ratings and genuine reviews.",
			Color:      "success",
		}
	case res.Overall >= 60:
		return Recommendation{
			Action:     "Be Careful",
			Confidence: "Medium",
			Message:    "This product has mixed signals. Consider reading more reviews before purchasing.",
			Color:      "warning",
		}
	default:
		return Recommendation{
			Action:     "Avoid",
			Confidence: "High",
			Message:    "This product shows signs of being potentially fraudulent or low quality.",
			Color:      "danger",
		}
	}
}

// domainScore rates the hosting domain's reputation. Unknown domains are
// scored by name pattern.
func domainScore(rawURL string) float64 {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0.5
	}
	domain := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	switch {
	case trustedDomains[domain]:
		return 0.95
	case mediumTrustDomains[domain]:
		return 0.75
	case suspiciousDomains[domain]:
		return 0.15
	case containsAny(domain, "shop", "store", "mall", "buy"):
		return 0.7
	case containsAny(domain, "marketplace", "market", "trade"):
		return 0.6
	case containsAny(domain, "deal", "discount", "sale", "cheap"):
		return 0.4
	case containsAny(domain, "official", "brand", "company"):
		return 0.8
	default:
		return 0.5
	}
}

// reviewQualityScore rewards detailed reviews and penalizes repetitive or
// complaint-laden ones.
func reviewQualityScore(reviews []types.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}

	total := float64(len(reviews))
	detailed := 0
	suspicious := 0

	for _, review := range reviews {
		if len(review.Text) > 50 {
			detailed++
		}

		lowered := strings.ToLower(review.Text)
		uniqueWords := make(map[string]bool)
		for _, w := range strings.Fields(lowered) {
			uniqueWords[w] = true
		}
		if len(uniqueWords) < 5 {
			suspicious++
		}
		for _, kw := range suspiciousReviewKeywords {
			if strings.Contains(lowered, kw) {
				suspicious++
				break
			}
		}
	}

	score := float64(detailed)/total*0.3 - float64(suspicious)/total*0.4
	return clamp01(score)
}

// ratingConsistencyScore checks whether the star rating agrees with the
// review sentiment. High review counts earn a small bonus.
func ratingConsistencyScore(rating float64, reviewCount int, sentimentScore float64) float64 {
	if rating == 0 || reviewCount == 0 {
		return 0.5
	}

	normalizedRating := rating / 5.0
	normalizedSentiment := (sentimentScore + 1) / 2

	consistency := 1.0 - math.Abs(normalizedRating-normalizedSentiment)
	if reviewCount > 100 {
		consistency += 0.1
	} else if reviewCount > 50 {
		consistency += 0.05
	}
	return clamp01(consistency)
}

// sellerScore rates the seller name. Generic storefront names score low, and
// the generic check runs first so "Official Store" stays penalized.
func sellerScore(seller string) float64 {
	if seller == "" || seller == types.DefaultSeller {
		return 0.5
	}

	lowered := strings.ToLower(seller)
	if containsAny(lowered, "store", "shop", "seller", "dealer", "wholesale", "cheap", "discount", "outlet") {
		return 0.3
	}
	if containsAny(lowered, "official", "brand", "authorized") {
		return 0.8
	}
	return 0.6
}

// priceScore flags implausible prices. Sub-dollar prices are a red flag;
// very high ones are usually legitimate luxury listings.
func priceScore(price string) float64 {
	if price == "" || price == types.DefaultPrice {
		return 0.5
	}

	m := priceValueRe.FindString(strings.ReplaceAll(price, ",", ""))
	if m == "" {
		return 0.5
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0.5
	}

	switch {
	case v < 1:
		return 0.2
	case v > 10000:
		return 0.7
	default:
		return 0.8
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
