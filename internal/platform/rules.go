package platform

import "trustlens/internal/types"

// Rule is a declarative pointer to where a field lives in a parsed document.
// Type selects the interpreter: "css" (default), "xpath", or "regex".
type Rule struct {
	Type      string `mapstructure:"type"      yaml:"type"`
	Selector  string `mapstructure:"selector"  yaml:"selector"`
	Attribute string `mapstructure:"attribute" yaml:"attribute"`
	Pattern   string `mapstructure:"pattern"   yaml:"pattern"`
}

// css builds a plain CSS text rule, the common case in the tables below.
func css(selector string) Rule { return Rule{Type: "css", Selector: selector} }

// FieldRules holds the ordered candidate rules per product field. For each
// field the extractor tries rules in order and keeps the first non-trivial hit.
type FieldRules struct {
	Title       []Rule `mapstructure:"title"        yaml:"title"`
	Price       []Rule `mapstructure:"price"        yaml:"price"`
	Rating      []Rule `mapstructure:"rating"       yaml:"rating"`
	ReviewCount []Rule `mapstructure:"review_count" yaml:"review_count"`
	Seller      []Rule `mapstructure:"seller"       yaml:"seller"`
	Reviews     []Rule `mapstructure:"reviews"      yaml:"reviews"`
}

// Config is the static per-platform extraction configuration. Built once at
// process start and read-only afterward.
type Config struct {
	Fields FieldRules `mapstructure:"fields"   yaml:"fields"`

	// WaitFor is the "page ready" indicator the browser strategy waits for.
	WaitFor string `mapstructure:"wait_for" yaml:"wait_for"`
}

// Rules maps platforms to their extraction configuration.
type Rules map[types.Platform]Config

// Get returns the configuration for a platform, if one exists. Platforms
// without a table (aliexpress, walmart, generic) rely on the generic
// regex/heading fallback in the extractor.
func (r Rules) Get(p types.Platform) (Config, bool) {
	cfg, ok := r[p]
	return cfg, ok
}

// WaitFor returns the page-ready selector for a platform, or "body" when the
// platform has no table.
func (r Rules) WaitFor(p types.Platform) string {
	if cfg, ok := r[p]; ok && cfg.WaitFor != "" {
		return cfg.WaitFor
	}
	return "body"
}

// DefaultRules builds the built-in selector tables. The amazon/ebay/daraz
// candidates track the markup each site has shipped over time, oldest
// variants last.
func DefaultRules() Rules {
	return Rules{
		types.PlatformAmazon: {
			WaitFor: "#productTitle",
			Fields: FieldRules{
				Title: []Rule{
					css("#productTitle"),
					css("span#productTitle"),
					css(".a-size-large.product-title-word-break"),
					css("h1.a-size-large"),
				},
				Price: []Rule{
					css("#priceblock_ourprice"),
					css("#priceblock_dealprice"),
					css(".a-price .a-offscreen"),
					css(".a-price-whole"),
				},
				Rating: []Rule{
					css("#acrPopover"),
					css(".a-icon-alt"),
					css(".averageStarRating"),
				},
				ReviewCount: []Rule{
					css("#acrCustomerReviewText"),
					css("#reviewsMedley .a-size-base"),
					css(".totalReviewCount"),
				},
				Seller: []Rule{
					css("#sellerProfileTriggerId"),
					css("#bylineInfo"),
				},
				Reviews: []Rule{
					css(`[data-hook="review-body"]`),
					css(".review-text"),
					css(".a-size-base.review-text"),
				},
			},
		},
		types.PlatformEbay: {
			WaitFor: ".x-item-title__mainTitle",
			Fields: FieldRules{
				Title: []Rule{
					css("h1.x-item-title__mainTitle"),
					css("h1.it-ttl"),
					css(`h1[itemprop="name"]`),
				},
				Price: []Rule{
					css(".x-price-primary .s-item__price"),
					css("#prcIsum"),
					css(".x-price-primary"),
					css(".notranslate"),
				},
				Rating: []Rule{
					css(".x-star-rating"),
					css(".reviews-star-rating"),
				},
				ReviewCount: []Rule{
					css(".x-item-review-count"),
					css(`[itemprop="reviewCount"]`),
					css(".count"),
				},
				Seller: []Rule{
					css(".x-sellercard-atf__info__about-seller"),
					css(".mbg-nw"),
				},
				Reviews: []Rule{
					css(".ebay-review-section .review-item"),
					css(".review"),
				},
			},
		},
		types.PlatformDaraz: {
			WaitFor: ".pdp-mod-product-badge-title",
			Fields: FieldRules{
				Title: []Rule{
					css(".pdp-mod-product-badge-title"),
					css(".pdp-product-title"),
					{Type: "xpath", Selector: `//h1[contains(@class,"pdp-product-name")]`},
					css("h1"),
				},
				Price: []Rule{
					css(".pdp-price"),
					css(".price-current"),
					css(".product-price"),
				},
				Rating: []Rule{
					css(".score-average"),
					css(".rating"),
				},
				ReviewCount: []Rule{
					css(".count"),
					css(".pdp-reviews"),
				},
				Seller: []Rule{
					css(".seller-name__detail-name"),
					css(".seller-name"),
				},
				Reviews: []Rule{
					css(".pdp-product-review__review--content"),
					css(".product-review"),
				},
			},
		},
	}
}

// SellerCandidates are platform-independent selectors tried for the seller
// field when the platform table yields nothing.
var SellerCandidates = []string{
	"#sellerProfileTriggerId",
	".seller-name",
	".brand",
	".sold-by",
	".merchant-name",
}
