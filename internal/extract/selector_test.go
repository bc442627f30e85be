package extract

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"trustlens/internal/platform"
	"trustlens/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const amazonHTML = `<!DOCTYPE html>
<html>
<head><title>Wireless Headphones - Amazon.com</title></head>
<body>
	<span id="productTitle"> Wireless Noise Cancelling Headphones </span>
	<span class="a-price"><span class="a-offscreen">$49.99</span></span>
	<span id="acrPopover">4.5 out of 5 stars</span>
	<span id="acrCustomerReviewText">1,234 ratings</span>
	<a id="sellerProfileTriggerId">AudioGear Official</a>
	<div data-hook="review-body">Great sound quality and the battery lasts for days on one charge</div>
	<div data-hook="review-body">Comfortable fit, works exactly as described</div>
</body>
</html>`

const structuredHTML = `<!DOCTYPE html>
<html>
<head>
	<title>Some Store</title>
	<script type="application/ld+json">
	{
		"@context": "https://schema.org",
		"@type": "Product",
		"name": "Mechanical Keyboard RGB",
		"offers": {"@type": "Offer", "price": "89.99", "priceCurrency": "USD"},
		"aggregateRating": {"@type": "AggregateRating", "ratingValue": 4.7, "reviewCount": 215},
		"review": [
			{"@type": "Review", "reviewBody": "Keys feel amazing and the build is solid", "reviewRating": {"ratingValue": 5}},
			{"@type": "Review", "reviewBody": "Good value for the money"}
		]
	}
	</script>
</head>
<body><h1>Mechanical Keyboard RGB</h1><p>padding padding padding padding</p></body>
</html>`

func newTestExtractor() *Extractor {
	return NewExtractor(platform.DefaultRules(), 50, testLogger)
}

func TestDataAmazonSelectors(t *testing.T) {
	e := newTestExtractor()

	rec, err := e.Data(amazonHTML, types.PlatformAmazon, "https://www.amazon.com/Wireless-Noise-Cancelling-Headphones/dp/B0CHX1W1XY")
	if err != nil {
		t.Fatalf("Data: %v", err)
	}

	if rec.Title != "Wireless Noise Cancelling Headphones" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.Price != "$49.99" {
		t.Errorf("price = %q, want $49.99", rec.Price)
	}
	if rec.Rating != 4.5 {
		t.Errorf("rating = %v, want 4.5", rec.Rating)
	}
	if rec.ReviewCount != 1234 {
		t.Errorf("review count = %d, want 1234", rec.ReviewCount)
	}
	if rec.Seller != "AudioGear Official" {
		t.Errorf("seller = %q", rec.Seller)
	}
	if len(rec.Reviews) != 2 {
		t.Fatalf("reviews = %d, want 2", len(rec.Reviews))
	}
	if !strings.Contains(rec.Reviews[0].Text, "battery lasts") {
		t.Errorf("first review = %q", rec.Reviews[0].Text)
	}
	if rec.Synthetic {
		t.Error("extracted record must not carry the fallback marker")
	}
}

func TestDataStructuredDataWins(t *testing.T) {
	e := newTestExtractor()

	rec, err := e.Data(structuredHTML, types.PlatformGeneric, "https://shop.example.com/products/mechanical-keyboard-rgb")
	if err != nil {
		t.Fatalf("Data: %v", err)
	}

	if rec.Title != "Mechanical Keyboard RGB" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.Price != "$89.99" {
		t.Errorf("price = %q, want $89.99", rec.Price)
	}
	if rec.Rating != 4.7 {
		t.Errorf("rating = %v, want 4.7", rec.Rating)
	}
	if rec.ReviewCount != 215 {
		t.Errorf("review count = %d, want 215", rec.ReviewCount)
	}
	if len(rec.Reviews) != 2 {
		t.Fatalf("reviews = %d, want 2", len(rec.Reviews))
	}
	if rec.Reviews[0].Rating != "5" {
		t.Errorf("first review rating = %q, want 5", rec.Reviews[0].Rating)
	}
}

func TestDataJSONLDArrayAndTypeList(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
	[
		{"@type": "BreadcrumbList"},
		{"@type": ["Thing", "Product"], "name": "USB-C Hub", "offers": [{"price": 25}]}
	]
	</script></head><body>padding padding padding padding padding</body></html>`

	e := newTestExtractor()
	rec, err := e.Data(html, types.PlatformGeneric, "https://store.example.com/usb-c-hub")
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if rec.Title != "USB-C Hub" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.Price != "$25.00" {
		t.Errorf("price = %q, want $25.00", rec.Price)
	}
}

func TestDataLowercaseProductType(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
	{"@type": "product", "name": "Ceramic Pour Over Dripper", "offers": {"price": "12.50"}}
	</script></head><body>padding padding padding padding padding</body></html>`

	e := newTestExtractor()
	rec, err := e.Data(html, types.PlatformGeneric, "https://shop.example.com/products/ceramic-pour-over-dripper")
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if rec.Title != "Ceramic Pour Over Dripper" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.Price != "$12.50" {
		t.Errorf("price = %q, want $12.50", rec.Price)
	}
}

func TestDataEbayRejectsImplausibleTableHits(t *testing.T) {
	html := `<html><head><title>Vintage Film Camera for sale</title></head><body>
	<h1 class="x-item-title__mainTitle">ad</h1>
	<span class="notranslate">42 watchers</span>
	<p>filler so the document clears the minimum content gate</p>
	</body></html>`

	e := newTestExtractor()
	rec, err := e.Data(html, types.PlatformEbay, "https://www.ebay.com/itm/123456789")
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if rec.Title != "Vintage Film Camera for sale" {
		t.Errorf("title = %q, want the document title, not the 2-char table hit", rec.Title)
	}
	if rec.Price != types.DefaultPrice {
		t.Errorf("price = %q, want sentinel; a watcher count is not a price", rec.Price)
	}
}

func TestDataEbayAcceptsCurrencyBearingPrice(t *testing.T) {
	html := `<html><head><title>eBay listing</title></head><body>
	<h1 class="x-item-title__mainTitle">Vintage Film Camera 35mm</h1>
	<span class="notranslate">US $42.00</span>
	</body></html>`

	e := newTestExtractor()
	rec, err := e.Data(html, types.PlatformEbay, "https://www.ebay.com/itm/123456789")
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if rec.Title != "Vintage Film Camera 35mm" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.Price != "$42.00" {
		t.Errorf("price = %q, want $42.00", rec.Price)
	}
}

func TestDataGenericFallbackTitleAndPrice(t *testing.T) {
	html := `<html><head><title>Bamboo Cutting Board | Kitchen Shop</title></head>
	<body><p>Our bamboo cutting board is on sale for $15.49 this week only.</p></body></html>`

	e := newTestExtractor()
	rec, err := e.Data(html, types.PlatformGeneric, "https://kitchen.example.com/bamboo-cutting-board")
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if rec.Title != "Bamboo Cutting Board | Kitchen Shop" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.Price != "$15.49" {
		t.Errorf("price = %q, want $15.49", rec.Price)
	}
}

func TestDataDarazXPathRule(t *testing.T) {
	html := `<html><head><title>Daraz</title></head><body>
	<h1 class="pdp-product-name">Stainless Steel Water Bottle 1L</h1>
	<div class="pdp-price">Rs. 1,250</div>
	</body></html>`

	e := newTestExtractor()
	rec, err := e.Data(html, types.PlatformDaraz, "https://www.daraz.pk/products/stainless-steel-water-bottle-i12345.html")
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if rec.Title != "Stainless Steel Water Bottle 1L" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.Price != "$1250.00" {
		t.Errorf("price = %q, want $1250.00", rec.Price)
	}
}

func TestDataRegexRule(t *testing.T) {
	rules := platform.Rules{
		types.PlatformGeneric: {
			Fields: platform.FieldRules{
				Title: []platform.Rule{
					{Type: "regex", Pattern: `data-title="([^"]+)"`},
				},
			},
		},
	}
	e := NewExtractor(rules, 10, testLogger)

	html := `<html><body><div data-title="Regex Extracted Product"></div></body></html>`
	rec, err := e.Data(html, types.PlatformGeneric, "https://example.com/p/1")
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if rec.Title != "Regex Extracted Product" {
		t.Errorf("title = %q", rec.Title)
	}
}

func TestDataRejectsShortContent(t *testing.T) {
	e := newTestExtractor()

	_, err := e.Data("<html></html>", types.PlatformAmazon, "https://www.amazon.com/dp/B0CHX1W1XY")
	var inputErr *types.InvalidInputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("want InvalidInputError, got %v", err)
	}
	if inputErr.Field != "content" {
		t.Errorf("field = %q, want content", inputErr.Field)
	}
}

func TestDataRejectsBadURL(t *testing.T) {
	e := newTestExtractor()

	for _, url := range []string{"ftp://example.com/file", "not-a-url", "//missing-scheme.com"} {
		_, err := e.Data(amazonHTML, types.PlatformGeneric, url)
		var inputErr *types.InvalidInputError
		if !errors.As(err, &inputErr) {
			t.Errorf("url %q: want InvalidInputError, got %v", url, err)
			continue
		}
		if inputErr.Field != "url" {
			t.Errorf("url %q: field = %q, want url", url, inputErr.Field)
		}
	}
}

func TestDataMissingFieldsKeepSentinels(t *testing.T) {
	html := `<html><head></head><body><div>nothing useful here, just filler text to pass the size gate</div></body></html>`

	e := newTestExtractor()
	rec, err := e.Data(html, types.PlatformGeneric, "https://example.com/p/2")
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if rec.Title != types.DefaultTitle {
		t.Errorf("title = %q, want sentinel", rec.Title)
	}
	if rec.Price != types.DefaultPrice {
		t.Errorf("price = %q, want sentinel", rec.Price)
	}
	if rec.Rating != 0 || rec.ReviewCount != 0 {
		t.Errorf("rating/count = %v/%d, want zero", rec.Rating, rec.ReviewCount)
	}
}
