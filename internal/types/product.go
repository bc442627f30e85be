package types

import "time"

// Platform identifies a recognized e-commerce site family. It drives which
// extraction rules apply and which fallback pool is used.
type Platform string

const (
	PlatformAmazon     Platform = "amazon"
	PlatformEbay       Platform = "ebay"
	PlatformDaraz      Platform = "daraz"
	PlatformAliexpress Platform = "aliexpress"
	PlatformWalmart    Platform = "walmart"
	PlatformGeneric    Platform = "generic"
)

// Platforms lists every valid platform tag.
var Platforms = []Platform{
	PlatformAmazon,
	PlatformEbay,
	PlatformDaraz,
	PlatformAliexpress,
	PlatformWalmart,
	PlatformGeneric,
}

// Known reports whether p is one of the fixed platform tags.
func (p Platform) Known() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// Default sentinel values for a product record. A record whose title or price
// still carries the sentinel after extraction contributed nothing for that field.
const (
	DefaultTitle  = "Unknown Product"
	DefaultPrice  = "$0.00"
	DefaultSeller = "Unknown Seller"
)

// MaxReviews bounds how many review bodies are attached to a record.
const MaxReviews = 5

// Review is a single customer review attached to a product.
type Review struct {
	Text   string `json:"text"`
	Rating string `json:"rating,omitempty"`
}

// Product is the canonical record produced by one scrape attempt. It is a
// value object: built once per attempt and immutable once returned.
type Product struct {
	Title       string    `json:"title"`
	Price       string    `json:"price"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	Seller      string    `json:"seller,omitempty"`
	Reviews     []Review  `json:"reviews"`
	Platform    Platform  `json:"platform"`
	URL         string    `json:"url"`
	Synthetic   bool      `json:"is_fallback,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// NewProduct creates a record carrying the default sentinels for every field.
func NewProduct(platform Platform, rawURL string) *Product {
	if !platform.Known() {
		platform = PlatformGeneric
	}
	return &Product{
		Title:     DefaultTitle,
		Price:     DefaultPrice,
		Platform:  platform,
		URL:       rawURL,
		ScrapedAt: time.Now(),
	}
}

// HasTitle reports whether a real title was extracted.
func (p *Product) HasTitle() bool {
	return p.Title != "" && p.Title != DefaultTitle
}

// HasPrice reports whether a real price was extracted.
func (p *Product) HasPrice() bool {
	return p.Price != "" && p.Price != DefaultPrice
}
