package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"trustlens/internal/types"
)

var (
	asinRe   = regexp.MustCompile(`/dp/([A-Z0-9]{10})|/gp/product/([A-Z0-9]{10})`)
	ebayIDRe = regexp.MustCompile(`/itm/(\d+)`)
	tokenRe  = regexp.MustCompile(`[a-z0-9]{3,}`)
)

// minOverlap is the smallest token-overlap ratio between the URL slug and
// the extracted title that still counts as the same product.
const minOverlap = 0.25

// Validate reports whether an extracted record plausibly describes the
// product at rawURL. Platforms with a product ID in the URL get an exact ID
// check first; the general test is token overlap between the URL and the
// title. The check is advisory: a rejection sends the controller to the next
// strategy, it never aborts the scrape.
func Validate(rawURL string, rec *types.Product) bool {
	switch rec.Platform {
	case types.PlatformAmazon:
		if id := submatch(asinRe, rawURL); id != "" {
			if containsFold(rec.Title+" "+rec.Seller, id) {
				return true
			}
		}
	case types.PlatformEbay:
		if id := submatch(ebayIDRe, rawURL); id != "" {
			if containsFold(rec.Title+" "+rec.Seller, id) {
				return true
			}
		}
	case types.PlatformGeneric:
		// No URL structure to cross-check. A non-sentinel title is enough.
		return rec.HasTitle()
	}

	return slugMatches(rawURL, rec.Title)
}

// slugMatches compares the descriptive tokens of the URL path against the
// title. Either side having no usable tokens is an accept: short opaque URLs
// carry no signal to contradict the title with.
func slugMatches(rawURL, title string) bool {
	urlTokens := tokenize(urlPath(rawURL))
	titleTokens := tokenize(title)
	if len(urlTokens) == 0 || len(titleTokens) == 0 {
		return true
	}

	shared := 0
	for tok := range urlTokens {
		if titleTokens[tok] {
			shared++
		}
	}

	smaller := len(urlTokens)
	if len(titleTokens) < smaller {
		smaller = len(titleTokens)
	}
	return float64(shared)/float64(smaller) >= minOverlap
}

func urlPath(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return u.Path
	}
	return rawURL
}

// tokenize lowercases text and keeps alphanumeric runs of three or more
// characters. Short runs are connective noise in both slugs and titles.
func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range tokenRe.FindAllString(strings.ToLower(s), -1) {
		tokens[tok] = true
	}
	return tokens
}

func submatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	for i := 1; i < len(m); i++ {
		if m[i] != "" {
			return m[i]
		}
	}
	return ""
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
