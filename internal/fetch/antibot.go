package fetch

import "strings"

// blockMarkers are the phrases anti-bot interstitials and challenge pages
// carry. Matching is case-insensitive substring over the whole body.
var blockMarkers = []string{
	"captcha",
	"robot",
	"bot detection",
	"access denied",
	"blocked",
	"suspicious activity",
	"verify you are human",
}

// LooksBlocked reports whether page content reads like an anti-bot challenge
// rather than a product page.
func LooksBlocked(content string) bool {
	lowered := strings.ToLower(content)
	for _, marker := range blockMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
