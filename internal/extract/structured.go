package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"trustlens/internal/types"
)

// applyStructured scans <script type="application/ld+json"> blocks for a
// schema.org Product and copies its fields onto the record. The first block
// that is a Product wins. Returns whether one was found.
func applyStructured(doc *goquery.Document, rec *types.Product) bool {
	found := false

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return true
		}

		for _, data := range decodeJSONLD(raw) {
			if !isProductType(data["@type"]) {
				continue
			}
			applyProductFields(data, rec)
			found = true
			return false
		}
		return true
	})

	return found
}

// decodeJSONLD parses a JSON-LD payload that is either a single object or an
// array of objects. Malformed payloads yield nothing.
func decodeJSONLD(raw string) []map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		return []map[string]any{obj}
	}

	var arr []map[string]any
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		return arr
	}
	return nil
}

// isProductType handles @type as both a string and a list of strings. The
// comparison is case-insensitive; pages ship "product" as often as "Product".
func isProductType(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(t, "Product")
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, "Product") {
				return true
			}
		}
	}
	return false
}

func applyProductFields(data map[string]any, rec *types.Product) {
	if name := firstString(data, "name", "headline"); name != "" {
		rec.Title = strings.TrimSpace(name)
	}

	if offers, ok := asObject(data["offers"]); ok {
		if price := anyToString(offers["price"]); price != "" {
			rec.Price = Price(price)
		}
	}

	if agg, ok := asObject(data["aggregateRating"]); ok {
		if v := anyToString(agg["ratingValue"]); v != "" {
			rec.Rating = Rating(v)
		}
		if v := firstString(agg, "reviewCount", "ratingCount"); v != "" {
			rec.ReviewCount = Count(v)
		}
	}

	reviews := data["review"]
	if reviews == nil {
		reviews = data["reviews"]
	}
	for _, rv := range asList(reviews) {
		if len(rec.Reviews) >= types.MaxReviews {
			break
		}
		obj, ok := asObject(rv)
		if !ok {
			continue
		}
		body := firstString(obj, "reviewBody", "description", "name")
		if body == "" {
			continue
		}
		review := types.Review{Text: strings.TrimSpace(body)}
		if rating, ok := asObject(obj["reviewRating"]); ok {
			review.Rating = anyToString(rating["ratingValue"])
		}
		rec.Reviews = append(rec.Reviews, review)
	}
}

// asObject unwraps a JSON value that may be an object or a one-element list
// of objects, the two shapes offers and aggregateRating ship in.
func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case []any:
		if len(t) > 0 {
			if obj, ok := t[0].(map[string]any); ok {
				return obj, true
			}
		}
	}
	return nil, false
}

func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		return []any{t}
	}
	return nil
}

func firstString(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := anyToString(data[key]); s != "" {
			return s
		}
	}
	return ""
}

// anyToString renders JSON scalar values as text. Numbers keep their decimal
// form so price and rating parsing sees what the page author wrote.
func anyToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	}
	return ""
}
