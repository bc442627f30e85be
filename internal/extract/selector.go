package extract

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"trustlens/internal/platform"
	"trustlens/internal/types"
)

// Extractor turns fetched page content into a product record. Field sources
// are layered: structured data first, then the platform's selector table,
// then a generic sweep for whatever is still missing. A field that no layer
// fills keeps its default sentinel.
type Extractor struct {
	rules      platform.Rules
	minContent int
	logger     *slog.Logger
}

// NewExtractor creates an extractor over the given selector tables.
func NewExtractor(rules platform.Rules, minContent int, logger *slog.Logger) *Extractor {
	return &Extractor{
		rules:      rules,
		minContent: minContent,
		logger:     logger.With("component", "extractor"),
	}
}

// Data extracts a product record from page content. Malformed caller input
// (bad URL, implausibly small content) is an *types.InvalidInputError; a
// record is returned otherwise, with sentinels standing in for fields the
// page did not yield.
func (e *Extractor) Data(content string, p types.Platform, rawURL string) (*types.Product, error) {
	if err := checkURL(rawURL); err != nil {
		return nil, err
	}
	if len(content) < e.minContent {
		return nil, &types.InvalidInputError{
			Field:  "content",
			Value:  fmt.Sprintf("%d bytes", len(content)),
			Reason: types.ErrContentTooSmall.Error(),
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, &types.ExtractionError{Platform: p, Err: err}
	}
	page := &page{doc: doc, content: content, logger: e.logger}

	rec := types.NewProduct(p, rawURL)

	if applyStructured(doc, rec) {
		e.logger.Debug("structured data hit", "platform", p, "url", rawURL)
	}

	if cfg, ok := e.rules.Get(p); ok {
		e.applyTable(page, cfg.Fields, rec)
	}
	e.applyGeneric(page, rec)

	if len(rec.Reviews) > types.MaxReviews {
		rec.Reviews = rec.Reviews[:types.MaxReviews]
	}
	return rec, nil
}

// applyTable fills still-missing fields from the platform's selector table.
// Title and price candidates must pass a plausibility gate; broad selectors
// shipped for old markup variants can land on unrelated page fragments.
func (e *Extractor) applyTable(pg *page, fields platform.FieldRules, rec *types.Product) {
	if !rec.HasTitle() {
		if v := pg.first(fields.Title, plausibleTitle); v != "" {
			rec.Title = v
		}
	}
	if !rec.HasPrice() {
		if v := pg.first(fields.Price, priceLike); v != "" {
			rec.Price = Price(v)
		}
	}
	if rec.Rating == 0 {
		if v := pg.first(fields.Rating, anyText); v != "" {
			rec.Rating = Rating(v)
		}
	}
	if rec.ReviewCount == 0 {
		if v := pg.first(fields.ReviewCount, anyText); v != "" {
			rec.ReviewCount = Count(v)
		}
	}
	if rec.Seller == "" {
		if v := pg.first(fields.Seller, anyText); v != "" {
			rec.Seller = v
		}
	}
	if len(rec.Reviews) == 0 {
		for _, text := range pg.all(fields.Reviews, types.MaxReviews) {
			rec.Reviews = append(rec.Reviews, types.Review{Text: text})
		}
	}
}

// applyGeneric is the platform-independent sweep: document title and first
// heading for the title, a price-shaped token anywhere in the text, and the
// common seller markers.
func (e *Extractor) applyGeneric(pg *page, rec *types.Product) {
	if !rec.HasTitle() {
		candidates := []string{
			pg.attr(`meta[property="og:title"]`, "content"),
			pg.text("title"),
			pg.text("h1"),
		}
		for _, c := range candidates {
			if c = strings.TrimSpace(c); plausibleTitle(c) {
				rec.Title = c
				break
			}
		}
	}

	if !rec.HasPrice() {
		if m := dollarRe.FindString(pg.doc.Text()); m != "" {
			rec.Price = Price(m)
		}
	}

	if rec.Seller == "" {
		for _, sel := range platform.SellerCandidates {
			if v := pg.text(sel); v != "" {
				rec.Seller = v
				break
			}
		}
	}
}

// checkURL rejects anything that is not an absolute http(s) URL.
func checkURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &types.InvalidInputError{Field: "url", Value: rawURL, Reason: "unparseable"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &types.InvalidInputError{Field: "url", Value: rawURL, Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return &types.InvalidInputError{Field: "url", Value: rawURL, Reason: "missing host"}
	}
	return nil
}

// page bundles the parsed views of one document. The XPath node tree is
// built lazily since most rules are CSS.
type page struct {
	doc     *goquery.Document
	content string
	node    *html.Node
	logger  *slog.Logger
}

// first applies rules in order and returns the first value accept allows.
// A few matches per rule are considered so one stray hit does not disqualify
// an otherwise correct selector.
func (pg *page) first(rules []platform.Rule, accept func(string) bool) string {
	for _, rule := range rules {
		for _, v := range pg.apply(rule, 3) {
			if accept(v) {
				return v
			}
		}
	}
	return ""
}

// anyText accepts any non-empty candidate.
func anyText(v string) bool { return v != "" }

// plausibleTitle rejects fragments too short to name a product.
func plausibleTitle(v string) bool { return len(v) > 5 }

// priceLike requires a currency marker, so counts like "42 watchers" cannot
// be mistaken for a price.
func priceLike(v string) bool {
	if strings.ContainsAny(v, "$€£₹") {
		return true
	}
	return strings.Contains(v, "Rs") || strings.Contains(v, "PKR")
}

// all applies rules in order and returns up to limit values from the first
// rule that matches anything.
func (pg *page) all(rules []platform.Rule, limit int) []string {
	for _, rule := range rules {
		if vals := pg.apply(rule, limit); len(vals) > 0 {
			return vals
		}
	}
	return nil
}

// apply runs one rule through its interpreter.
func (pg *page) apply(rule platform.Rule, limit int) []string {
	switch rule.Type {
	case "", "css":
		return pg.applyCSS(rule, limit)
	case "xpath":
		return pg.applyXPath(rule, limit)
	case "regex":
		return pg.applyRegex(rule, limit)
	default:
		pg.logger.Warn("unknown rule type", "type", rule.Type)
		return nil
	}
}

func (pg *page) applyCSS(rule platform.Rule, limit int) []string {
	var values []string
	pg.doc.Find(rule.Selector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		var val string
		switch rule.Attribute {
		case "", "text":
			val = strings.TrimSpace(sel.Text())
		default:
			val, _ = sel.Attr(rule.Attribute)
		}
		if val != "" {
			values = append(values, val)
		}
		return len(values) < limit
	})
	return values
}

func (pg *page) applyXPath(rule platform.Rule, limit int) []string {
	if pg.node == nil {
		node, err := html.Parse(strings.NewReader(pg.content))
		if err != nil {
			return nil
		}
		pg.node = node
	}

	nodes, err := htmlquery.QueryAll(pg.node, rule.Selector)
	if err != nil {
		pg.logger.Warn("invalid xpath", "selector", rule.Selector, "error", err)
		return nil
	}

	var values []string
	for _, node := range nodes {
		var val string
		switch rule.Attribute {
		case "", "text":
			val = strings.TrimSpace(htmlquery.InnerText(node))
		default:
			val = htmlquery.SelectAttr(node, rule.Attribute)
		}
		if val != "" {
			values = append(values, val)
			if len(values) >= limit {
				break
			}
		}
	}
	return values
}

func (pg *page) applyRegex(rule platform.Rule, limit int) []string {
	re, err := regexp.Compile(rule.Pattern)
	if err != nil {
		pg.logger.Warn("invalid pattern", "pattern", rule.Pattern, "error", err)
		return nil
	}

	var values []string
	for _, m := range re.FindAllStringSubmatch(pg.content, limit) {
		val := m[0]
		if len(m) > 1 && m[1] != "" {
			val = m[1]
		}
		if val = strings.TrimSpace(val); val != "" {
			values = append(values, val)
		}
	}
	return values
}

// attr returns the named attribute of the first match.
func (pg *page) attr(selector, name string) string {
	v, _ := pg.doc.Find(selector).First().Attr(name)
	return v
}

// text returns the trimmed text of the first match.
func (pg *page) text(selector string) string {
	return strings.TrimSpace(pg.doc.Find(selector).First().Text())
}
