package sentiment

import (
	"log/slog"
	"regexp"
	"strings"

	"trustlens/internal/types"
)

// Label classifies one review.
type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

// Detailed pairs a (possibly truncated) review text with its label.
type Detailed struct {
	Text      string `json:"text"`
	Sentiment Label  `json:"sentiment"`
}

// Summary aggregates sentiment over a product's reviews. Score runs from -1
// (all negative) to 1 (all positive).
type Summary struct {
	Positive     int        `json:"positive"`
	Neutral      int        `json:"neutral"`
	Negative     int        `json:"negative"`
	TotalReviews int        `json:"total_reviews"`
	Score        float64    `json:"sentiment_score"`
	Detailed     []Detailed `json:"detailed_sentiments"`
}

// positiveTerms and negativeTerms form the polarity lexicon. Multi-word
// entries are matched as substrings, single words against the tokenized text.
var positiveTerms = []string{
	"amazing", "great", "excellent", "perfect", "love", "fantastic",
	"outstanding", "superb", "wonderful", "brilliant", "impressed",
	"recommend", "satisfied", "pleased", "happy", "best", "genuine",
	"authentic", "good", "top quality", "high quality", "great value",
	"fast shipping", "fast delivery", "exactly as described",
	"exceeded expectations", "works perfectly", "no complaints",
}

var negativeTerms = []string{
	"terrible", "awful", "horrible", "worst", "poor", "bad", "scam",
	"fake", "fraud", "counterfeit", "junk", "useless", "defective",
	"disappointed", "disappointing", "regret", "avoid", "broke",
	"damaged", "waste of money", "not worth", "don't buy", "low quality",
	"cheap quality", "doesn't work", "not as advertised", "ripoff",
	"overpriced", "substandard", "inferior", "mediocre",
}

var wordRe = regexp.MustCompile(`[a-z']+`)

// Analyzer scores review text against a polarity lexicon.
type Analyzer struct {
	logger *slog.Logger
}

func NewAnalyzer(logger *slog.Logger) *Analyzer {
	return &Analyzer{logger: logger.With("component", "sentiment")}
}

// Classify labels a single review by counting polarity hits. Ties and
// lexicon misses are neutral, as is empty text.
func (a *Analyzer) Classify(text string) Label {
	text = strings.TrimSpace(text)
	if text == "" {
		return Neutral
	}

	lowered := strings.ToLower(text)
	words := make(map[string]bool)
	for _, w := range wordRe.FindAllString(lowered, -1) {
		words[w] = true
	}

	pos := countHits(lowered, words, positiveTerms)
	neg := countHits(lowered, words, negativeTerms)

	switch {
	case pos > neg:
		return Positive
	case neg > pos:
		return Negative
	default:
		return Neutral
	}
}

// Analyze summarizes sentiment across the reviews of one product. No reviews
// yields the zero summary.
func (a *Analyzer) Analyze(reviews []types.Review) Summary {
	var s Summary
	if len(reviews) == 0 {
		return s
	}

	for _, review := range reviews {
		label := a.Classify(review.Text)
		switch label {
		case Positive:
			s.Positive++
		case Negative:
			s.Negative++
		default:
			s.Neutral++
		}
		if len(s.Detailed) < types.MaxReviews {
			s.Detailed = append(s.Detailed, Detailed{
				Text:      truncate(review.Text, 100),
				Sentiment: label,
			})
		}
	}

	s.TotalReviews = len(reviews)
	s.Score = float64(s.Positive-s.Negative) / float64(s.TotalReviews)

	a.logger.Debug("sentiment summary",
		"positive", s.Positive,
		"neutral", s.Neutral,
		"negative", s.Negative,
		"score", s.Score,
	)
	return s
}

func countHits(lowered string, words map[string]bool, terms []string) int {
	hits := 0
	for _, term := range terms {
		if strings.ContainsRune(term, ' ') || strings.ContainsRune(term, '\'') {
			if strings.Contains(lowered, term) {
				hits++
			}
		} else if words[term] {
			hits++
		}
	}
	return hits
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
