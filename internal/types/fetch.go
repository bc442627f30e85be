package types

import "time"

// Outcome classifies the result of one retrieval strategy attempt.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeHTTPError       Outcome = "http_error"
	OutcomeAntiBot         Outcome = "anti_bot"
	OutcomeTimeout         Outcome = "timeout"
	OutcomeConnectionError Outcome = "connection_error"
	OutcomeError           Outcome = "error"
)

// FetchResult is the page content returned by a successful retrieval strategy.
type FetchResult struct {
	// Content is the (rendered or raw) HTML of the page.
	Content string

	// StatusCode is the HTTP status. Browser-rendered fetches report 200.
	StatusCode int

	// FinalURL is the URL after any redirects.
	FinalURL string

	// Strategy names the strategy that produced this result.
	Strategy string

	// Duration is how long the fetch took.
	Duration time.Duration
}
