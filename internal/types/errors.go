package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrStrategiesExhausted = errors.New("all retrieval strategies exhausted")
	ErrFallbackDisabled    = errors.New("fallback synthesis is disabled")
	ErrNoProductData       = errors.New("no product data found")
	ErrContentTooSmall     = errors.New("content too small to be a product page")
)

// InvalidInputError reports malformed caller input (bad URL, too-short
// content). It is always surfaced to the caller, never silently defaulted.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// RetrievalError wraps a failed retrieval strategy attempt with its typed
// outcome. The controller recovers locally by trying the next strategy.
type RetrievalError struct {
	URL        string
	Strategy   string
	Outcome    Outcome
	StatusCode int
	Err        error
}

func (e *RetrievalError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s fetch of %s failed (%s, status %d): %v",
			e.Strategy, e.URL, e.Outcome, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s fetch of %s failed (%s): %v", e.Strategy, e.URL, e.Outcome, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// ValidationError reports extracted data that does not plausibly correspond
// to the requested product. Advisory: the controller keeps trying strategies.
type ValidationError struct {
	URL   string
	Title string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("extracted title %q does not match product at %s", e.Title, e.URL)
}

// ExtractionError wraps a parser failure during data extraction.
type ExtractionError struct {
	Platform Platform
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for platform %s: %v", e.Platform, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
