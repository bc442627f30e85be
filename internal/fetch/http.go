package fetch

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/andybalholm/brotli"

	"trustlens/internal/types"
)

// doRequest executes one GET through the context's client and normalizes the
// response into a FetchResult. Every failure path comes back as a
// *types.RetrievalError with a classified outcome.
func doRequest(ctx context.Context, rc *RetrievalContext, strategy, url string, headers http.Header) (*types.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &types.RetrievalError{
			URL: url, Strategy: strategy, Outcome: types.OutcomeError, Err: err,
		}
	}
	for key, vals := range headers {
		for _, v := range vals {
			req.Header.Set(key, v)
		}
	}

	start := time.Now()
	resp, err := rc.client.Do(req)
	if err != nil {
		return nil, &types.RetrievalError{
			URL: url, Strategy: strategy, Outcome: classify(err), Err: err,
		}
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if rc.cfg.MaxBodySize > 0 {
		reader = io.LimitReader(reader, rc.cfg.MaxBodySize)
	}
	reader, err = decompressReader(resp.Header.Get("Content-Encoding"), reader)
	if err != nil {
		return nil, &types.RetrievalError{
			URL: url, Strategy: strategy, Outcome: types.OutcomeError, Err: err,
		}
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &types.RetrievalError{
			URL: url, Strategy: strategy, Outcome: classify(err), Err: err,
		}
	}
	content := string(body)

	if resp.StatusCode != http.StatusOK {
		return nil, &types.RetrievalError{
			URL:        url,
			Strategy:   strategy,
			Outcome:    types.OutcomeHTTPError,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	if LooksBlocked(content) {
		return nil, &types.RetrievalError{
			URL:        url,
			Strategy:   strategy,
			Outcome:    types.OutcomeAntiBot,
			StatusCode: resp.StatusCode,
			Err:        errors.New("page content matches an anti-bot challenge"),
		}
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &types.FetchResult{
		Content:    content,
		StatusCode: resp.StatusCode,
		FinalURL:   finalURL,
		Strategy:   strategy,
		Duration:   time.Since(start),
	}, nil
}

// classify maps a transport-level error to a retrieval outcome.
func classify(err error) types.Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.OutcomeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return types.OutcomeTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return types.OutcomeConnectionError
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return types.OutcomeConnectionError
	}
	return types.OutcomeError
}

// decompressReader wraps a reader with the appropriate decompressor.
// Handles gzip, deflate, and brotli (br) encodings.
func decompressReader(encoding string, reader io.Reader) (io.Reader, error) {
	switch encoding {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}
