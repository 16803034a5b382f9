// Package fetcher is the shared page-retrieval service. It sends
// browser-shaped requests and normalizes every outcome to a status code plus
// body so callers record transport failures instead of branching on errors.
package fetcher

import (
	"context"
	"io"
	"time"

	"pricehound/helpers"
	"pricehound/logger"
)

// HTTPFetcher fetches pages with browser headers and a hard timeout
type HTTPFetcher struct {
	timeout   time.Duration
	userAgent string
	log       *logger.Logger
}

// NewHTTPFetcher creates a fetcher with the given per-request timeout. An
// empty userAgent falls back to the helper's built-in rotation.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		timeout:   timeout,
		userAgent: userAgent,
		log:       logger.ForDiscovery(),
	}
}

// Fetch retrieves url and returns (status, body). Transport errors are
// reported as status 0 with an empty body; non-200 responses keep their code
// and drop the body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (int, string) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	status, reader, err := helpers.FetchWithBrowserHeaders(ctx, url, f.userAgent)
	if err != nil {
		f.log.Debug().Err(err).Str("url", url).Msg("Fetch failed")
		return 0, ""
	}
	if status != 200 || reader == nil {
		return status, ""
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		f.log.Debug().Err(err).Str("url", url).Msg("Failed to read response body")
		return 0, ""
	}
	return status, string(body)
}
