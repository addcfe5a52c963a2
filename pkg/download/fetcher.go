package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Fetcher opens a remote archive for streaming
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// NewFetcher picks a Fetcher for the scheme of baseURL.
// http and https use httpClient (nil for the default instrumented client); s3 uses s3cfg.
func NewFetcher(ctx context.Context, baseURL string, s3cfg S3Config, httpClient *http.Client) (Fetcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid download base URL %q: %w", baseURL, err)
	}

	switch u.Scheme {
	case "http", "https":
		return NewHTTPFetcher(httpClient), nil
	case "s3":
		return NewS3Fetcher(ctx, s3cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}
