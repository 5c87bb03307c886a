package helpers

import (
	"bytes"
	"io"
	"net/http"
	"slices"
	"time"

	pkgerrors "atlasworker/pkg/errors"

	"golang.org/x/net/html/charset"
)

// HTTPFetcher sends GET requests with a fixed identifying User-Agent and
// a per-request timeout, returning the body decoded to UTF-8.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher with the given timeout and User-Agent
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// Fetch sends an HTTP GET request, converts the response body to UTF-8
// (if needed), and returns it as an io.Reader.
func (f *HTTPFetcher) Fetch(url string) (io.Reader, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, pkgerrors.NewNetwork("fetch", "failed to create request", err).WithURL(url)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, pkgerrors.NewNetwork("fetch", "failed to fetch URL", err).WithURL(url)
	}
	defer resp.Body.Close()

	// Check for rate limiting
	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		retryAfter := resp.Header.Get("Retry-After")
		return nil, pkgerrors.NewRateLimit("fetch", retryAfter).WithURL(url)
	}

	// Check for other error status codes
	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.NewNetwork("fetch", "unexpected status code "+resp.Status, nil).WithURL(url)
	}

	// Read the entire response body
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.NewNetwork("fetch", "failed to read response body", err).WithURL(url)
	}

	// Determine the encoding from Content-Type header and body content
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, resp.Header.Get("Content-Type"))

	// If already UTF-8, return as is
	if name == "utf-8" || name == "UTF-8" {
		return bytes.NewReader(bodyBytes), nil
	}

	// Convert to UTF-8 if necessary
	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, pkgerrors.NewParsing("fetch", "failed to read converted UTF-8 body", err).WithURL(url)
	}

	return &buf, nil
}
