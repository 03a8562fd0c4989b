package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "crypto-fun/1.0"

// NewHTTPClient returns an HTTP client with the given per-request
// wall-clock timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// DoGet performs a GET request with the supplied client and headers and
// returns the response body together with the HTTP status code. The
// caller owns the body and must close it. Transport-level failures
// (timeout, DNS, refused connection) come back as an error with a nil
// body; non-2xx statuses are not treated as errors here — status
// branching belongs to the caller.
func DoGet(ctx context.Context, client *http.Client, url string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	return resp.Body, resp.StatusCode, nil
}
