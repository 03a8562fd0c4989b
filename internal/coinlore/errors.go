package coinlore

import "fmt"

// NetworkError wraps a transport failure: timeout, DNS, refused
// connection. The request never produced an HTTP status.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// RateLimitError reports an HTTP 429 from the upstream API.
type RateLimitError struct{}

func (e *RateLimitError) Error() string { return "rate limit exceeded" }

// ServerError reports an HTTP 5xx from the upstream API.
type ServerError struct {
	Status int
}

func (e *ServerError) Error() string { return fmt.Sprintf("server error: HTTP %d", e.Status) }

// APIError reports any other non-2xx status.
type APIError struct {
	Status int
}

func (e *APIError) Error() string { return fmt.Sprintf("API error: HTTP %d", e.Status) }

// DecodeError reports a response body that does not match the expected
// shape. The whole fetch fails; no partially-filled collection is ever
// returned.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode response: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }
