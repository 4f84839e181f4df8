package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrUnauthorized marks a 401 from the backend. Handlers use it to offer
// the resend-verification path instead of a generic failure.
var ErrUnauthorized = errors.New("unauthorized")

// APIError carries the backend's status and error text through to the user.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Body)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Message is the text shown to the user: the server's error body when there
// is one, a generic fallback otherwise.
func (e *APIError) Message() string {
	if e.Body != "" {
		return e.Body
	}
	return "the server rejected the request"
}

// Resolve validates the configured backend origin.
func Resolve(raw string) (*url.URL, error) {
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", raw, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must include scheme and host", raw)
	}
	return base, nil
}

// Client talks to the remote backend that owns all business logic. Every
// call goes through a shared circuit breaker and honors the caller's
// context, so a handler teardown cancels the in-flight request.
type Client struct {
	base    *url.URL
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(rawBase string, timeout time.Duration) (*Client, error) {
	base, err := Resolve(rawBase)
	if err != nil {
		return nil, err
	}

	settings := gobreaker.Settings{
		Name:    "backend",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Application-level rejections must not trip the breaker;
			// only transport failures count.
			var apiErr *APIError
			return err == nil || errors.As(err, &apiErr)
		},
	}

	return &Client{
		base: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}, nil
}

// endpoint builds an absolute URL for the given endpoint path and query.
func (c *Client) endpoint(endpointPath string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + endpointPath
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do issues one request. in (when non-nil) is marshalled as the JSON body,
// out (when non-nil) receives the decoded 2xx response. token, when set, is
// sent raw in the Authorization header, matching the backend's contract.
func (c *Client) do(ctx context.Context, method, endpointPath string, query url.Values, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	data, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.endpoint(endpointPath, query), body)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("backend request failed: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &APIError{
				Status: resp.StatusCode,
				Body:   strings.TrimSpace(string(respBody)),
			}
		}
		return respBody, nil
	})
	if err != nil {
		return err
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode backend response: %w", err)
		}
	}
	return nil
}
