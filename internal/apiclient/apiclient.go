package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// APIClient handles all communication with the forum API.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
}

// New creates a new client for interacting with the forum API.
func New(baseURL string) *APIClient {
	return &APIClient{
		BaseURL:    baseURL,
		HttpClient: &http.Client{},
	}
}

type contextKey int

const requestCookiesKey contextKey = 0

// WithRequestCookies returns a context carrying the browser's cookies.
// Every API call made with that context forwards them, so the backend sees
// the same identity (accessToken) as the page request that triggered it.
func WithRequestCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	return context.WithValue(ctx, requestCookiesKey, cookies)
}

func requestCookies(ctx context.Context) []*http.Cookie {
	cookies, _ := ctx.Value(requestCookiesKey).([]*http.Cookie)
	return cookies
}

// do is the single, unified helper for making API requests. Cookies stashed
// in the context via WithRequestCookies are forwarded on every call.
func (c *APIClient) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	for _, cookie := range requestCookies(ctx) {
		req.AddCookie(cookie)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unavailable: %w", err)
	}
	return resp, nil
}
