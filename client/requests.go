package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// NewRequest builds a request carrying the session's auth headers:
// Authorization bearer token, X-CSRFToken, Referer, and a JSON content
// type. The body, if any, is buffered so the request can be re-sent.
func (c *Client) NewRequest(ctx context.Context, method, url string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	access := c.pair.Access
	csrf := c.csrfToken
	c.mu.Unlock()

	req.Header.Set("Authorization", "Bearer "+access)
	req.Header.Set("X-CSRFToken", csrf)
	req.Header.Set("Referer", c.baseURL)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Do sends the request and runs the response through the interceptor
// pipeline. The refresh interceptor may replace a 401 response with the
// result of a single re-send after refreshing the access token.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}

	for _, ic := range c.interceptors {
		resp, err = ic.Intercept(resp)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// Get performs an authenticated GET against url.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.roundTrip(ctx, http.MethodGet, url, nil)
}

// Post performs an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, url string, body []byte) (*http.Response, error) {
	return c.roundTrip(ctx, http.MethodPost, url, body)
}

// Put performs an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, url string, body []byte) (*http.Response, error) {
	return c.roundTrip(ctx, http.MethodPut, url, body)
}

// Delete performs an authenticated DELETE against url.
func (c *Client) Delete(ctx context.Context, url string) (*http.Response, error) {
	return c.roundTrip(ctx, http.MethodDelete, url, nil)
}

func (c *Client) roundTrip(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	req, err := c.NewRequest(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}
