package client

import (
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody caps how much of an error response is kept for messages.
const maxErrorBody = 4 << 10

// AuthenticationError reports a failed login, CSRF fetch, or token
// refresh. The underlying HTTP or transport error is wrapped and can be
// recovered with errors.As / errors.Unwrap.
type AuthenticationError struct {
	Op  string // "login", "csrf", "refresh"
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed during %s: %v", e.Op, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx response surfaced as an error. Non-auth failures
// propagate as HTTPError unchanged; the client never retries them.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	Body       []byte
}

func (e *HTTPError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("%s returned %s", e.URL, e.Status)
	}
	return fmt.Sprintf("%s returned %s: %s", e.URL, e.Status, e.Body)
}

// CheckResponse returns an *HTTPError when resp has a non-2xx status. It
// consumes and closes the response body in that case, so the response is
// no longer usable after a non-nil return.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()

	return &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		URL:        resp.Request.URL.String(),
		Body:       body,
	}
}
