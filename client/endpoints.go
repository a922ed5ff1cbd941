package client

import "strings"

const (
	apiPath     = "api/v1"
	loginPath   = "security/login"
	csrfPath    = "security/csrf_token/"
	refreshPath = "security/refresh"
)

// JoinURLs joins URL segments with single slashes, trimming duplicates at
// the seams and any trailing slash. It is associative:
// JoinURLs(a, b, c) == JoinURLs(JoinURLs(a, b), c).
func JoinURLs(parts ...string) string {
	joined := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(part, "/")
		if part == "" {
			continue
		}
		joined = append(joined, part)
	}
	return strings.Join(joined, "/")
}

// Host returns the Superset host URL the client was built with.
func (c *Client) Host() string {
	return c.host
}

// BaseURL returns the host's /api/v1 prefix, used as the Referer header
// on every authenticated request.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) loginEndpoint() string {
	return JoinURLs(c.baseURL, loginPath)
}

func (c *Client) csrfEndpoint() string {
	return JoinURLs(c.baseURL, csrfPath)
}

func (c *Client) refreshEndpoint() string {
	return JoinURLs(c.baseURL, refreshPath)
}
