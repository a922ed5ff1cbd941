package client

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// expiredTokenMarker is the message Superset puts in a 401 body when the
// access token has expired, as opposed to any other auth failure.
const expiredTokenMarker = "Token has expired"

// maxInterceptBody caps how much of a 401 body the interceptor inspects.
const maxInterceptBody = 64 << 10

// ResponseInterceptor inspects every response received through the
// session and may replace it. Interceptors run in order; returning the
// response unchanged is the identity case.
type ResponseInterceptor interface {
	Intercept(resp *http.Response) (*http.Response, error)
}

// RefreshPolicy decides whether a response means the access token expired
// and a refresh-and-resend should happen. Anything the policy rejects
// (revoked tokens, bad credentials, non-JSON bodies) is handed back to the
// caller untouched.
type RefreshPolicy interface {
	ShouldRefresh(statusCode int, body []byte) bool
}

// ExpiredTokenPolicy matches Superset's expired-token 401: a JSON body
// whose msg field equals the expiry marker.
type ExpiredTokenPolicy struct {
	// Marker overrides the msg value to match. Empty means the Superset
	// default, "Token has expired".
	Marker string
}

func (p ExpiredTokenPolicy) ShouldRefresh(statusCode int, body []byte) bool {
	if statusCode != http.StatusUnauthorized {
		return false
	}

	marker := p.Marker
	if marker == "" {
		marker = expiredTokenMarker
	}

	var payload struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	return payload.Msg == marker
}

// refreshInterceptor recovers from expired-token 401s: refresh the pair,
// rewrite the original request's Authorization header, and re-send it
// exactly once. The re-send bypasses the interceptor pipeline, so a second
// 401 comes back to the caller as-is.
type refreshInterceptor struct {
	client *Client
}

func (ri *refreshInterceptor) Intercept(resp *http.Response) (*http.Response, error) {
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxInterceptBody))
	resp.Body.Close()
	if err != nil {
		return resp, nil
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if !ri.client.policy.ShouldRefresh(resp.StatusCode, body) {
		return resp, nil
	}

	ctx := resp.Request.Context()
	ri.client.log.Debug().Str("url", resp.Request.URL.String()).Msg("access token expired, refreshing")

	if err := ri.client.refreshToken(ctx); err != nil {
		return nil, err
	}

	retry, err := cloneRequest(resp.Request)
	if err != nil {
		return nil, err
	}
	retry.Header.Set("Authorization", "Bearer "+ri.client.Token().Access)

	ri.client.log.Debug().Str("url", retry.URL.String()).Msg("re-sending request with refreshed token")
	return ri.client.httpc.Do(retry)
}

// cloneRequest duplicates a request for re-sending, rebuilding the body
// from the buffered original.
func cloneRequest(req *http.Request) (*http.Request, error) {
	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	return retry, nil
}
