// Package token models the access/refresh token pair owned by an
// authenticated Superset session.
package token

import (
	"golang.org/x/oauth2"
)

// Pair is an access/refresh token pair. A session holds exactly one live
// Pair at a time; refresh replaces it wholesale, never field by field.
type Pair struct {
	Access  string
	Refresh string
}

// IsZero reports whether no token has been issued yet.
func (p Pair) IsZero() bool {
	return p.Access == "" && p.Refresh == ""
}

// Merged returns next with the receiver's refresh token carried over when
// the refresh endpoint returned an access-token-only response.
func (p Pair) Merged(next Pair) Pair {
	if next.Refresh == "" {
		next.Refresh = p.Refresh
	}
	return next
}

// OAuth2Token converts the pair to a *oauth2.Token so it can be handed to
// oauth2-aware code. Expiry is taken from the access token's exp claim
// when it parses as a JWT.
func (p Pair) OAuth2Token() *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  p.Access,
		RefreshToken: p.Refresh,
		TokenType:    "Bearer",
	}
	if in, err := Introspect(p.Access); err == nil {
		t.Expiry = in.ExpiresAt
	}
	return t
}
