package token

import (
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Introspection carries the claims a client can read out of its own access
// token. Superset issues JWTs; the client never verifies the signature (it
// has no key material), it only inspects timestamps and identity.
type Introspection struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Fresh     bool
}

// Expired reports whether the access token's exp claim has passed.
func (i *Introspection) Expired() bool {
	if i.ExpiresAt.IsZero() {
		return false
	}
	return NowTimeFunc().After(i.ExpiresAt)
}

// Introspect parses an access token without verification and extracts the
// standard claims. Opaque (non-JWT) tokens return an error.
func Introspect(rawToken string) (*Introspection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.New("[Introspect] empty token")
	}

	unverified, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(err, "[Introspect] parse token")
	}

	claims, ok := unverified.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("[Introspect] error extracting claims")
	}

	fresh, _ := claims["fresh"].(bool)
	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)

	// Superset issues numeric user ids in sub.
	var sub string
	switch v := claims["sub"].(type) {
	case string:
		sub = v
	case float64:
		sub = strconv.FormatInt(int64(v), 10)
	}
	in := &Introspection{
		Subject: sub,
		Fresh:   fresh,
	}
	if iat != 0 {
		in.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp != 0 {
		in.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return in, nil
}
