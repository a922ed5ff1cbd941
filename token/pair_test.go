package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-superset-client/token"
)

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestMergedReplacesPairWholesale(t *testing.T) {
	old := token.Pair{Access: "access-1", Refresh: "refresh-1"}
	next := old.Merged(token.Pair{Access: "access-2", Refresh: "refresh-2"})

	assert.Equal(t, token.Pair{Access: "access-2", Refresh: "refresh-2"}, next)
	// The receiver is a value; the old pair is untouched.
	assert.Equal(t, "access-1", old.Access)
}

func TestMergedRetainsRefreshTokenWhenOmitted(t *testing.T) {
	old := token.Pair{Access: "access-1", Refresh: "refresh-1"}
	next := old.Merged(token.Pair{Access: "access-2"})

	assert.Equal(t, token.Pair{Access: "access-2", Refresh: "refresh-1"}, next)
}

func TestIsZero(t *testing.T) {
	assert.True(t, token.Pair{}.IsZero())
	assert.False(t, token.Pair{Access: "a"}.IsZero())
	assert.False(t, token.Pair{Refresh: "r"}.IsZero())
}

func TestOAuth2TokenCarriesExpiryFromJWT(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	access := signedToken(t, jwtlib.MapClaims{"sub": "1", "exp": exp.Unix()})

	pair := token.Pair{Access: access, Refresh: "refresh-1"}
	tok := pair.OAuth2Token()

	assert.Equal(t, access, tok.AccessToken)
	assert.Equal(t, "refresh-1", tok.RefreshToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.True(t, tok.Expiry.Equal(exp))
}

func TestOAuth2TokenWithOpaqueAccessToken(t *testing.T) {
	pair := token.Pair{Access: "not-a-jwt", Refresh: "refresh-1"}
	tok := pair.OAuth2Token()

	assert.Equal(t, "not-a-jwt", tok.AccessToken)
	assert.True(t, tok.Expiry.IsZero())
}
