package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWTer() *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "camp-ratings", TTL: time.Hour}
}

func TestIssueAndParse(t *testing.T) {
	j := newJWTer()

	tok, err := j.Issue("u1", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UID)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.ID, "jti is needed for the logout denylist")
}

func TestParseRejectsWrongSecret(t *testing.T) {
	j := newJWTer()
	tok, err := j.Issue("u1", "user")
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("other"), Issuer: "camp-ratings", TTL: time.Hour}
	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	j := newJWTer()
	tok, err := j.Issue("u1", "user")
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("test-secret"), Issuer: "someone-else", TTL: time.Hour}
	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestTokensCarryUniqueIDs(t *testing.T) {
	j := newJWTer()
	t1, err := j.Issue("u1", "user")
	require.NoError(t, err)
	t2, err := j.Issue("u1", "user")
	require.NoError(t, err)

	c1, err := j.Parse(t1)
	require.NoError(t, err)
	c2, err := j.Parse(t2)
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
}
