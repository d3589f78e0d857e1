package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return tok
}

func customerToken(t *testing.T, expire time.Time) string {
	return signToken(t, testSecret, jwt.MapClaims{
		"nome":   "Ana",
		"email":  "ana@example.com",
		"cargo":  "cliente",
		"expire": expire.UTC().Format(time.RFC3339Nano),
	})
}

func TestDecodeTokenUnverified(t *testing.T) {
	exp := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tok := customerToken(t, exp)

	c, err := DecodeToken(tok, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ana", c.Name)
	assert.Equal(t, "cliente", c.Role)
	got, err := c.ExpiresAt()
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))
}

func TestDecodeTokenVerified(t *testing.T) {
	tok := customerToken(t, time.Now().Add(time.Hour))

	_, err := DecodeToken(tok, testSecret)
	require.NoError(t, err)

	_, err = DecodeToken(tok, []byte("other"))
	assert.Error(t, err)

	_, err = DecodeToken("not-a-token", nil)
	assert.Error(t, err)
}

func TestCheckExpiry(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	c := &Claims{Expire: now.Add(time.Second).Format(time.RFC3339Nano)}
	assert.NoError(t, CheckExpiry(c, now))

	c = &Claims{Expire: now.Format(time.RFC3339Nano)}
	assert.ErrorIs(t, CheckExpiry(c, now), ErrTokenExpired)

	assert.ErrorIs(t, CheckExpiry(&Claims{}, now), ErrNoExpiry)
	assert.Error(t, CheckExpiry(&Claims{Expire: "amanhã"}, now))
}
