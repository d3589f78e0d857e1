package auth

import (
	"errors"
	"fmt"
	"time"

	"calufestas/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrLoggedOut    = errors.New("auth: not logged in")
	ErrTokenExpired = errors.New("auth: token expired")
	ErrNoExpiry     = errors.New("auth: token has no expire claim")
)

// Claims are the fields the rental backend signs into its tokens.
type Claims struct {
	Name   string `json:"nome"`
	Email  string `json:"email"`
	Role   string `json:"cargo"`
	Expire string `json:"expire"`
	jwt.RegisteredClaims
}

// ExpiresAt parses the expire claim.
func (c *Claims) ExpiresAt() (time.Time, error) {
	if c.Expire == "" {
		return time.Time{}, ErrNoExpiry
	}
	t, err := time.Parse(time.RFC3339Nano, c.Expire)
	if err != nil {
		return time.Time{}, fmt.Errorf("auth: bad expire claim: %w", err)
	}
	return t, nil
}

func (c *Claims) Profile() *models.Profile {
	return &models.Profile{Name: c.Name, Email: c.Email, Role: c.Role}
}

// DecodeToken reads the claims of token. With an empty secret the
// signature is not checked, the way the storefront only decodes the token
// to show who is signed in; the backend still verifies every call.
func DecodeToken(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	if len(secret) == 0 {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("auth: decode token: %w", err)
		}
		return claims, nil
	}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}
	return claims, nil
}

// CheckExpiry fails for tokens that are expired at now or carry no expiry.
func CheckExpiry(c *Claims, now time.Time) error {
	exp, err := c.ExpiresAt()
	if err != nil {
		return err
	}
	if !exp.After(now) {
		return ErrTokenExpired
	}
	return nil
}
