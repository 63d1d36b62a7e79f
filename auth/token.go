package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryOf reads the exp claim of a JWT without verifying it. Opaque tokens
// yield the zero time.
func ExpiryOf(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
