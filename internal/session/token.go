package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired reports whether the bearer credential carries an exp claim in
// the past. The signature is not verified; the backing API owns the key and
// remains the authority. Opaque (non-JWT) tokens are never considered expired.
func TokenExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
