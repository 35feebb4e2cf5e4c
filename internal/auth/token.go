// Package auth inspects bearer tokens issued by the members API. This
// service never mints or verifies tokens - the upstream API owns the
// signing key - but reading the expiry claim lets a hydrated session drop
// to unauthenticated instead of presenting a stale signed-in state.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryOf returns the exp claim of raw without verifying the signature.
// ok is false when the token is not a JWT or carries no expiry.
func ExpiryOf(raw string) (expiry time.Time, ok bool) {
	parser := jwt.NewParser()

	token, _, err := parser.ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}
