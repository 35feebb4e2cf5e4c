package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := tok.SignedString([]byte("upstream-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return raw
}

func TestExpiryOfReadsExpClaim(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signedToken(t, jwt.MapClaims{"sub": "u-1", "exp": exp.Unix()})

	got, ok := ExpiryOf(raw)
	if !ok {
		t.Fatal("expected ok")
	}
	if !got.Equal(exp) {
		t.Errorf("expiry = %v, want %v", got, exp)
	}
}

func TestExpiryOfNoExpClaim(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"sub": "u-1"})

	if _, ok := ExpiryOf(raw); ok {
		t.Fatal("token without exp must report ok=false")
	}
}

func TestExpiryOfOpaqueToken(t *testing.T) {
	if _, ok := ExpiryOf("not-a-jwt"); ok {
		t.Fatal("opaque token must report ok=false")
	}
}
