package token

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired reports a token whose signature checked out but whose
	// expiry has passed.
	ErrExpired = errors.New("token: expired")
	// ErrInvalid reports a malformed token, a bad signature, or a token
	// without a subject claim.
	ErrInvalid = errors.New("token: invalid")
)

// Claims defines the session token payload.
type Claims struct {
	jwtlib.RegisteredClaims
}

// Issue signs an HS256 session token asserting the given subject for ttl.
func Issue(subject, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    "researchsmith",
			Subject:   subject,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Verify validates signature and expiry and returns the subject.
// Expiry is only reported for tokens that carry a valid signature, so a
// tampered token always surfaces as ErrInvalid.
func Verify(token, secret string) (string, error) {
	parsed, err := jwtlib.ParseWithClaims(token, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}))
	if err != nil {
		// Signature failures short-circuit before claim validation, so an
		// expiry error here implies the signature was genuine.
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalid
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalid
	}
	return claims.Subject, nil
}
