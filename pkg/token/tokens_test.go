package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestIssueVerifyRoundTrip(t *testing.T) {
	signed, err := Issue("alice", testSecret, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if strings.Count(signed, ".") != 2 {
		t.Fatalf("expected compact three-segment token, got %q", signed)
	}
	subject, err := Verify(signed, testSecret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "alice" {
		t.Fatalf("unexpected subject: %q", subject)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	signed, err := Issue("alice", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Verify(signed, testSecret); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	signed, err := Issue("alice", testSecret, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	tampered := tamperSignature(t, signed)
	if _, err := Verify(tampered, testSecret); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestVerifyTamperedExpiredTokenIsInvalidNotExpired(t *testing.T) {
	signed, err := Issue("alice", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	tampered := tamperSignature(t, signed)
	_, err = Verify(tampered, testSecret)
	if errors.Is(err, ErrExpired) {
		t.Fatalf("tampered token must not report expiry")
	}
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	signed, err := Issue("alice", testSecret, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Verify(signed, "other-secret"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestVerifyMissingSubject(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := Verify(signed, testSecret); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for missing sub, got %v", err)
	}
}

func TestVerifyRejectsForeignAlgorithm(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS384, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := Verify(signed, testSecret); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for HS384 token, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := Verify(token, testSecret); !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected ErrInvalid for %q, got %v", token, err)
		}
	}
}

// tamperSignature flips the first character of the signature segment, which
// always alters the decoded signature bytes.
func tamperSignature(t *testing.T, signed string) string {
	t.Helper()
	idx := strings.LastIndex(signed, ".")
	if idx < 0 || idx+1 >= len(signed) {
		t.Fatalf("malformed token: %q", signed)
	}
	replacement := byte('A')
	if signed[idx+1] == 'A' {
		replacement = 'B'
	}
	return signed[:idx+1] + string(replacement) + signed[idx+2:]
}
