package service

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/healthgate/api-gateway/internal/core/domain"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

// rawExpiry returns the exp claim exactly as encoded in the token payload.
func rawExpiry(t *testing.T, token string) string {
	t.Helper()
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("malformed token %q", token)
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	var claims map[string]json.RawMessage
	if err := json.Unmarshal(payload, &claims); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	exp, ok := claims["exp"]
	if !ok {
		t.Fatalf("token has no exp")
	}
	return string(exp)
}

// tamperSignature flips one character in the middle of the signature segment.
func tamperSignature(token string) string {
	i := strings.LastIndex(token, ".") + 5
	b := []byte(token)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	if _, err := NewTokenService("", time.Hour); !errors.Is(err, domain.ErrMissingSigningSecret) {
		t.Fatalf("expected ErrMissingSigningSecret, got %v", err)
	}
}

func TestTokenService_IssueVerify(t *testing.T) {
	svc, err := NewTokenService("secret", time.Hour)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	token, exp, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(exp) <= 0 || time.Until(exp) > time.Hour {
		t.Fatalf("unexpected expiry %v", exp)
	}

	sub, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "user-1" {
		t.Fatalf("expected subject user-1, got %q", sub)
	}
}

func TestTokenService_DefaultTTL(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := NewTokenService("secret", 0, WithClock(fixedClock(issued)))

	_, exp, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !exp.Equal(issued.Add(30 * 24 * time.Hour)) {
		t.Fatalf("expected 30 day expiry, got %v", exp)
	}
}

func TestTokenService_ExpiryBoundary(t *testing.T) {
	const d = time.Hour
	svc, _ := NewTokenService("secret", d)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(issued)

	token, _, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = fixedClock(issued.Add(d - time.Second))
	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("token should be valid just before expiry: %v", err)
	}

	svc.now = fixedClock(issued.Add(d + time.Second))
	if _, err := svc.Verify(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired just after expiry, got %v", err)
	}
}

func TestTokenService_IssueSameInstantDistinctExpiry(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := NewTokenService("secret", time.Hour, WithClock(fixedClock(issued)))

	first, firstExp, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, secondExp, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct tokens for the same subject and instant")
	}
	if !secondExp.After(firstExp) {
		t.Fatalf("expected second expiry %v after %v", secondExp, firstExp)
	}
	if rawExpiry(t, first) == rawExpiry(t, second) {
		t.Fatalf("expected distinct exp claims, both %s", rawExpiry(t, first))
	}
	if _, err := svc.Verify(second); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestTokenService_RejectsTampering(t *testing.T) {
	svc, _ := NewTokenService("secret", time.Hour)
	other, _ := NewTokenService("other-secret", time.Hour)

	foreign, _, _ := other.Issue("user-1")
	if _, err := svc.Verify(foreign); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for foreign signature, got %v", err)
	}

	if _, err := svc.Verify("not-a-token"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for garbage, got %v", err)
	}

	token, _, _ := svc.Issue("user-1")
	if _, err := svc.Verify(tamperSignature(token)); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered signature, got %v", err)
	}
	tampered := strings.Replace(token, ".", ".e30", 1)
	if _, err := svc.Verify(tampered); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered payload, got %v", err)
	}
}

func TestTokenService_RejectsUnsignedAndMissingClaims(t *testing.T) {
	svc, _ := NewTokenService("secret", time.Hour)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := svc.Verify(unsigned); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for alg none, got %v", err)
	}

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"}).SignedString([]byte("secret"))
	if _, err := svc.Verify(noExp); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid without exp, got %v", err)
	}

	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	if _, err := svc.Verify(noSub); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid without subject, got %v", err)
	}
}
