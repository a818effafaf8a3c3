package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/healthgate/api-gateway/internal/core/domain"
)

const defaultTokenTTL = 30 * 24 * time.Hour

func init() {
	// iat and exp carry milliseconds so back-to-back issuances differ.
	jwt.TimePrecision = time.Millisecond
}

// TokenService issues HS256 bearer tokens whose subject is the user ID.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu         sync.Mutex
	lastIssued time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces the time source used for issuance and verification.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService fails when secret is empty; tokens are never issued unsigned.
func NewTokenService(secret string, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if secret == "" {
		return nil, domain.ErrMissingSigningSecret
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	s := &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for userID expiring ttl after now. Expiry does not slide.
// Issuance times are strictly increasing per service, so every token carries
// a distinct expiration.
func (s *TokenService) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("issue token: empty subject")
	}

	now := s.issuedAt()
	exp := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

func (s *TokenService) issuedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Truncate(jwt.TimePrecision)
	if !now.After(s.lastIssued) {
		now = s.lastIssued.Add(jwt.TimePrecision)
	}
	s.lastIssued = now
	return now
}

// Verify returns the token subject. Expired tokens yield domain.ErrTokenExpired;
// every other failure yields domain.ErrTokenInvalid.
func (s *TokenService) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.Subject, nil
}
