package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/healthgate/api-gateway/internal/core/domain"
	"github.com/healthgate/api-gateway/internal/core/ports"
)

// AuthService implements registration, login and current-identity lookup.
type AuthService struct {
	store  ports.CredentialStore
	tokens ports.TokenService
	audit  ports.AuditRecorder
	log    zerolog.Logger
}

func NewAuthService(store ports.CredentialStore, tokens ports.TokenService, audit ports.AuditRecorder, log zerolog.Logger) *AuthService {
	if audit == nil {
		audit = nopRecorder{}
	}
	return &AuthService{store: store, tokens: tokens, audit: audit, log: log}
}

// Register creates the identity and issues its first token.
func (s *AuthService) Register(ctx context.Context, in ports.CreateUserInput, remoteIP string) (*ports.AuthResult, error) {
	user, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(domain.AuthEvent{
		Kind:       domain.AuthEventRegistered,
		Identifier: user.Username,
		UserID:     user.ID,
		RemoteIP:   remoteIP,
		At:         time.Now().UTC(),
	})
	return &ports.AuthResult{Token: token, User: user}, nil
}

// Login returns domain.ErrInvalidCredentials both for an unknown identifier
// and for a wrong password.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	identifier := in.Identifier()
	if identifier == "" || in.Password == "" {
		return nil, domain.NewValidationError("Please provide an email or username and password")
	}

	user, err := s.store.FindByIdentifier(ctx, identifier)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	if !s.store.VerifyPassword(user, in.Password) {
		s.recordFailure(identifier, in.RemoteIP)
		return nil, domain.ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(domain.AuthEvent{
		Kind:       domain.AuthEventLoginSuccess,
		Identifier: identifier,
		UserID:     user.ID,
		RemoteIP:   in.RemoteIP,
		At:         time.Now().UTC(),
	})
	return &ports.AuthResult{Token: token, User: user}, nil
}

// CurrentUser re-reads the authenticated identity from the store.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.store.FindByID(ctx, userID)
}

func (s *AuthService) recordFailure(identifier, remoteIP string) {
	s.log.Warn().Str("identifier", identifier).Str("remote_ip", remoteIP).Msg("login failed")
	s.audit.Record(domain.AuthEvent{
		Kind:       domain.AuthEventLoginFailure,
		Identifier: identifier,
		RemoteIP:   remoteIP,
		At:         time.Now().UTC(),
	})
}

type nopRecorder struct{}

func (nopRecorder) Record(domain.AuthEvent) {}
