package ports

import (
	"context"
	"time"

	"github.com/healthgate/api-gateway/internal/core/domain"
)

// CreateUserInput carries plaintext attributes for a new identity.
type CreateUserInput struct {
	Name     string `json:"name"     validate:"required,max=50"`
	Username string `json:"username" validate:"required,max=30"`
	Email    string `json:"email"    validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=administrator client employee"`
	Phone    string `json:"phone"    validate:"omitempty,max=20"`
	Address  string `json:"address"  validate:"omitempty,max=200"`
}

// UpdateUserInput carries a partial update. Nil fields are left untouched.
type UpdateUserInput struct {
	Name     *string `json:"name"     validate:"omitempty,min=1,max=50"`
	Username *string `json:"username" validate:"omitempty,min=1,max=30"`
	Email    *string `json:"email"    validate:"omitempty,email,max=100"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
	Role     *string `json:"role"     validate:"omitempty,oneof=administrator client employee"`
	Phone    *string `json:"phone"    validate:"omitempty,max=20"`
	Address  *string `json:"address"  validate:"omitempty,max=200"`
}

// LoginInput accepts either an email or a username alongside the password.
type LoginInput struct {
	Email    string
	Username string
	Password string
	RemoteIP string
}

// Identifier returns the email when present, otherwise the username.
func (in LoginInput) Identifier() string {
	if in.Email != "" {
		return in.Email
	}
	return in.Username
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	Token string
	User  *domain.User
}

// PageRef points at a neighbouring page of a list result.
type PageRef struct {
	Page  int
	Limit int
}

// ListUsersResult is one page of users plus pagination metadata.
type ListUsersResult struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
	Next       *PageRef
	Prev       *PageRef
}

// TokenService issues and verifies bearer tokens bound to a user ID.
type TokenService interface {
	Issue(userID string) (token string, expiresAt time.Time, err error)
	// Verify returns the subject or domain.ErrTokenInvalid / domain.ErrTokenExpired.
	Verify(token string) (userID string, err error)
}

// CredentialStore owns identities and their password hashes.
type CredentialStore interface {
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	VerifyPassword(user *domain.User, candidate string) bool
	Update(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q ListUsersQuery) (*ListUsersResult, error)
}

// AuthService implements the register/login/current-identity use cases.
type AuthService interface {
	Register(ctx context.Context, in CreateUserInput, remoteIP string) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}
