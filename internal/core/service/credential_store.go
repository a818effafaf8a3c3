package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/healthgate/api-gateway/internal/core/domain"
	"github.com/healthgate/api-gateway/internal/core/ports"
)

const (
	defaultPageLimit = 25
	maxPageLimit     = 100

	// bcrypt only accepts passwords up to this many bytes.
	maxPasswordBytes = 72
)

// Validator checks struct tags on service inputs.
type Validator interface {
	Validate(i any) error
}

// CredentialStore validates and hashes user attributes before they reach the repository.
type CredentialStore struct {
	repo      ports.UserRepository
	validate  Validator
	cost      int
	dummyHash []byte
	now       func() time.Time
	log       zerolog.Logger
}

// NewCredentialStore returns a store hashing with the given bcrypt work factor.
func NewCredentialStore(repo ports.UserRepository, validate Validator, cost int, log zerolog.Logger) (*CredentialStore, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	// compared against when an identifier is unknown so both login failures cost the same
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("dummy hash seed: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(fmt.Sprintf("%x", seed)), cost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}

	return &CredentialStore{
		repo:      repo,
		validate:  validate,
		cost:      cost,
		dummyHash: dummy,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}, nil
}

// Create validates in, hashes the password and persists the new identity.
func (s *CredentialStore) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Validate(&in); err != nil {
		return nil, err
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		Role:         role,
		PasswordHash: hash,
		Phone:        in.Phone,
		Address:      in.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Str("role", created.Role.String()).Msg("user created")
	return created, nil
}

// FindByIdentifier looks a user up by email or username.
func (s *CredentialStore) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	if identifier == "" {
		return nil, domain.ErrUserNotFound
	}
	return s.repo.FindByIdentifier(ctx, identifier)
}

// FindByID looks a user up by its opaque ID.
func (s *CredentialStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrUserNotFound
	}
	return s.repo.FindByID(ctx, id)
}

// VerifyPassword compares candidate against the stored hash. A nil user is
// compared against a dummy hash and always fails.
func (s *CredentialStore) VerifyPassword(user *domain.User, candidate string) bool {
	if user == nil || user.PasswordHash == "" {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(candidate))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(candidate)) == nil
}

// Update re-validates touched fields and re-hashes the password when it changes.
func (s *CredentialStore) Update(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	in.Name = trimPtr(in.Name)
	in.Username = trimPtr(in.Username)
	in.Email = trimPtr(in.Email)
	if err := s.validate.Validate(&in); err != nil {
		return nil, err
	}

	patch := domain.UserPatch{
		Name:     in.Name,
		Username: in.Username,
		Email:    in.Email,
		Phone:    in.Phone,
		Address:  in.Address,
	}
	if in.Role != nil {
		role, err := domain.ParseRole(*in.Role)
		if err != nil {
			return nil, err
		}
		patch.Role = &role
	}
	if in.Password != nil {
		hash, err := s.hash(*in.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	if patch.Empty() {
		return s.FindByID(ctx, id)
	}
	patch.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", id).Bool("password_changed", patch.PasswordHash != nil).Msg("user updated")
	return updated, nil
}

// Delete removes the identity permanently.
func (s *CredentialStore) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// List returns one page of users. Page and limit are normalised here; the
// remaining query fields are expected to be validated by the caller.
func (s *CredentialStore) List(ctx context.Context, q ports.ListUsersQuery) (*ports.ListUsersResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
	if len(q.Sort) == 0 {
		q.Sort = []ports.SortField{{Field: domain.FieldCreatedAt, Desc: true}}
	}

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	res := &ports.ListUsersResult{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
	}
	start := int64(q.Page-1) * int64(q.Limit)
	if start+int64(q.Limit) < total {
		res.Next = &ports.PageRef{Page: q.Page + 1, Limit: q.Limit}
	}
	if start > 0 {
		res.Prev = &ports.PageRef{Page: q.Page - 1, Limit: q.Limit}
	}
	return res, nil
}

func (s *CredentialStore) hash(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", domain.NewValidationError(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
