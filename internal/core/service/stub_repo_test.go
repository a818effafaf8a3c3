package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/healthgate/api-gateway/internal/core/domain"
	"github.com/healthgate/api-gateway/internal/core/ports"
	"github.com/healthgate/api-gateway/internal/pkg/validation"
)

// ---------------------------------------------------------------------------
// In-memory stub repository with the same uniqueness rules as the Mongo indexes
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	seq       int
	lastQuery ports.ListUsersQuery
	listItems []*domain.User
	listTotal int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (r *stubUserRepo) conflict(id, username, email string) error {
	for _, u := range r.users {
		if u.ID == id {
			continue
		}
		if username != "" && u.Username == username {
			return domain.NewValidationError("Duplicate field value entered: username")
		}
		if email != "" && u.Email == email {
			return domain.NewValidationError("Duplicate field value entered: email")
		}
	}
	return nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.conflict("", user.Username, user.Email); err != nil {
		return nil, err
	}
	r.seq++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("u%d", r.seq)
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == identifier || u.Username == identifier {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	var username, email string
	if p.Username != nil {
		username = *p.Username
	}
	if p.Email != nil {
		email = *p.Email
	}
	if err := r.conflict(id, username, email); err != nil {
		return nil, err
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	u.UpdatedAt = p.UpdatedAt
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) List(_ context.Context, q ports.ListUsersQuery) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastQuery = q
	return r.listItems, r.listTotal, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (a *recordingAudit) Record(e domain.AuthEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) kinds() []domain.AuthEventKind {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuthEventKind, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Kind)
	}
	return out
}

func newTestStore(repo ports.UserRepository) *CredentialStore {
	s, err := NewCredentialStore(repo, validation.New(), bcrypt.MinCost, zerolog.Nop())
	if err != nil {
		panic(err)
	}
	return s
}

func validCreateInput() ports.CreateUserInput {
	return ports.CreateUserInput{
		Name:     "A",
		Username: "a1",
		Email:    "a1@x.com",
		Password: "Abc12345!",
	}
}

func strPtr(s string) *string { return &s }
