package ports

import (
	"context"

	"github.com/healthgate/api-gateway/internal/core/domain"
)

// SortField orders list results by a public field name.
type SortField struct {
	Field string
	Desc  bool
}

// ListUsersQuery carries already-validated list parameters.
// Filter keys and sort/projection fields are public field names (see domain.Field*).
type ListUsersQuery struct {
	Filters map[string]string // case-insensitive literal substring match
	Sort    []SortField
	Fields  []string // empty = all public fields
	Page    int      // 1-based
	Limit   int
}

// UserRepository persists identities. Uniqueness of username and email is
// enforced here, by the datastore, not by callers.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByIdentifier matches either the email or the username exactly.
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	// List returns one page of users and the total number of matches.
	List(ctx context.Context, q ListUsersQuery) ([]*domain.User, int64, error)
}
