package domain

import "time"

// Role is the closed set of access levels a user can hold.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleClient        Role = "client"
	RoleEmployee      Role = "employee"
)

// DefaultRole is assigned when a user is created without an explicit role.
const DefaultRole = RoleClient

// Roles lists every valid role in declaration order.
func Roles() []Role {
	return []Role{RoleAdministrator, RoleClient, RoleEmployee}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleClient, RoleEmployee:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// ParseRole converts raw input into a Role. Empty input yields DefaultRole.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return DefaultRole, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", NewValidationError("role must be one of: administrator client employee")
	}
	return r, nil
}

// User is a registered identity.
type User struct {
	ID           string
	Name         string
	Username     string
	Email        string
	Role         Role
	PasswordHash string
	Phone        string
	Address      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch is the persisted form of an update. Nil means untouched.
type UserPatch struct {
	Name         *string
	Username     *string
	Email        *string
	Role         *Role
	Phone        *string
	Address      *string
	PasswordHash *string
	UpdatedAt    time.Time
}

// Empty reports whether the patch touches no persisted field.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Username == nil && p.Email == nil && p.Role == nil &&
		p.Phone == nil && p.Address == nil && p.PasswordHash == nil
}

// Public field names, as exposed over the API. These are the only names
// accepted for filtering, sorting and projection.
const (
	FieldID        = "id"
	FieldName      = "name"
	FieldUsername  = "username"
	FieldEmail     = "email"
	FieldRole      = "role"
	FieldPhone     = "phone"
	FieldAddress   = "address"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

var filterableFields = map[string]struct{}{
	FieldName: {}, FieldUsername: {}, FieldEmail: {}, FieldRole: {}, FieldPhone: {}, FieldAddress: {},
}

var selectableFields = map[string]struct{}{
	FieldID: {}, FieldName: {}, FieldUsername: {}, FieldEmail: {}, FieldRole: {},
	FieldPhone: {}, FieldAddress: {}, FieldCreatedAt: {}, FieldUpdatedAt: {},
}

// IsFilterableField reports whether a query parameter may filter users.
func IsFilterableField(name string) bool {
	_, ok := filterableFields[name]
	return ok
}

// IsSelectableField reports whether name may be used in sort or fields.
func IsSelectableField(name string) bool {
	_, ok := selectableFields[name]
	return ok
}
