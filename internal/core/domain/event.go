package domain

import "time"

// AuthEventKind classifies an entry in the authentication audit trail.
type AuthEventKind string

const (
	AuthEventRegistered    AuthEventKind = "registered"
	AuthEventLoginSuccess  AuthEventKind = "login_success"
	AuthEventLoginFailure  AuthEventKind = "login_failure"
	AuthEventTokenRejected AuthEventKind = "token_rejected"
)

// AuthEvent records an authentication outcome. It never carries secrets.
type AuthEvent struct {
	Kind       AuthEventKind
	Identifier string // email or username as supplied
	UserID     string // empty when the identity was not resolved
	RemoteIP   string
	At         time.Time
}
