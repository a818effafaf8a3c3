package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/healthgate/api-gateway/internal/core/domain"
	"github.com/healthgate/api-gateway/internal/core/ports"
)

func newTestAuth(t *testing.T) (*AuthService, *TokenService, *recordingAudit) {
	t.Helper()
	tokens, err := NewTokenService("secret", time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	audit := &recordingAudit{}
	return NewAuthService(newTestStore(newStubUserRepo()), tokens, audit, zerolog.Nop()), tokens, audit
}

func TestAuthService_Register_TokenResolvesToUser(t *testing.T) {
	svc, tokens, audit := newTestAuth(t)

	res, err := svc.Register(context.Background(), validCreateInput(), "10.0.0.1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected token")
	}

	sub, err := tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	user, err := svc.CurrentUser(context.Background(), sub)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if user.Username != "a1" || user.Email != "a1@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if got := audit.kinds(); !reflect.DeepEqual(got, []domain.AuthEventKind{domain.AuthEventRegistered}) {
		t.Fatalf("unexpected audit events: %v", got)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	if _, err := svc.Register(context.Background(), validCreateInput(), ""); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), validCreateInput(), ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthService_Login_ByEmailOrUsername(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	if _, err := svc.Register(context.Background(), validCreateInput(), ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	for _, in := range []ports.LoginInput{
		{Email: "a1@x.com", Password: "Abc12345!"},
		{Username: "a1", Password: "Abc12345!"},
	} {
		res, err := svc.Login(context.Background(), in)
		if err != nil {
			t.Fatalf("login %+v failed: %v", in, err)
		}
		if res.Token == "" || res.User.Username != "a1" {
			t.Fatalf("unexpected result: %+v", res)
		}
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	svc, _, audit := newTestAuth(t)
	_, _ = svc.Register(context.Background(), validCreateInput(), "")

	_, wrongPassword := svc.Login(context.Background(), ports.LoginInput{Email: "a1@x.com", Password: "nope"})
	_, unknownUser := svc.Login(context.Background(), ports.LoginInput{Email: "ghost@x.com", Password: "nope"})

	if !errors.Is(wrongPassword, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPassword)
	}
	if wrongPassword != unknownUser {
		t.Fatalf("failures differ: %v vs %v", wrongPassword, unknownUser)
	}

	got := audit.kinds()
	want := []domain.AuthEventKind{domain.AuthEventRegistered, domain.AuthEventLoginFailure, domain.AuthEventLoginFailure}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected audit events: %v", got)
	}
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	for _, in := range []ports.LoginInput{
		{Password: "x"},
		{Email: "a1@x.com"},
	} {
		if _, err := svc.Login(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}
}

func TestAuthService_Login_NewIssuanceTime(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	reg, err := svc.Register(context.Background(), validCreateInput(), "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	login, err := svc.Login(context.Background(), ports.LoginInput{Username: "a1", Password: "Abc12345!"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.Token == reg.Token {
		t.Fatalf("expected a distinct token for the new issuance")
	}
	if regExp, loginExp := rawExpiry(t, reg.Token), rawExpiry(t, login.Token); regExp == loginExp {
		t.Fatalf("expected login expiry to differ from registration expiry %s", regExp)
	}
}
