package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/healthgate/api-gateway/internal/core/domain"
)

type stubTokens struct {
	subject string
	err     error
}

func (s stubTokens) Issue(string) (string, time.Time, error) { return "", time.Time{}, nil }
func (s stubTokens) Verify(string) (string, error)           { return s.subject, s.err }

type stubFinder map[string]*domain.User

func (f stubFinder) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

type countingAudit struct{ events []domain.AuthEvent }

func (a *countingAudit) Record(e domain.AuthEvent) { a.events = append(a.events, e) }

func newAuthContext(header string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func assertHTTPError(t *testing.T, err error, code int, msg string) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if he.Code != code || he.Message != msg {
		t.Fatalf("expected %d %q, got %d %v", code, msg, he.Code, he.Message)
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	user := &domain.User{ID: "u1", Username: "a1", Role: domain.RoleClient}
	c, rec := newAuthContext("Bearer good")

	called := false
	mw := Authenticate(stubTokens{subject: "u1"}, stubFinder{"u1": user}, nil)
	handler := mw(func(c echo.Context) error {
		called = true
		got, ok := IdentityFrom(c.Request().Context())
		if !ok || got.Username != "a1" {
			t.Fatalf("identity not attached: %+v", got)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		header string
		tokens stubTokens
		msg    string
		audits int
	}{
		{"missing header", "", stubTokens{}, msgNotAuthorized, 0},
		{"wrong scheme", "Token abc", stubTokens{}, msgNotAuthorized, 0},
		{"empty bearer", "Bearer   ", stubTokens{}, msgNotAuthorized, 0},
		{"invalid token", "Bearer bad", stubTokens{err: domain.ErrTokenInvalid}, msgNotAuthorized, 1},
		{"expired token", "Bearer old", stubTokens{err: domain.ErrTokenExpired}, msgNotAuthorized, 1},
		{"deleted user", "Bearer good", stubTokens{subject: "gone"}, msgUserNotFound, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newAuthContext(tc.header)
			audit := &countingAudit{}
			mw := Authenticate(tc.tokens, stubFinder{}, audit)
			err := mw(func(echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})(c)

			assertHTTPError(t, err, http.StatusUnauthorized, tc.msg)
			if len(audit.events) != tc.audits {
				t.Fatalf("expected %d audit events, got %d", tc.audits, len(audit.events))
			}
		})
	}
}

func TestAuthenticate_LookupFailurePropagates(t *testing.T) {
	c, _ := newAuthContext("bearer good")
	boom := errors.New("db down")
	mw := Authenticate(stubTokens{subject: "u1"}, failingFinder{boom}, nil)

	err := mw(func(echo.Context) error { return nil })(c)
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

type failingFinder struct{ err error }

func (f failingFinder) FindByID(context.Context, string) (*domain.User, error) { return nil, f.err }

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer abc":   "abc",
		"BEARER  abc ": "abc",
		"Basic abc":    "",
		"abc":          "",
		"":             "",
	}
	for in, want := range cases {
		if got := bearerToken(in); got != want {
			t.Fatalf("bearerToken(%q) = %q, want %q", in, got, want)
		}
	}
}
