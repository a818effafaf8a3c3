package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/healthgate/api-gateway/internal/api/metrics"
	"github.com/healthgate/api-gateway/internal/core/domain"
	"github.com/healthgate/api-gateway/internal/core/ports"
)

const (
	msgNotAuthorized = "Not authorized to access this route"
	msgUserNotFound  = "User not found"
)

// UserFinder resolves a token subject to a stored identity.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Authenticate verifies the bearer token, re-reads its subject and attaches
// the user to the request context. Invalid and expired tokens get the same
// response. audit may be nil.
func Authenticate(tokens ports.TokenService, users UserFinder, audit ports.AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if raw == "" {
				metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, msgNotAuthorized).SetInternal(domain.ErrUnauthenticated)
			}

			subject, err := tokens.Verify(raw)
			if err != nil {
				reason := "invalid"
				if errors.Is(err, domain.ErrTokenExpired) {
					reason = "expired"
				}
				reject(c, audit, reason, "")
				return echo.NewHTTPError(http.StatusUnauthorized, msgNotAuthorized).SetInternal(err)
			}

			user, err := users.FindByID(c.Request().Context(), subject)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					reject(c, audit, "unknown_user", subject)
					return echo.NewHTTPError(http.StatusUnauthorized, msgUserNotFound).SetInternal(err)
				}
				return err
			}

			c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), user)))
			return next(c)
		}
	}
}

// bearerToken extracts the credential from an "Authorization: Bearer <token>" value.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func reject(c echo.Context, audit ports.AuditRecorder, reason, subject string) {
	metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
	if audit == nil {
		return
	}
	audit.Record(domain.AuthEvent{
		Kind:       domain.AuthEventTokenRejected,
		Identifier: subject,
		UserID:     subject,
		RemoteIP:   c.RealIP(),
		At:         time.Now().UTC(),
	})
}
