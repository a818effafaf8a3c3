package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthgate/api-gateway/internal/api/metrics"
	"github.com/healthgate/api-gateway/internal/core/domain"
)

// Authorize admits identities whose role is in allowed. It must run after
// Authenticate.
func Authorize(allowed ...domain.Role) echo.MiddlewareFunc {
	var admit [3]bool
	for _, r := range allowed {
		if i := roleIndex(r); i >= 0 {
			admit[i] = true
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := IdentityFrom(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, msgNotAuthorized).SetInternal(domain.ErrUnauthenticated)
			}

			if i := roleIndex(user.Role); i < 0 || !admit[i] {
				metrics.AuthorizationDenialsTotal.WithLabelValues(string(user.Role)).Inc()
				msg := fmt.Sprintf("User role %s is not authorized to access this route", user.Role)
				return echo.NewHTTPError(http.StatusForbidden, msg).SetInternal(domain.ErrForbidden)
			}
			return next(c)
		}
	}
}

// roleIndex is exhaustive over domain.Role; unknown values map to -1.
func roleIndex(r domain.Role) int {
	switch r {
	case domain.RoleAdministrator:
		return 0
	case domain.RoleClient:
		return 1
	case domain.RoleEmployee:
		return 2
	default:
		return -1
	}
}
