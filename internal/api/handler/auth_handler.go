package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthgate/api-gateway/internal/api/metrics"
	"github.com/healthgate/api-gateway/internal/api/middleware"
	"github.com/healthgate/api-gateway/internal/core/domain"
	"github.com/healthgate/api-gateway/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

var errInvalidBody = domain.NewValidationError("Invalid request body")

// Register creates a new user account and returns its first token.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      ports.CreateUserInput  true  "User registration details"
// @Success      201   {object}  tokenResponse
// @Failure      400   {object}  errorEnvelope
// @Failure      429   {object}  errorEnvelope
// @Router       /api/v1/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.CreateUserInput
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	res, err := h.authService.Register(c.Request().Context(), req, c.RealIP())
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.Inc()
	return c.JSON(http.StatusCreated, tokenResponse{Success: true, Token: res.Token})
}

// Login authenticates by email or username and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("bad_request").Inc()
		return errInvalidBody
	}

	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		RemoteIP: c.RealIP(),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		case errors.Is(err, domain.ErrValidation):
			metrics.LoginAttemptsTotal.WithLabelValues("bad_request").Inc()
		}
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, tokenResponse{Success: true, Token: res.Token})
}

// Me returns the authenticated identity, re-read from the store.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userEnvelope
// @Failure      401  {object}  errorEnvelope
// @Router       /api/v1/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c.Request().Context())
	if !ok {
		return domain.ErrUnauthenticated
	}

	user, err := h.authService.CurrentUser(c.Request().Context(), identity.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not found").SetInternal(err)
		}
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{Success: true, Data: toUserResponse(user)})
}

// Logout is stateless; the client discards its token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  emptyEnvelope
// @Router       /api/v1/auth/logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, emptyEnvelope{Success: true})
}
