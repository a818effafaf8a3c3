package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthgate/api-gateway/internal/api/metrics"
	"github.com/healthgate/api-gateway/internal/core/ports"
)

// UserHandler serves the administrator-only user CRUD routes.
type UserHandler struct {
	store ports.CredentialStore
}

func NewUserHandler(store ports.CredentialStore) *UserHandler {
	return &UserHandler{store: store}
}

// List returns a filtered, sorted page of users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Page size (default 25, max 100)"
// @Param        sort      query     string  false  "Comma list, '-' prefix for descending (default -createdAt)"
// @Param        fields    query     string  false  "Comma list of fields to return"
// @Param        name      query     string  false  "Case-insensitive substring filter"
// @Param        username  query     string  false  "Case-insensitive substring filter"
// @Param        email     query     string  false  "Case-insensitive substring filter"
// @Param        role      query     string  false  "Case-insensitive substring filter"
// @Success      200       {object}  listUsersResponse
// @Failure      400       {object}  errorEnvelope
// @Failure      401       {object}  errorEnvelope
// @Failure      403       {object}  errorEnvelope
// @Router       /api/v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	q, err := parseListQuery(c.QueryParams())
	if err != nil {
		return err
	}

	res, err := h.store.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListUsersResponse(res))
}

// Get returns a single user by id.
//
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userEnvelope
// @Failure      404  {object}  errorEnvelope
// @Router       /api/v1/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.store.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{Success: true, Data: toUserResponse(user)})
}

// Create adds a user on behalf of an administrator.
//
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.CreateUserInput  true  "User attributes"
// @Success      201   {object}  userEnvelope
// @Failure      400   {object}  errorEnvelope
// @Router       /api/v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req ports.CreateUserInput
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	user, err := h.store.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}

	metrics.UserMutationsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, userEnvelope{Success: true, Data: toUserResponse(user)})
}

// Update applies a partial update; a new password is re-hashed.
//
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "User ID"
// @Param        body  body      ports.UpdateUserInput  true  "Fields to change"
// @Success      200   {object}  userEnvelope
// @Failure      400   {object}  errorEnvelope
// @Failure      404   {object}  errorEnvelope
// @Router       /api/v1/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req ports.UpdateUserInput
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	user, err := h.store.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}

	metrics.UserMutationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, userEnvelope{Success: true, Data: toUserResponse(user)})
}

// Delete removes a user permanently.
//
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  emptyEnvelope
// @Failure      404  {object}  errorEnvelope
// @Router       /api/v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.store.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	metrics.UserMutationsTotal.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, emptyEnvelope{Success: true})
}
