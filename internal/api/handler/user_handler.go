package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce/internal/api/middleware"
	"github.com/storefront/commerce/internal/core/domain"
	"github.com/storefront/commerce/internal/core/ports"
	"github.com/storefront/commerce/internal/core/service"
)

type UserHandler struct {
	authService ports.AuthService
	userService ports.UserService
}

func NewUserHandler(authService ports.AuthService, userService ports.UserService) *UserHandler {
	return &UserHandler{authService: authService, userService: userService}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=ANONYMOUS CUSTOMER ADMIN"`
}

type updateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,alphanum,min=3,max=64"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=ANONYMOUS CUSTOMER ADMIN"`
}

// Create registers a new user account. Setting a role requires an ADMIN caller.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  tokenResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string  "You must be logged in to set user role"
// @Failure      403   {object}  map[string]string  "Only admins can set the role of a new user"
// @Failure      409   {object}  map[string]string  "Username already exists"
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
	}

	role := domain.RoleAnonymous
	if req.Role != "" {
		if err := service.Authorize(middleware.Claims(c), domain.RoleAdmin).Err(); err != nil {
			return err
		}
		role, _ = domain.ParseRole(req.Role)
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	token, user, err := h.authService.Register(c.Request().Context(), req.Username, req.Password, role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tokenResponse{Token: token, User: user})
}

// Read returns one user when filtered by id or username, otherwise every user.
// Listing everyone requires ADMIN; a non-admin may only look itself up.
//
// @Summary      Get a user or all users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id        query     int     false  "User id"
// @Param        username  query     string  false  "Username"
// @Success      200       {object}  domain.User
// @Failure      401       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) Read(c echo.Context) error {
	claims := middleware.Claims(c)
	if claims == nil {
		return domain.ErrUnauthenticated
	}
	ctx := c.Request().Context()

	if raw := c.QueryParam("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("%w: id must be a positive integer", domain.ErrValidation)
		}
		if !service.CanAct(claims, id) {
			return domain.ErrForbidden
		}
		user, err := h.userService.Get(ctx, id)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, user)
	}

	if username := c.QueryParam("username"); username != "" {
		if claims.Role != domain.RoleAdmin && claims.Username != username {
			return domain.ErrForbidden
		}
		user, err := h.userService.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, user)
	}

	if err := service.Authorize(claims, domain.RoleAdmin).Err(); err != nil {
		return err
	}
	users, err := h.userService.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get returns the user identified by the path id.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := ctxOwner(c)
	if err != nil {
		return err
	}
	user, err := h.userService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update applies a partial update. Changing the role requires ADMIN.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  map[string]string  "No valid fields provided to update"
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := ctxOwner(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
	}
	if req.Role != nil {
		if err := service.Authorize(middleware.Claims(c), domain.RoleAdmin).Err(); err != nil {
			return err
		}
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	in := ports.UpdateUserInput{Username: req.Username, Password: req.Password}
	if req.Role != nil {
		role, _ := domain.ParseRole(*req.Role)
		in.Role = &role
	}

	user, err := h.userService.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete soft-deletes a user.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id   path  int  true  "User id"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := ctxOwner(c)
	if err != nil {
		return err
	}
	if err := h.userService.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
