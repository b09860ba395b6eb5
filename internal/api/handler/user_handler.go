package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/userhive/account-api/internal/core/authz"
	"github.com/userhive/account-api/internal/core/domain"
	"github.com/userhive/account-api/internal/core/ports"
)

// UserHandler handles HTTP requests for the user aggregate. The policy is
// used for read-side response shaping; all write-side enforcement lives in
// the service.
type UserHandler struct {
	service ports.UserService
	policy  *authz.Policy
}

func NewUserHandler(service ports.UserService, policy *authz.Policy) *UserHandler {
	return &UserHandler{service: service, policy: policy}
}

// Create registers a new account.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User attributes"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	visitor, err := currentVisitor(c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := ports.CreateUserInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Translations: translationInputs(req.Translations),
		Fields:       req.submittedFields(),
	}
	if req.Role != nil {
		role, err := domain.ParseRole(*req.Role)
		if err != nil {
			return err
		}
		input.Role = &role
	}

	user, err := h.service.Create(c.Request().Context(), visitor, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newUserResponse(h.policy, visitor, user))
}

// Get returns one user by path name.
//
// @Summary      Get a user by name
// @Tags         users
// @Produce      json
// @Param        name  path      string  true  "Unique user name"
// @Success      200   {object}  userResponse
// @Failure      404   {object}  map[string]string
// @Router       /users/{name} [get]
func (h *UserHandler) Get(c echo.Context) error {
	visitor, err := currentVisitor(c)
	if err != nil {
		return err
	}

	user, err := h.service.Get(c.Request().Context(), visitor, ports.UserLookup{Name: c.Param("name")})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newUserResponse(h.policy, visitor, user))
}

// GetMe returns the caller's own record.
//
// @Summary      Get the current user
// @Tags         users
// @Produce      json
// @Success      200  {object}  userResponse
// @Failure      404  {object}  map[string]string
// @Router       /users/me [get]
func (h *UserHandler) GetMe(c echo.Context) error {
	visitor, err := currentVisitor(c)
	if err != nil {
		return err
	}

	user, err := h.service.Get(c.Request().Context(), visitor, ports.UserLookup{})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newUserResponse(h.policy, visitor, user))
}

// Lookup returns one user by a unique field passed as query parameter.
// Precedence when several are supplied: id, name, email.
//
// @Summary      Look up a user by unique field
// @Tags         users
// @Produce      json
// @Param        id     query     int     false  "User id"
// @Param        name   query     string  false  "Unique name"
// @Param        email  query     string  false  "Unique email"
// @Success      200    {object}  userResponse
// @Failure      404    {object}  map[string]string
// @Router       /users/lookup [get]
func (h *UserHandler) Lookup(c echo.Context) error {
	visitor, err := currentVisitor(c)
	if err != nil {
		return err
	}

	lookup := ports.UserLookup{
		Name:  c.QueryParam("name"),
		Email: c.QueryParam("email"),
	}
	if raw := c.QueryParam("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
		}
		lookup.ID = id
	}

	user, err := h.service.Get(c.Request().Context(), visitor, lookup)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newUserResponse(h.policy, visitor, user))
}

// List returns a page of users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page      query     int  false  "Page number (1-based)"
// @Param        per_page  query     int  false  "Page size"
// @Success      200       {object}  listUsersResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	visitor, err := currentVisitor(c)
	if err != nil {
		return err
	}

	params := ports.ListParams{
		Page:    queryInt(c, "page", 1),
		PerPage: queryInt(c, "per_page", 0),
	}

	users, total, err := h.service.List(c.Request().Context(), visitor, params)
	if err != nil {
		return err
	}

	resp := listUsersResponse{
		Users:   make([]userResponse, 0, len(users)),
		Total:   total,
		Page:    params.Page,
		PerPage: params.PerPage,
	}
	for i := range users {
		resp.Users = append(resp.Users, newUserResponse(h.policy, visitor, &users[i]))
	}

	return c.JSON(http.StatusOK, resp)
}

// Update modifies a user. Any single disallowed field rejects the entire
// submission.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        name  path      string             true  "Unique user name"
// @Param        body  body      updateUserRequest  true  "Changed attributes"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /users/{name} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	visitor, err := currentVisitor(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := ports.UpdateUserInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Translations: translationInputs(req.Translations),
		Fields:       req.submittedFields(),
	}
	if req.Role != nil {
		role, err := domain.ParseRole(*req.Role)
		if err != nil {
			return err
		}
		input.Role = &role
	}

	user, err := h.service.Update(c.Request().Context(), visitor, ports.UserLookup{Name: c.Param("name")}, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newUserResponse(h.policy, visitor, user))
}

// Delete removes a user.
//
// @Summary      Delete a user
// @Tags         users
// @Param        name  path  string  true  "Unique user name"
// @Success      204
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /users/{name} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	visitor, err := currentVisitor(c)
	if err != nil {
		return err
	}

	if err := h.service.Destroy(c.Request().Context(), visitor, ports.UserLookup{Name: c.Param("name")}); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Versions returns a user's audit history.
//
// @Summary      List a user's audit versions
// @Tags         users
// @Produce      json
// @Param        name  path      string  true  "Unique user name"
// @Success      200   {array}   versionResponse
// @Failure      404   {object}  map[string]string
// @Router       /users/{name}/versions [get]
func (h *UserHandler) Versions(c echo.Context) error {
	visitor, err := currentVisitor(c)
	if err != nil {
		return err
	}

	versions, err := h.service.Versions(c.Request().Context(), visitor, ports.UserLookup{Name: c.Param("name")})
	if err != nil {
		return err
	}

	resp := make([]versionResponse, 0, len(versions))
	for _, v := range versions {
		resp = append(resp, newVersionResponse(v))
	}
	return c.JSON(http.StatusOK, resp)
}

func queryInt(c echo.Context, name string, fallback int64) int64 {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
