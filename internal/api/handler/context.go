package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userhive/account-api/internal/api/middleware"
	"github.com/userhive/account-api/internal/core/auth"
)

// currentVisitor extracts the visitor injected by the Identity middleware.
// Its presence proves the middleware ran; a route registered outside the
// identity chain has no caller identity and must not reach a service call.
func currentVisitor(c echo.Context) (*auth.Visitor, error) {
	visitor, ok := c.Get(middleware.VisitorKey).(*auth.Visitor)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication context")
	}
	return visitor, nil
}
