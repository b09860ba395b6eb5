package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhive/account-api/internal/api/metrics"
	"github.com/userhive/account-api/internal/core/auth"
	"github.com/userhive/account-api/internal/core/authz"
	"github.com/userhive/account-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain and auth errors to deterministic HTTP status codes.
//   - Collapses every token failure mode into one "authentication failed"
//     message so callers cannot tell which check rejected them.
//   - Logs denial details (action, offending field) server-side while the
//     caller only sees a generic message.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Authorization denials: log the precise cause, answer generically.
	var denial *authz.NotAuthorizedError
	if errors.As(err, &denial) {
		scope := "action"
		if denial.Field != "" {
			scope = "field"
		}
		metrics.PolicyDenialsTotal.WithLabelValues(string(denial.Action), scope).Inc()
		log.Warn().
			Str("action", string(denial.Action)).
			Str("field", string(denial.Field)).
			Str("path", c.Path()).
			Msg("authorization denied")
		return http.StatusForbidden, "not authorized"
	}

	switch {
	// All token failures and bad credentials read the same from outside.
	case errors.Is(err, auth.ErrTokenMalformed),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenTypeMismatch),
		errors.Is(err, auth.ErrAuthenticationFailed):
		return http.StatusUnauthorized, "authentication failed"
	case errors.Is(err, auth.ErrMethodNotAllowed):
		return http.StatusUnauthorized, "auth method not allowed"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrInvalidUser), errors.Is(err, domain.ErrInvalidRole):
		return http.StatusUnprocessableEntity, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
