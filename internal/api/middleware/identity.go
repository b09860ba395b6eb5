package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/userhive/account-api/internal/api/metrics"
	"github.com/userhive/account-api/internal/core/auth"
)

// VisitorKey is the echo context key the verified visitor is stored under.
const VisitorKey = "visitor"

// Identity extracts the caller identity from the Authorization header and
// injects a Visitor into the request context.
//
//	bearer <token>  → access-token verification
//	basic <cred>    → rejected; this layer does not accept HTTP basic auth
//	absent/blank    → anonymous
//	other scheme    → anonymous
func Identity(identity *auth.Identity) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if strings.TrimSpace(header) == "" {
				c.Set(VisitorKey, identity.Anonymous())
				return next(c)
			}

			parts := strings.SplitN(header, " ", 2)
			scheme := parts[0]
			token := ""
			if len(parts) == 2 {
				token = strings.TrimSpace(parts[1])
			}

			switch {
			case strings.EqualFold(scheme, "bearer"):
				visitor, err := identity.FromToken(token, auth.TokenAccess)
				if err != nil {
					metrics.TokenVerificationFailures.WithLabelValues(failureReason(err)).Inc()
					return err
				}
				c.Set(VisitorKey, visitor)
			case strings.EqualFold(scheme, "basic"):
				return auth.ErrMethodNotAllowed
			default:
				c.Set(VisitorKey, identity.Anonymous())
			}

			return next(c)
		}
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired"
	case errors.Is(err, auth.ErrTokenTypeMismatch):
		return "type_mismatch"
	default:
		return "malformed"
	}
}
