package middleware // reusable HTTP middleware for the connection monitor API

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/connection-monitor/internal/utils"
)

// Authorizer turns a raw bearer token into claims, failing when the token is
// invalid or its session has been closed.  *auth.Service implements it.
type Authorizer interface {
	Authorize(ctx context.Context, raw string) (utils.Claims, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject, role and session claims into the request
// context.  Handlers read them with UserID, Role and SessionID.  Any
// authorization failure is a 401.
func JWTAuth(authz Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

			claims, err := authz.Authorize(c.Request().Context(), raw)
			if err != nil {
				c.Logger().Debugf("authorize: %v", err)
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxRole, claims.Role)
			c.Set(CtxSessionID, claims.SessionID)
			return next(c)
		}
	}
}
