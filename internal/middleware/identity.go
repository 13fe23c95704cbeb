package middleware

// identity.go holds the context keys JWTAuth fills in and the helpers that
// read them back.  Handlers and the rate limiter share these so that every
// layer agrees on who the caller is.

import (
	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	CtxUserID    = "user_id"
	CtxRole      = "role"
	CtxSessionID = "sid"
)

// UserID returns the authenticated user's id, or "anon" when the request
// carries no valid token.
func UserID(c echo.Context) string {
	if s, ok := c.Get(CtxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}

// Role returns the role claim, or "" for anonymous requests.
func Role(c echo.Context) string {
	s, _ := c.Get(CtxRole).(string)
	return s
}

// SessionID returns the session id claim, or "".
func SessionID(c echo.Context) string {
	s, _ := c.Get(CtxSessionID).(string)
	return s
}
