package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/connection-monitor/internal/auth"
	"github.com/iliyamo/connection-monitor/internal/middleware"
	"github.com/iliyamo/connection-monitor/internal/model"
	"github.com/iliyamo/connection-monitor/internal/store"
	"github.com/iliyamo/connection-monitor/internal/utils"
)

// AuthHandler signs operators in and out through the store.
type AuthHandler struct {
	Store *store.ConnectionStore
}

func NewAuthHandler(s *store.ConnectionStore) *AuthHandler {
	return &AuthHandler{Store: s}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User   model.User `json:"user"`
	Access tokenPart  `json:"access"`
}

// Login verifies credentials and returns the profile and an access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	var issued utils.AccessToken
	ctx = auth.WithIssuedToken(ctx, &issued)

	u, err := h.Store.Login(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, store.ErrNoAuthenticator):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "authentication unavailable"})
	case err != nil:
		c.Logger().Errorf("login: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:   u,
		Access: tokenPart{Token: issued.Token, Expires: issued.Exp},
	})
}

// Logout closes the caller's session and clears the signed-in profile.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	ctx = auth.WithSession(ctx, middleware.SessionID(c))
	if err := h.Store.Logout(ctx); err != nil {
		c.Logger().Errorf("logout: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "sign out failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// LogoutAll closes every session of the caller, on all devices, and clears
// the signed-in profile.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	ctx = auth.WithEverySession(ctx, middleware.UserID(c))
	if err := h.Store.Logout(ctx); err != nil {
		c.Logger().Errorf("logout all: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "sign out failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the token identity and, when it matches, the store profile.
func (h *AuthHandler) Me(c echo.Context) error {
	resp := echo.Map{
		"user_id": middleware.UserID(c),
		"role":    middleware.Role(c),
	}
	if u, ok := h.Store.CurrentUser(); ok && u.ID == middleware.UserID(c) {
		resp["profile"] = u
	}
	return c.JSON(http.StatusOK, resp)
}
