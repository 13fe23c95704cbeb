// Package auth signs operators in and out.  Service is the store's
// authentication collaborator: it checks credentials against a user
// directory, opens a server-side session and issues a JWT bound to it.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iliyamo/connection-monitor/internal/model"
	"github.com/iliyamo/connection-monitor/internal/repository"
	"github.com/iliyamo/connection-monitor/internal/utils"
)

var (
	// ErrInvalidCredentials covers an unknown email, an inactive account and
	// a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned by Authorize for a bad token or a session
	// that is no longer active.
	ErrUnauthorized = errors.New("unauthorized")
)

// UserFinder looks operators up by email.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (repository.UserRecord, error)
}

// SessionStore keeps hashed session ids.
type SessionStore interface {
	Open(ctx context.Context, userID, tokenHash string, exp time.Time) error
	Validate(ctx context.Context, tokenHash string) (string, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// Service implements the store's Authenticator.
type Service struct {
	users    UserFinder
	sessions SessionStore
	secret   string
	ttlMin   int

	mu          sync.Mutex
	last        utils.AccessToken
	lastSession string
}

func NewService(users UserFinder, sessions SessionStore, secret string, ttlMin int) *Service {
	return &Service{users: users, sessions: sessions, secret: secret, ttlMin: ttlMin}
}

type ctxKey int

const (
	sessionKey ctxKey = iota
	issuedKey
	everywhereKey
)

// WithSession attaches the caller's session id so SignOut revokes that
// session rather than the most recently issued one.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey, sessionID)
}

// WithEverySession makes SignOut revoke every open session of userID, on
// all devices, instead of a single one.
func WithEverySession(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, everywhereKey, userID)
}

// WithIssuedToken makes SignIn write the token it issues into dst.  Handlers
// use it to hand the token back to the caller that signed in.
func WithIssuedToken(ctx context.Context, dst *utils.AccessToken) context.Context {
	return context.WithValue(ctx, issuedKey, dst)
}

// SignIn verifies email and password and opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (model.User, error) {
	rec, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if !rec.IsActive || !utils.VerifyPassword(rec.PasswordHash, password) {
		return model.User{}, ErrInvalidCredentials
	}

	sid, err := utils.NewSessionID()
	if err != nil {
		return model.User{}, err
	}
	access, err := utils.NewAccessToken(s.secret, rec.ID, string(rec.Role), sid, s.ttlMin)
	if err != nil {
		return model.User{}, err
	}
	if err := s.sessions.Open(ctx, rec.ID, utils.HashSessionID(sid), access.Exp); err != nil {
		return model.User{}, err
	}

	s.mu.Lock()
	s.last = access
	s.lastSession = sid
	s.mu.Unlock()
	if dst, ok := ctx.Value(issuedKey).(*utils.AccessToken); ok && dst != nil {
		*dst = access
	}
	return rec.User(), nil
}

// SignOut revokes the session named by WithSession, or the last issued
// session when the context carries none.  WithEverySession widens it to all
// of a user's sessions.
func (s *Service) SignOut(ctx context.Context) error {
	if uid, _ := ctx.Value(everywhereKey).(string); uid != "" {
		s.mu.Lock()
		s.lastSession = ""
		s.last = utils.AccessToken{}
		s.mu.Unlock()
		return s.sessions.RevokeAllForUser(ctx, uid)
	}
	sid, _ := ctx.Value(sessionKey).(string)
	s.mu.Lock()
	if sid == "" {
		sid = s.lastSession
	}
	if sid == s.lastSession {
		s.lastSession = ""
		s.last = utils.AccessToken{}
	}
	s.mu.Unlock()
	if sid == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, utils.HashSessionID(sid))
}

// LastToken returns the access token issued by the most recent SignIn.
func (s *Service) LastToken() utils.AccessToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Authorize parses raw and checks that its session is still open.
func (s *Service) Authorize(ctx context.Context, raw string) (utils.Claims, error) {
	claims, err := utils.ParseAccessToken(s.secret, raw)
	if err != nil {
		return utils.Claims{}, ErrUnauthorized
	}
	uid, err := s.sessions.Validate(ctx, utils.HashSessionID(claims.SessionID))
	if err != nil {
		if repository.IsNotFound(err) {
			return utils.Claims{}, ErrUnauthorized
		}
		return utils.Claims{}, err
	}
	if uid != claims.UserID {
		return utils.Claims{}, ErrUnauthorized
	}
	return claims, nil
}
