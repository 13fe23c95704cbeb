package store

import (
	"context"
	"errors"

	"github.com/iliyamo/connection-monitor/internal/model"
)

// ErrNoAuthenticator is returned by Login when the store was built without
// an authentication collaborator.
var ErrNoAuthenticator = errors.New("no authenticator configured")

// Authenticator is the remote sign-in capability the store delegates to.
// The store knows nothing about its transport or storage.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (model.User, error)
	SignOut(ctx context.Context) error
}

// Login signs in through the authenticator.  The round trip happens without
// holding the state lock, so reads and writes proceed while it is pending.
// A failure is returned exactly as the authenticator produced it and leaves
// the store unchanged.
func (s *ConnectionStore) Login(ctx context.Context, email, password string) (model.User, error) {
	if s.auth == nil {
		return model.User{}, ErrNoAuthenticator
	}
	u, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return model.User{}, err
	}
	s.commit(func(st *state) (Change, bool) {
		profile := u
		st.user = &profile
		return Change{Kind: ChangeLogin, ID: u.ID}, true
	})
	return u, nil
}

// Logout invalidates the remote session and clears the profile.  The profile
// is cleared even when the remote call fails; that error is returned.
func (s *ConnectionStore) Logout(ctx context.Context) error {
	var err error
	if s.auth != nil {
		err = s.auth.SignOut(ctx)
	}
	s.commit(func(st *state) (Change, bool) {
		if st.user == nil {
			return Change{}, false
		}
		id := st.user.ID
		st.user = nil
		return Change{Kind: ChangeLogout, ID: id}, true
	})
	return err
}
