// Package session owns the signed-in user for one application instance.
//
// A Manager starts in the bootstrapping phase. If a token was persisted by
// a previous run, the manager asks the server for the matching profile;
// whatever the answer, it then settles for good. Login, registration and
// logout replace the user directly and never re-enter bootstrapping.
//
// Example usage:
//
//	mgr := session.New(ctx, session.Config{}, authAPI, store, logger.Default())
//	defer mgr.Close()
//
//	<-mgr.Ready()
//	if !mgr.State().IsAuthenticated() {
//	    if err := mgr.Login(ctx, creds); err != nil {
//	        fmt.Println("login failed:", err)
//	    }
//	}
package session

import (
	"context"
	"time"

	"github.com/0xmhha/squad-console/pkg/model"
)

// AuthService is the authentication collaborator.
type AuthService interface {
	// SignIn exchanges credentials for a token and the user record.
	//
	// Returns an error matching api.ErrAuth for bad credentials.
	SignIn(ctx context.Context, creds model.Credentials) (model.AuthResult, error)

	// SignUp creates an account. It does not sign in.
	//
	// Returns an error matching api.ErrValidation for a taken username or
	// bad input.
	SignUp(ctx context.Context, reg model.Registration) (model.User, error)

	// GetProfile returns the user owning token.
	//
	// Returns an error matching api.ErrUnauthorized if the token is invalid
	// or expired.
	GetProfile(ctx context.Context, token string) (model.User, error)

	// UpdateProfile stores the patched fields of userID.
	UpdateProfile(ctx context.Context, userID string, patch model.ProfilePatch) error

	// ChangePassword replaces the password of userID.
	ChangePassword(ctx context.Context, userID string, change model.PasswordChange) error

	// Logout tells the server token is no longer in use.
	Logout(ctx context.Context, token string) error
}

// State is a snapshot of the session.
type State struct {
	// User is nil when nobody is signed in.
	User *model.User

	// IsLoading is true only until the startup profile check settles.
	IsLoading bool
}

// IsAuthenticated reports whether someone is signed in.
func (s State) IsAuthenticated() bool {
	return s.User != nil
}

// IsAdmin reports whether the signed-in user is an administrator.
func (s State) IsAdmin() bool {
	return s.User != nil && s.User.IsAdmin
}

// Config contains session manager configuration.
type Config struct {
	// ProfileTimeout bounds the startup profile fetch.
	// Default: 10s.
	ProfileTimeout time.Duration

	// LogoutTimeout bounds the background logout notification.
	// Default: 5s.
	LogoutTimeout time.Duration

	// OnChange, if set, is called after every state transition.
	// It must not call back into the manager synchronously.
	OnChange func(State)
}
