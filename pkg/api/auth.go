package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/0xmhha/squad-console/pkg/model"
)

// Auth implements session.AuthService over the /auth and /members endpoints.
type Auth struct {
	c *Client
}

// NewAuth creates the authentication collaborator.
func NewAuth(c *Client) *Auth {
	return &Auth{c: c}
}

type userEnvelope struct {
	User model.User `json:"user"`
}

// SignIn posts credentials to /auth/login. A 401 becomes ErrAuth.
func (a *Auth) SignIn(ctx context.Context, creds model.Credentials) (model.AuthResult, error) {
	var res model.AuthResult
	if err := a.c.doWithToken(ctx, http.MethodPost, "/auth/login", nil, creds, &res, ""); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			apiErr.kind = ErrAuth
		}
		return model.AuthResult{}, err
	}
	if res.Token == "" {
		return model.AuthResult{}, &Error{Status: http.StatusOK, Message: "login response has no token", kind: ErrServer}
	}
	return res, nil
}

// SignUp posts the registration to /auth/register.
func (a *Auth) SignUp(ctx context.Context, reg model.Registration) (model.User, error) {
	var env userEnvelope
	if err := a.c.doWithToken(ctx, http.MethodPost, "/auth/register", nil, reg, &env, ""); err != nil {
		return model.User{}, err
	}
	return env.User, nil
}

// GetProfile fetches /auth/profile with the given token rather than the
// stored one, so the startup check validates exactly what it read.
func (a *Auth) GetProfile(ctx context.Context, token string) (model.User, error) {
	var env userEnvelope
	if err := a.c.doWithToken(ctx, http.MethodGet, "/auth/profile", nil, nil, &env, token); err != nil {
		return model.User{}, err
	}
	if env.User.ID == "" {
		return model.User{}, &Error{Status: http.StatusOK, Message: "profile response has no user", kind: ErrServer}
	}
	return env.User, nil
}

// UpdateProfile puts the patch to /members/{id}.
func (a *Auth) UpdateProfile(ctx context.Context, userID string, patch model.ProfilePatch) error {
	var res ack
	if err := a.c.do(ctx, http.MethodPut, "/members/"+url.PathEscape(userID), nil, patch, &res); err != nil {
		return err
	}
	return res.check(http.StatusOK)
}

// ChangePassword puts the change to /members/{id}/password.
func (a *Auth) ChangePassword(ctx context.Context, userID string, change model.PasswordChange) error {
	var res ack
	if err := a.c.do(ctx, http.MethodPut, "/members/"+url.PathEscape(userID)+"/password", nil, change, &res); err != nil {
		return err
	}
	return res.check(http.StatusOK)
}

// Logout posts to /auth/logout with the token being discarded.
func (a *Auth) Logout(ctx context.Context, token string) error {
	return a.c.doWithToken(ctx, http.MethodPost, "/auth/logout", nil, nil, nil, token)
}
