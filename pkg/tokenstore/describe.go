package tokenstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned by Describe for tokens that are not JWT-shaped.
var ErrNotJWT = errors.New("token is not a JWT")

// Claims are the fields the API puts in its tokens.
type Claims struct {
	UserID   string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	IsAdmin  bool   `json:"isAdmin,omitempty"`
	jwt.RegisteredClaims
}

// Info is what Describe reports about a token.
type Info struct {
	Subject   string
	Username  string
	IsAdmin   bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim is in the past at now.
// A token without exp never expires locally.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// Describe decodes a token's claims without checking the signature.
//
// The result is for display only. Whether a token is actually valid is
// decided by the server during the profile fetch.
func Describe(token string) (Info, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	info := Info{
		Subject:  claims.Subject,
		Username: claims.Username,
		IsAdmin:  claims.IsAdmin,
	}
	if info.Subject == "" {
		info.Subject = claims.UserID
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
