// Package guard decides whether a protected route may render.
//
// Evaluate is a pure function of the session state. The checks run in a
// fixed order: still loading, then signed in, then role. An anonymous
// visitor to an admin route is therefore sent to the login page, never
// told the route is admin-only.
package guard

import (
	"net/url"

	"github.com/0xmhha/squad-console/pkg/session"
)

// Outcome is what the caller should do with the requested route.
type Outcome int

// Guard outcomes.
const (
	// Loading: the session is still being restored; show a placeholder.
	Loading Outcome = iota
	// RedirectLogin: nobody is signed in.
	RedirectLogin
	// RedirectHome: signed in but lacking the required role.
	RedirectHome
	// Render: show the route.
	Render
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}

// Options configure one protected route.
type Options struct {
	// RequireAdmin restricts the route to administrators.
	RequireAdmin bool

	// LoginPath is where anonymous visitors go. Default: "/login".
	LoginPath string

	// HomePath is where non-admins go. Default: "/".
	HomePath string
}

// Decision is the result of Evaluate.
type Decision struct {
	Outcome Outcome

	// Location is the redirect target, empty unless redirecting.
	Location string

	// From is the originally requested route on a login redirect, so the
	// login flow can return there.
	From string
}

// Evaluate decides what to do with a request for route requested.
func Evaluate(state session.State, requested string, opts Options) Decision {
	if opts.LoginPath == "" {
		opts.LoginPath = "/login"
	}
	if opts.HomePath == "" {
		opts.HomePath = "/"
	}

	switch {
	case state.IsLoading:
		return Decision{Outcome: Loading}
	case !state.IsAuthenticated():
		return Decision{
			Outcome:  RedirectLogin,
			Location: LoginLocation(opts.LoginPath, requested),
			From:     requested,
		}
	case opts.RequireAdmin && !state.IsAdmin():
		return Decision{Outcome: RedirectHome, Location: opts.HomePath}
	default:
		return Decision{Outcome: Render}
	}
}

// LoginLocation builds the login URL carrying the return location.
func LoginLocation(loginPath, from string) string {
	if from == "" {
		return loginPath
	}
	return loginPath + "?from=" + url.QueryEscape(from)
}

// ReturnTo extracts the return location from a login URL built by
// LoginLocation, falling back to home.
func ReturnTo(location, home string) string {
	u, err := url.Parse(location)
	if err != nil {
		return home
	}
	if from := u.Query().Get("from"); from != "" {
		return from
	}
	return home
}
