package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/0xmhha/squad-console/pkg/model"
	"github.com/0xmhha/squad-console/pkg/session"
	"github.com/0xmhha/squad-console/pkg/tokenstore"
)

// runLogin signs in. A session already established is replaced.
func runLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	username := fs.String("u", "", "username")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.waitReady(ctx); err != nil {
		return err
	}

	for attempt := 1; ; attempt++ {
		err := a.interactiveLogin(ctx, *username)
		if err == nil {
			return nil
		}
		if !retryableLoginError(err) || attempt >= maxLoginAttempts || !a.prompt.interactive() {
			return errors.New(describeError(err))
		}
		a.printf("%s\n", describeError(err))
		*username = ""
	}
}

// registerArgs holds the register command's flags.
type registerArgs struct {
	username string
	name     string
	yob      int
}

// parseRegisterArgs parses the register flags.
func parseRegisterArgs(args []string, a *app) (registerArgs, error) {
	var r registerArgs
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	fs.StringVar(&r.username, "u", "", "username")
	fs.StringVar(&r.name, "name", "", "display name")
	fs.IntVar(&r.yob, "yob", 0, "year of birth")
	err := fs.Parse(args)
	return r, err
}

// runRegister creates an account and signs in with it.
func runRegister(ctx context.Context, a *app, args []string) error {
	r, err := parseRegisterArgs(args, a)
	if err != nil {
		return err
	}

	reg := model.Registration{Username: r.username, Name: r.name, YOB: r.yob}

	if reg.Username == "" {
		if reg.Username, err = a.prompt.Line("Username: "); err != nil {
			return err
		}
	}
	if reg.Name == "" {
		if reg.Name, err = a.prompt.Line("Name: "); err != nil {
			return err
		}
	}
	if reg.YOB == 0 {
		raw, err := a.prompt.Line("Year of birth: ")
		if err != nil {
			return err
		}
		if _, err := fmt.Sscan(raw, &reg.YOB); err != nil {
			return fmt.Errorf("year of birth: %q is not a number", raw)
		}
	}
	if reg.Password, err = a.prompt.Password("Password: "); err != nil {
		return err
	}
	confirm, err := a.prompt.Password("Confirm password: ")
	if err != nil {
		return err
	}
	if confirm != reg.Password {
		return errors.New("passwords do not match")
	}

	if err := a.waitReady(ctx); err != nil {
		return err
	}

	err = a.session.Register(ctx, reg)

	var partial *session.PartialRegistrationError
	switch {
	case errors.As(err, &partial):
		a.printf("Account %s created, but signing in failed: %s\n", partial.Username, describeError(partial.Err))
		a.printf("Run `squad-console login -u %s` to sign in.\n", partial.Username)
		return nil
	case err != nil:
		return errors.New(describeError(err))
	}

	a.printf("Account created. Signed in as %s\n", reg.Username)
	return nil
}

// runLogout signs out locally and notifies the server in the background.
func runLogout(ctx context.Context, a *app, _ []string) error {
	a.session.Logout(ctx)
	a.printf("Signed out\n")
	return nil
}

// runStatus reports the session after the startup check settles.
func runStatus(ctx context.Context, a *app, _ []string) error {
	if err := a.waitReady(ctx); err != nil {
		return err
	}

	a.printf("Server: %s\n", a.client.BaseURL())

	st := a.session.State()
	if !st.IsAuthenticated() {
		a.printf("Not signed in\n")
		return nil
	}

	if err := a.format.FormatProfile(a.out, *st.User); err != nil {
		return err
	}

	if token, ok := a.store.Read(); ok {
		info, err := tokenstore.Describe(token)
		switch {
		case err != nil:
			a.log.Debug("token is opaque", "error", err)
		case info.ExpiresAt.IsZero():
			a.printf("Token does not expire\n")
		case info.Expired(time.Now()):
			a.printf("Token expired at %s\n", info.ExpiresAt.Local().Format(time.RFC1123))
		default:
			a.printf("Token expires %s (in %s)\n",
				info.ExpiresAt.Local().Format(time.RFC1123),
				time.Until(info.ExpiresAt).Round(time.Minute))
		}
	}
	return nil
}

// runProfile shows the profile, or saves the fields given as flags.
func runProfile(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	name := fs.String("name", "", "new display name")
	yob := fs.Int("yob", 0, "new year of birth")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var patch model.ProfilePatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = name
		case "yob":
			patch.YOB = yob
		}
	})

	return a.guarded(ctx, "/profile", false, func(ctx context.Context) error {
		if !patch.Empty() {
			if !a.session.UpdateProfile(ctx, patch) {
				return fmt.Errorf("profile update failed: %s", describeError(a.session.LastError()))
			}
			a.printf("Profile updated\n")
		}
		return a.format.FormatProfile(a.out, *a.session.State().User)
	})
}

// runPassword changes the password of the signed-in user.
func runPassword(ctx context.Context, a *app, _ []string) error {
	return a.guarded(ctx, "/profile", false, func(ctx context.Context) error {
		current, err := a.prompt.Password("Current password: ")
		if err != nil {
			return err
		}
		next, err := a.prompt.Password("New password: ")
		if err != nil {
			return err
		}
		confirm, err := a.prompt.Password("Confirm new password: ")
		if err != nil {
			return err
		}
		if confirm != next {
			return errors.New("passwords do not match")
		}

		if !a.session.ChangePassword(ctx, current, next) {
			return fmt.Errorf("password change failed: %s", describeError(a.session.LastError()))
		}
		a.printf("Password changed\n")
		return nil
	})
}
