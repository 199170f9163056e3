package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/0xmhha/squad-console/pkg/api"
	"github.com/0xmhha/squad-console/pkg/config"
	"github.com/0xmhha/squad-console/pkg/display"
	"github.com/0xmhha/squad-console/pkg/guard"
	"github.com/0xmhha/squad-console/pkg/logger"
	"github.com/0xmhha/squad-console/pkg/model"
	"github.com/0xmhha/squad-console/pkg/session"
	"github.com/0xmhha/squad-console/pkg/tokenstore"
)

// maxLoginAttempts bounds the sign-in prompt a guarded route may show.
const maxLoginAttempts = 3

var (
	// errAdminOnly is returned when a signed-in member opens an admin route.
	errAdminOnly = errors.New("this screen requires an administrator account")

	// errNotSignedIn is returned when the login redirect gives up.
	errNotSignedIn = errors.New("not signed in")
)

// appOptions configure newApp. The zero-value fields cfg, log and store
// are built from configuration; tests set them directly.
type appOptions struct {
	configPath string
	ephemeral  bool
	format     string

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfg   *config.Config
	log   logger.Logger
	store tokenstore.Store
}

// app wires the session, REST client and output for one invocation.
type app struct {
	cfg        *config.Config
	configPath string
	log        logger.Logger

	store      tokenstore.Store
	closeStore func() error

	client  *api.Client
	session *session.Manager

	format display.Formatter
	prompt *prompter
	out    io.Writer
	errOut io.Writer
}

// newApp loads configuration and starts the session bootstrap.
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	loader := config.NewLoader(opts.configPath)

	cfg := opts.cfg
	if cfg == nil {
		loaded, err := loader.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if opts.format != "" {
		cfg.Display.Format = opts.format
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	log := opts.log
	if log == nil {
		log = logger.New(logger.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: cfg.Logging.Output,
		})
	}

	a := &app{
		cfg:        cfg,
		configPath: loader.Path(),
		log:        log,
		out:        opts.out,
		errOut:     opts.errOut,
		prompt:     newPrompter(opts.in, opts.out),
		closeStore: func() error { return nil },
	}

	switch {
	case opts.store != nil:
		a.store = opts.store
	case opts.ephemeral:
		a.store = tokenstore.NewMemoryStore()
	default:
		bolt, err := tokenstore.NewBoltStore(tokenstore.Config{DBPath: cfg.Storage.DBPath}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		a.store = bolt
		a.closeStore = bolt.Close
	}

	client, err := api.New(api.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
		UserAgent: "squad-console/" + version,
	}, a.store, log)
	if err != nil {
		_ = a.closeStore() // nolint:errcheck
		return nil, err
	}
	a.client = client

	a.session = session.New(ctx, session.Config{
		ProfileTimeout: cfg.Session.ProfileTimeout,
	}, api.NewAuth(client), a.store, log)

	width := 0
	if f, ok := opts.out.(*os.File); ok {
		width = display.TerminalWidth(f)
	}
	a.format = display.New(display.Config{
		Format:  display.Format(cfg.Display.Format),
		Compact: cfg.Display.Compact,
		Width:   width,
	})

	return a, nil
}

// Close waits for background session work and releases the store.
func (a *app) Close() {
	a.session.Close()
	if err := a.closeStore(); err != nil {
		a.log.Error("failed to close session store", "error", err)
	}
}

// printf writes to the command output, ignoring write errors.
func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...) // nolint:errcheck
}

// waitReady blocks until the startup session check settles.
func (a *app) waitReady(ctx context.Context) error {
	select {
	case <-a.session.Ready():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// guarded runs fn once the route at path may render, signing in first
// when needed and resuming the requested route afterwards.
func (a *app) guarded(ctx context.Context, path string, requireAdmin bool, fn func(ctx context.Context) error) error {
	opts := guard.Options{RequireAdmin: requireAdmin, LoginPath: "/login", HomePath: "/"}
	attempts := 0

	for {
		d := guard.Evaluate(a.session.State(), path, opts)
		a.log.Debug("route decision", "path", path, "outcome", d.Outcome.String())

		switch d.Outcome {
		case guard.Loading:
			if err := a.waitReady(ctx); err != nil {
				return err
			}

		case guard.RedirectLogin:
			if attempts >= maxLoginAttempts {
				return errNotSignedIn
			}
			attempts++

			a.printf("Sign in to continue to %s\n", d.From)
			if err := a.interactiveLogin(ctx, ""); err != nil {
				if retryableLoginError(err) {
					a.printf("%s\n", describeError(err))
					continue
				}
				if errors.Is(err, io.EOF) {
					return errNotSignedIn
				}
				return err
			}
			path = guard.ReturnTo(d.Location, opts.HomePath)

		case guard.RedirectHome:
			a.showHome()
			return errAdminOnly

		default:
			return fn(ctx)
		}
	}
}

// showHome prints the landing screen for a signed-in user.
func (a *app) showHome() {
	st := a.session.State()
	if st.User == nil {
		a.printf("Not signed in.\n")
		return
	}
	role := "member"
	if st.IsAdmin() {
		role = "administrator"
	}
	a.printf("Signed in as %s (%s).\n", st.User.Username, role)
}

// interactiveLogin asks for credentials and signs in.
func (a *app) interactiveLogin(ctx context.Context, username string) error {
	if username == "" {
		u, err := a.prompt.Line("Username: ")
		if err != nil {
			return err
		}
		username = u
	}

	password, err := a.prompt.Password("Password: ")
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, model.Credentials{Username: username, Password: password}); err != nil {
		return err
	}

	a.printf("Signed in as %s\n", username)
	return nil
}

// retryableLoginError reports whether the user may simply try again.
func retryableLoginError(err error) bool {
	return errors.Is(err, api.ErrAuth) || errors.Is(err, model.ErrInvalid)
}

// describeError turns collaborator errors into user-facing text.
func describeError(err error) string {
	var apiErr *api.Error
	switch {
	case err == nil:
		return "unknown error"
	case errors.Is(err, api.ErrAuth):
		return "Invalid username or password."
	case errors.Is(err, model.ErrInvalid):
		return "Invalid input: " + err.Error()
	case errors.Is(err, api.ErrNetwork):
		return "Cannot reach the server: " + err.Error()
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return err.Error()
	}
}

// toaster prints mutation outcomes, standing in for UI toasts.
type toaster struct {
	out    io.Writer
	errOut io.Writer
}

// Success implements mutation.Notifier.
func (t toaster) Success(msg string) {
	_, _ = fmt.Fprintf(t.out, "✓ %s\n", msg) // nolint:errcheck
}

// Error implements mutation.Notifier.
func (t toaster) Error(msg string) {
	_, _ = fmt.Fprintf(t.errOut, "✗ %s\n", msg) // nolint:errcheck
}
