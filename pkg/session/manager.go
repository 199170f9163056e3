package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/0xmhha/squad-console/pkg/logger"
	"github.com/0xmhha/squad-console/pkg/model"
	"github.com/0xmhha/squad-console/pkg/tokenstore"
)

// Manager is safe for concurrent use. It is the only writer of the token
// store it is given.
type Manager struct {
	config Config
	auth   AuthService
	store  tokenstore.Store
	logger logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	user    *model.User
	loading bool
	lastErr error

	// epoch increments on every login, registration and logout so a
	// bootstrap result that arrives afterwards is recognised as stale.
	epoch uint64

	ready chan struct{}
}

// New creates a manager and starts the one-time startup check.
//
// Parameters:
//   - ctx: Parent context for background calls
//   - cfg: Manager configuration
//   - auth: Authentication collaborator
//   - store: Token persistence
//   - log: Logger instance
//
// Returns a Manager whose Ready channel closes once the check settles.
func New(ctx context.Context, cfg Config, auth AuthService, store tokenstore.Store, log logger.Logger) *Manager {
	if cfg.ProfileTimeout == 0 {
		cfg.ProfileTimeout = 10 * time.Second
	}
	if cfg.LogoutTimeout == 0 {
		cfg.LogoutTimeout = 5 * time.Second
	}
	if log == nil {
		log = logger.Noop()
	}

	ctx, cancel := context.WithCancel(ctx)

	m := &Manager{
		config:  cfg,
		auth:    auth,
		store:   store,
		logger:  log.With("component", "session"),
		ctx:     ctx,
		cancel:  cancel,
		loading: true,
		ready:   make(chan struct{}),
	}

	token, ok := store.Read()
	if !ok {
		m.logger.Debug("no stored token, starting signed out")
		m.settle(0, nil, nil)
		return m
	}

	m.wg.Add(1)
	go m.bootstrap(m.epoch, token)

	return m
}

// Ready is closed once the startup check has settled.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// State returns a snapshot of the session.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.stateLocked()
}

// LastError returns the failure recorded by the last UpdateProfile or
// ChangePassword that returned false.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.lastErr
}

// Login signs in and stores the returned token.
//
// On failure the error is returned as is and the session is unchanged.
func (m *Manager) Login(ctx context.Context, creds model.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	res, err := m.auth.SignIn(ctx, creds)
	if err != nil {
		m.logger.Info("sign in rejected", "username", creds.Username, "error", err)
		return err
	}

	user := res.User

	m.mu.Lock()
	m.epoch++
	m.store.Save(res.Token)
	m.user = &user
	state := m.stateLocked()
	m.mu.Unlock()

	m.logger.Info("signed in", "username", user.Username, "admin", user.IsAdmin)
	m.emit(state)
	return nil
}

// Register creates an account, then signs in with it.
//
// Returns the sign-up error if the account could not be created, or a
// *PartialRegistrationError if it was created but signing in failed.
func (m *Manager) Register(ctx context.Context, reg model.Registration) error {
	if err := reg.Validate(); err != nil {
		return err
	}

	if _, err := m.auth.SignUp(ctx, reg); err != nil {
		m.logger.Info("sign up rejected", "username", reg.Username, "error", err)
		return err
	}

	m.logger.Info("account created", "username", reg.Username)

	if err := m.Login(ctx, reg.Credentials()); err != nil {
		return &PartialRegistrationError{Username: reg.Username, Err: err}
	}
	return nil
}

// Logout clears the local session first, then tells the server in the
// background. A failed notification is logged and otherwise ignored.
// Calling Logout again is harmless.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	token, hadToken := m.store.Read()
	m.epoch++
	m.store.Clear()
	m.user = nil
	state := m.stateLocked()
	m.mu.Unlock()

	m.logger.Info("signed out")
	m.emit(state)

	if !hadToken {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.config.LogoutTimeout)
		defer cancel()

		if err := m.auth.Logout(notifyCtx, token); err != nil {
			m.logger.Warn("logout notification failed", "error", err)
		}
	}()
}

// UpdateProfile saves patch and merges it into the local user.
//
// Returns false, leaving the user unchanged, if nobody is signed in or the
// call fails. The cause is logged and available from LastError.
func (m *Manager) UpdateProfile(ctx context.Context, patch model.ProfilePatch) bool {
	user, ok := m.requireUser("profile update")
	if !ok {
		return false
	}

	if err := patch.Validate(); err != nil {
		m.recordFailure("profile update", err)
		return false
	}

	if err := m.auth.UpdateProfile(ctx, user.ID, patch); err != nil {
		m.recordFailure("profile update", err)
		return false
	}

	m.mu.Lock()
	if m.user != nil && m.user.ID == user.ID {
		updated := patch.ApplyTo(*m.user)
		m.user = &updated
	}
	m.lastErr = nil
	state := m.stateLocked()
	m.mu.Unlock()

	m.logger.Info("profile updated", "user_id", user.ID)
	m.emit(state)
	return true
}

// ChangePassword replaces the password of the signed-in user. It follows
// the same boolean contract as UpdateProfile and keeps no local state.
func (m *Manager) ChangePassword(ctx context.Context, current, next string) bool {
	user, ok := m.requireUser("password change")
	if !ok {
		return false
	}

	change := model.PasswordChange{CurrentPassword: current, NewPassword: next}
	if err := change.Validate(); err != nil {
		m.recordFailure("password change", err)
		return false
	}

	if err := m.auth.ChangePassword(ctx, user.ID, change); err != nil {
		m.recordFailure("password change", err)
		return false
	}

	m.mu.Lock()
	m.lastErr = nil
	m.mu.Unlock()

	m.logger.Info("password changed", "user_id", user.ID)
	return true
}

// Close cancels the startup check if it is still running and waits for
// pending logout notifications.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) bootstrap(epoch uint64, token string) {
	defer m.wg.Done()

	ctx, cancel := context.WithTimeout(m.ctx, m.config.ProfileTimeout)
	defer cancel()

	user, err := m.auth.GetProfile(ctx, token)
	if err != nil && m.ctx.Err() != nil {
		// Shutting down: the token was never judged, keep it.
		m.settle(epoch, nil, nil)
		return
	}
	if err != nil {
		m.settle(epoch, nil, err)
		return
	}
	m.settle(epoch, &user, nil)
}

// settle ends the bootstrapping phase exactly once. A result from an
// epoch that has since moved on is dropped.
func (m *Manager) settle(epoch uint64, user *model.User, err error) {
	m.mu.Lock()
	switch {
	case m.epoch != epoch:
		m.logger.Debug("discarding stale profile check")
	case err != nil:
		m.store.Clear()
		m.logger.Info("stored token rejected, starting signed out", "error", err)
	case user != nil:
		m.user = user
		m.logger.Info("session restored", "username", user.Username)
	}
	m.loading = false
	state := m.stateLocked()
	m.mu.Unlock()

	close(m.ready)
	m.emit(state)
}

func (m *Manager) requireUser(op string) (model.User, bool) {
	m.mu.RLock()
	user := m.user
	m.mu.RUnlock()

	if user == nil {
		m.recordFailure(op, ErrNotAuthenticated)
		return model.User{}, false
	}
	return *user, true
}

func (m *Manager) recordFailure(op string, err error) {
	m.mu.Lock()
	m.lastErr = fmt.Errorf("%s: %w", op, err)
	m.mu.Unlock()

	m.logger.Error(op+" failed", "error", err)
}

func (m *Manager) stateLocked() State {
	s := State{IsLoading: m.loading}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

func (m *Manager) emit(s State) {
	if m.config.OnChange != nil {
		m.config.OnChange(s)
	}
}
