package session

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-hrms-client/api"
	"github.com/jrsteele09/go-hrms-client/internal/config"
	"github.com/jrsteele09/go-hrms-client/routes"
	"github.com/jrsteele09/go-hrms-client/store"
	"github.com/jrsteele09/go-hrms-client/tenants"
	"github.com/jrsteele09/go-hrms-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Status is the lifecycle state of the session.
type Status string

const (
	StatusUninitialized   Status = "uninitialized"
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// Navigator performs application navigation. The manager navigates exactly
// once per successful login and once per logout; no other component
// navigates.
type Navigator interface {
	Navigate(dest routes.Destination)
}

// Manager owns the process-wide session state: the current user and tenant
// snapshots plus the loading flag. All mutation goes through Init, Login,
// Logout, and the profile operations; consumers read through accessors.
// The in-memory snapshot is kept consistent with the store on every change.
type Manager struct {
	client *api.Client
	store  store.Store
	nav    Navigator
	log    zerolog.Logger

	lock    sync.RWMutex
	status  Status
	loading bool
	user    *users.User
	tenant  *tenants.Tenant
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for session lifecycle events.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = logger
	}
}

// New creates a session Manager with its required collaborators.
func New(client *api.Client, st store.Store, nav Navigator, options ...Option) (*Manager, error) {
	if client == nil {
		return nil, errors.New("[session.New] api client is required")
	}
	if st == nil {
		return nil, errors.New("[session.New] store is required")
	}
	if nav == nil {
		return nil, errors.New("[session.New] navigator is required")
	}

	manager := &Manager{
		client: client,
		store:  st,
		nav:    nav,
		status: StatusUninitialized,
		log:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(manager)
	}
	return manager, nil
}

// Init hydrates the session from the store. It runs once per process
// lifetime, performs no network calls, and always resolves the loading flag.
// Subsequent calls are no-ops.
func (m *Manager) Init() {
	m.lock.Lock()
	if m.status != StatusUninitialized {
		m.lock.Unlock()
		return
	}
	m.status = StatusLoading
	m.loading = true
	m.lock.Unlock()

	user := m.store.CachedUser()
	tenant := m.store.CachedTenant()

	m.lock.Lock()
	defer m.lock.Unlock()
	m.user = user
	m.tenant = tenant
	m.loading = false
	if user != nil {
		m.status = StatusAuthenticated
		m.log.Debug().Str("user", user.Email).Msg("session restored from store")
	} else {
		m.status = StatusUnauthenticated
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access     string           `json:"access"`
	Refresh    string           `json:"refresh"`
	User       users.User       `json:"user"`
	TenantID   string           `json:"tenant_id"`
	TenantName string           `json:"tenant_name"`
	Roles      []users.RoleType `json:"roles"`
}

// Login authenticates against the backend. On success it persists the token
// pair and the user/tenant snapshots, transitions to Authenticated, and
// navigates once to the role's landing destination. On failure the state is
// left as it was and the returned error carries the server's message,
// suitable for inline display.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	var result loginResponse
	if err := m.client.Post(ctx, config.LoginEndpoint, loginRequest{Email: email, Password: password}, &result); err != nil {
		m.log.Debug().Err(err).Str("email", email).Msg("login failed")
		return err
	}

	m.store.Write(store.Session{AccessToken: result.Access, RefreshToken: result.Refresh})

	user := result.User
	if len(user.Roles) == 0 {
		user.Roles = result.Roles
	}
	m.store.WriteCachedUser(&user)

	var tenant *tenants.Tenant
	if result.TenantID != "" {
		tenant = &tenants.Tenant{ID: result.TenantID, Name: result.TenantName}
	}
	// Written even when absent, so a platform-level login clears any tenant
	// cached by an earlier tenant-scoped session.
	m.store.WriteCachedTenant(tenant)

	m.lock.Lock()
	m.user = &user
	m.tenant = tenant
	m.status = StatusAuthenticated
	m.lock.Unlock()

	dest := routes.ForRoles(result.Roles)
	m.log.Info().Str("user", user.Email).Str("destination", string(dest)).Msg("logged in")
	m.nav.Navigate(dest)
	return nil
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

// Logout invalidates the session server-side on a best-effort basis, then
// unconditionally clears local state and navigates to the login entry
// point. A failing invalidation call never prevents the local logout.
func (m *Manager) Logout(ctx context.Context) {
	if session := m.store.Read(); session != nil {
		if err := m.client.Post(ctx, config.LogoutEndpoint, logoutRequest{Refresh: session.RefreshToken}, nil); err != nil {
			m.log.Debug().Err(err).Msg("server-side logout failed, continuing locally")
		}
	}

	m.store.Clear()

	m.lock.Lock()
	m.user = nil
	m.tenant = nil
	m.status = StatusUnauthenticated
	m.lock.Unlock()

	m.log.Info().Msg("logged out")
	m.nav.Navigate(routes.Login)
}

// RefreshProfile re-fetches the user record and replaces the in-memory and
// cached snapshots. On failure the current snapshot is kept; a stale
// profile is preferable to losing the session.
func (m *Manager) RefreshProfile(ctx context.Context) error {
	var user users.User
	if err := m.client.Get(ctx, config.ProfileEndpoint, &user); err != nil {
		m.log.Debug().Err(err).Msg("profile refresh failed, keeping current snapshot")
		return err
	}
	m.replaceUser(&user)
	return nil
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// UpdateProfile sends a profile mutation and, on success, replaces the
// snapshots with the server's updated record.
func (m *Manager) UpdateProfile(ctx context.Context, update ProfileUpdate) (*users.User, error) {
	var user users.User
	if err := m.client.Put(ctx, config.ProfileEndpoint, update, &user); err != nil {
		return nil, err
	}
	m.replaceUser(&user)
	return &user, nil
}

type changePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ChangePassword submits a password change for the authenticated user.
func (m *Manager) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	req := changePasswordRequest{
		OldPassword:     oldPassword,
		NewPassword:     newPassword,
		ConfirmPassword: newPassword,
	}
	return m.client.Post(ctx, config.ChangePasswordEndpoint, req, nil)
}

func (m *Manager) replaceUser(user *users.User) {
	m.store.WriteCachedUser(user)
	m.lock.Lock()
	defer m.lock.Unlock()
	m.user = user
	m.status = StatusAuthenticated
}

// Status returns the lifecycle state.
func (m *Manager) Status() Status {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.status
}

// IsLoading reports whether the initial hydration is still in progress.
func (m *Manager) IsLoading() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.loading
}

// IsAuthenticated reports whether a user is present.
func (m *Manager) IsAuthenticated() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.user != nil
}

// User returns a copy of the current user snapshot, or nil.
func (m *Manager) User() *users.User {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

// Tenant returns a copy of the current tenant snapshot, or nil for
// platform-level accounts.
func (m *Manager) Tenant() *tenants.Tenant {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.tenant == nil {
		return nil
	}
	tenant := *m.tenant
	return &tenant
}
