package session

import (
	"context"
	"log/slog"

	"padel-server/internal/profile"
	"padel-server/internal/shared/errors"
)

// Identity is the authenticated principal handed to session bootstrap, as
// produced by password sign-in or an OAuth callback.
type Identity struct {
	ID    string
	Email string
}

// User is the session view-model assembled at bootstrap and persisted in the
// session store.
type User struct {
	ID      string           `json:"id"`
	Email   string           `json:"email"`
	Name    string           `json:"name"`
	Role    Role             `json:"role"`
	Profile *profile.Profile `json:"profile"`
}

// ProfileGetter is the slice of the profile service the manager needs.
type ProfileGetter interface {
	GetByID(ctx context.Context, id string) (*profile.Profile, error)
}

// Manager owns the session lifecycle: Establish at sign-in, Refresh after
// profile edits, Teardown at logout. It is injected where needed; there is no
// ambient current-user global.
type Manager struct {
	profiles ProfileGetter
	store    Store
	policy   RolePolicy
	logger   *slog.Logger
}

func NewManager(profiles ProfileGetter, store Store, policy RolePolicy, logger *slog.Logger) *Manager {
	logger.Debug("Initializing session manager")

	if policy == nil {
		policy = DeriveRole
	}

	return &Manager{
		profiles: profiles,
		store:    store,
		policy:   policy,
		logger:   logger,
	}
}

// Establish bootstraps a session for an authenticated identity: it fetches
// the profile row, derives the role, assembles the user view-model, and
// persists it. A missing profile is fatal; on any failure nothing is
// persisted and the caller is expected to tear the session down.
func (m *Manager) Establish(ctx context.Context, identity Identity) (*User, error) {
	logger := m.logger.With(
		"component", "session_manager",
		"operation", "establish",
		"account_id", identity.ID,
	)
	logger.Debug("Establishing session")

	p, err := m.profiles.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.GetType(err) == errors.ErrorTypeNotFound {
			logger.Warn("No profile row for authenticated account")
			return nil, errors.NotFoundf("profile not found for account %s", identity.ID)
		}
		logger.Error("Failed to fetch profile for session", "error", err)
		return nil, err
	}

	role := m.policy(identity.Email)

	user := &User{
		ID:      identity.ID,
		Email:   identity.Email,
		Name:    p.DisplayName(),
		Role:    role,
		Profile: p,
	}

	if err := m.store.Put(ctx, user); err != nil {
		logger.Error("Failed to persist session", "error", err)
		return nil, err
	}

	logger.Info("Session established", "role", role, "username", p.Username)
	return user, nil
}

// Refresh re-reads the profile and overwrites the stored session. Used after
// profile edits and avatar uploads so the cached view-model stays current.
func (m *Manager) Refresh(ctx context.Context, identity Identity) (*User, error) {
	logger := m.logger.With(
		"component", "session_manager",
		"operation", "refresh",
		"account_id", identity.ID,
	)
	logger.Debug("Refreshing session")

	return m.Establish(ctx, identity)
}

// Get returns the persisted session user, if any.
func (m *Manager) Get(ctx context.Context, id string) (*User, error) {
	return m.store.Get(ctx, id)
}

// Teardown removes the persisted session. Logout and failed bootstraps both
// end up here; it is safe to call when no session exists.
func (m *Manager) Teardown(ctx context.Context, id string) error {
	logger := m.logger.With(
		"component", "session_manager",
		"operation", "teardown",
		"account_id", id,
	)
	logger.Debug("Tearing down session")

	if err := m.store.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete session", "error", err)
		return err
	}

	logger.Info("Session torn down")
	return nil
}

// RedirectRoute returns the dashboard route for the user's role.
func (u *User) RedirectRoute() string {
	return RouteFor(u.Role)
}
