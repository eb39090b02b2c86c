package session

import (
	"context"
	"log/slog"
	"testing"

	"padel-server/internal/profile"
	"padel-server/internal/shared/errors"
)

type fakeProfiles struct {
	profiles map[string]*profile.Profile
	err      error
}

func (f *fakeProfiles) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, errors.NotFoundf("profile %s not found", id)
	}
	return p, nil
}

func newTestManager(profiles *fakeProfiles, store Store) *Manager {
	return NewManager(profiles, store, nil, slog.Default())
}

func TestEstablishAssemblesUser(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*profile.Profile{
		"acc-1": {ID: "acc-1", Username: "maria", FullName: "Maria Silva", Rating: 1000},
	}}
	store := NewMemoryStore()
	m := newTestManager(profiles, store)

	user, err := m.Establish(context.Background(), Identity{ID: "acc-1", Email: "maria@example.com"})
	if err != nil {
		t.Fatalf("Establish failed: %v", err)
	}

	if user.ID != "acc-1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "acc-1")
	}
	if user.Email != "maria@example.com" {
		t.Errorf("user.Email = %q, want %q", user.Email, "maria@example.com")
	}
	if user.Name != "Maria Silva" {
		t.Errorf("user.Name = %q, want full name", user.Name)
	}
	if user.Role != RolePlayer {
		t.Errorf("user.Role = %q, want %q", user.Role, RolePlayer)
	}
	if user.Profile == nil || user.Profile.Username != "maria" {
		t.Errorf("user.Profile not attached: %+v", user.Profile)
	}

	stored, err := store.Get(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if stored.Email != user.Email {
		t.Errorf("stored session email = %q, want %q", stored.Email, user.Email)
	}
}

func TestEstablishNameFallsBackToUsername(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*profile.Profile{
		"acc-1": {ID: "acc-1", Username: "maria", FullName: ""},
	}}
	m := newTestManager(profiles, NewMemoryStore())

	user, err := m.Establish(context.Background(), Identity{ID: "acc-1", Email: "maria@example.com"})
	if err != nil {
		t.Fatalf("Establish failed: %v", err)
	}
	if user.Name != "maria" {
		t.Errorf("user.Name = %q, want username fallback", user.Name)
	}
}

func TestEstablishMissingProfileIsFatal(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*profile.Profile{}}
	store := NewMemoryStore()
	m := newTestManager(profiles, store)

	_, err := m.Establish(context.Background(), Identity{ID: "acc-404", Email: "ghost@example.com"})
	if err == nil {
		t.Fatal("expected error for missing profile")
	}
	if errors.GetType(err) != errors.ErrorTypeNotFound {
		t.Errorf("error type = %q, want not_found", errors.GetType(err))
	}

	if _, err := store.Get(context.Background(), "acc-404"); err == nil {
		t.Error("session persisted despite failed bootstrap")
	}
}

func TestEstablishDerivesRoleFromEmail(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*profile.Profile{
		"acc-1": {ID: "acc-1", Username: "boss"},
	}}
	m := newTestManager(profiles, NewMemoryStore())

	user, err := m.Establish(context.Background(), Identity{ID: "acc-1", Email: "admin@club.pt"})
	if err != nil {
		t.Fatalf("Establish failed: %v", err)
	}
	if user.Role != RoleAdmin {
		t.Errorf("user.Role = %q, want %q", user.Role, RoleAdmin)
	}
	if user.RedirectRoute() != "/dashboard/admin" {
		t.Errorf("RedirectRoute() = %q, want /dashboard/admin", user.RedirectRoute())
	}
}

func TestEstablishCustomPolicy(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*profile.Profile{
		"acc-1": {ID: "acc-1", Username: "maria"},
	}}
	everyoneSponsor := func(email string) Role { return RoleSponsor }
	m := NewManager(profiles, NewMemoryStore(), everyoneSponsor, slog.Default())

	user, err := m.Establish(context.Background(), Identity{ID: "acc-1", Email: "maria@example.com"})
	if err != nil {
		t.Fatalf("Establish failed: %v", err)
	}
	if user.Role != RoleSponsor {
		t.Errorf("user.Role = %q, want injected policy result", user.Role)
	}
}

func TestRefreshPicksUpProfileChanges(t *testing.T) {
	p := &profile.Profile{ID: "acc-1", Username: "maria", FullName: "Maria Silva"}
	profiles := &fakeProfiles{profiles: map[string]*profile.Profile{"acc-1": p}}
	store := NewMemoryStore()
	m := newTestManager(profiles, store)

	identity := Identity{ID: "acc-1", Email: "maria@example.com"}
	if _, err := m.Establish(context.Background(), identity); err != nil {
		t.Fatalf("Establish failed: %v", err)
	}

	p.FullName = "Maria Santos"

	user, err := m.Refresh(context.Background(), identity)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if user.Name != "Maria Santos" {
		t.Errorf("refreshed name = %q, want updated full name", user.Name)
	}

	stored, err := store.Get(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("stored session missing after refresh: %v", err)
	}
	if stored.Name != "Maria Santos" {
		t.Errorf("stored name = %q, want updated full name", stored.Name)
	}
}

func TestTeardownRemovesSession(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*profile.Profile{
		"acc-1": {ID: "acc-1", Username: "maria"},
	}}
	store := NewMemoryStore()
	m := newTestManager(profiles, store)

	if _, err := m.Establish(context.Background(), Identity{ID: "acc-1", Email: "maria@example.com"}); err != nil {
		t.Fatalf("Establish failed: %v", err)
	}

	if err := m.Teardown(context.Background(), "acc-1"); err != nil {
		t.Fatalf("Teardown failed: %v", err)
	}
	if _, err := store.Get(context.Background(), "acc-1"); err == nil {
		t.Error("session still present after teardown")
	}
}

func TestTeardownWithoutSessionIsSafe(t *testing.T) {
	m := newTestManager(&fakeProfiles{}, NewMemoryStore())

	if err := m.Teardown(context.Background(), "never-signed-in"); err != nil {
		t.Fatalf("Teardown of absent session failed: %v", err)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	user := &User{ID: "acc-1", Email: "maria@example.com", Role: RolePlayer}
	if err := store.Put(context.Background(), user); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	got.Email = "tampered@example.com"

	again, err := store.Get(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if again.Email != "maria@example.com" {
		t.Errorf("stored session mutated through returned copy: %q", again.Email)
	}
}
