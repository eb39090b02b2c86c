package session

import "testing"

func TestDeriveRole(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  Role
	}{
		{"plain player", "maria@example.com", RolePlayer},
		{"admin substring", "admin@club.pt", RoleAdmin},
		{"admin embedded", "club.administrator@example.com", RoleAdmin},
		{"admin uppercase", "ADMIN@club.pt", RoleAdmin},
		{"sponsor substring", "sponsor@brand.com", RoleSponsor},
		{"sponsor embedded", "our.sponsors@brand.com", RoleSponsor},
		{"admin wins over sponsor", "admin.sponsor@club.pt", RoleAdmin},
		{"empty email", "", RolePlayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveRole(tt.email)
			if got != tt.want {
				t.Fatalf("DeriveRole(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}

func TestDeriveRoleIsStable(t *testing.T) {
	emails := []string{"maria@example.com", "admin@club.pt", "sponsor@brand.com"}
	for _, email := range emails {
		first := DeriveRole(email)
		for i := 0; i < 10; i++ {
			if got := DeriveRole(email); got != first {
				t.Fatalf("DeriveRole(%q) not stable: got %q then %q", email, first, got)
			}
		}
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{"sponsor", RoleSponsor},
		{"player", RolePlayer},
		{"", RolePlayer},
		{"superuser", RolePlayer},
	}

	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRouteFor(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleAdmin, "/dashboard/admin"},
		{RoleSponsor, "/dashboard/sponsor"},
		{RolePlayer, "/dashboard"},
		{Role("unknown"), "/dashboard"},
	}

	for _, tt := range tests {
		if got := RouteFor(tt.role); got != tt.want {
			t.Errorf("RouteFor(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}
