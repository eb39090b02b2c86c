package session

import (
	"strings"
)

type Role string

const (
	RolePlayer  Role = "player"
	RoleAdmin   Role = "admin"
	RoleSponsor Role = "sponsor"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	return r == RolePlayer || r == RoleAdmin || r == RoleSponsor
}

func ParseRole(s string) Role {
	switch s {
	case "admin":
		return RoleAdmin
	case "sponsor":
		return RoleSponsor
	default:
		return RolePlayer
	}
}

// RolePolicy derives a coarse role from an account email. It must be pure:
// deterministic and free of I/O.
type RolePolicy func(email string) Role

// DeriveRole is the default policy: emails containing "admin" map to the
// admin role, "sponsor" to sponsor, everything else to player.
// TODO: replace with a proper role lookup once memberships land; this
// substring match is a stand-in, not an authorization mechanism.
func DeriveRole(email string) Role {
	lowered := strings.ToLower(email)
	switch {
	case strings.Contains(lowered, "admin"):
		return RoleAdmin
	case strings.Contains(lowered, "sponsor"):
		return RoleSponsor
	default:
		return RolePlayer
	}
}

// RouteFor maps a role to its dashboard route on the frontend.
func RouteFor(role Role) string {
	switch role {
	case RoleAdmin:
		return "/dashboard/admin"
	case RoleSponsor:
		return "/dashboard/sponsor"
	default:
		return "/dashboard"
	}
}
