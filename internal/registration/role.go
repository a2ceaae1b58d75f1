package registration

import "strings"

type Role string

const (
	RoleBuilder  Role = "builder"
	RoleCreative Role = "creative"
	RoleFounder  Role = "founder"
)

const DefaultRole = RoleBuilder

// ParseRole returns the matching role or DefaultRole.
func ParseRole(s string) Role {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleBuilder, RoleCreative, RoleFounder:
		return r
	}
	return DefaultRole
}
