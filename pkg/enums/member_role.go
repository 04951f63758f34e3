package enums

import "fmt"

// MemberRole identifies the caller's role inside the platform.
type MemberRole string

const (
	MemberRoleBrand   MemberRole = "brand"
	MemberRoleCreator MemberRole = "creator"
	MemberRoleManager MemberRole = "manager"
	MemberRoleAdmin   MemberRole = "admin"
	// MemberRoleSystem is used for mutations driven by gateway callbacks
	// and background jobs rather than an authenticated user.
	MemberRoleSystem MemberRole = "system"
)

var validMemberRoles = []MemberRole{
	MemberRoleBrand,
	MemberRoleCreator,
	MemberRoleManager,
	MemberRoleAdmin,
	MemberRoleSystem,
}

// IsValid reports whether the value matches the canonical enum.
func (r MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsOperator reports whether the role may perform back-office operations
// such as final locks and payout recording.
func (r MemberRole) IsOperator() bool {
	return r == MemberRoleAdmin || r == MemberRoleManager
}

// ParseMemberRole converts raw input into MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
