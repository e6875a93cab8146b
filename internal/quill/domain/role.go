package domain

import "strings"

// Role is the access level a user holds on a note.
type Role string

const (
	RoleNone   Role = ""
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// ParseRole parses a collaborator role. Only editor and viewer are valid for
// explicit ledger entries; owner is implicit and never parsed from input.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleEditor:
		return RoleEditor, nil
	case RoleViewer:
		return RoleViewer, nil
	default:
		return RoleNone, ErrInvalidRole
	}
}

// ParseRoleOrDefault is ParseRole with an empty input mapped to viewer.
func ParseRoleOrDefault(s string) (Role, error) {
	if strings.TrimSpace(s) == "" {
		return RoleViewer, nil
	}
	return ParseRole(s)
}

// IsCollaborator reports whether r is valid for an explicit ledger entry.
func (r Role) IsCollaborator() bool {
	return r == RoleEditor || r == RoleViewer
}

// CanRead reports whether r grants read access.
func (r Role) CanRead() bool { return r != RoleNone }

// CanWrite reports whether r grants content edits.
func (r Role) CanWrite() bool { return r == RoleOwner || r == RoleEditor }

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}
