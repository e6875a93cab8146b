package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const MaxNoteTitleLength = 100

// PermissionEntry grants a single user a collaborator role on a note.
type PermissionEntry struct {
	UserID string
	Role   Role
}

// Note is a document with an immutable owner and an ordered permission
// ledger. The owner is never stored in Permissions; its role is implicit.
type Note struct {
	ID          string
	OwnerID     string
	Title       string
	Content     string
	Permissions []PermissionEntry // insertion order
	Trashed     bool
	TrashedAt   *time.Time
	Favorite    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Collaborator is one row of the listing returned by Collaborators.
type Collaborator struct {
	UserID string
	Role   Role
}

// NormalizeNoteTitle trims a title and enforces its length.
func NormalizeNoteTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > MaxNoteTitleLength {
		return "", ErrInvalidNoteTitle
	}
	return title, nil
}

// ResolveRole returns the role userID holds on the note, or RoleNone.
func (n *Note) ResolveRole(userID string) Role {
	if userID == "" {
		return RoleNone
	}
	if userID == n.OwnerID {
		return RoleOwner
	}
	if i := n.indexOf(userID); i >= 0 {
		return n.Permissions[i].Role
	}
	return RoleNone
}

// HasEntry reports whether userID has an explicit ledger entry.
func (n *Note) HasEntry(userID string) bool {
	return n.indexOf(userID) >= 0
}

// Collaborators lists the owner first followed by the ledger entries in
// insertion order. The returned slice is a copy.
func (n *Note) Collaborators() []Collaborator {
	out := make([]Collaborator, 0, len(n.Permissions)+1)
	out = append(out, Collaborator{UserID: n.OwnerID, Role: RoleOwner})
	for _, p := range n.Permissions {
		out = append(out, Collaborator{UserID: p.UserID, Role: p.Role})
	}
	return out
}

// AddEntry appends a ledger entry for userID.
func (n *Note) AddEntry(userID string, role Role) error {
	if userID == n.OwnerID {
		return ErrOwnerEntry
	}
	if n.HasEntry(userID) {
		return ErrEntryExists
	}
	if !role.IsCollaborator() {
		return ErrInvalidRole
	}
	n.Permissions = append(n.Permissions, PermissionEntry{UserID: userID, Role: role})
	return nil
}

// RemoveEntry deletes the ledger entry for userID. Removing an absent entry
// fails, so a second call for the same user returns ErrEntryNotFound.
func (n *Note) RemoveEntry(userID string) error {
	i := n.indexOf(userID)
	if i < 0 {
		return ErrEntryNotFound
	}
	n.Permissions = append(n.Permissions[:i:i], n.Permissions[i+1:]...)
	return nil
}

// SetRole overwrites the role of an existing entry. A missing entry is
// reported before an invalid role. The owner has no entry, so it is
// rejected first as immutable.
func (n *Note) SetRole(userID string, role Role) error {
	if userID == n.OwnerID {
		return ErrOwnerRoleImmutable
	}
	i := n.indexOf(userID)
	if i < 0 {
		return ErrEntryNotFound
	}
	if !role.IsCollaborator() {
		return ErrInvalidRole
	}
	n.Permissions[i].Role = role
	return nil
}

func (n *Note) indexOf(userID string) int {
	for i, p := range n.Permissions {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

// CollaboratorDetails is a collaborator with display info attached.
type CollaboratorDetails struct {
	Collaborator
	User UserSummary
}

// NoteView is a note as seen by one user.
type NoteView struct {
	Note
	Role Role
}
