package domain

import (
	"strings"
	"time"
)

// InviteStatus is the lifecycle state of an invite.
type InviteStatus string

const (
	InviteStatusPending   InviteStatus = "pending"
	InviteStatusAccepted  InviteStatus = "accepted"
	InviteStatusCancelled InviteStatus = "cancelled"
)

func ParseInviteStatus(s string) (InviteStatus, error) {
	switch InviteStatus(strings.ToLower(strings.TrimSpace(s))) {
	case InviteStatusPending:
		return InviteStatusPending, nil
	case InviteStatusAccepted:
		return InviteStatusAccepted, nil
	case InviteStatusCancelled:
		return InviteStatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

// CanTransition reports whether moving from s to next is allowed. Nothing
// ever returns to pending and cancelled is final. An accepted invite may only
// be cancelled, which happens when the owner revokes the access it granted.
func (s InviteStatus) CanTransition(next InviteStatus) bool {
	switch s {
	case InviteStatusPending:
		return next == InviteStatusAccepted || next == InviteStatusCancelled
	case InviteStatusAccepted:
		return next == InviteStatusCancelled
	default:
		return false
	}
}

type Invite struct {
	ID          string
	SenderID    string
	RecipientID string
	NoteID      string
	Role        Role
	Status      InviteStatus
	SentAt      time.Time
	AcceptedAt  *time.Time // only set on transition to accepted
}

// Accept moves a pending invite to accepted and stamps AcceptedAt.
func (i *Invite) Accept(at time.Time) error {
	if !i.Status.CanTransition(InviteStatusAccepted) {
		return ErrInvalidTransition
	}
	i.Status = InviteStatusAccepted
	i.AcceptedAt = &at
	return nil
}

// Cancel moves a pending or accepted invite to cancelled.
func (i *Invite) Cancel() error {
	if !i.Status.CanTransition(InviteStatusCancelled) {
		return ErrInvalidTransition
	}
	i.Status = InviteStatusCancelled
	return nil
}

// InviteDetails is an invite enriched with sender and recipient display info.
type InviteDetails struct {
	Invite
	Sender    UserSummary
	Recipient UserSummary
	NoteTitle string
}

// RefreshToken is an opaque, rotating session credential. Only the SHA-256
// fingerprint is stored.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}
