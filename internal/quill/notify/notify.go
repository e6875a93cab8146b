// Package notify delivers collaboration events to whatever transport pushes
// them to clients. Delivery is best effort and never fails the caller.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/quill/internal/quill/domain"
)

const (
	EventInviteCreated       = "invite.created"
	EventInviteAccepted      = "invite.accepted"
	EventCollaboratorRevoked = "collaborator.revoked"
	EventRoleChanged         = "collaborator.role_changed"
)

// Event is the payload published for every collaboration change.
type Event struct {
	Type        string    `json:"type"`
	NoteID      string    `json:"note_id"`
	NoteTitle   string    `json:"note_title,omitempty"`
	InviteID    string    `json:"invite_id,omitempty"`
	ActorID     string    `json:"actor_id"`
	RecipientID string    `json:"recipient_id"`
	Role        string    `json:"role,omitempty"`
	At          time.Time `json:"at"`
}

// Notifier is the hook the collaboration service calls after a successful
// mutation. Implementations must not block the caller on delivery.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// InviteCreatedEvent builds the event sent to an invite's recipient.
func InviteCreatedEvent(inv domain.InviteDetails) Event {
	return Event{
		Type:        EventInviteCreated,
		NoteID:      inv.NoteID,
		NoteTitle:   inv.NoteTitle,
		InviteID:    inv.ID,
		ActorID:     inv.SenderID,
		RecipientID: inv.RecipientID,
		Role:        string(inv.Role),
		At:          inv.SentAt,
	}
}

// Nop drops every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// Recorder keeps events in memory. Tests use it to assert on side effects.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
