package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/quill/internal/quill/domain"
	"github.com/aussiebroadwan/quill/internal/quill/metrics"
	"github.com/aussiebroadwan/quill/internal/quill/notify"
	"github.com/aussiebroadwan/quill/internal/quill/store"
	"github.com/aussiebroadwan/quill/pkg/idx"
	"github.com/aussiebroadwan/quill/pkg/slogx"
)

var (
	ErrNoteNotFound         = domain.NotFound("note not found")
	ErrInviteNotFound       = domain.NotFound("invite not found")
	ErrActorNotFound        = domain.NotFound("user in session was not found")
	ErrRecipientNotFound    = domain.NotFound("invitee not found")
	ErrNotOwner             = domain.Forbidden("only the note owner can do this")
	ErrNotRecipient         = domain.Forbidden("only the invitee can accept this invite")
	ErrNotCollaborator      = domain.Forbidden("you do not have access to this note")
	ErrOwnerTarget          = domain.Forbidden("the owner's access cannot be changed")
	ErrAlreadyCollaborator  = domain.Conflict("user is already a collaborator on this note")
	ErrDuplicatePending     = domain.Conflict("an invite is already pending for this user")
	ErrNoMatchingInvite     = domain.Conflict("no invite matches this collaborator")
	ErrConcurrentUpdate     = domain.Conflict("the invite changed while processing, refetch and retry")
	ErrCollaboratorNotFound = domain.NotFound("collaborator not found on this note")
)

// CollabService owns the invite lifecycle and the permission ledger. Every
// call re-reads what it needs and mutations that touch both an invite and a
// ledger run in one transaction guarded by a compare-and-swap on the invite
// status.
type CollabService struct {
	Store    store.Store
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

func (s *CollabService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *CollabService) notify(ctx context.Context, ev notify.Event) {
	if s.Notifier != nil {
		s.Notifier.Notify(ctx, ev)
	}
}

// CreateInvite sends a pending invite for noteID to the user registered under
// recipientEmail. An empty role defaults to viewer.
func (s *CollabService) CreateInvite(
	ctx context.Context,
	actorID, recipientEmail, noteID string,
	role domain.Role,
) (inv domain.InviteDetails, err error) {
	defer func(start time.Time) { s.Metrics.ObserveCollab("create_invite", start, err) }(time.Now())
	log := slogx.FromContext(ctx).With(slog.String("note_id", noteID), slog.String("actor_id", actorID))

	if role == domain.RoleNone {
		role = domain.RoleViewer
	}
	if !role.IsCollaborator() {
		return domain.InviteDetails{}, domain.ErrInvalidRole
	}
	email, err := domain.NormalizeEmail(recipientEmail)
	if err != nil {
		return domain.InviteDetails{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Resolve actor and note.
		actor, err := tx.Users().GetUserByID(ctx, actorID)
		if err != nil {
			return mapLookup(err, ErrActorNotFound)
		}
		note, err := tx.Notes().GetNote(ctx, noteID)
		if err != nil {
			return mapLookup(err, ErrNoteNotFound)
		}

		// Only the owner can grant access. Revocation requires the owner
		// to be the sender of the grant.
		if note.OwnerID != actor.ID {
			log.Warn("invite attempted by non-owner")
			return ErrNotOwner
		}

		// 2. Resolve recipient by email.
		recipient, err := tx.Users().GetUserByEmail(ctx, email)
		if err != nil {
			return mapLookup(err, ErrRecipientNotFound)
		}

		// 3. No self-invites.
		if recipient.ID == actor.ID {
			return domain.ErrSelfInvite
		}

		// 4. Recipient must not already hold a role, judged by the ledger.
		if note.ResolveRole(recipient.ID) != domain.RoleNone {
			log.Warn("invite for existing collaborator", slog.String("recipient_id", recipient.ID))
			return ErrAlreadyCollaborator
		}

		// 5. At most one pending invite per note and recipient.
		pending, err := tx.Invites().FindInvites(ctx, store.InviteFilter{
			NoteID:      note.ID,
			RecipientID: recipient.ID,
			Statuses:    []domain.InviteStatus{domain.InviteStatusPending},
		})
		if err != nil {
			return err
		}
		if len(pending) > 0 {
			return ErrDuplicatePending
		}

		// 6. Create the pending invite.
		inv = domain.InviteDetails{
			Invite: domain.Invite{
				ID:          idx.New().String(),
				SenderID:    actor.ID,
				RecipientID: recipient.ID,
				NoteID:      note.ID,
				Role:        role,
				Status:      domain.InviteStatusPending,
				SentAt:      s.now(),
			},
			Sender:    actor.Summary(),
			Recipient: recipient.Summary(),
			NoteTitle: note.Title,
		}
		if err := tx.Invites().CreateInvite(ctx, inv.Invite); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicatePending
			}
			return err
		}
		return nil
	})
	if err != nil {
		logFailure(log, "create invite", err)
		return domain.InviteDetails{}, err
	}

	log.Info("invite created",
		slog.String("invite_id", inv.ID),
		slog.String("recipient_id", inv.RecipientID),
		slog.String("role", inv.Role.String()),
	)
	s.notify(ctx, notify.InviteCreatedEvent(inv))
	return inv, nil
}

// AcceptInvite moves a pending invite to accepted and adds the recipient to
// the note's ledger with the invited role, atomically.
func (s *CollabService) AcceptInvite(
	ctx context.Context,
	inviteID, actorID string,
) (inv domain.Invite, err error) {
	defer func(start time.Time) { s.Metrics.ObserveCollab("accept_invite", start, err) }(time.Now())
	log := slogx.FromContext(ctx).With(slog.String("invite_id", inviteID), slog.String("actor_id", actorID))

	var noteTitle string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Resolve invite.
		var err error
		inv, err = tx.Invites().GetInvite(ctx, inviteID)
		if err != nil {
			return mapLookup(err, ErrInviteNotFound)
		}

		// 2. Resolve the target note. An orphaned invite is left as is.
		note, err := tx.Notes().GetNote(ctx, inv.NoteID)
		if err != nil {
			return mapLookup(err, ErrNoteNotFound)
		}
		noteTitle = note.Title

		// 3. Only the recipient may accept.
		if actorID != inv.RecipientID || actorID == inv.SenderID {
			return ErrNotRecipient
		}

		// 4. Must still be pending.
		from := inv.Status
		if err := inv.Accept(s.now()); err != nil {
			return err
		}

		// 5. Actor must not already be on the ledger.
		if note.HasEntry(actorID) || note.OwnerID == actorID {
			return ErrAlreadyCollaborator
		}

		// 6. Compare-and-swap pending -> accepted.
		if err := tx.Invites().TransitionInvite(ctx, inv, from); err != nil {
			if errors.Is(err, store.ErrStale) {
				return ErrConcurrentUpdate
			}
			return err
		}

		// 7. Add the ledger entry.
		if err := note.AddEntry(actorID, inv.Role); err != nil {
			return err
		}
		return tx.Notes().SavePermissions(ctx, note)
	})
	if err != nil {
		logFailure(log, "accept invite", err)
		return domain.Invite{}, err
	}

	log.Info("invite accepted", slog.String("note_id", inv.NoteID), slog.String("role", inv.Role.String()))
	s.notify(ctx, notify.Event{
		Type:        notify.EventInviteAccepted,
		NoteID:      inv.NoteID,
		NoteTitle:   noteTitle,
		InviteID:    inv.ID,
		ActorID:     actorID,
		RecipientID: inv.SenderID,
		Role:        string(inv.Role),
		At:          *inv.AcceptedAt,
	})
	return inv, nil
}

// RevokeCollaborator removes collaboratorID from the note and cancels the
// invite that granted the access, atomically.
func (s *CollabService) RevokeCollaborator(
	ctx context.Context,
	actorID, noteID, collaboratorID string,
) (err error) {
	defer func(start time.Time) { s.Metrics.ObserveCollab("revoke_collaborator", start, err) }(time.Now())
	log := slogx.FromContext(ctx).With(
		slog.String("note_id", noteID),
		slog.String("actor_id", actorID),
		slog.String("collaborator_id", collaboratorID),
	)

	var inv domain.Invite
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Resolve note.
		note, err := tx.Notes().GetNote(ctx, noteID)
		if err != nil {
			return mapLookup(err, ErrNoteNotFound)
		}

		// 2. Only the owner revokes.
		if note.OwnerID != actorID {
			return ErrNotOwner
		}

		// 3. The collaborator must be on the ledger.
		if !note.HasEntry(collaboratorID) {
			return ErrCollaboratorNotFound
		}

		// 4. Find the grant this revocation closes, most recent first.
		matches, err := tx.Invites().FindInvites(ctx, store.InviteFilter{
			NoteID:      noteID,
			SenderID:    actorID,
			RecipientID: collaboratorID,
			Statuses:    []domain.InviteStatus{domain.InviteStatusPending, domain.InviteStatusAccepted},
		})
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return ErrNoMatchingInvite
		}
		inv = matches[0]

		// 5. Compare-and-swap the invite to cancelled.
		from := inv.Status
		if err := inv.Cancel(); err != nil {
			return err
		}
		if err := tx.Invites().TransitionInvite(ctx, inv, from); err != nil {
			if errors.Is(err, store.ErrStale) {
				return ErrConcurrentUpdate
			}
			return err
		}

		// 6. Remove the ledger entry.
		if err := note.RemoveEntry(collaboratorID); err != nil {
			return err
		}
		return tx.Notes().SavePermissions(ctx, note)
	})
	if err != nil {
		logFailure(log, "revoke collaborator", err)
		return err
	}

	log.Info("collaborator revoked", slog.String("invite_id", inv.ID))
	s.notify(ctx, notify.Event{
		Type:        notify.EventCollaboratorRevoked,
		NoteID:      noteID,
		InviteID:    inv.ID,
		ActorID:     actorID,
		RecipientID: collaboratorID,
		At:          s.now(),
	})
	return nil
}

// ChangeRole overwrites the role of an existing collaborator.
func (s *CollabService) ChangeRole(
	ctx context.Context,
	actorID, noteID, collaboratorID string,
	role domain.Role,
) (err error) {
	defer func(start time.Time) { s.Metrics.ObserveCollab("change_role", start, err) }(time.Now())
	log := slogx.FromContext(ctx).With(
		slog.String("note_id", noteID),
		slog.String("actor_id", actorID),
		slog.String("collaborator_id", collaboratorID),
	)

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Resolve note.
		note, err := tx.Notes().GetNote(ctx, noteID)
		if err != nil {
			return mapLookup(err, ErrNoteNotFound)
		}

		// 2. Only the owner changes roles.
		if note.OwnerID != actorID {
			return ErrNotOwner
		}

		// 3. The owner's implicit role is fixed.
		if collaboratorID == note.OwnerID {
			return ErrOwnerTarget
		}

		// 4. The collaborator must be on the ledger.
		if !note.HasEntry(collaboratorID) {
			return ErrCollaboratorNotFound
		}

		// 5. and 6. SetRole validates the role and overwrites the entry.
		if err := note.SetRole(collaboratorID, role); err != nil {
			return err
		}
		return tx.Notes().SavePermissions(ctx, note)
	})
	if err != nil {
		logFailure(log, "change role", err)
		return err
	}

	log.Info("collaborator role changed", slog.String("role", role.String()))
	s.notify(ctx, notify.Event{
		Type:        notify.EventRoleChanged,
		NoteID:      noteID,
		ActorID:     actorID,
		RecipientID: collaboratorID,
		Role:        string(role),
		At:          s.now(),
	})
	return nil
}

// ListPendingInvites returns the note's pending invites with sender and
// recipient display info. Owner only.
func (s *CollabService) ListPendingInvites(
	ctx context.Context,
	noteID, actorID string,
) (out []domain.InviteDetails, err error) {
	defer func(start time.Time) { s.Metrics.ObserveCollab("list_pending_invites", start, err) }(time.Now())

	note, err := s.Store.Notes().GetNote(ctx, noteID)
	if err != nil {
		return nil, mapLookup(err, ErrNoteNotFound)
	}
	if note.OwnerID != actorID {
		return nil, ErrNotOwner
	}

	invites, err := s.Store.Invites().FindInvites(ctx, store.InviteFilter{
		NoteID:   noteID,
		Statuses: []domain.InviteStatus{domain.InviteStatusPending},
	})
	if err != nil {
		return nil, err
	}
	return s.enrichInvites(ctx, invites, map[string]string{note.ID: note.Title})
}

// ListCollaborators returns the owner followed by the ledger entries in
// insertion order. Any role on the note may read it.
func (s *CollabService) ListCollaborators(
	ctx context.Context,
	noteID, actorID string,
) (out []domain.CollaboratorDetails, err error) {
	defer func(start time.Time) { s.Metrics.ObserveCollab("list_collaborators", start, err) }(time.Now())

	note, err := s.Store.Notes().GetNote(ctx, noteID)
	if err != nil {
		return nil, mapLookup(err, ErrNoteNotFound)
	}
	if !note.ResolveRole(actorID).CanRead() {
		return nil, ErrNotCollaborator
	}

	collabs := note.Collaborators()
	ids := make([]string, len(collabs))
	for i, c := range collabs {
		ids[i] = c.UserID
	}
	users, err := s.userSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	out = make([]domain.CollaboratorDetails, len(collabs))
	for i, c := range collabs {
		out[i] = domain.CollaboratorDetails{Collaborator: c, User: users[c.UserID]}
	}
	return out, nil
}

// ListReceivedInvites returns the actor's pending incoming invites. Invites
// whose note no longer exists are skipped.
func (s *CollabService) ListReceivedInvites(
	ctx context.Context,
	actorID string,
) (out []domain.InviteDetails, err error) {
	defer func(start time.Time) { s.Metrics.ObserveCollab("list_received_invites", start, err) }(time.Now())

	invites, err := s.Store.Invites().FindInvites(ctx, store.InviteFilter{
		RecipientID: actorID,
		Statuses:    []domain.InviteStatus{domain.InviteStatusPending},
	})
	if err != nil {
		return nil, err
	}

	titles := make(map[string]string)
	live := invites[:0]
	for _, inv := range invites {
		if _, seen := titles[inv.NoteID]; !seen {
			note, err := s.Store.Notes().GetNote(ctx, inv.NoteID)
			switch {
			case errors.Is(err, store.ErrNotFound):
				continue
			case err != nil:
				return nil, err
			}
			titles[note.ID] = note.Title
		}
		live = append(live, inv)
	}
	return s.enrichInvites(ctx, live, titles)
}

func (s *CollabService) enrichInvites(
	ctx context.Context,
	invites []domain.Invite,
	titles map[string]string,
) ([]domain.InviteDetails, error) {
	ids := make([]string, 0, len(invites)*2)
	for _, inv := range invites {
		ids = append(ids, inv.SenderID, inv.RecipientID)
	}
	users, err := s.userSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.InviteDetails, len(invites))
	for i, inv := range invites {
		out[i] = domain.InviteDetails{
			Invite:    inv,
			Sender:    users[inv.SenderID],
			Recipient: users[inv.RecipientID],
			NoteTitle: titles[inv.NoteID],
		}
	}
	return out, nil
}

// userSummaries resolves display info for ids. Unknown users keep just their ID.
func (s *CollabService) userSummaries(ctx context.Context, ids []string) (map[string]domain.UserSummary, error) {
	uniq := make([]string, 0, len(ids))
	out := make(map[string]domain.UserSummary, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			out[id] = domain.UserSummary{ID: id}
			uniq = append(uniq, id)
		}
	}

	users, err := s.Store.Users().ListUsersByIDs(ctx, uniq)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u.Summary()
	}
	return out, nil
}

// mapLookup turns store.ErrNotFound into the given business error.
func mapLookup(err, notFound error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return err
}

// logFailure logs business rule rejections at warn and everything else at error.
func logFailure(log *slog.Logger, op string, err error) {
	if domain.KindOf(err) != nil {
		log.Warn(op+" rejected", slog.String("reason", err.Error()))
		return
	}
	log.Error(op+" failed", slogx.Err(err))
}
