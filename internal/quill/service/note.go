package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/quill/internal/quill/domain"
	"github.com/aussiebroadwan/quill/internal/quill/store"
	"github.com/aussiebroadwan/quill/pkg/idx"
	"github.com/aussiebroadwan/quill/pkg/slogx"
)

var (
	ErrNoteReadOnly   = domain.Forbidden("you have read-only access to this note")
	ErrNoteInTrash    = domain.Conflict("note is in the trash, restore it first")
	ErrNoteNotTrashed = domain.Conflict("note is not in the trash")
)

// NoteUpdate carries the fields a caller wants to change. Nil fields are left
// alone.
type NoteUpdate struct {
	Title    *string
	Content  *string
	Favorite *bool
}

type NoteService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *NoteService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create stores a new note owned by ownerID with an empty ledger.
func (s *NoteService) Create(ctx context.Context, ownerID, title, content string) (domain.Note, error) {
	title, err := domain.NormalizeNoteTitle(title)
	if err != nil {
		return domain.Note{}, err
	}

	now := s.now()
	n := domain.Note{
		ID:        idx.New().String(),
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Notes().CreateNote(ctx, n); err != nil {
		slogx.FromContext(ctx).Error("failed to create note", slogx.Err(err))
		return domain.Note{}, err
	}

	slogx.FromContext(ctx).Debug("note created", slog.String("note_id", n.ID))
	return n, nil
}

// List returns the live notes actorID owns or collaborates on.
func (s *NoteService) List(ctx context.Context, actorID string) ([]domain.NoteView, error) {
	notes, err := s.Store.Notes().ListNotesForUser(ctx, actorID, false)
	if err != nil {
		return nil, err
	}
	out := make([]domain.NoteView, len(notes))
	for i := range notes {
		out[i] = domain.NoteView{Note: notes[i], Role: notes[i].ResolveRole(actorID)}
	}
	return out, nil
}

// ListTrash returns the trashed notes actorID owns.
func (s *NoteService) ListTrash(ctx context.Context, actorID string) ([]domain.NoteView, error) {
	notes, err := s.Store.Notes().ListNotesForUser(ctx, actorID, true)
	if err != nil {
		return nil, err
	}
	out := make([]domain.NoteView, 0, len(notes))
	for _, n := range notes {
		if n.OwnerID == actorID {
			out = append(out, domain.NoteView{Note: n, Role: domain.RoleOwner})
		}
	}
	return out, nil
}

// Get returns the note if actorID holds any role on it. Non-members see
// NotFound so note IDs do not leak.
func (s *NoteService) Get(ctx context.Context, actorID, noteID string) (domain.NoteView, error) {
	n, role, err := s.load(ctx, s.Store, actorID, noteID)
	if err != nil {
		return domain.NoteView{}, err
	}
	return domain.NoteView{Note: n, Role: role}, nil
}

// Update applies u. Owners and editors may change title and content; only
// the owner may toggle favorite.
func (s *NoteService) Update(ctx context.Context, actorID, noteID string, u NoteUpdate) (domain.NoteView, error) {
	var view domain.NoteView
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, role, err := s.load(ctx, tx, actorID, noteID)
		if err != nil {
			return err
		}

		if !role.CanWrite() {
			return ErrNoteReadOnly
		}
		if u.Favorite != nil && role != domain.RoleOwner {
			return ErrNotOwner
		}
		if n.Trashed {
			return ErrNoteInTrash
		}

		if u.Title != nil {
			title, err := domain.NormalizeNoteTitle(*u.Title)
			if err != nil {
				return err
			}
			n.Title = title
		}
		if u.Content != nil {
			n.Content = *u.Content
		}
		if u.Favorite != nil {
			n.Favorite = *u.Favorite
		}
		n.UpdatedAt = s.now()

		if err := tx.Notes().UpdateNote(ctx, n); err != nil {
			return err
		}
		view = domain.NoteView{Note: n, Role: role}
		return nil
	})
	if err != nil {
		return domain.NoteView{}, err
	}
	return view, nil
}

// Trash moves the note to the trash. Owner only.
func (s *NoteService) Trash(ctx context.Context, actorID, noteID string) error {
	return s.ownerMutation(ctx, actorID, noteID, func(n *domain.Note) error {
		if n.Trashed {
			return ErrNoteInTrash
		}
		at := s.now()
		n.Trashed = true
		n.TrashedAt = &at
		n.UpdatedAt = at
		return nil
	})
}

// Restore brings a trashed note back. Owner only.
func (s *NoteService) Restore(ctx context.Context, actorID, noteID string) error {
	return s.ownerMutation(ctx, actorID, noteID, func(n *domain.Note) error {
		if !n.Trashed {
			return ErrNoteNotTrashed
		}
		n.Trashed = false
		n.TrashedAt = nil
		n.UpdatedAt = s.now()
		return nil
	})
}

// Delete removes the note and its ledger permanently. Owner only. Invites
// pointing at it are left as they are.
func (s *NoteService) Delete(ctx context.Context, actorID, noteID string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, role, err := s.load(ctx, tx, actorID, noteID)
		if err != nil {
			return err
		}
		if role != domain.RoleOwner {
			return ErrNotOwner
		}
		return tx.Notes().DeleteNote(ctx, noteID)
	})
	if err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("note deleted", slog.String("note_id", noteID))
	return nil
}

func (s *NoteService) ownerMutation(
	ctx context.Context,
	actorID, noteID string,
	mutate func(n *domain.Note) error,
) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, role, err := s.load(ctx, tx, actorID, noteID)
		if err != nil {
			return err
		}
		if role != domain.RoleOwner {
			return ErrNotOwner
		}
		if err := mutate(&n); err != nil {
			return err
		}
		return tx.Notes().UpdateNote(ctx, n)
	})
}

// load fetches the note through st and resolves the actor's role.
func (s *NoteService) load(
	ctx context.Context,
	st store.Store,
	actorID, noteID string,
) (domain.Note, domain.Role, error) {
	n, err := st.Notes().GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Note{}, domain.RoleNone, ErrNoteNotFound
		}
		return domain.Note{}, domain.RoleNone, err
	}
	role := n.ResolveRole(actorID)
	if role == domain.RoleNone {
		return domain.Note{}, domain.RoleNone, ErrNoteNotFound
	}
	return n, role, nil
}
