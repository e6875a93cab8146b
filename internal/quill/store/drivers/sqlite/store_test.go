package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/quill/internal/quill/domain"
	"github.com/aussiebroadwan/quill/internal/quill/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func mustUser(t *testing.T, s *Store, id, email string) domain.User {
	t.Helper()
	now := time.Now()
	u := domain.User{ID: id, Email: email, Name: id, PasswordHash: "x", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestMigrationsApplyOnce(t *testing.T) {
	s := newTestStore(t)

	v, dirty, err := s.MigrationVersion()
	require.NoError(t, err)
	require.False(t, dirty)
	require.EqualValues(t, 1, v)

	// Re-running is a no-op.
	require.NoError(t, s.ApplyMigrations())
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mustUser(t, s, "u1", "a@x.com")
	mustUser(t, s, "u2", "b@x.com")

	err := s.Users().CreateUser(ctx, domain.User{ID: "u3", Email: "a@x.com", Name: "dup"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	got, err := s.Users().GetUserByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	require.Equal(t, "u2", got.ID)

	_, err = s.Users().GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	list, err := s.Users().ListUsersByIDs(ctx, []string{"u1", "u2", "ghost"})
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, s.Users().UpdateName(ctx, "u1", "Alice"))
	require.ErrorIs(t, s.Users().UpdateName(ctx, "ghost", "Nobody"), store.ErrNotFound)
}

func TestNotesKeepLedgerOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, id := range []string{"o", "c", "a", "b"} {
		mustUser(t, s, id, id+"@x.com")
	}

	n := domain.Note{ID: "n1", OwnerID: "o", Title: "T", CreatedAt: time.Now()}
	require.NoError(t, s.Notes().CreateNote(ctx, n))

	n.Permissions = []domain.PermissionEntry{
		{UserID: "c", Role: domain.RoleViewer},
		{UserID: "a", Role: domain.RoleEditor},
		{UserID: "b", Role: domain.RoleViewer},
	}
	require.NoError(t, s.Notes().SavePermissions(ctx, n))

	got, err := s.Notes().GetNote(ctx, "n1")
	require.NoError(t, err)
	require.Equal(t, n.Permissions, got.Permissions)

	// Shared notes show up for collaborators.
	shared, err := s.Notes().ListNotesForUser(ctx, "a", false)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	require.Equal(t, n.Permissions, shared[0].Permissions)

	// Duplicate entries violate the primary key.
	bad := got
	bad.Permissions = append(bad.Permissions, domain.PermissionEntry{UserID: "a", Role: domain.RoleViewer})
	require.Error(t, s.Notes().SavePermissions(ctx, bad))

	require.NoError(t, s.Notes().DeleteNote(ctx, "n1"))
	_, err = s.Notes().GetNote(ctx, "n1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestInvitesOnePendingPerRecipient(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	mustUser(t, s, "o", "o@x.com")
	mustUser(t, s, "r", "r@x.com")

	now := time.Now()
	inv := domain.Invite{
		ID: "i1", SenderID: "o", RecipientID: "r", NoteID: "n1",
		Role: domain.RoleViewer, Status: domain.InviteStatusPending, SentAt: now,
	}
	require.NoError(t, s.Invites().CreateInvite(ctx, inv))

	dup := inv
	dup.ID = "i2"
	require.ErrorIs(t, s.Invites().CreateInvite(ctx, dup), store.ErrAlreadyExists)

	// Once accepted, a new pending invite is storable again.
	accepted := inv
	require.NoError(t, accepted.Accept(now))
	require.NoError(t, s.Invites().TransitionInvite(ctx, accepted, domain.InviteStatusPending))
	require.ErrorIs(t,
		s.Invites().TransitionInvite(ctx, accepted, domain.InviteStatusPending),
		store.ErrStale,
	)

	dup.SentAt = now.Add(time.Millisecond)
	require.NoError(t, s.Invites().CreateInvite(ctx, dup))

	found, err := s.Invites().FindInvites(ctx, store.InviteFilter{NoteID: "n1", RecipientID: "r"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, "i2", found[0].ID)
	require.Equal(t, domain.InviteStatusAccepted, found[1].Status)
	require.NotNil(t, found[1].AcceptedAt)

	pending, err := s.Invites().FindInvites(ctx, store.InviteFilter{
		Statuses: []domain.InviteStatus{domain.InviteStatusPending},
	})
	require.NoError(t, err)
	require.Len(t, pending, 1)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		now := time.Now()
		require.NoError(t, tx.Users().CreateUser(ctx, domain.User{
			ID: "u1", Email: "a@x.com", Name: "A", PasswordHash: "x", CreatedAt: now, UpdatedAt: now,
		}))
		return store.ErrStale
	})
	require.ErrorIs(t, err, store.ErrStale)

	_, err = s.Users().GetUserByID(ctx, "u1")
	require.ErrorIs(t, err, store.ErrNotFound)
}
