package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/quill/internal/quill/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrStale is returned by conditional updates when the row is no longer in
	// the expected state.
	ErrStale = errors.New("store: stale state")
)

// Store is the root data access interface. Concrete drivers implement this and
// expose sub-repositories so that a transaction can hand out the same repos
// scoped to itself.
type Store interface {
	Users() Users
	Notes() Notes
	Invites() Invites
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalised address.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsersByIDs returns the users that exist among ids, in no particular order.
	ListUsersByIDs(ctx context.Context, ids []string) ([]domain.User, error)

	// CreateUser inserts a new user. Returns ErrAlreadyExists on a duplicate email.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateName mutates the display name and bumps updated_at.
	UpdateName(ctx context.Context, userID, name string) error
}

type Notes interface {
	// GetNote returns the note with its permission ledger in insertion order.
	GetNote(ctx context.Context, id string) (domain.Note, error)

	// ListNotesForUser returns notes the user owns or holds a ledger entry on,
	// filtered by trashed state, most recently updated first.
	ListNotesForUser(ctx context.Context, userID string, trashed bool) ([]domain.Note, error)

	CreateNote(ctx context.Context, n domain.Note) error

	// UpdateNote persists title, content, favorite and trash fields.
	UpdateNote(ctx context.Context, n domain.Note) error

	// SavePermissions replaces the stored ledger with n.Permissions, keeping
	// their order.
	SavePermissions(ctx context.Context, n domain.Note) error

	// DeleteNote removes the note and its ledger.
	DeleteNote(ctx context.Context, id string) error

	// PurgeTrashedBefore deletes notes trashed before cutoff and returns how
	// many were removed.
	PurgeTrashedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// InviteFilter narrows FindInvites. Zero-valued fields are ignored.
type InviteFilter struct {
	NoteID      string
	SenderID    string
	RecipientID string
	Statuses    []domain.InviteStatus
}

type Invites interface {
	// CreateInvite inserts a pending invite. Returns ErrAlreadyExists when a
	// pending invite for the same note and recipient already exists.
	CreateInvite(ctx context.Context, inv domain.Invite) error

	GetInvite(ctx context.Context, id string) (domain.Invite, error)

	// FindInvites returns matching invites, most recent first.
	FindInvites(ctx context.Context, f InviteFilter) ([]domain.Invite, error)

	// TransitionInvite moves inv from the status `from` to inv.Status, writing
	// inv.AcceptedAt. Returns ErrStale when the stored status is not `from`.
	TransitionInvite(ctx context.Context, inv domain.Invite, from domain.InviteStatus) error
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked. Returns ErrStale if it was already revoked.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// DeleteExpiredRefreshTokens removes expired and revoked tokens.
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)
}
