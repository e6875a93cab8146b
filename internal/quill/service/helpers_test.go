package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/quill/internal/quill/domain"
	"github.com/aussiebroadwan/quill/internal/quill/store/drivers/sqlite"
	"github.com/aussiebroadwan/quill/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.ApplyMigrations())
	return store
}

func seedUser(t *testing.T, store *sqlite.Store, name, email string) domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: "argon2:unused",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, store.Users().CreateUser(context.Background(), u))
	return u
}

func seedNote(t *testing.T, store *sqlite.Store, ownerID, title string) domain.Note {
	t.Helper()

	now := time.Now().UTC()
	n := domain.Note{
		ID:        idx.New().String(),
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.Notes().CreateNote(context.Background(), n))
	return n
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
