package quill_test

import (
	"sync"
	"testing"

	"github.com/aussiebroadwan/quill/pkg/quillsdk"
	"github.com/stretchr/testify/require"
)

// TestInviteRoundTrip walks an invite from creation to revocation:
// 1. Owner creates a note and invites the recipient as editor
// 2. Recipient accepts and can edit the note
// 3. Owner demotes them to viewer, then revokes access
func TestInviteRoundTrip(t *testing.T) {
	client := setupQuillContainer(t, nil)
	ctx := t.Context()

	owner := registerUser(t, client, "Olive", "olive@example.com")
	rui := registerUser(t, client, "Rui", "rui@example.com")

	note, err := owner.CreateNote(ctx, "Trip", "Pack the tent")
	require.NoError(t, err)

	inv, err := owner.CreateInvite(ctx, note.ID, "rui@example.com", "editor")
	require.NoError(t, err)
	require.Equal(t, "pending", inv.Status)

	received, err := rui.ListReceivedInvites(ctx)
	require.NoError(t, err)
	require.Len(t, received, 1)
	require.Equal(t, "Trip", received[0].NoteTitle)
	require.Equal(t, "Olive", received[0].Sender.Name)

	accepted, err := rui.AcceptInvite(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, "accepted", accepted.Status)

	_, err = rui.AcceptInvite(ctx, inv.ID)
	requireAPIError(t, err, quillsdk.ErrorCodeConflict)

	collaborators, err := owner.ListCollaborators(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, collaborators, 2)
	require.Equal(t, owner.User().ID, collaborators[0].User.ID)
	require.Equal(t, "owner", collaborators[0].Role)
	require.Equal(t, rui.User().ID, collaborators[1].User.ID)
	require.Equal(t, "editor", collaborators[1].Role)

	content := "Pack the tent and the stove"
	updated, err := rui.UpdateNote(ctx, note.ID, quillsdk.UpdateNoteRequest{Content: &content})
	require.NoError(t, err)
	require.Equal(t, content, updated.Content)

	require.NoError(t, owner.ChangeRole(ctx, note.ID, rui.User().ID, "viewer"))
	_, err = rui.UpdateNote(ctx, note.ID, quillsdk.UpdateNoteRequest{Content: &content})
	requireAPIError(t, err, quillsdk.ErrorCodeForbidden)

	require.NoError(t, owner.RevokeCollaborator(ctx, note.ID, rui.User().ID))

	collaborators, err = owner.ListCollaborators(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, collaborators, 1)
	require.Equal(t, "owner", collaborators[0].Role)

	_, err = rui.GetNote(ctx, note.ID)
	requireAPIError(t, err, quillsdk.ErrorCodeNotFound)

	// A fresh invite is possible once access is revoked.
	_, err = owner.CreateInvite(ctx, note.ID, "rui@example.com", "viewer")
	require.NoError(t, err)
}

func TestOwnerOnlyOperations(t *testing.T) {
	client := setupQuillContainer(t, nil)
	ctx := t.Context()

	owner := registerUser(t, client, "Olive", "olive@example.com")
	rui := registerUser(t, client, "Rui", "rui@example.com")
	registerUser(t, client, "Nia", "nia@example.com")

	note, err := owner.CreateNote(ctx, "Budget", "")
	require.NoError(t, err)
	inv, err := owner.CreateInvite(ctx, note.ID, "rui@example.com", "viewer")
	require.NoError(t, err)
	_, err = rui.AcceptInvite(ctx, inv.ID)
	require.NoError(t, err)

	_, err = rui.CreateInvite(ctx, note.ID, "nia@example.com", "viewer")
	requireAPIError(t, err, quillsdk.ErrorCodeForbidden)

	_, err = rui.ListPendingInvites(ctx, note.ID)
	requireAPIError(t, err, quillsdk.ErrorCodeForbidden)

	err = rui.ChangeRole(ctx, note.ID, rui.User().ID, "editor")
	requireAPIError(t, err, quillsdk.ErrorCodeForbidden)

	err = rui.RevokeCollaborator(ctx, note.ID, rui.User().ID)
	requireAPIError(t, err, quillsdk.ErrorCodeForbidden)

	_, err = owner.CreateInvite(ctx, note.ID, "olive@example.com", "viewer")
	requireAPIError(t, err, quillsdk.ErrorCodeForbidden)
}

func TestConcurrentAccept(t *testing.T) {
	client := setupQuillContainer(t, nil)
	ctx := t.Context()

	owner := registerUser(t, client, "Olive", "olive@example.com")
	rui := registerUser(t, client, "Rui", "rui@example.com")

	note, err := owner.CreateNote(ctx, "Race", "")
	require.NoError(t, err)
	inv, err := owner.CreateInvite(ctx, note.ID, "rui@example.com", "editor")
	require.NoError(t, err)

	const attempts = 2
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = rui.AcceptInvite(ctx, inv.ID)
		}()
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case quillsdk.IsCode(err, quillsdk.ErrorCodeConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, conflicts)

	collaborators, err := owner.ListCollaborators(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, collaborators, 2)
}
