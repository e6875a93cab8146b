/*
Package quillsdk is a Go client for the quill notes service.

A Client covers the public endpoints and opens Sessions:

	client := quillsdk.NewClient("http://localhost:8080")
	session, err := client.Login(ctx, "o@example.com", "correct horse")

A Session carries the access and refresh tokens and refreshes the access
token shortly before it expires:

	note, err := session.CreateNote(ctx, "Plans", "")
	invite, err := session.CreateInvite(ctx, note.ID, "r@example.com", "editor")

The recipient then accepts with their own session:

	_, err = recipient.AcceptInvite(ctx, invite.ID)

Non 2xx responses are returned as *APIError. Use IsCode to branch on the
error kind:

	if quillsdk.IsCode(err, quillsdk.ErrorCodeConflict) { ... }
*/
package quillsdk
