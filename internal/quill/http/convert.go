package http

import (
	"github.com/aussiebroadwan/quill/internal/quill/domain"
	"github.com/aussiebroadwan/quill/pkg/quillsdk"
)

func toUserResponse(u domain.User) quillsdk.UserResponse {
	return quillsdk.UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

func toUserSummary(u domain.UserSummary) quillsdk.UserSummary {
	return quillsdk.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toNoteResponse(n domain.NoteView) quillsdk.NoteResponse {
	return quillsdk.NoteResponse{
		ID:        n.ID,
		OwnerID:   n.OwnerID,
		Title:     n.Title,
		Content:   n.Content,
		Favorite:  n.Favorite,
		Trashed:   n.Trashed,
		TrashedAt: n.TrashedAt,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		Role:      string(n.Role),
	}
}

func toNoteList(notes []domain.NoteView) quillsdk.NoteListResponse {
	out := quillsdk.NoteListResponse{Notes: make([]quillsdk.NoteResponse, len(notes))}
	for i, n := range notes {
		out.Notes[i] = toNoteResponse(n)
	}
	return out
}

func toInviteResponse(inv domain.InviteDetails) quillsdk.InviteResponse {
	return quillsdk.InviteResponse{
		ID:         inv.ID,
		NoteID:     inv.NoteID,
		NoteTitle:  inv.NoteTitle,
		Sender:     toUserSummary(inv.Sender),
		Recipient:  toUserSummary(inv.Recipient),
		Role:       string(inv.Role),
		Status:     string(inv.Status),
		SentAt:     inv.SentAt,
		AcceptedAt: inv.AcceptedAt,
	}
}

func toInviteList(invites []domain.InviteDetails) quillsdk.InviteListResponse {
	out := quillsdk.InviteListResponse{Invites: make([]quillsdk.InviteResponse, len(invites))}
	for i, inv := range invites {
		out.Invites[i] = toInviteResponse(inv)
	}
	return out
}

func toCollaboratorList(collabs []domain.CollaboratorDetails) quillsdk.CollaboratorListResponse {
	out := quillsdk.CollaboratorListResponse{
		Collaborators: make([]quillsdk.CollaboratorResponse, len(collabs)),
	}
	for i, c := range collabs {
		out.Collaborators[i] = quillsdk.CollaboratorResponse{
			User: toUserSummary(c.User),
			Role: string(c.Role),
		}
	}
	return out
}
