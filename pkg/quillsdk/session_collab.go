package quillsdk

import (
	"context"
	"net/http"
	"net/url"
)

func collabNotePath(noteID string) string {
	return "/v1/collab/notes/" + url.PathEscape(noteID)
}

// CreateInvite invites the user registered under email to noteID. An empty
// role means viewer.
func (s *Session) CreateInvite(ctx context.Context, noteID, email, role string) (*InviteResponse, error) {
	var out InviteResponse
	req := CreateInviteRequest{NoteID: noteID, Email: email, Role: role}
	if err := s.doJSON(ctx, http.MethodPost, "/v1/collab/invites", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListReceivedInvites returns the caller's pending incoming invites.
func (s *Session) ListReceivedInvites(ctx context.Context) ([]InviteResponse, error) {
	var out InviteListResponse
	if err := s.doJSON(ctx, http.MethodGet, "/v1/collab/invites", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Invites, nil
}

func (s *Session) AcceptInvite(ctx context.Context, inviteID string) (*InviteResponse, error) {
	var out InviteResponse
	path := "/v1/collab/invites/" + url.PathEscape(inviteID) + "/accept"
	if err := s.doJSON(ctx, http.MethodPost, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPendingInvites returns a note's pending invites. Owner only.
func (s *Session) ListPendingInvites(ctx context.Context, noteID string) ([]InviteResponse, error) {
	var out InviteListResponse
	if err := s.doJSON(ctx, http.MethodGet, collabNotePath(noteID)+"/invites", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Invites, nil
}

// ListCollaborators returns the owner followed by every collaborator.
func (s *Session) ListCollaborators(ctx context.Context, noteID string) ([]CollaboratorResponse, error) {
	var out CollaboratorListResponse
	path := collabNotePath(noteID) + "/collaborators"
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Collaborators, nil
}

func (s *Session) ChangeRole(ctx context.Context, noteID, userID, role string) error {
	path := collabNotePath(noteID) + "/collaborators/" + url.PathEscape(userID)
	return s.doJSON(ctx, http.MethodPatch, path, ChangeRoleRequest{Role: role}, nil, http.StatusNoContent)
}

func (s *Session) RevokeCollaborator(ctx context.Context, noteID, userID string) error {
	path := collabNotePath(noteID) + "/collaborators/" + url.PathEscape(userID)
	return s.doJSON(ctx, http.MethodDelete, path, nil, nil, http.StatusNoContent)
}
