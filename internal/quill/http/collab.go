package http

import (
	"net/http"

	"github.com/aussiebroadwan/quill/internal/quill/domain"
	"github.com/aussiebroadwan/quill/internal/quill/service"
	"github.com/aussiebroadwan/quill/pkg/httpx"
	"github.com/aussiebroadwan/quill/pkg/idx"
	"github.com/aussiebroadwan/quill/pkg/quillsdk"
)

// CollabHandler exposes the invite lifecycle and the permission ledger.
// Every identifier and role is validated here before the service sees it.
type CollabHandler struct {
	CollabService *service.CollabService
}

// HandleCreateInvite godoc
//
//	@Summary		Invite a collaborator
//	@Description	Send a pending invite for a note to the user registered under email. Owner only.
//	@Tags			Collaboration
//	@Accept			json
//	@Produce		json
//	@Param			request	body		quillsdk.CreateInviteRequest	true	"Invite"
//	@Success		201		{object}	quillsdk.InviteResponse
//	@Failure		400		{object}	quillsdk.ErrorResponse
//	@Failure		403		{object}	quillsdk.ErrorResponse	"not the owner, or inviting yourself"
//	@Failure		404		{object}	quillsdk.ErrorResponse	"note or invitee not found"
//	@Failure		409		{object}	quillsdk.ErrorResponse	"already a collaborator or already invited"
//	@Security		BearerAuth
//	@Router			/v1/collab/invites [post].
func (h *CollabHandler) HandleCreateInvite(w http.ResponseWriter, r *http.Request) {
	var req quillsdk.CreateInviteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !idx.Valid(req.NoteID) {
		writeServiceError(w, r, domain.Validation("note_id is not a valid identifier"))
		return
	}
	role, err := domain.ParseRoleOrDefault(req.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	inv, err := h.CollabService.CreateInvite(r.Context(), actor(r), req.Email, req.NoteID, role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toInviteResponse(inv))
}

// HandleListReceived godoc
//
//	@Summary	Pending invites for me
//	@Tags		Collaboration
//	@Produce	json
//	@Success	200	{object}	quillsdk.InviteListResponse
//	@Security	BearerAuth
//	@Router		/v1/collab/invites [get].
func (h *CollabHandler) HandleListReceived(w http.ResponseWriter, r *http.Request) {
	invites, err := h.CollabService.ListReceivedInvites(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toInviteList(invites))
}

// HandleAccept godoc
//
//	@Summary		Accept an invite
//	@Description	Only the invitee can accept, and only while the invite is pending.
//	@Tags			Collaboration
//	@Produce		json
//	@Param			inviteId	path		string	true	"Invite ID"
//	@Success		200			{object}	quillsdk.InviteResponse
//	@Failure		403			{object}	quillsdk.ErrorResponse
//	@Failure		404			{object}	quillsdk.ErrorResponse
//	@Failure		409			{object}	quillsdk.ErrorResponse	"no longer pending"
//	@Security		BearerAuth
//	@Router			/v1/collab/invites/{inviteId}/accept [post].
func (h *CollabHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	inviteID, err := pathID(r, "inviteId")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	inv, err := h.CollabService.AcceptInvite(r.Context(), inviteID, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toInviteResponse(domain.InviteDetails{Invite: inv}))
}

// HandleListCollaborators godoc
//
//	@Summary		List collaborators
//	@Description	The owner first, then collaborators in the order they joined.
//	@Tags			Collaboration
//	@Produce		json
//	@Param			noteId	path		string	true	"Note ID"
//	@Success		200		{object}	quillsdk.CollaboratorListResponse
//	@Failure		403		{object}	quillsdk.ErrorResponse
//	@Failure		404		{object}	quillsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/collab/notes/{noteId}/collaborators [get].
func (h *CollabHandler) HandleListCollaborators(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "noteId")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	collabs, err := h.CollabService.ListCollaborators(r.Context(), noteID, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCollaboratorList(collabs))
}

// HandleListPending godoc
//
//	@Summary	List a note's pending invites
//	@Tags		Collaboration
//	@Produce	json
//	@Param		noteId	path		string	true	"Note ID"
//	@Success	200		{object}	quillsdk.InviteListResponse
//	@Failure	403		{object}	quillsdk.ErrorResponse
//	@Failure	404		{object}	quillsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/collab/notes/{noteId}/invites [get].
func (h *CollabHandler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "noteId")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	invites, err := h.CollabService.ListPendingInvites(r.Context(), noteID, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toInviteList(invites))
}

// HandleChangeRole godoc
//
//	@Summary	Change a collaborator's role
//	@Tags		Collaboration
//	@Accept		json
//	@Param		noteId	path	string						true	"Note ID"
//	@Param		userId	path	string						true	"Collaborator user ID"
//	@Param		request	body	quillsdk.ChangeRoleRequest	true	"New role"
//	@Success	204
//	@Failure	400	{object}	quillsdk.ErrorResponse
//	@Failure	403	{object}	quillsdk.ErrorResponse
//	@Failure	404	{object}	quillsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/collab/notes/{noteId}/collaborators/{userId} [patch].
func (h *CollabHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	noteID, userID, err := collaboratorPath(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req quillsdk.ChangeRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.CollabService.ChangeRole(r.Context(), actor(r), noteID, userID, role); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRevoke godoc
//
//	@Summary		Revoke a collaborator
//	@Description	Remove the collaborator and cancel the invite that granted access.
//	@Tags			Collaboration
//	@Param			noteId	path	string	true	"Note ID"
//	@Param			userId	path	string	true	"Collaborator user ID"
//	@Success		204
//	@Failure		403	{object}	quillsdk.ErrorResponse
//	@Failure		404	{object}	quillsdk.ErrorResponse
//	@Failure		409	{object}	quillsdk.ErrorResponse	"no invite matches this collaborator"
//	@Security		BearerAuth
//	@Router			/v1/collab/notes/{noteId}/collaborators/{userId} [delete].
func (h *CollabHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	noteID, userID, err := collaboratorPath(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.CollabService.RevokeCollaborator(r.Context(), actor(r), noteID, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func collaboratorPath(r *http.Request) (noteID, userID string, err error) {
	if noteID, err = pathID(r, "noteId"); err != nil {
		return "", "", err
	}
	if userID, err = pathID(r, "userId"); err != nil {
		return "", "", err
	}
	return noteID, userID, nil
}
