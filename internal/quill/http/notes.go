package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/quill/internal/quill/domain"
	"github.com/aussiebroadwan/quill/internal/quill/service"
	"github.com/aussiebroadwan/quill/pkg/httpx"
	"github.com/aussiebroadwan/quill/pkg/quillsdk"
)

type NotesHandler struct {
	NoteService *service.NoteService
}

// HandleCreate godoc
//
//	@Summary	Create note
//	@Tags		Notes
//	@Accept		json
//	@Produce	json
//	@Param		request	body		quillsdk.CreateNoteRequest	true	"Note"
//	@Success	201		{object}	quillsdk.NoteResponse
//	@Failure	400		{object}	quillsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/notes [post].
func (h *NotesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req quillsdk.CreateNoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	n, err := h.NoteService.Create(r.Context(), actor(r), req.Title, req.Content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toNoteResponse(domain.NoteView{Note: n, Role: domain.RoleOwner}))
}

// HandleList godoc
//
//	@Summary		List notes
//	@Description	Notes the caller owns or collaborates on, excluding the trash, most recently updated first.
//	@Tags			Notes
//	@Produce		json
//	@Success		200	{object}	quillsdk.NoteListResponse
//	@Security		BearerAuth
//	@Router			/v1/notes [get].
func (h *NotesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	notes, err := h.NoteService.List(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toNoteList(notes))
}

// HandleListTrash godoc
//
//	@Summary	List trash
//	@Tags		Notes
//	@Produce	json
//	@Success	200	{object}	quillsdk.NoteListResponse
//	@Security	BearerAuth
//	@Router		/v1/notes/trash [get].
func (h *NotesHandler) HandleListTrash(w http.ResponseWriter, r *http.Request) {
	notes, err := h.NoteService.ListTrash(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toNoteList(notes))
}

// HandleGet godoc
//
//	@Summary	Get note
//	@Tags		Notes
//	@Produce	json
//	@Param		noteId	path		string	true	"Note ID"
//	@Success	200		{object}	quillsdk.NoteResponse
//	@Failure	404		{object}	quillsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/notes/{noteId} [get].
func (h *NotesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "noteId")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	view, err := h.NoteService.Get(r.Context(), actor(r), noteID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toNoteResponse(view))
}

// HandleUpdate godoc
//
//	@Summary		Update note
//	@Description	Owners and editors change title and content. Only the owner toggles favorite.
//	@Tags			Notes
//	@Accept			json
//	@Produce		json
//	@Param			noteId	path		string						true	"Note ID"
//	@Param			request	body		quillsdk.UpdateNoteRequest	true	"Fields to change"
//	@Success		200		{object}	quillsdk.NoteResponse
//	@Failure		400		{object}	quillsdk.ErrorResponse
//	@Failure		403		{object}	quillsdk.ErrorResponse
//	@Failure		404		{object}	quillsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/notes/{noteId} [put].
func (h *NotesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "noteId")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req quillsdk.UpdateNoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	view, err := h.NoteService.Update(r.Context(), actor(r), noteID, service.NoteUpdate{
		Title:    req.Title,
		Content:  req.Content,
		Favorite: req.Favorite,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toNoteResponse(view))
}

// HandleTrash godoc
//
//	@Summary	Move note to trash
//	@Tags		Notes
//	@Param		noteId	path	string	true	"Note ID"
//	@Success	204
//	@Failure	403	{object}	quillsdk.ErrorResponse
//	@Failure	409	{object}	quillsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/notes/{noteId}/trash [post].
func (h *NotesHandler) HandleTrash(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, h.NoteService.Trash)
}

// HandleRestore godoc
//
//	@Summary	Restore note from trash
//	@Tags		Notes
//	@Param		noteId	path	string	true	"Note ID"
//	@Success	204
//	@Failure	403	{object}	quillsdk.ErrorResponse
//	@Failure	409	{object}	quillsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/notes/{noteId}/restore [post].
func (h *NotesHandler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, h.NoteService.Restore)
}

// HandleDelete godoc
//
//	@Summary	Delete note permanently
//	@Tags		Notes
//	@Param		noteId	path	string	true	"Note ID"
//	@Success	204
//	@Failure	403	{object}	quillsdk.ErrorResponse
//	@Failure	404	{object}	quillsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/notes/{noteId} [delete].
func (h *NotesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, h.NoteService.Delete)
}

func (h *NotesHandler) noContent(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, actorID, noteID string) error,
) {
	noteID, err := pathID(r, "noteId")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := op(r.Context(), actor(r), noteID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
