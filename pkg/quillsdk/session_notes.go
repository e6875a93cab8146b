package quillsdk

import (
	"context"
	"net/http"
	"net/url"
)

func notePath(noteID string) string {
	return "/v1/notes/" + url.PathEscape(noteID)
}

func (s *Session) CreateNote(ctx context.Context, title, content string) (*NoteResponse, error) {
	var out NoteResponse
	req := CreateNoteRequest{Title: title, Content: content}
	if err := s.doJSON(ctx, http.MethodPost, "/v1/notes", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListNotes returns the caller's live notes, owned and shared.
func (s *Session) ListNotes(ctx context.Context) ([]NoteResponse, error) {
	var out NoteListResponse
	if err := s.doJSON(ctx, http.MethodGet, "/v1/notes", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Notes, nil
}

// ListTrash returns the caller's trashed notes.
func (s *Session) ListTrash(ctx context.Context) ([]NoteResponse, error) {
	var out NoteListResponse
	if err := s.doJSON(ctx, http.MethodGet, "/v1/notes/trash", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Notes, nil
}

func (s *Session) GetNote(ctx context.Context, noteID string) (*NoteResponse, error) {
	var out NoteResponse
	if err := s.doJSON(ctx, http.MethodGet, notePath(noteID), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateNote(ctx context.Context, noteID string, req UpdateNoteRequest) (*NoteResponse, error) {
	var out NoteResponse
	if err := s.doJSON(ctx, http.MethodPut, notePath(noteID), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) TrashNote(ctx context.Context, noteID string) error {
	return s.doJSON(ctx, http.MethodPost, notePath(noteID)+"/trash", nil, nil, http.StatusNoContent)
}

func (s *Session) RestoreNote(ctx context.Context, noteID string) error {
	return s.doJSON(ctx, http.MethodPost, notePath(noteID)+"/restore", nil, nil, http.StatusNoContent)
}

func (s *Session) DeleteNote(ctx context.Context, noteID string) error {
	return s.doJSON(ctx, http.MethodDelete, notePath(noteID), nil, nil, http.StatusNoContent)
}
