package http

import (
	"net/http"

	"github.com/aussiebroadwan/quill/internal/quill/service"
	"github.com/aussiebroadwan/quill/pkg/httpx"
	"github.com/aussiebroadwan/quill/pkg/quillsdk"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleGetMe godoc
//
//	@Summary	Current user
//	@Tags		Users
//	@Produce	json
//	@Success	200	{object}	quillsdk.UserResponse
//	@Failure	401	{object}	quillsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/users/me [get].
func (h *UsersHandler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.GetProfile(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleUpdateMe godoc
//
//	@Summary	Update profile
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		request	body		quillsdk.UpdateProfileRequest	true	"New display name"
//	@Success	200		{object}	quillsdk.UserResponse
//	@Failure	400		{object}	quillsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/users/me [put].
func (h *UsersHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req quillsdk.UpdateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	u, err := h.UserService.UpdateProfile(r.Context(), actor(r), req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}
