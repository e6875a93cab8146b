package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/quill/internal/quill/domain"
	"github.com/aussiebroadwan/quill/internal/quill/service"
	"github.com/aussiebroadwan/quill/pkg/httpx"
	"github.com/aussiebroadwan/quill/pkg/quillsdk"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/v1/auth"
)

type AuthHandler struct {
	UserService  *service.UserService
	TokenService *service.TokenService

	// CookieSecure marks the refresh cookie Secure. Disable only for plain
	// http development setups.
	CookieSecure bool
	RefreshTTL   time.Duration
}

// HandleRegister godoc
//
//	@Summary		Register
//	@Description	Create an account and sign in. The refresh token is also set as an HttpOnly cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		quillsdk.RegisterRequest	true	"Registration"
//	@Success		201		{object}	quillsdk.TokenResponse
//	@Failure		400		{object}	quillsdk.ErrorResponse
//	@Failure		409		{object}	quillsdk.ErrorResponse	"email already registered"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req quillsdk.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, pair, err := h.UserService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeTokens(w, http.StatusCreated, user, pair)
}

// HandleLogin godoc
//
//	@Summary		Login
//	@Description	Exchange email and password for an access token and a refresh token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		quillsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	quillsdk.TokenResponse
//	@Failure		400		{object}	quillsdk.ErrorResponse
//	@Failure		401		{object}	quillsdk.ErrorResponse	"invalid email or password"
//	@Failure		429		{object}	quillsdk.ErrorResponse
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req quillsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, pair, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeTokens(w, http.StatusOK, user, pair)
}

// HandleRefresh godoc
//
//	@Summary		Refresh
//	@Description	Rotate a refresh token. Reads the refresh_token cookie, falling back to the JSON body.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		quillsdk.RefreshRequest	false	"Refresh token when no cookie is sent"
//	@Success		200		{object}	quillsdk.TokenResponse
//	@Failure		401		{object}	quillsdk.ErrorResponse
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	token, err := refreshTokenFrom(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	pair, err := h.TokenService.Refresh(r.Context(), token)
	if err != nil {
		h.clearCookie(w)
		writeServiceError(w, r, err)
		return
	}
	h.writeTokens(w, http.StatusOK, domain.User{}, pair)
}

// HandleLogout godoc
//
//	@Summary		Logout
//	@Description	Revoke the refresh token and clear the cookie. Idempotent.
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	quillsdk.RefreshRequest	false	"Refresh token when no cookie is sent"
//	@Success		204
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token, err := refreshTokenFrom(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.TokenService.Revoke(r.Context(), token); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.clearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// refreshTokenFrom prefers the cookie. Without one, an optional JSON body is read.
func refreshTokenFrom(r *http.Request) (string, error) {
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}
	if r.ContentLength == 0 {
		return "", nil
	}
	var req quillsdk.RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return "", err
	}
	return req.RefreshToken, nil
}

func (h *AuthHandler) writeTokens(w http.ResponseWriter, code int, user domain.User, pair *domain.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     refreshCookiePath,
		MaxAge:   int(h.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	resp := quillsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	}
	if user.ID != "" {
		u := toUserResponse(user)
		resp.User = &u
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, code, resp)
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
