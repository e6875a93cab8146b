package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/quill/internal/quill/domain"
	"github.com/aussiebroadwan/quill/internal/quill/service"
	"github.com/aussiebroadwan/quill/pkg/httpx"
	"github.com/aussiebroadwan/quill/pkg/idx"
	"github.com/aussiebroadwan/quill/pkg/quillsdk"
	"github.com/aussiebroadwan/quill/pkg/slogx"
)

// writeServiceError maps a service error onto a status code and body.
// Anything that is not a business error is logged and reported as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch kind := domain.KindOf(err); {
	case kind == domain.ErrValidation:
		httpx.WriteError(w, http.StatusBadRequest, quillsdk.ErrorCodeValidation, err.Error())
	case kind == domain.ErrNotFound:
		httpx.WriteError(w, http.StatusNotFound, quillsdk.ErrorCodeNotFound, err.Error())
	case kind == domain.ErrForbidden:
		httpx.WriteError(w, http.StatusForbidden, quillsdk.ErrorCodeForbidden, err.Error())
	case kind == domain.ErrConflict:
		httpx.WriteError(w, http.StatusConflict, quillsdk.ErrorCodeConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, quillsdk.ErrorCodeUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrInvalidRefresh):
		httpx.WriteError(w, http.StatusUnauthorized, quillsdk.ErrorCodeUnauthorized, "refresh token is invalid or expired")
	case errors.Is(err, httpx.ErrBadBody):
		httpx.WriteError(w, http.StatusBadRequest, quillsdk.ErrorCodeValidation, err.Error())
	default:
		slogx.FromContext(r.Context()).Error("request failed", slogx.Err(err))
		httpx.WriteError(w, http.StatusInternalServerError, quillsdk.ErrorCodeServerError, "internal server error")
	}
}

// pathID reads and validates a ULID path parameter.
func pathID(r *http.Request, name string) (string, error) {
	v := r.PathValue(name)
	if !idx.Valid(v) {
		return "", domain.Validation(name + " is not a valid identifier")
	}
	return v, nil
}

// actor is the authenticated user. The authn middleware guarantees it is set.
func actor(r *http.Request) string {
	return httpx.UserID(r.Context())
}
