package http

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/quill/internal/quill/metrics"
	"github.com/aussiebroadwan/quill/internal/quill/notify"
	"github.com/aussiebroadwan/quill/internal/quill/service"
	"github.com/aussiebroadwan/quill/internal/quill/store/drivers/sqlite"
	"github.com/aussiebroadwan/quill/pkg/cryptox"
	"github.com/aussiebroadwan/quill/pkg/idx"
	"github.com/aussiebroadwan/quill/pkg/jwtx"
	"github.com/aussiebroadwan/quill/pkg/quillsdk"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *Router
	events *notify.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := jwtx.NewEdDSASigner(priv)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	keys.Add(signer.KID(), signer.Public())

	tokens := &service.TokenService{
		Signer:     signer,
		Store:      st,
		Issuer:     "quill-test",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
	hasher := cryptox.NewPasswordHasher([]byte("pepper"), cryptox.Argon2Params{
		Memory: 64, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16,
	})
	events := &notify.Recorder{}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRouter(keys, jwtx.NewEdDSAVerifier(keys, "quill-test", 0), "test", st, logger)
	r.TokenService = tokens
	r.UserService = &service.UserService{Store: st, Hasher: hasher, Tokens: tokens}
	r.NoteService = &service.NoteService{Store: st}
	r.CollabService = &service.CollabService{Store: st, Notifier: events}
	r.Metrics = metrics.New(prometheus.NewRegistry(), nil)
	r.ApplyRoutes()

	return &testServer{router: r, events: events}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, name, email string) quillsdk.TokenResponse {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/v1/auth/register", "", quillsdk.RegisterRequest{
		Name: name, Email: email, Password: "correct horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[quillsdk.TokenResponse](t, rec)
}

func (s *testServer) createNote(t *testing.T, token, title string) quillsdk.NoteResponse {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/v1/notes", token, quillsdk.CreateNoteRequest{Title: title})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[quillsdk.NoteResponse](t, rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	require.Equal(t, status, rec.Code, rec.Body.String())
	require.Equal(t, code, decode[quillsdk.ErrorResponse](t, rec).Error)
}

func TestCollaborationFlow(t *testing.T) {
	s := newTestServer(t)

	owner := s.register(t, "Olive", "olive@example.com")
	rui := s.register(t, "Rui", "rui@example.com")
	note := s.createNote(t, owner.AccessToken, "Groceries")
	require.Equal(t, "owner", note.Role)

	rec := s.do(t, http.MethodPost, "/v1/collab/invites", owner.AccessToken, quillsdk.CreateInviteRequest{
		NoteID: note.ID, Email: "RUI@example.com", Role: "editor",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inv := decode[quillsdk.InviteResponse](t, rec)
	require.Equal(t, "pending", inv.Status)
	require.Equal(t, "editor", inv.Role)
	require.Equal(t, "Groceries", inv.NoteTitle)
	require.Equal(t, rui.User.ID, inv.Recipient.ID)

	// The recipient sees it in their inbox, the owner in the note's list.
	rec = s.do(t, http.MethodGet, "/v1/collab/invites", rui.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[quillsdk.InviteListResponse](t, rec).Invites, 1)

	rec = s.do(t, http.MethodGet, "/v1/collab/notes/"+note.ID+"/invites", owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[quillsdk.InviteListResponse](t, rec).Invites, 1)

	rec = s.do(t, http.MethodPost, "/v1/collab/invites/"+inv.ID+"/accept", rui.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	accepted := decode[quillsdk.InviteResponse](t, rec)
	require.Equal(t, "accepted", accepted.Status)
	require.NotNil(t, accepted.AcceptedAt)

	rec = s.do(t, http.MethodPost, "/v1/collab/invites/"+inv.ID+"/accept", rui.AccessToken, nil)
	requireError(t, rec, http.StatusConflict, quillsdk.ErrorCodeConflict)

	rec = s.do(t, http.MethodGet, "/v1/collab/notes/"+note.ID+"/collaborators", rui.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	collabs := decode[quillsdk.CollaboratorListResponse](t, rec).Collaborators
	require.Len(t, collabs, 2)
	require.Equal(t, owner.User.ID, collabs[0].User.ID)
	require.Equal(t, "owner", collabs[0].Role)
	require.Equal(t, rui.User.ID, collabs[1].User.ID)
	require.Equal(t, "Rui", collabs[1].User.Name)
	require.Equal(t, "editor", collabs[1].Role)

	// The editor can write but not favorite.
	title := "Groceries (shared)"
	rec = s.do(t, http.MethodPut, "/v1/notes/"+note.ID, rui.AccessToken, quillsdk.UpdateNoteRequest{Title: &title})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "editor", decode[quillsdk.NoteResponse](t, rec).Role)

	fav := true
	rec = s.do(t, http.MethodPut, "/v1/notes/"+note.ID, rui.AccessToken, quillsdk.UpdateNoteRequest{Favorite: &fav})
	requireError(t, rec, http.StatusForbidden, quillsdk.ErrorCodeForbidden)

	rec = s.do(t, http.MethodPatch, "/v1/collab/notes/"+note.ID+"/collaborators/"+rui.User.ID,
		owner.AccessToken, quillsdk.ChangeRoleRequest{Role: "viewer"})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/v1/notes/"+note.ID, rui.AccessToken, quillsdk.UpdateNoteRequest{Title: &title})
	requireError(t, rec, http.StatusForbidden, quillsdk.ErrorCodeForbidden)

	rec = s.do(t, http.MethodDelete, "/v1/collab/notes/"+note.ID+"/collaborators/"+rui.User.ID, owner.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	// Revoked collaborators lose sight of the note entirely.
	rec = s.do(t, http.MethodGet, "/v1/notes/"+note.ID, rui.AccessToken, nil)
	requireError(t, rec, http.StatusNotFound, quillsdk.ErrorCodeNotFound)

	types := make([]string, 0, 4)
	for _, ev := range s.events.Events() {
		types = append(types, ev.Type)
	}
	require.Equal(t, []string{
		notify.EventInviteCreated,
		notify.EventInviteAccepted,
		notify.EventRoleChanged,
		notify.EventCollaboratorRevoked,
	}, types)
}

func TestCollabRejections(t *testing.T) {
	s := newTestServer(t)

	owner := s.register(t, "Olive", "olive@example.com")
	rui := s.register(t, "Rui", "rui@example.com")
	note := s.createNote(t, owner.AccessToken, "Plans")

	t.Run("self invite", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/collab/invites", owner.AccessToken, quillsdk.CreateInviteRequest{
			NoteID: note.ID, Email: "olive@example.com",
		})
		requireError(t, rec, http.StatusForbidden, quillsdk.ErrorCodeForbidden)
	})

	t.Run("invalid role", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/collab/invites", owner.AccessToken, quillsdk.CreateInviteRequest{
			NoteID: note.ID, Email: "rui@example.com", Role: "admin",
		})
		requireError(t, rec, http.StatusBadRequest, quillsdk.ErrorCodeValidation)
	})

	t.Run("invalid note id", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/collab/invites", owner.AccessToken, quillsdk.CreateInviteRequest{
			NoteID: "not-a-ulid", Email: "rui@example.com",
		})
		requireError(t, rec, http.StatusBadRequest, quillsdk.ErrorCodeValidation)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/collab/invites", owner.AccessToken, quillsdk.CreateInviteRequest{
			NoteID: note.ID, Email: "nobody@example.com",
		})
		requireError(t, rec, http.StatusNotFound, quillsdk.ErrorCodeNotFound)
	})

	t.Run("non owner invite", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/collab/invites", rui.AccessToken, quillsdk.CreateInviteRequest{
			NoteID: note.ID, Email: "olive@example.com",
		})
		requireError(t, rec, http.StatusForbidden, quillsdk.ErrorCodeForbidden)
	})

	t.Run("duplicate pending", func(t *testing.T) {
		req := quillsdk.CreateInviteRequest{NoteID: note.ID, Email: "rui@example.com"}
		rec := s.do(t, http.MethodPost, "/v1/collab/invites", owner.AccessToken, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.Equal(t, "viewer", decode[quillsdk.InviteResponse](t, rec).Role)

		rec = s.do(t, http.MethodPost, "/v1/collab/invites", owner.AccessToken, req)
		requireError(t, rec, http.StatusConflict, quillsdk.ErrorCodeConflict)
	})

	t.Run("non owner lists pending", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/v1/collab/notes/"+note.ID+"/invites", rui.AccessToken, nil)
		requireError(t, rec, http.StatusForbidden, quillsdk.ErrorCodeForbidden)
	})

	t.Run("invalid path id", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/collab/invites/nope/accept", rui.AccessToken, nil)
		requireError(t, rec, http.StatusBadRequest, quillsdk.ErrorCodeValidation)
	})

	t.Run("unknown invite", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/collab/invites/"+idx.New().String()+"/accept", rui.AccessToken, nil)
		requireError(t, rec, http.StatusNotFound, quillsdk.ErrorCodeNotFound)
	})

	t.Run("change role of non collaborator", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, "/v1/collab/notes/"+note.ID+"/collaborators/"+rui.User.ID,
			owner.AccessToken, quillsdk.ChangeRoleRequest{Role: "editor"})
		requireError(t, rec, http.StatusNotFound, quillsdk.ErrorCodeNotFound)
	})

	t.Run("change role to owner", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, "/v1/collab/notes/"+note.ID+"/collaborators/"+rui.User.ID,
			owner.AccessToken, quillsdk.ChangeRoleRequest{Role: "owner"})
		requireError(t, rec, http.StatusBadRequest, quillsdk.ErrorCodeValidation)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/collab/invites", strings.NewReader("{"))
		req.Header.Set("Authorization", "Bearer "+owner.AccessToken)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		requireError(t, rec, http.StatusBadRequest, quillsdk.ErrorCodeValidation)
	})
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)
	reg := s.register(t, "Rui", "rui@example.com")
	require.Equal(t, "Bearer", reg.TokenType)
	require.NotEmpty(t, reg.RefreshToken)

	t.Run("requires bearer token", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/v1/notes", "", nil)
		requireError(t, rec, http.StatusUnauthorized, quillsdk.ErrorCodeUnauthorized)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
	})

	t.Run("bad password", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/auth/login", "", quillsdk.LoginRequest{
			Email: "rui@example.com", Password: "wrong password",
		})
		requireError(t, rec, http.StatusUnauthorized, quillsdk.ErrorCodeUnauthorized)
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/auth/register", "", quillsdk.RegisterRequest{
			Name: "Other", Email: "rui@example.com", Password: "correct horse",
		})
		requireError(t, rec, http.StatusConflict, quillsdk.ErrorCodeConflict)
	})

	t.Run("login sets refresh cookie", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/auth/login", "", quillsdk.LoginRequest{
			Email: "rui@example.com", Password: "correct horse",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var cookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == refreshCookieName {
				cookie = c
			}
		}
		require.NotNil(t, cookie)
		require.True(t, cookie.HttpOnly)
		require.Equal(t, refreshCookiePath, cookie.Path)
	})

	t.Run("refresh rotates", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/auth/refresh", "", quillsdk.RefreshRequest{RefreshToken: reg.RefreshToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		next := decode[quillsdk.TokenResponse](t, rec)
		require.NotEqual(t, reg.RefreshToken, next.RefreshToken)

		rec = s.do(t, http.MethodPost, "/v1/auth/refresh", "", quillsdk.RefreshRequest{RefreshToken: reg.RefreshToken})
		requireError(t, rec, http.StatusUnauthorized, quillsdk.ErrorCodeUnauthorized)

		rec = s.do(t, http.MethodPost, "/v1/auth/logout", "", quillsdk.RefreshRequest{RefreshToken: next.RefreshToken})
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = s.do(t, http.MethodPost, "/v1/auth/refresh", "", quillsdk.RefreshRequest{RefreshToken: next.RefreshToken})
		requireError(t, rec, http.StatusUnauthorized, quillsdk.ErrorCodeUnauthorized)
	})

	t.Run("profile", func(t *testing.T) {
		rec := s.do(t, http.MethodPut, "/v1/users/me", reg.AccessToken, quillsdk.UpdateProfileRequest{Name: "Rui R"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = s.do(t, http.MethodGet, "/v1/users/me", reg.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Rui R", decode[quillsdk.UserResponse](t, rec).Name)
	})
}

func TestNoteTrashEndpoints(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "Olive", "olive@example.com")
	note := s.createNote(t, owner.AccessToken, "Draft")

	rec := s.do(t, http.MethodPost, "/v1/notes/"+note.ID+"/trash", owner.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/v1/notes", owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decode[quillsdk.NoteListResponse](t, rec).Notes)

	rec = s.do(t, http.MethodGet, "/v1/notes/trash", owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	trash := decode[quillsdk.NoteListResponse](t, rec).Notes
	require.Len(t, trash, 1)
	require.True(t, trash[0].Trashed)

	rec = s.do(t, http.MethodPost, "/v1/notes/"+note.ID+"/restore", owner.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/v1/notes/"+note.ID, owner.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/v1/notes/"+note.ID, owner.AccessToken, nil)
	requireError(t, rec, http.StatusNotFound, quillsdk.ErrorCodeNotFound)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "test", decode[quillsdk.HealthResponse](t, rec).Version)

	rec = s.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ready := decode[quillsdk.HealthResponse](t, rec)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Empty(t, ready.Checks.Notifier)

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `quill_http_requests_total{method="GET",route="GET /readyz",status="200"} 1`)
}
