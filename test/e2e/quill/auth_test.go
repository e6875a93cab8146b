package quill_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/quill/pkg/quillsdk"
	"github.com/stretchr/testify/require"
)

func TestLoginRefreshLogout(t *testing.T) {
	client := setupQuillContainer(t, nil)
	ctx := t.Context()

	registerUser(t, client, "Rui", "rui@example.com")

	_, err := client.Login(ctx, "rui@example.com", "wrong password")
	requireAPIError(t, err, quillsdk.ErrorCodeUnauthorized)

	session, err := client.Login(ctx, "RUI@example.com", testPassword)
	require.NoError(t, err)

	tok, err := client.Refresh(ctx, session.RefreshToken())
	require.NoError(t, err)
	require.NotEqual(t, session.RefreshToken(), tok.RefreshToken)

	// The rotated token is dead.
	_, err = client.Refresh(ctx, session.RefreshToken())
	requireAPIError(t, err, quillsdk.ErrorCodeUnauthorized)

	resumed := client.NewSessionFromTokens(tok.AccessToken, tok.RefreshToken, tok.ExpiresIn)
	me, err := resumed.GetProfile(ctx)
	require.NoError(t, err)
	require.Equal(t, "rui@example.com", me.Email)

	require.NoError(t, resumed.Logout(ctx))
	_, err = client.Refresh(ctx, tok.RefreshToken)
	requireAPIError(t, err, quillsdk.ErrorCodeUnauthorized)
}

func TestLoginRateLimit(t *testing.T) {
	// Production defaults: strict profile allows a burst of 10.
	client := setupQuillContainer(t, map[string]string{
		"RATELIMIT_STRICT_REQUESTS":   "10",
		"RATELIMIT_STRICT_WINDOW_SEC": "60",
		"RATELIMIT_STRICT_BURST":      "10",
	})
	ctx := t.Context()

	var limited error
	for range 15 {
		_, err := client.Login(ctx, "nobody@example.com", testPassword)
		if quillsdk.IsCode(err, quillsdk.ErrorCodeRateLimited) {
			limited = err
			break
		}
		requireAPIError(t, err, quillsdk.ErrorCodeUnauthorized)
	}

	var apiErr *quillsdk.APIError
	require.ErrorAs(t, limited, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}
