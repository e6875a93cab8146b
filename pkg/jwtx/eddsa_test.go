package jwtx_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/quill/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newSigner(t *testing.T) *jwtx.EdDSASigner {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	s, err := jwtx.NewEdDSASigner(priv)
	require.NoError(t, err)
	return s
}

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	s := newSigner(t)
	keys := jwtx.NewKeySet()
	keys.Add(s.KID(), s.Public())
	v := jwtx.NewEdDSAVerifier(keys, "quill", 0)

	tok, err := s.Sign(jwtx.NewAccessClaims("quill", "user-1", "r@x.com", "R", time.Minute, time.Now()))
	require.NoError(t, err)

	claims, err := v.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "r@x.com", claims.Email)
	require.Equal(t, "R", claims.Name)
}

func TestVerifyFailures(t *testing.T) {
	t.Parallel()

	s := newSigner(t)
	keys := jwtx.NewKeySet()
	keys.Add(s.KID(), s.Public())
	v := jwtx.NewEdDSAVerifier(keys, "quill", 0)

	t.Run("expired", func(t *testing.T) {
		tok, err := s.Sign(jwtx.NewAccessClaims("quill", "u", "", "", time.Minute, time.Now().Add(-time.Hour)))
		require.NoError(t, err)
		_, err = v.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		tok, err := s.Sign(jwtx.NewAccessClaims("other", "u", "", "", time.Minute, time.Now()))
		require.NoError(t, err)
		_, err = v.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("unknown key", func(t *testing.T) {
		tok, err := newSigner(t).Sign(jwtx.NewAccessClaims("quill", "u", "", "", time.Minute, time.Now()))
		require.NoError(t, err)
		_, err = v.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrUnknownKID)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify("a.b.c")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("tampered payload", func(t *testing.T) {
		tok, err := s.Sign(jwtx.NewAccessClaims("quill", "u", "", "", time.Minute, time.Now()))
		require.NoError(t, err)
		parts := strings.Split(tok, ".")
		other, err := s.Sign(jwtx.NewAccessClaims("quill", "admin", "", "", time.Minute, time.Now()))
		require.NoError(t, err)
		parts[1] = strings.Split(other, ".")[1]
		_, err = v.Verify(strings.Join(parts, "."))
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})
}

func TestKeyIDIsStable(t *testing.T) {
	t.Parallel()

	s := newSigner(t)
	require.Equal(t, s.KID(), jwtx.KeyID(s.Public()))
	require.Len(t, s.KID(), 22)
}
