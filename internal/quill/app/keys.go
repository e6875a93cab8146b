package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/quill/pkg/cryptox"
	"github.com/aussiebroadwan/quill/pkg/jwtx"
)

// SigningKeys bundles the token signer with the verification side.
type SigningKeys struct {
	Signer   *jwtx.EdDSASigner
	KeySet   *jwtx.KeySet
	Verifier *jwtx.EdDSAVerifier
}

// InitSigningKeys loads the Ed25519 key at cfg.SigningKeyFile, generating and
// persisting one when the file does not exist. Replicas that share the file
// accept each other's tokens.
func InitSigningKeys(cfg Config, logger *slog.Logger) (*SigningKeys, error) {
	path := filepath.Clean(cfg.SigningKeyFile)

	pemKey, err := os.ReadFile(path)
	switch {
	case err == nil:
		logger.Info("loaded signing key", "path", path)
	case errors.Is(err, fs.ErrNotExist):
		pemKey, err = cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create signing key directory: %w", err)
		}
		if err := os.WriteFile(path, pemKey, 0o600); err != nil {
			return nil, fmt.Errorf("write signing key: %w", err)
		}
		logger.Warn("generated new signing key, tokens issued with any previous key are now invalid",
			"path", path)
	default:
		return nil, fmt.Errorf("read signing key: %w", err)
	}

	priv, err := cryptox.ParseEd25519Key(pemKey)
	if err != nil {
		return nil, err
	}
	signer, err := jwtx.NewEdDSASigner(priv)
	if err != nil {
		return nil, err
	}

	keys := jwtx.NewKeySet()
	keys.Add(signer.KID(), signer.Public())

	logger.Info("signing key ready", "algorithm", "EdDSA", "kid", signer.KID(), "issuer", cfg.Issuer)

	return &SigningKeys{
		Signer:   signer,
		KeySet:   keys,
		Verifier: jwtx.NewEdDSAVerifier(keys, cfg.Issuer, 0),
	}, nil
}
