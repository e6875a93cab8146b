package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/quill/internal/quill/domain"
	"github.com/aussiebroadwan/quill/internal/quill/store"
	"github.com/aussiebroadwan/quill/pkg/cryptox"
	"github.com/aussiebroadwan/quill/pkg/idx"
	"github.com/aussiebroadwan/quill/pkg/slogx"
)

var (
	ErrEmailTaken   = domain.Conflict("an account with this email already exists")
	ErrUserNotFound = domain.NotFound("user not found")
)

type UserService struct {
	Store  store.Store
	Hasher *cryptox.PasswordHasher
	Tokens *TokenService
}

// Register creates an account and signs the new user in.
func (s *UserService) Register(
	ctx context.Context,
	name, email, password string,
) (domain.User, *domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	// 1. Validate input.
	name, err := domain.NormalizeDisplayName(name)
	if err != nil {
		return domain.User{}, nil, err
	}
	email, err = domain.NormalizeEmail(email)
	if err != nil {
		return domain.User{}, nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return domain.User{}, nil, err
	}

	// 2. Hash and insert.
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, nil, err
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			l.Warn("registration with existing email")
			return domain.User{}, nil, ErrEmailTaken
		}
		l.Error("failed to create user", slogx.Err(err))
		return domain.User{}, nil, err
	}

	// 3. Sign in.
	pair, err := s.Tokens.Issue(ctx, user)
	if err != nil {
		return domain.User{}, nil, err
	}

	l.Info("user registered", slog.String("user_id", user.ID))
	return user, pair, nil
}

// Login verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (domain.User, *domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	email, err := domain.NormalizeEmail(email)
	if err != nil {
		return domain.User{}, nil, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn the same time as a real verification.
			_, _ = s.Hasher.Hash(password)
			return domain.User{}, nil, ErrInvalidCredentials
		}
		return domain.User{}, nil, err
	}

	if err := s.Hasher.Verify(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("stored password hash is unusable", slog.String("user_id", user.ID), slogx.Err(err))
		} else {
			l.Info("login failed", slog.String("user_id", user.ID))
		}
		return domain.User{}, nil, ErrInvalidCredentials
	}

	pair, err := s.Tokens.Issue(ctx, user)
	if err != nil {
		return domain.User{}, nil, err
	}
	return user, pair, nil
}

// GetProfile fetches a user by id.
func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile changes the display name.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name string) (domain.User, error) {
	name, err := domain.NormalizeDisplayName(name)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.Store.Users().UpdateName(ctx, userID, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return s.GetProfile(ctx, userID)
}
