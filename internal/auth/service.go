// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/oblog/internal/store"
)

// Business-rule conflicts. Their messages are shown to the user as-is.
var (
	ErrEmailTaken    = errors.New("you already registered with this email")
	ErrUsernameTaken = errors.New("username already taken")
	ErrUnknownUser   = errors.New("user name does not exist")
	ErrWrongPassword = errors.New("wrong password")
)

// Service implements registration and credential checks.
type Service struct {
	store      *store.Store
	iterations int
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithIterations overrides the PBKDF2 iteration count for new hashes.
func WithIterations(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.iterations = n
		}
	}
}

// NewService creates a Service on top of st.
func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store:      st,
		iterations: DefaultIterations,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput carries the validated registration form.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a new account. The email check runs before the username
// check, so a request colliding on both reports ErrEmailTaken. The first
// account ever created becomes the administrator.
func (s *Service) Register(ctx context.Context, in RegisterInput) (store.User, error) {
	var user store.User

	err := s.store.ExecTx(ctx, func(q *store.Queries) error {
		if _, err := q.GetUserByEmail(ctx, in.Email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("looking up email: %w", err)
		}

		if _, err := q.GetUserByUsername(ctx, in.Username); err == nil {
			return ErrUsernameTaken
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("looking up username: %w", err)
		}

		count, err := q.CountUsers(ctx)
		if err != nil {
			return fmt.Errorf("counting users: %w", err)
		}
		role := store.RoleReader
		if count == 0 {
			role = store.RoleAdmin
		}

		hash, err := HashPasswordWithIterations(in.Password, s.iterations)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		user, err = q.CreateUser(ctx, store.CreateUserParams{
			Email:        in.Email,
			Username:     in.Username,
			PasswordHash: hash,
			Role:         role,
			CreatedAt:    s.now().UTC(),
		})
		if errors.Is(err, store.ErrDuplicate) {
			return ErrEmailTaken
		}
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		return nil
	})
	if err != nil {
		return store.User{}, err
	}

	return user, nil
}

// Authenticate looks the account up by username and verifies password.
// Hashes made with other parameters are upgraded on success.
func (s *Service) Authenticate(ctx context.Context, username, password string) (store.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, ErrUnknownUser
	}
	if err != nil {
		return store.User{}, fmt.Errorf("looking up user: %w", err)
	}

	valid, err := CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err, "user_id", user.ID)
		return store.User{}, ErrWrongPassword
	}
	if !valid {
		return store.User{}, ErrWrongPassword
	}

	if NeedsRehash(user.PasswordHash, s.iterations) {
		s.rehash(ctx, user, password)
	}

	return user, nil
}

func (s *Service) rehash(ctx context.Context, user store.User, password string) {
	hash, err := HashPasswordWithIterations(password, s.iterations)
	if err != nil {
		slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
		return
	}
	if err := s.store.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		PasswordHash: hash,
		ID:           user.ID,
	}); err != nil {
		slog.Error("failed to store re-hashed password", "error", err, "user_id", user.ID)
		return
	}
	slog.Info("password re-hashed with updated parameters", "user_id", user.ID)
}

// LoadIdentity resolves a session user id to an Identity. Zero or unknown
// ids resolve to Anonymous.
func (s *Service) LoadIdentity(ctx context.Context, userID int64) (Identity, error) {
	if userID <= 0 {
		return Anonymous{}, nil
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Anonymous{}, nil
	}
	if err != nil {
		return Anonymous{}, fmt.Errorf("loading user %d: %w", userID, err)
	}
	return Authenticated{Account: user}, nil
}
