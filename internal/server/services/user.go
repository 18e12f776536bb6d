// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, and issuing JWTs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dkarpovs/minifeed/internal/common"
	"github.com/dkarpovs/minifeed/internal/server/auth"
	"github.com/dkarpovs/minifeed/internal/server/config"
	"github.com/dkarpovs/minifeed/internal/server/models"
	"github.com/dkarpovs/minifeed/internal/server/repositories/repomanager"
)

// UserService provides account operations:
//   - Register: create users with a bcrypt-hashed password
//   - Login: verify credentials and mint an access token
//   - GetUser: fetch a public profile
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a new user. The raw password is hashed with bcrypt before
// it reaches the repository; the plaintext is never stored. A duplicate
// email yields common.ErrDuplicateEmail.
func (s *UserService) Register(ctx context.Context, name, email, profile, password string) (*models.User, error) {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{Name: name, Email: email, Profile: profile, HashedPassword: hashed}
	repo := s.repomanager.Users(s.db)

	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, common.ErrorInternal
	}
	return u, nil
}

// Login verifies the password against the stored bcrypt digest and, on
// success, returns a signed access token. A missing user and a wrong
// password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	if !auth.CheckPassword(user.HashedPassword, password) {
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// GetUser returns the public profile for id, or common.ErrorNotFound.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// VerifyToken checks signature and expiry and returns the authenticated
// user id. Pure computation, no IO.
func (s *UserService) VerifyToken(token string) (int64, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}
