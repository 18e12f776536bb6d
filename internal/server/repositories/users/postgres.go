// Package users contains the PostgreSQL-backed user repository.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkarpovs/minifeed/internal/common"
	"github.com/dkarpovs/minifeed/internal/dbx"
	"github.com/dkarpovs/minifeed/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the user and fills in the database-assigned id.
// A duplicate email yields common.ErrDuplicateEmail.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (name, email, profile, hashed_password)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.Profile, user.HashedPassword).Scan(&user.ID)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, name, email, profile, hashed_password, COALESCE(profile_picture, '') FROM users
		 WHERE email = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Name, &user.Email, &user.Profile, &user.HashedPassword, &user.ProfilePicture)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query :=
		`SELECT id, name, email, profile, hashed_password, COALESCE(profile_picture, '') FROM users
		 WHERE id = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Name, &user.Email, &user.Profile, &user.HashedPassword, &user.ProfilePicture)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) SaveProfilePicture(ctx context.Context, userID int64, url string) error {
	query :=
		`UPDATE users SET profile_picture = $1
		 WHERE id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, url, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrUnknownUser
	}

	return nil
}

func (r *PostgresRepository) GetProfilePicture(ctx context.Context, userID int64) (string, error) {
	query :=
		`SELECT profile_picture FROM users
		 WHERE id = $1
		 `

	var url sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&url)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	if !url.Valid || url.String == "" {
		return "", common.ErrorNotFound
	}

	return url.String, nil
}
