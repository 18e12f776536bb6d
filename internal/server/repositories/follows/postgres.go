// Package follows contains the PostgreSQL-backed follow graph. Edges are
// unique per (user_id, follow_user_id) pair; inserts are idempotent and
// deletes of absent edges succeed silently.
package follows

import (
	"context"
	"fmt"

	"github.com/dkarpovs/minifeed/internal/common"
	"github.com/dkarpovs/minifeed/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Follow inserts the edge if absent. Following twice leaves a single edge.
// Either id referencing no user yields common.ErrUnknownUser.
func (r *PostgresRepository) Follow(ctx context.Context, followerID, followeeID int64) error {

	query :=
		`INSERT INTO users_follow_list (user_id, follow_user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, follow_user_id) DO NOTHING
		 `

	_, err := r.db.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return common.ErrUnknownUser
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// Unfollow removes the edge if present. An absent edge is not an error.
func (r *PostgresRepository) Unfollow(ctx context.Context, followerID, followeeID int64) error {

	query :=
		`DELETE FROM users_follow_list
		 WHERE user_id = $1
		 AND follow_user_id = $2
		 `

	_, err := r.db.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// Followees returns the ids the user currently follows. The order (by
// followee id) exists only because wire formats need a sequence; it carries
// no meaning.
func (r *PostgresRepository) Followees(ctx context.Context, userID int64) ([]int64, error) {

	query :=
		`SELECT follow_user_id FROM users_follow_list
		 WHERE user_id = $1
		 ORDER BY follow_user_id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ids, nil
}
