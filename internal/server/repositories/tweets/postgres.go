// Package tweets contains the PostgreSQL-backed post ledger. The ledger is
// append-only: rows are inserted, never updated or deleted, and the serial
// id is the global append order.
package tweets

import (
	"context"
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

// Append inserts the tweet and fills in its ledger position. An author id
// that references no user yields common.ErrUnknownUser.
func (r *PostgresRepository) Append(ctx context.Context, tweet *models.Tweet) (*models.Tweet, error) {

	query :=
		`INSERT INTO tweets (user_id, tweet)
		 VALUES ($1, $2)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, tweet.UserID, tweet.Tweet).Scan(&tweet.ID)

	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrUnknownUser
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return tweet, nil
}

// SelectTimeline returns every tweet authored by the viewer or anyone the
// viewer follows, in global append order. A single query gives a consistent
// snapshot of both the follow graph and the ledger.
func (r *PostgresRepository) SelectTimeline(ctx context.Context, viewerID int64) ([]models.TimelineEntry, error) {

	query :=
		`SELECT t.user_id, t.tweet FROM tweets t
		 WHERE t.user_id = $1
		 OR t.user_id IN (
		     SELECT follow_user_id FROM users_follow_list WHERE user_id = $1
		 )
		 ORDER BY t.id
		 `

	rows, err := r.db.QueryContext(ctx, query, viewerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	timeline := []models.TimelineEntry{}
	for rows.Next() {
		var e models.TimelineEntry
		if err := rows.Scan(&e.UserID, &e.Tweet); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		timeline = append(timeline, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return timeline, nil
}
