package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dkarpovs/minifeed/internal/common"
	"github.com/dkarpovs/minifeed/internal/server/repositories/repomanager"
)

// FollowService owns the follow graph.
type FollowService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFollowService(db *sql.DB, m repomanager.RepositoryManager) *FollowService {
	return &FollowService{db: db, repomanager: m}
}

// Follow adds an edge follower -> followee. Idempotent: following twice has
// the same end state as following once. Unknown ids yield
// common.ErrUnknownUser.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID int64) error {
	repo := s.repomanager.Follows(s.db)

	if err := repo.Follow(ctx, followerID, followeeID); err != nil {
		if errors.Is(err, common.ErrUnknownUser) {
			return err
		}
		return common.ErrorInternal
	}
	return nil
}

// Unfollow removes the edge if present. Unfollowing someone not followed is
// a successful no-op.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	if err := s.repomanager.Follows(s.db).Unfollow(ctx, followerID, followeeID); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// Followees returns the ids the user follows as an ordered sequence for the
// serialization boundary; the order is not semantically meaningful.
func (s *FollowService) Followees(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := s.repomanager.Follows(s.db).Followees(ctx, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return ids, nil
}
