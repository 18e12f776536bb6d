package follows

import "context"

type Repository interface {
	Follow(ctx context.Context, followerID, followeeID int64) error
	Unfollow(ctx context.Context, followerID, followeeID int64) error
	Followees(ctx context.Context, userID int64) ([]int64, error)
}
