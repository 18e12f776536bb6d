package services

import (
	"context"
	"database/sql"

	"github.com/dkarpovs/minifeed/internal/common"
	"github.com/dkarpovs/minifeed/internal/dbx"
	"github.com/dkarpovs/minifeed/internal/server/models"
	"github.com/dkarpovs/minifeed/internal/server/repositories/follows"
	"github.com/dkarpovs/minifeed/internal/server/repositories/tweets"
	"github.com/dkarpovs/minifeed/internal/server/repositories/users"
)

// fakeRM vends the injected fake repositories regardless of the DBTX handle.
type fakeRM struct {
	users   users.Repository
	tweets  tweets.Repository
	follows follows.Repository
}

func (m *fakeRM) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeRM) Users(db dbx.DBTX) users.Repository                  { return m.users }
func (m *fakeRM) Tweets(db dbx.DBTX) tweets.Repository                { return m.tweets }
func (m *fakeRM) Follows(db dbx.DBTX) follows.Repository              { return m.follows }

type fakeUsersRepo struct {
	created   *models.User
	createErr error

	byEmail    map[string]*models.User
	byID       map[int64]*models.User
	pictures   map[int64]string
	savePicErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		byEmail:  map[string]*models.User{},
		byID:     map[int64]*models.User{},
		pictures: map[int64]string{},
	}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = int64(len(f.byEmail) + 1)
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) SaveProfilePicture(ctx context.Context, userID int64, url string) error {
	if f.savePicErr != nil {
		return f.savePicErr
	}
	f.pictures[userID] = url
	return nil
}

func (f *fakeUsersRepo) GetProfilePicture(ctx context.Context, userID int64) (string, error) {
	url, ok := f.pictures[userID]
	if !ok || url == "" {
		return "", common.ErrorNotFound
	}
	return url, nil
}

type fakeTweetsRepo struct {
	appended  []*models.Tweet
	appendErr error

	timeline    []models.TimelineEntry
	timelineErr error
}

func (f *fakeTweetsRepo) Append(ctx context.Context, t *models.Tweet) (*models.Tweet, error) {
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	t.ID = int64(len(f.appended) + 1)
	f.appended = append(f.appended, t)
	return t, nil
}

func (f *fakeTweetsRepo) SelectTimeline(ctx context.Context, viewerID int64) ([]models.TimelineEntry, error) {
	if f.timelineErr != nil {
		return nil, f.timelineErr
	}
	return f.timeline, nil
}

type fakeFollowsRepo struct {
	edges       map[[2]int64]bool
	followErr   error
	unfollowErr error
}

func newFakeFollowsRepo() *fakeFollowsRepo {
	return &fakeFollowsRepo{edges: map[[2]int64]bool{}}
}

func (f *fakeFollowsRepo) Follow(ctx context.Context, followerID, followeeID int64) error {
	if f.followErr != nil {
		return f.followErr
	}
	f.edges[[2]int64{followerID, followeeID}] = true
	return nil
}

func (f *fakeFollowsRepo) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	if f.unfollowErr != nil {
		return f.unfollowErr
	}
	delete(f.edges, [2]int64{followerID, followeeID})
	return nil
}

func (f *fakeFollowsRepo) Followees(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	for edge := range f.edges {
		if edge[0] == userID {
			ids = append(ids, edge[1])
		}
	}
	return ids, nil
}
