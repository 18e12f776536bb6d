package services

import (
	"context"
	"database/sql"
	"errors"
	"unicode/utf8"

	"github.com/dkarpovs/minifeed/internal/common"
	"github.com/dkarpovs/minifeed/internal/server/models"
	"github.com/dkarpovs/minifeed/internal/server/repositories/repomanager"
)

// TweetService owns the post ledger and timeline composition.
type TweetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTweetService(db *sql.DB, m repomanager.RepositoryManager) *TweetService {
	return &TweetService{db: db, repomanager: m}
}

// PostTweet appends a tweet to the ledger. Bodies longer than
// models.MaxTweetLen characters (runes, not bytes) are rejected with
// common.ErrBodyTooLong and nothing is written.
func (s *TweetService) PostTweet(ctx context.Context, userID int64, body string) (*models.Tweet, error) {
	if utf8.RuneCountInString(body) > models.MaxTweetLen {
		return nil, common.ErrBodyTooLong
	}

	repo := s.repomanager.Tweets(s.db)

	tweet, err := repo.Append(ctx, &models.Tweet{UserID: userID, Tweet: body})
	if err != nil {
		if errors.Is(err, common.ErrUnknownUser) {
			return nil, err
		}
		return nil, common.ErrorInternal
	}
	return tweet, nil
}

// GetTimeline composes the viewer's feed: the viewer's own tweets plus
// tweets of everyone the viewer follows, in global append order. A viewer
// with nothing to show gets an empty slice, not an error.
func (s *TweetService) GetTimeline(ctx context.Context, viewerID int64) ([]models.TimelineEntry, error) {
	repo := s.repomanager.Tweets(s.db)

	timeline, err := repo.SelectTimeline(ctx, viewerID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return timeline, nil
}
