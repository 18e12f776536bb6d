package tweets

import (
	"context"

	"github.com/dkarpovs/minifeed/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, tweet *models.Tweet) (*models.Tweet, error)
	SelectTimeline(ctx context.Context, viewerID int64) ([]models.TimelineEntry, error)
}
