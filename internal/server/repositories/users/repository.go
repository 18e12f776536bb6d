package users

import (
	"context"

	"github.com/dkarpovs/minifeed/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	SaveProfilePicture(ctx context.Context, userID int64, url string) error
	GetProfilePicture(ctx context.Context, userID int64) (string, error)
}
