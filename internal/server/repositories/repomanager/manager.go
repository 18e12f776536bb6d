package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkarpovs/minifeed/internal/dbx"
	"github.com/dkarpovs/minifeed/internal/server/repositories/follows"
	"github.com/dkarpovs/minifeed/internal/server/repositories/tweets"
	"github.com/dkarpovs/minifeed/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tweets(db dbx.DBTX) tweets.Repository
	Follows(db dbx.DBTX) follows.Repository
}
