// Package httpapi is the HTTP/JSON transport for the feed service. It owns
// request parsing, routing, token extraction, status mapping, and CORS; all
// domain decisions live in the services it dispatches to.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dkarpovs/minifeed/internal/logging"
	"github.com/dkarpovs/minifeed/internal/server/services"
)

type Server struct {
	address  string
	logger   logging.Logger
	users    *services.UserService
	tweets   *services.TweetService
	follows  *services.FollowService
	pictures *services.ProfilePictureService
}

func NewServer(address string, l logging.Logger, us *services.UserService, ts *services.TweetService,
	fs *services.FollowService, ps *services.ProfilePictureService) *Server {
	return &Server{
		address:  address,
		logger:   l.With("module", "httpapi"),
		users:    us,
		tweets:   ts,
		follows:  fs,
		pictures: ps,
	}
}

// Router builds the gin engine with all routes registered. Split out from
// Run so handler tests can drive the engine through httptest.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	router.GET("/ping", s.ping)
	router.POST("/sign-up", s.signUp)
	router.POST("/login", s.login)
	router.GET("/user/:user_id", s.user)
	router.GET("/timeline/:user_id", s.publicTimeline)
	router.GET("/profile-picture/:user_id", s.profilePicture)

	authed := router.Group("/")
	authed.Use(s.authRequired())
	{
		authed.POST("/tweet", s.tweet)
		authed.POST("/follow", s.follow)
		authed.POST("/unfollow", s.unfollow)
		authed.GET("/timeline", s.timeline)
		authed.POST("/profile-picture", s.uploadProfilePicture)
	}

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
