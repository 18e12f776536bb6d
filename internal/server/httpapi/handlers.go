package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dkarpovs/minifeed/internal/common"
)

type signUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Profile  string `json:"profile"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tweetRequest struct {
	Tweet string `json:"tweet" binding:"required"`
}

type followRequest struct {
	Follow int64 `json:"follow" binding:"required"`
}

type unfollowRequest struct {
	Unfollow int64 `json:"unfollow" binding:"required"`
}

// statusFromErr maps service sentinels onto HTTP statuses. Client-side
// failures become 400, auth failures 401, missing entities 404; anything
// else is a 500.
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, common.ErrDuplicateEmail),
		errors.Is(err, common.ErrBodyTooLong),
		errors.Is(err, common.ErrUnknownUser):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFromErr(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err.Error())
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

func (s *Server) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.Name, req.Email, req.Profile, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"profile": user.Profile,
	})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

// user is the public profile view. Email stays private; the picture URL is
// included only when set.
func (s *Server) user(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	u, err := s.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := gin.H{
		"id":      u.ID,
		"name":    u.Name,
		"profile": u.Profile,
	}
	if u.ProfilePicture != "" {
		resp["image_url"] = u.ProfilePicture
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) tweet(c *gin.Context) {
	var req tweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := s.tweets.PostTweet(c.Request.Context(), currentUserID(c), req.Tweet); err != nil {
		s.fail(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (s *Server) follow(c *gin.Context) {
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.follows.Follow(c.Request.Context(), currentUserID(c), req.Follow); err != nil {
		s.fail(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (s *Server) unfollow(c *gin.Context) {
	var req unfollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.follows.Unfollow(c.Request.Context(), currentUserID(c), req.Unfollow); err != nil {
		s.fail(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (s *Server) timeline(c *gin.Context) {
	s.renderTimeline(c, currentUserID(c))
}

func (s *Server) publicTimeline(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	s.renderTimeline(c, userID)
}

func (s *Server) renderTimeline(c *gin.Context, userID int64) {
	timeline, err := s.tweets.GetTimeline(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":  userID,
		"timeline": timeline,
	})
}

func (s *Server) uploadProfilePicture(c *gin.Context) {
	file, err := c.FormFile("profile_pic")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing profile_pic file"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open upload"})
		return
	}
	defer src.Close()

	url, err := s.pictures.Upload(c.Request.Context(), currentUserID(c),
		file.Filename, file.Header.Get("Content-Type"), src, file.Size)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}

func (s *Server) profilePicture(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	url, err := s.pictures.PictureURL(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
