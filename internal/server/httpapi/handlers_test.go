package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkarpovs/minifeed/internal/common"
	"github.com/dkarpovs/minifeed/internal/dbx"
	"github.com/dkarpovs/minifeed/internal/logging"
	"github.com/dkarpovs/minifeed/internal/server/config"
	"github.com/dkarpovs/minifeed/internal/server/models"
	"github.com/dkarpovs/minifeed/internal/server/repositories/follows"
	"github.com/dkarpovs/minifeed/internal/server/repositories/tweets"
	"github.com/dkarpovs/minifeed/internal/server/repositories/users"
	"github.com/dkarpovs/minifeed/internal/server/services"
)

// memStore is an in-memory replacement for the Postgres repositories so the
// router can be exercised end to end through httptest. It implements the
// repository interfaces and vends itself as the repository manager.
type memStore struct {
	mu           sync.Mutex
	nextUserID   int64
	nextTweetID  int64
	usersByID    map[int64]*models.User
	usersByEmail map[string]*models.User
	pictures     map[int64]string
	tweetRows    []models.Tweet
	followEdges  map[int64]map[int64]bool
}

func newMemStore() *memStore {
	return &memStore{
		usersByID:    map[int64]*models.User{},
		usersByEmail: map[string]*models.User{},
		pictures:     map[int64]string{},
		followEdges:  map[int64]map[int64]bool{},
	}
}

func (m *memStore) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *memStore) Users(db dbx.DBTX) users.Repository                  { return m }
func (m *memStore) Tweets(db dbx.DBTX) tweets.Repository                { return m }
func (m *memStore) Follows(db dbx.DBTX) follows.Repository              { return m }

func (m *memStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.usersByEmail[user.Email]; ok {
		return nil, common.ErrDuplicateEmail
	}
	m.nextUserID++
	u := *user
	u.ID = m.nextUserID
	m.usersByID[u.ID] = &u
	m.usersByEmail[u.Email] = &u
	return &u, nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.usersByEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (m *memStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.usersByID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (m *memStore) SaveProfilePicture(ctx context.Context, userID int64, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.usersByID[userID]; !ok {
		return common.ErrUnknownUser
	}
	m.pictures[userID] = url
	return nil
}

func (m *memStore) GetProfilePicture(ctx context.Context, userID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url, ok := m.pictures[userID]
	if !ok {
		return "", common.ErrorNotFound
	}
	return url, nil
}

func (m *memStore) Append(ctx context.Context, tweet *models.Tweet) (*models.Tweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.usersByID[tweet.UserID]; !ok {
		return nil, common.ErrUnknownUser
	}
	m.nextTweetID++
	t := *tweet
	t.ID = m.nextTweetID
	m.tweetRows = append(m.tweetRows, t)
	return &t, nil
}

func (m *memStore) SelectTimeline(ctx context.Context, viewerID int64) ([]models.TimelineEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	timeline := []models.TimelineEntry{}
	for _, row := range m.tweetRows {
		if row.UserID == viewerID || m.followEdges[viewerID][row.UserID] {
			timeline = append(timeline, models.TimelineEntry{UserID: row.UserID, Tweet: row.Tweet})
		}
	}
	return timeline, nil
}

func (m *memStore) Follow(ctx context.Context, followerID, followeeID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.usersByID[followeeID]; !ok {
		return common.ErrUnknownUser
	}
	if m.followEdges[followerID] == nil {
		m.followEdges[followerID] = map[int64]bool{}
	}
	m.followEdges[followerID][followeeID] = true
	return nil
}

func (m *memStore) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.followEdges[followerID], followeeID)
	return nil
}

func (m *memStore) Followees(ctx context.Context, userID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []int64{}
	for id := range m.followEdges[userID] {
		out = append(out, id)
	}
	return out, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.AccessTokenValidityDuration = time.Hour

	store := newMemStore()
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))

	srv := NewServer(":0", logger,
		services.NewUserService(nil, store, cfg),
		services.NewTweetService(nil, store),
		services.NewFollowService(nil, store),
		services.NewProfilePictureService(nil, store, cfg),
	)
	return srv.Router(), store
}

func doRequest(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signUp(t *testing.T, router *gin.Engine, name, email string) int64 {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/sign-up", "", gin.H{
		"name": name, "email": email, "profile": "hi", "password": "pw-" + name,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

func login(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

type timelineResponse struct {
	UserID   int64                  `json:"user_id"`
	Timeline []models.TimelineEntry `json:"timeline"`
}

func getTimeline(t *testing.T, router *gin.Engine, path, token string) timelineResponse {
	t.Helper()
	w := doRequest(router, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp timelineResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestPing(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doRequest(router, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestSignUpDuplicateEmail(t *testing.T) {
	router, _ := newTestRouter(t)
	signUp(t, router, "alice", "alice@example.com")

	w := doRequest(router, http.MethodPost, "/sign-up", "", gin.H{
		"name": "other", "email": "alice@example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	router, _ := newTestRouter(t)
	signUp(t, router, "alice", "alice@example.com")

	w := doRequest(router, http.MethodPost, "/login", "", gin.H{
		"email": "alice@example.com", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, http.MethodPost, "/login", "", gin.H{
		"email": "ghost@example.com", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMutationsRequireToken(t *testing.T) {
	router, store := newTestRouter(t)
	signUp(t, router, "alice", "alice@example.com")

	calls := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/tweet", gin.H{"tweet": "hello"}},
		{http.MethodPost, "/follow", gin.H{"follow": 1}},
		{http.MethodPost, "/unfollow", gin.H{"unfollow": 1}},
		{http.MethodGet, "/timeline", nil},
		{http.MethodPost, "/profile-picture", nil},
	}

	for _, call := range calls {
		w := doRequest(router, call.method, call.path, "", call.body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s without token", call.method, call.path)

		w = doRequest(router, call.method, call.path, "not-a-jwt", call.body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s with bad token", call.method, call.path)
	}

	assert.Empty(t, store.tweetRows, "rejected calls must not touch state")
	assert.Empty(t, store.followEdges)
}

func TestTweetTooLong(t *testing.T) {
	router, store := newTestRouter(t)
	signUp(t, router, "alice", "alice@example.com")
	token := login(t, router, "alice@example.com", "pw-alice")

	w := doRequest(router, http.MethodPost, "/tweet", token, gin.H{"tweet": strings.Repeat("x", 301)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.tweetRows)

	w = doRequest(router, http.MethodPost, "/tweet", token, gin.H{"tweet": strings.Repeat("x", 300)})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, store.tweetRows, 1)
}

func TestOwnTweetsAppearInTimeline(t *testing.T) {
	router, _ := newTestRouter(t)
	alice := signUp(t, router, "alice", "alice@example.com")
	token := login(t, router, "alice@example.com", "pw-alice")

	resp := getTimeline(t, router, "/timeline", token)
	assert.Equal(t, alice, resp.UserID)
	assert.Equal(t, []models.TimelineEntry{}, resp.Timeline, "empty timeline must render as []")

	w := doRequest(router, http.MethodPost, "/tweet", token, gin.H{"tweet": "tweet test"})
	require.Equal(t, http.StatusOK, w.Code)

	resp = getTimeline(t, router, "/timeline", token)
	assert.Equal(t, []models.TimelineEntry{{UserID: alice, Tweet: "tweet test"}}, resp.Timeline)
}

func TestFollowUnfollowScenario(t *testing.T) {
	router, _ := newTestRouter(t)
	alice := signUp(t, router, "alice", "alice@example.com")
	bob := signUp(t, router, "bob", "bob@example.com")
	aliceToken := login(t, router, "alice@example.com", "pw-alice")
	bobToken := login(t, router, "bob@example.com", "pw-bob")

	w := doRequest(router, http.MethodPost, "/tweet", bobToken, gin.H{"tweet": "Hello World!"})
	require.Equal(t, http.StatusOK, w.Code)

	// Not following yet: Bob's post is invisible.
	resp := getTimeline(t, router, "/timeline", aliceToken)
	assert.Empty(t, resp.Timeline)

	w = doRequest(router, http.MethodPost, "/follow", aliceToken, gin.H{"follow": bob})
	require.Equal(t, http.StatusOK, w.Code)

	resp = getTimeline(t, router, "/timeline", aliceToken)
	assert.Equal(t, []models.TimelineEntry{{UserID: bob, Tweet: "Hello World!"}}, resp.Timeline)

	// Merged feed preserves global append order across authors.
	w = doRequest(router, http.MethodPost, "/tweet", aliceToken, gin.H{"tweet": "me too"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(router, http.MethodPost, "/tweet", bobToken, gin.H{"tweet": "again"})
	require.Equal(t, http.StatusOK, w.Code)

	resp = getTimeline(t, router, "/timeline", aliceToken)
	assert.Equal(t, []models.TimelineEntry{
		{UserID: bob, Tweet: "Hello World!"},
		{UserID: alice, Tweet: "me too"},
		{UserID: bob, Tweet: "again"},
	}, resp.Timeline)

	w = doRequest(router, http.MethodPost, "/unfollow", aliceToken, gin.H{"unfollow": bob})
	require.Equal(t, http.StatusOK, w.Code)

	resp = getTimeline(t, router, "/timeline", aliceToken)
	assert.Equal(t, []models.TimelineEntry{{UserID: alice, Tweet: "me too"}}, resp.Timeline)
}

func TestFollowUnknownUser(t *testing.T) {
	router, _ := newTestRouter(t)
	signUp(t, router, "alice", "alice@example.com")
	token := login(t, router, "alice@example.com", "pw-alice")

	w := doRequest(router, http.MethodPost, "/follow", token, gin.H{"follow": 999})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublicTimeline(t *testing.T) {
	router, _ := newTestRouter(t)
	alice := signUp(t, router, "alice", "alice@example.com")
	token := login(t, router, "alice@example.com", "pw-alice")

	w := doRequest(router, http.MethodPost, "/tweet", token, gin.H{"tweet": "public"})
	require.Equal(t, http.StatusOK, w.Code)

	// No token required for the public per-user view.
	resp := getTimeline(t, router, fmt.Sprintf("/timeline/%d", alice), "")
	assert.Equal(t, alice, resp.UserID)
	assert.Equal(t, []models.TimelineEntry{{UserID: alice, Tweet: "public"}}, resp.Timeline)

	w = doRequest(router, http.MethodGet, "/timeline/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserProfile(t *testing.T) {
	router, store := newTestRouter(t)
	alice := signUp(t, router, "alice", "alice@example.com")

	w := doRequest(router, http.MethodGet, fmt.Sprintf("/user/%d", alice), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp["name"])
	assert.Equal(t, "hi", resp["profile"])
	assert.NotContains(t, resp, "email", "public profile must not leak the email")
	assert.NotContains(t, resp, "image_url", "no picture set yet")

	store.pictures[alice] = "http://127.0.0.1:9000/profile-pictures/profile/a.png"
	store.usersByID[alice].ProfilePicture = store.pictures[alice]
	w = doRequest(router, http.MethodGet, fmt.Sprintf("/user/%d", alice), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, store.pictures[alice], resp["image_url"])

	w = doRequest(router, http.MethodGet, "/user/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodGet, "/user/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfilePictureLookup(t *testing.T) {
	router, store := newTestRouter(t)
	alice := signUp(t, router, "alice", "alice@example.com")

	w := doRequest(router, http.MethodGet, fmt.Sprintf("/profile-picture/%d", alice), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	store.pictures[alice] = "http://127.0.0.1:9000/profile-pictures/profile/a.png"
	w = doRequest(router, http.MethodGet, fmt.Sprintf("/profile-picture/%d", alice), "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		ImageURL string `json:"image_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, store.pictures[alice], resp.ImageURL)
}

func TestUploadProfilePictureRequiresFile(t *testing.T) {
	router, _ := newTestRouter(t)
	signUp(t, router, "alice", "alice@example.com")
	token := login(t, router, "alice@example.com", "pw-alice")

	w := doRequest(router, http.MethodPost, "/profile-picture", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
