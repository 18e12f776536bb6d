// Package api is a thin HTTP client for the feed service, used by the CLI.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dkarpovs/minifeed/internal/server/models"
)

// Client talks JSON to the server and keeps the access token from the last
// successful login in memory.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// LoggedIn reports whether a login has succeeded in this session.
func (c *Client) LoggedIn() bool { return c.token != "" }

// Logout drops the in-memory token.
func (c *Client) Logout() { c.token = "" }

func (c *Client) doJSON(ctx context.Context, method, path string, reqBody any, out any) error {
	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// User is the public profile shape returned by sign-up.
type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Profile string `json:"profile"`
}

func (c *Client) SignUp(ctx context.Context, name, email, profile, password string) (*User, error) {
	var u User
	err := c.doJSON(ctx, http.MethodPost, "/sign-up", map[string]string{
		"name":     name,
		"email":    email,
		"profile":  profile,
		"password": password,
	}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authenticates and stores the access token for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return err
	}
	c.token = out.AccessToken
	return nil
}

func (c *Client) Tweet(ctx context.Context, body string) error {
	return c.doJSON(ctx, http.MethodPost, "/tweet", map[string]string{"tweet": body}, nil)
}

func (c *Client) Follow(ctx context.Context, userID int64) error {
	return c.doJSON(ctx, http.MethodPost, "/follow", map[string]int64{"follow": userID}, nil)
}

func (c *Client) Unfollow(ctx context.Context, userID int64) error {
	return c.doJSON(ctx, http.MethodPost, "/unfollow", map[string]int64{"unfollow": userID}, nil)
}

func (c *Client) Timeline(ctx context.Context) ([]models.TimelineEntry, error) {
	var out struct {
		UserID   int64                  `json:"user_id"`
		Timeline []models.TimelineEntry `json:"timeline"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/timeline", nil, &out); err != nil {
		return nil, err
	}
	return out.Timeline, nil
}

func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ping", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return nil
}
