// Package cli implements a line-oriented client for the feed service:
// register, log in, post tweets, manage follows, and read the timeline.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dkarpovs/minifeed/internal/client/api"
)

type App struct {
	client *api.Client
	reader *bufio.Reader
}

func NewApp(serverURL string) *App {
	return &App{
		client: api.NewClient(serverURL),
		reader: bufio.NewReader(os.Stdin),
	}
}

func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return "logged in"
	}
	return "anonymous"
}

func (a *App) Register(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	profile, err := GetSimpleText(a.reader, "Enter profile text", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.client.SignUp(ctx, name, email, profile, string(password))
	if err != nil {
		fmt.Println("Registration failed:", err)
		return err
	}
	fmt.Printf("Registered as %s (id %d). Use login to sign in.\n", user.Name, user.ID)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.client.Login(ctx, email, string(password)); err != nil {
		fmt.Println("Login failed:", err)
		return err
	}
	fmt.Println("Logged in.")
	return nil
}

func (a *App) Tweet(ctx context.Context) error {
	body, err := GetSimpleText(a.reader, "Enter tweet (max 300 characters)", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.client.Tweet(ctx, body); err != nil {
		fmt.Println("Tweet failed:", err)
		return err
	}
	fmt.Println("Posted.")
	return nil
}

func (a *App) readUserID(prompt string) (int64, error) {
	raw, err := GetSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fmt.Println("Not a user id:", raw)
		return 0, err
	}
	return id, nil
}

func (a *App) Follow(ctx context.Context) error {
	id, err := a.readUserID("Enter user id to follow")
	if err != nil {
		return err
	}
	if err := a.client.Follow(ctx, id); err != nil {
		fmt.Println("Follow failed:", err)
		return err
	}
	fmt.Println("Following", id)
	return nil
}

func (a *App) Unfollow(ctx context.Context) error {
	id, err := a.readUserID("Enter user id to unfollow")
	if err != nil {
		return err
	}
	if err := a.client.Unfollow(ctx, id); err != nil {
		fmt.Println("Unfollow failed:", err)
		return err
	}
	fmt.Println("Unfollowed", id)
	return nil
}

func (a *App) Timeline(ctx context.Context) error {
	timeline, err := a.client.Timeline(ctx)
	if err != nil {
		fmt.Println("Timeline failed:", err)
		return err
	}
	if len(timeline) == 0 {
		fmt.Println("Timeline is empty.")
		return nil
	}
	for _, e := range timeline {
		fmt.Printf("[%d] %s\n", e.UserID, e.Tweet)
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.client.Logout()
	fmt.Println("Logged out.")
	return nil
}
