// Package service implements the murmur CLI commands on top of the API client
package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zfogg/murmur/internal/cli/api"
	"github.com/zfogg/murmur/internal/cli/config"
	"github.com/zfogg/murmur/internal/cli/credentials"
	"github.com/zfogg/murmur/internal/cli/output"
)

// ErrNotLoggedIn is returned by commands that need a saved session
var ErrNotLoggedIn = errors.New("not logged in, run `murmur auth login` first")

// newClient builds a client from config and attaches the saved token if there is one
func newClient() *api.Client {
	timeout := time.Duration(config.GetInt("api.timeout")) * time.Second
	client := api.New(config.GetString("api.base_url"), timeout)
	if creds, err := credentials.Load(); err == nil && creds.IsValid() {
		client.SetToken(creds.Token)
	}
	return client
}

// authedClient is newClient for commands that require a session
func authedClient() (*api.Client, *credentials.Credentials, error) {
	creds, err := credentials.Load()
	if err != nil {
		return nil, nil, err
	}
	if !creds.IsValid() {
		return nil, nil, ErrNotLoggedIn
	}
	return newClient(), creds, nil
}

// explain rewrites API errors the user can act on
func explain(err error) error {
	if api.IsUnauthorized(err) {
		return fmt.Errorf("%w (session expired? run `murmur auth login`)", err)
	}
	return err
}

func printPosts(posts []api.Post) error {
	if output.IsJSON() {
		return output.JSON(posts)
	}
	if len(posts) == 0 {
		output.Info("No posts")
		return nil
	}

	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		author := p.Author
		if p.AuthorProfile != nil {
			author = "@" + p.AuthorProfile.Username
		}
		rows = append(rows, []string{
			p.ID,
			author,
			oneLine(p.Content, 60),
			strconv.Itoa(p.LikeCount),
			strconv.Itoa(p.CommentCount),
			humanTime(p.CreatedAt),
		})
	}
	output.Table([]string{"ID", "AUTHOR", "CONTENT", "LIKES", "COMMENTS", "POSTED"}, rows)
	return nil
}

func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func humanTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Local().Format("2006-01-02")
	}
}
