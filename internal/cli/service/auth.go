package service

import (
	"fmt"

	"github.com/zfogg/murmur/internal/cli/api"
	"github.com/zfogg/murmur/internal/cli/credentials"
	"github.com/zfogg/murmur/internal/cli/logger"
	"github.com/zfogg/murmur/internal/cli/output"
	"github.com/zfogg/murmur/internal/cli/prompter"
)

type AuthService struct{}

// NewAuthService creates a new auth service
func NewAuthService() *AuthService {
	return &AuthService{}
}

// Register prompts for account details and creates the account
func (s *AuthService) Register() error {
	email, err := prompter.PromptString("Email: ")
	if err != nil {
		return err
	}
	username, err := prompter.PromptString("Username: ")
	if err != nil {
		return err
	}
	password, err := prompter.PromptPassword("Password: ")
	if err != nil {
		return err
	}
	if email == "" || username == "" || password == "" {
		return fmt.Errorf("email, username and password are required")
	}

	if err := newClient().Register(email, username, password); err != nil {
		return err
	}
	output.Success("Account %s created. Log in with `murmur auth login`.", username)
	return nil
}

// Login prompts for credentials and saves the session
func (s *AuthService) Login() error {
	creds, err := credentials.Load()
	if err != nil {
		logger.Error("Failed to load credentials", "error", err)
		return err
	}
	if creds.IsValid() {
		output.Warning("Already logged in as %s", creds.Username)
		confirm, err := prompter.PromptConfirm("Continue with new login?")
		if err != nil || !confirm {
			return err
		}
	}

	identifier, err := prompter.PromptString("Username or email: ")
	if err != nil {
		return err
	}
	if identifier == "" {
		return fmt.Errorf("username or email cannot be empty")
	}
	password, err := prompter.PromptPassword("Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	return s.login(identifier, password)
}

func (s *AuthService) login(identifier, password string) error {
	resp, err := newClient().Login(identifier, password)
	if err != nil {
		return err
	}

	creds := &credentials.Credentials{
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
		UserID:    resp.User.ID,
		Username:  resp.User.Username,
		Email:     resp.User.Email,
		IsAdmin:   resp.User.IsAdmin,
	}
	if err := credentials.Save(creds); err != nil {
		return err
	}

	if resp.User.IsAdmin {
		output.Success("Logged in as %s (admin)", resp.User.Username)
	} else {
		output.Success("Logged in as %s", resp.User.Username)
	}
	return nil
}

// Logout forgets the saved session
func (s *AuthService) Logout() error {
	creds, err := credentials.Load()
	if err != nil {
		return err
	}
	if creds == nil {
		output.Warning("Not logged in")
		return nil
	}

	// The server only clears its cookie; failing to reach it is not fatal
	if err := newClient().Logout(); err != nil {
		logger.Warn("Logout request failed", "error", err)
	}
	if err := credentials.Delete(); err != nil {
		return err
	}
	output.Success("Logged out")
	return nil
}

// Refresh swaps the saved token for a fresh one
func (s *AuthService) Refresh() error {
	client, creds, err := authedClient()
	if err != nil {
		return err
	}
	session, err := client.Refresh()
	if err != nil {
		return explain(err)
	}

	creds.Token = session.Token
	creds.ExpiresAt = session.ExpiresAt
	if err := credentials.Save(creds); err != nil {
		return err
	}
	output.Success("Session refreshed, expires %s", session.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

// ChangePassword prompts for the current and new password
func (s *AuthService) ChangePassword() error {
	client, _, err := authedClient()
	if err != nil {
		return err
	}
	current, err := prompter.PromptPassword("Current password: ")
	if err != nil {
		return err
	}
	next, err := prompter.PromptPassword("New password: ")
	if err != nil {
		return err
	}
	if err := client.ChangePassword(current, next); err != nil {
		return explain(err)
	}
	output.Success("Password changed")
	return nil
}

// Me prints the logged in user's profile
func (s *AuthService) Me() error {
	client, _, err := authedClient()
	if err != nil {
		return err
	}
	profile, err := client.Me()
	if err != nil {
		return explain(err)
	}
	return printProfile(profile)
}

func printProfile(p *api.Profile) error {
	if p == nil {
		return nil
	}
	record := map[string]interface{}{
		"ID":        p.ID,
		"Username":  p.Username,
		"Bio":       p.Bio,
		"Website":   p.Website,
		"Location":  p.Location,
		"Privacy":   p.Privacy,
		"Posts":     p.PostsCount,
		"Followers": p.FollowersCount,
		"Following": p.FollowingCount,
	}
	if p.Email != "" {
		record["Email"] = p.Email
	}
	if p.IsAdmin {
		record["Admin"] = true
	}
	return output.Record("@"+p.Username, record)
}
