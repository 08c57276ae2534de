package credentials

import (
	"errors"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/zfogg/murmur/internal/cli/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Credentials is the session saved by `murmur auth login`
type Credentials struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
}

// Load reads the saved credentials. It returns nil, nil when none exist.
func Load() (*Credentials, error) {
	data, err := os.ReadFile(config.GetCredentialsPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Save writes creds readable by the owner only
func Save(creds *Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(config.GetCredentialsPath(), data, 0600)
}

// Delete removes the saved credentials; missing credentials are not an error
func Delete() error {
	err := os.Remove(config.GetCredentialsPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// IsExpired checks if the token is expired
func (c *Credentials) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// IsValid checks if credentials can be used. A nil *Credentials is not valid.
func (c *Credentials) IsValid() bool {
	return c != nil && c.Token != "" && !c.IsExpired()
}
