package credentials

import (
	"os"
	"strings"
	"time"

	json "github.com/json-iterator/go"
	"github.com/tathya/tathya-cli/pkg/config"
)

// Roles that may moderate posts
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Credentials is the viewer session. It is passed explicitly to the HTTP
// client and the feed controller; nothing reads it from ambient state.
type Credentials struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
}

// Load loads credentials from disk. A missing file is not an error.
func Load() (*Credentials, error) {
	return LoadFrom(config.GetCredentialsPath())
}

// LoadFrom loads credentials from an explicit path
func LoadFrom(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
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

// Save saves credentials to disk
func Save(creds *Credentials) error {
	return SaveTo(config.GetCredentialsPath(), creds)
}

// SaveTo saves credentials to an explicit path, owner read/write only
func SaveTo(path string, creds *Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Delete deletes credentials from disk
func Delete() error {
	return DeleteFrom(config.GetCredentialsPath())
}

// DeleteFrom removes the credentials file at path. A missing file is not an error.
func DeleteFrom(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// IsExpired checks if the access token is expired. A zero expiry never expires.
func (c *Credentials) IsExpired() bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(c.ExpiresAt)
}

// IsValid checks if credentials are usable for a request
func (c *Credentials) IsValid() bool {
	return c != nil && c.AccessToken != "" && c.UserID != "" && !c.IsExpired()
}

// IsModerator reports whether the viewer may delete posts
func (c *Credentials) IsModerator() bool {
	if c == nil {
		return false
	}
	switch strings.ToLower(c.Role) {
	case RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// ViewerID returns the user id, or "" when there is no session
func (c *Credentials) ViewerID() string {
	if !c.IsValid() {
		return ""
	}
	return c.UserID
}
