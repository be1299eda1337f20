package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devtree/devtree/backend/api/internal/models"
)

// ErrNoSession is returned by Restore for an empty session.
var ErrNoSession = errors.New("no session")

// Session is the authenticated state of a client.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// LoadSession reads a session written by Save. The result is not trusted
// until passed through Client.Restore.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// Save writes the session to path, readable by the owner only.
func (s *Session) Save(path string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Restore authenticates the client with s after checking the token against
// the API. It returns the session with the user refreshed. On failure the
// client is left unauthenticated.
func (c *Client) Restore(ctx context.Context, s *Session) (*Session, error) {
	if s == nil || s.Token == "" {
		return nil, ErrNoSession
	}
	c.setToken(s.Token)
	u, err := c.Me(ctx)
	if err != nil {
		c.setToken("")
		return nil, err
	}
	return &Session{Token: s.Token, User: u}, nil
}
