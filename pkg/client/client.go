// Package client is a typed HTTP client for the DevTree API.
//
// Authentication state lives in an explicit [Session]. A session obtained from
// Register or Login can be persisted with [Session.Save], loaded again with
// [LoadSession] and must be validated with [Client.Restore] before use:
//
//	c := client.New("http://localhost:4000")
//	s, err := client.LoadSession(path)
//	if err == nil {
//		s, err = c.Restore(ctx, s)
//	}
//	if client.IsUnauthorized(err) {
//		// ask for credentials again
//	}
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtree/devtree/backend/api/internal/models"
	"github.com/devtree/devtree/backend/api/internal/search"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("devtree api: %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// New returns a client for baseURL, e.g. "http://localhost:4000". The /api
// prefix is added by the client.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithHTTPClient replaces the underlying http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the token sent with requests, or "".
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Message != "" {
			apiErr.Message = payload.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// call runs a request and decodes the answer into a T.
func call[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T
	err := c.do(ctx, method, path, body, &out)
	return out, err
}

type authResponse struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Role  string             `json:"role"`
	Token string             `json:"token"`
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*Session, error) {
	var res authResponse
	if err := c.do(ctx, http.MethodPost, path, body, &res); err != nil {
		return nil, err
	}
	c.setToken(res.Token)
	return &Session{
		Token: res.Token,
		User:  &models.User{ID: res.ID, Name: res.Name, Email: res.Email, Role: res.Role},
	}, nil
}

// Register creates an account and authenticates the client as it.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/auth/register", map[string]string{"name": name, "email": email, "password": password})
}

// Login authenticates the client.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/auth/login", map[string]string{"email": email, "password": password})
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout revokes the current token and forgets it.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.setToken("")
	return nil
}

// TreeInput is the body of tree create and update.
type TreeInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	IsPublic    bool     `json:"isPublic"`
	Tags        []string `json:"tags,omitempty"`
	Nodes       []string `json:"nodes,omitempty"`
}

func (c *Client) CreateTree(ctx context.Context, in TreeInput) (*models.Tree, error) {
	return call[*models.Tree](ctx, c, http.MethodPost, "/trees", in)
}

func (c *Client) UpdateTree(ctx context.Context, id string, in TreeInput) (*models.Tree, error) {
	return call[*models.Tree](ctx, c, http.MethodPut, "/trees/"+url.PathEscape(id), in)
}

func (c *Client) DeleteTree(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/trees/"+url.PathEscape(id), nil, nil)
}

func (c *Client) MyTrees(ctx context.Context) ([]*models.Tree, error) {
	return call[[]*models.Tree](ctx, c, http.MethodGet, "/trees/mine", nil)
}

func (c *Client) PublicTrees(ctx context.Context) ([]models.TreeSummary, error) {
	return call[[]models.TreeSummary](ctx, c, http.MethodGet, "/trees/public", nil)
}

func (c *Client) TrendingTrees(ctx context.Context) ([]*models.Tree, error) {
	return call[[]*models.Tree](ctx, c, http.MethodGet, "/trees/trending", nil)
}

func (c *Client) TreesByCategory(ctx context.Context, category string) ([]*models.Tree, error) {
	return call[[]*models.Tree](ctx, c, http.MethodGet, "/trees/category/"+url.PathEscape(category), nil)
}

func (c *Client) SearchTrees(ctx context.Context, q string) ([]*models.Tree, error) {
	return call[[]*models.Tree](ctx, c, http.MethodGet, "/trees/search?q="+url.QueryEscape(q), nil)
}

func (c *Client) Tags(ctx context.Context) ([]string, error) {
	return call[[]string](ctx, c, http.MethodGet, "/trees/tags/all", nil)
}

// Tree returns a public tree with its nodes.
func (c *Client) Tree(ctx context.Context, id string) (*models.TreeWithNodes, error) {
	return call[*models.TreeWithNodes](ctx, c, http.MethodGet, "/trees/"+url.PathEscape(id), nil)
}

// PrivateTree returns an owned tree of any visibility with its nodes.
func (c *Client) PrivateTree(ctx context.Context, id string) (*models.TreeWithNodes, error) {
	return call[*models.TreeWithNodes](ctx, c, http.MethodGet, "/trees/"+url.PathEscape(id)+"/private", nil)
}

// NodeInput is the body of node create and update. Tree and Parent are only
// read on create.
type NodeInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type"`
	Tags        []string `json:"tags,omitempty"`
	Tree        string   `json:"tree,omitempty"`
	Parent      string   `json:"parent,omitempty"`
}

func (c *Client) CreateNode(ctx context.Context, in NodeInput) (*models.Node, error) {
	return call[*models.Node](ctx, c, http.MethodPost, "/nodes", in)
}

func (c *Client) UpdateNode(ctx context.Context, id string, in NodeInput) (*models.Node, error) {
	return call[*models.Node](ctx, c, http.MethodPut, "/nodes/"+url.PathEscape(id), in)
}

func (c *Client) DeleteNode(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/nodes/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Nodes(ctx context.Context) ([]*models.Node, error) {
	return call[[]*models.Node](ctx, c, http.MethodGet, "/nodes", nil)
}

// Node returns a node with its tree and creator.
func (c *Client) Node(ctx context.Context, id string) (*models.NodeDetail, error) {
	return call[*models.NodeDetail](ctx, c, http.MethodGet, "/nodes/"+url.PathEscape(id), nil)
}

// TreeNodes returns the caller's nodes of a tree, oldest first.
func (c *Client) TreeNodes(ctx context.Context, treeID string) ([]*models.Node, error) {
	return call[[]*models.Node](ctx, c, http.MethodGet, "/nodes/tree/"+url.PathEscape(treeID), nil)
}

// Completion is the answer of Complete.
type Completion struct {
	Message   string               `json:"message"`
	Completed []primitive.ObjectID `json:"completed"`
	NewBadges []*models.Badge      `json:"newBadges"`
}

// AddFavorite returns the resulting favorites list.
func (c *Client) AddFavorite(ctx context.Context, nodeID string) ([]primitive.ObjectID, error) {
	var res struct {
		Favorites []primitive.ObjectID `json:"favorites"`
	}
	if err := c.do(ctx, http.MethodPost, "/progress/favorites/"+url.PathEscape(nodeID), nil, &res); err != nil {
		return nil, err
	}
	return res.Favorites, nil
}

func (c *Client) Complete(ctx context.Context, nodeID string) (*Completion, error) {
	return call[*Completion](ctx, c, http.MethodPost, "/progress/completed/"+url.PathEscape(nodeID), nil)
}

func (c *Client) Favorites(ctx context.Context) ([]*models.Node, error) {
	return call[[]*models.Node](ctx, c, http.MethodGet, "/progress/favorites", nil)
}

func (c *Client) Completed(ctx context.Context) ([]*models.Node, error) {
	return call[[]*models.Node](ctx, c, http.MethodGet, "/progress/completed", nil)
}

func (c *Client) AddComment(ctx context.Context, nodeID, text string) (*models.CommentView, error) {
	return call[*models.CommentView](ctx, c, http.MethodPost, "/comments/"+url.PathEscape(nodeID), map[string]string{"text": text})
}

func (c *Client) Comments(ctx context.Context, nodeID string) ([]*models.CommentView, error) {
	return call[[]*models.CommentView](ctx, c, http.MethodGet, "/comments/"+url.PathEscape(nodeID)+"/comments", nil)
}

func (c *Client) Badges(ctx context.Context) ([]*models.Badge, error) {
	return call[[]*models.Badge](ctx, c, http.MethodGet, "/badges", nil)
}

func (c *Client) UserBadges(ctx context.Context, userID string) ([]*models.UserBadgeView, error) {
	return call[[]*models.UserBadgeView](ctx, c, http.MethodGet, "/badges/"+url.PathEscape(userID), nil)
}

// Search looks q up in public trees and nodes.
func (c *Client) Search(ctx context.Context, q string) ([]search.Result, error) {
	return call[[]search.Result](ctx, c, http.MethodGet, "/search?q="+url.QueryEscape(q), nil)
}
