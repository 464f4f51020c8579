package ghost

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mealcart/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const pageSize = 50

// Post is a recipe post from the Ghost API.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	HTML      string `json:"html"`
	UpdatedAt string `json:"updated_at"`
}

type pagination struct {
	Page  int  `json:"page"`
	Pages int  `json:"pages"`
	Next  *int `json:"next"`
}

// PostsResponse is the top-level structure of the Ghost API response for posts.
type PostsResponse struct {
	Posts []Post `json:"posts"`
	Meta  struct {
		Pagination pagination `json:"pagination"`
	} `json:"meta"`
}

// Client is a Ghost API client covering the Content and Admin APIs.
type Client interface {
	FetchRecipes(ctx context.Context) ([]Post, error)
	CreatePost(ctx context.Context, title, html string, publish bool) (*Post, error)
}

type ghostClient struct {
	httpClient *http.Client
	config     *config.Config
}

// NewClient creates a new Ghost API client.
func NewClient(cfg *config.Config) Client {
	return &ghostClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		config:     cfg,
	}
}

// FetchRecipes fetches every post from the Content API, following pagination.
func (c *ghostClient) FetchRecipes(ctx context.Context) ([]Post, error) {
	var posts []Post
	for page := 1; ; {
		resp, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		posts = append(posts, resp.Posts...)

		next := resp.Meta.Pagination.Next
		if next == nil || *next <= page {
			return posts, nil
		}
		page = *next
	}
}

func (c *ghostClient) fetchPage(ctx context.Context, page int) (*PostsResponse, error) {
	q := url.Values{}
	q.Set("key", c.config.GhostContentKey)
	q.Set("limit", fmt.Sprint(pageSize))
	q.Set("page", fmt.Sprint(page))
	q.Set("formats", "html")
	endpoint := fmt.Sprintf("%s/ghost/api/content/posts/?%s", c.config.GhostURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content api error: status %d", resp.StatusCode)
	}

	var postsResponse PostsResponse
	if err := json.NewDecoder(resp.Body).Decode(&postsResponse); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &postsResponse, nil
}

// CreatePost creates a new post using the Ghost Admin API.
func (c *ghostClient) CreatePost(ctx context.Context, title, html string, publish bool) (*Post, error) {
	token, err := c.createAdminToken()
	if err != nil {
		return nil, fmt.Errorf("failed to create admin token: %w", err)
	}

	status := "draft"
	if publish {
		status = "published"
	}

	body, err := json.Marshal(map[string]any{
		"posts": []map[string]any{
			{"title": title, "html": html, "status": status},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal post: %w", err)
	}
	endpoint := fmt.Sprintf("%s/ghost/api/admin/posts/?source=html", c.config.GhostURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Ghost "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		var errResp any
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, fmt.Errorf("admin api error: status %d, body: %v", resp.StatusCode, errResp)
	}

	var response PostsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(response.Posts) == 0 {
		return nil, fmt.Errorf("no post returned from api")
	}
	return &response.Posts[0], nil
}

// createAdminToken generates a short-lived JWT for the Admin API.
// Admin keys have the form "<id>:<hex secret>".
func (c *ghostClient) createAdminToken() (string, error) {
	id, secretHex, ok := strings.Cut(c.config.GhostAdminKey, ":")
	if !ok || id == "" {
		return "", fmt.Errorf("invalid admin key format: expected id:secret")
	}

	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
		"aud": "/admin/",
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}
