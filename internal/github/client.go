// Package github is a minimal client for the GitHub-compatible repository
// API scoped to one repo: code search, file contents, and directory
// listings, plus the recursive flatten built on the listings (see walk.go).
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"

	// searchPageSize caps code-search hits per query.
	searchPageSize = 10
)

// Entry is one item of a directory listing. Path is the full repo-relative
// path, slash-joined from the listing root.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

// Entry types as the contents API reports them.
const (
	TypeFile = "file"
	TypeDir  = "dir"
)

// File is a repository file with its content decoded.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// Client talks to the repository API for a single owner/name repo.
type Client struct {
	token      string
	repo       string
	baseURL    string
	httpClient *http.Client
}

// Config configures a Client. Token and Repo ("owner/name") are required.
type Config struct {
	Token      string
	Repo       string
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a repository API client.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github token is required")
	}
	if cfg.Repo == "" {
		return nil, fmt.Errorf("github repo is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		token:      cfg.Token,
		repo:       cfg.Repo,
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
	}, nil
}

// SearchCode runs a code search scoped to the repo and returns the matching
// file paths. Zero hits return an empty slice, not an error; callers decide
// whether to fall back to a tree scan.
func (c *Client) SearchCode(ctx context.Context, query string) ([]string, error) {
	params := url.Values{
		"q":        {query + " repo:" + c.repo},
		"per_page": {fmt.Sprint(searchPageSize)},
	}

	var resp struct {
		TotalCount int `json:"total_count"`
		Items      []struct {
			Path string `json:"path"`
		} `json:"items"`
	}
	if err := c.get(ctx, c.baseURL+"/search/code?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("code search failed: %w", err)
	}

	paths := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		paths = append(paths, item.Path)
	}
	return paths, nil
}

// GetFile fetches one file and decodes its base64 content. The returned
// Path echoes the requested path.
func (c *Client) GetFile(ctx context.Context, path string) (File, error) {
	var resp struct {
		Content string `json:"content"`
		HTMLURL string `json:"html_url"`
	}
	u := fmt.Sprintf("%s/repos/%s/contents/%s", c.baseURL, c.repo, escapePath(path))
	if err := c.get(ctx, u, &resp); err != nil {
		return File{}, fmt.Errorf("get file %q failed: %w", path, err)
	}

	// The contents API wraps base64 at 60 columns; strip the newlines
	// before decoding.
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		return File{}, fmt.Errorf("decoding content of %q: %w", path, err)
	}

	return File{Path: path, Content: string(decoded), URL: resp.HTMLURL}, nil
}

// ListDirectory lists one directory level. Entry paths are joined from the
// requested path, so listing "dir" yields paths like "dir/b.txt".
func (c *Client) ListDirectory(ctx context.Context, path string) ([]Entry, error) {
	var items []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	u := fmt.Sprintf("%s/repos/%s/contents/%s", c.baseURL, c.repo, escapePath(path))
	if err := c.get(ctx, u, &items); err != nil {
		return nil, fmt.Errorf("list directory %q failed: %w", path, err)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, Entry{
			Name: item.Name,
			Path: strings.TrimLeft(path+"/"+item.Name, "/"),
			Type: item.Type,
		})
	}
	return entries, nil
}

// get performs one authenticated GET, decoding the JSON reply into result.
// Non-2xx statuses become errors carrying the status and body.
func (c *Client) get(ctx context.Context, u string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("github API error (status %d): %s", resp.StatusCode, string(body))
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

// escapePath escapes each path segment while keeping the separators.
func escapePath(p string) string {
	if p == "" {
		return ""
	}
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
