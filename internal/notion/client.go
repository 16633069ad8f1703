// Package notion is a lightweight client for the Notion-compatible
// knowledge-base API: workspace search, block children, and database
// queries, plus the depth-bounded traversals built on top of them
// (see walk.go).
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/koopa0/crossref/internal/log"
)

const (
	defaultBaseURL = "https://api.notion.com"
	defaultVersion = "2022-06-28"

	// maxPageSize is the largest page the API allows.
	maxPageSize = 100

	// requestsPerSecond follows the integration rate guidance (~3 rps).
	requestsPerSecond = 3
)

// Client is a Notion API client. All methods honor the context, paginate to
// completion, and pass through a shared rate limiter.
type Client struct {
	token      string
	baseURL    string
	version    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     log.Logger
}

// Config configures a Client. Token is required; everything else defaults.
type Config struct {
	Token      string
	BaseURL    string
	Version    string
	HTTPClient *http.Client
	Logger     log.Logger
}

// New creates a Notion API client.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("notion token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Version == "" {
		cfg.Version = defaultVersion
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		token:      cfg.Token,
		baseURL:    cfg.BaseURL,
		version:    cfg.Version,
		httpClient: cfg.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		logger:     cfg.Logger,
	}, nil
}

// Search finds pages and databases matching the query. Results keep the
// API's relevance order across pages.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	return c.searchAll(ctx, SearchRequest{Query: query, PageSize: maxPageSize})
}

// SearchDatabases lists every database the integration can reach.
func (c *Client) SearchDatabases(ctx context.Context) ([]SearchResult, error) {
	return c.searchAll(ctx, SearchRequest{
		Filter:   &SearchFilter{Property: "object", Value: "database"},
		PageSize: maxPageSize,
	})
}

func (c *Client) searchAll(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	var out []SearchResult

	for {
		var resp SearchResponse
		if err := c.makeRequest(ctx, http.MethodPost, c.baseURL+"/v1/search", req, &resp); err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}

		for _, raw := range resp.Results {
			var item searchItem
			if err := json.Unmarshal(raw, &item); err != nil {
				c.logger.Warn("skipping undecodable search result", "error", err)
				continue
			}
			out = append(out, SearchResult{
				ID:         item.ID,
				Title:      extractTitle(item),
				ObjectType: item.Object,
				URL:        item.URL,
			})
		}

		if !resp.HasMore {
			break
		}
		req.StartCursor = resp.NextCursor
	}

	return out, nil
}

// BlockChildren fetches one level of a block's ordered children, following
// cursors until the level is complete. Descending into grandchildren is the
// walks' job, not the client's.
func (c *Client) BlockChildren(ctx context.Context, blockID string) ([]Block, error) {
	var all []Block
	cursor := ""

	for {
		u := fmt.Sprintf("%s/v1/blocks/%s/children?page_size=%d",
			c.baseURL, url.PathEscape(blockID), maxPageSize)
		if cursor != "" {
			u += "&start_cursor=" + url.QueryEscape(cursor)
		}

		var resp BlockChildrenResponse
		if err := c.makeRequest(ctx, http.MethodGet, u, nil, &resp); err != nil {
			return nil, fmt.Errorf("get block children failed: %w", err)
		}

		all = append(all, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return all, nil
}

// QueryDatabase fetches a database's rows as tolerant summaries. A non-empty
// feature narrows rows to those whose Feature select equals it.
func (c *Client) QueryDatabase(ctx context.Context, databaseID, feature string) ([]RowSummary, error) {
	req := queryRequest{PageSize: maxPageSize}
	if feature != "" {
		req.Filter = &propertyFilter{
			Property: "Feature",
			Select:   selectEquals{Equals: feature},
		}
	}

	var rows []RowSummary
	u := fmt.Sprintf("%s/v1/databases/%s/query", c.baseURL, url.PathEscape(databaseID))

	for {
		var resp queryResponse
		if err := c.makeRequest(ctx, http.MethodPost, u, req, &resp); err != nil {
			return nil, fmt.Errorf("query database failed: %w", err)
		}

		for _, row := range resp.Results {
			rows = append(rows, summarizeRow(row.Properties))
		}

		if !resp.HasMore {
			break
		}
		req.StartCursor = resp.NextCursor
	}

	return rows, nil
}

// makeRequest performs one rate-limited API call, decoding the reply into
// result when it is non-nil. Non-2xx statuses become errors carrying the
// status and body.
func (c *Client) makeRequest(ctx context.Context, method, u string, body, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notion API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
