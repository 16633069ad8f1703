package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/crossref/internal/github"
)

// searchFallbackRoot is the subtree scanned when the code-search API comes
// back empty or unavailable.
const searchFallbackRoot = "src"

// registerGitHubTools registers the repository tools.
// Tools: github_search_code, github_get_file, github_list_repo
func (s *Server) registerGitHubTools() error {
	searchSchema, err := jsonschema.For[SearchCodeInput](nil)
	if err != nil {
		return fmt.Errorf("schema for github_search_code: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "github_search_code",
		Description: "Search code in the repo (fallback to list+filter)",
		InputSchema: searchSchema,
	}, s.SearchCode)

	getFileSchema, err := jsonschema.For[GetFileInput](nil)
	if err != nil {
		return fmt.Errorf("schema for github_get_file: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "github_get_file",
		Description: "Get file content from repo",
		InputSchema: getFileSchema,
	}, s.GetFile)

	listRepoSchema, err := jsonschema.For[ListRepoInput](nil)
	if err != nil {
		return fmt.Errorf("schema for github_list_repo: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "github_list_repo",
		Description: "List all files under a path (default: root)",
		InputSchema: listRepoSchema,
	}, s.ListRepo)

	return nil
}

// SearchCodeInput defines the input schema for github_search_code.
type SearchCodeInput struct {
	Query string `json:"query" jsonschema:"Search terms to match against repository code"`
}

// SearchCodeResult lists the matching file paths.
type SearchCodeResult struct {
	Success bool     `json:"success"`
	Files   []string `json:"files"`
}

// SearchCode handles the github_search_code tool call. The search API is
// tried first; when it errors or matches nothing, the src tree is flattened
// and filtered by keyword instead, so a stale search index still yields
// candidates.
func (s *Server) SearchCode(ctx context.Context, req *mcp.CallToolRequest, in SearchCodeInput) (*mcp.CallToolResult, any, error) {
	paths, err := s.github.SearchCode(ctx, in.Query)
	if err == nil && len(paths) > 0 {
		return success(SearchCodeResult{Success: true, Files: paths}), nil, nil
	}
	if err != nil {
		s.logger.Debug("code search unavailable, scanning tree", "error", err)
	}

	entries, err := github.FlattenTree(ctx, s.github, searchFallbackRoot)
	if err != nil {
		return failure(fmt.Sprintf("code search fallback failed: %v", err)), nil, nil
	}

	keywords := strings.Fields(strings.ToLower(in.Query))
	matched := make([]string, 0, len(entries))
	for _, e := range entries {
		lower := strings.ToLower(e.Path)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, e.Path)
				break
			}
		}
	}

	return success(SearchCodeResult{Success: true, Files: matched}), nil, nil
}

// GetFileInput defines the input schema for github_get_file.
type GetFileInput struct {
	Path string `json:"path" jsonschema:"Repo-relative path of the file to fetch"`
}

// GetFileResult carries a file's decoded content.
type GetFileResult struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
	URL     string `json:"url"`
	Path    string `json:"path"`
}

// GetFile handles the github_get_file tool call.
func (s *Server) GetFile(ctx context.Context, req *mcp.CallToolRequest, in GetFileInput) (*mcp.CallToolResult, any, error) {
	f, err := s.github.GetFile(ctx, in.Path)
	if err != nil {
		return failure(err.Error()), nil, nil
	}

	return success(GetFileResult{
		Success: true,
		Content: f.Content,
		URL:     f.URL,
		Path:    f.Path,
	}), nil, nil
}

// ListRepoInput defines the input schema for github_list_repo. An empty
// path means the repository root.
type ListRepoInput struct {
	Path string `json:"path,omitempty" jsonschema:"Directory to list recursively; empty for the repo root"`
}

// ListRepoResult lists every file under the requested path.
type ListRepoResult struct {
	Success bool           `json:"success"`
	Items   []github.Entry `json:"items"`
}

// ListRepo handles the github_list_repo tool call: the whole subtree,
// files only, in listing order.
func (s *Server) ListRepo(ctx context.Context, req *mcp.CallToolRequest, in ListRepoInput) (*mcp.CallToolResult, any, error) {
	entries, err := github.FlattenTree(ctx, s.github, in.Path)
	if err != nil {
		return failure(err.Error()), nil, nil
	}
	if entries == nil {
		entries = []github.Entry{}
	}

	return success(ListRepoResult{Success: true, Items: entries}), nil, nil
}
