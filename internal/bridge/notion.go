package bridge

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/crossref/internal/notion"
)

// registerNotionTools registers the workspace tools.
// Tools: notion_search, notion_get_page_content, notion_query_database,
// notion_get_db_from_page, notion_list_all_databases
func (s *Server) registerNotionTools() error {
	searchSchema, err := jsonschema.For[NotionSearchInput](nil)
	if err != nil {
		return fmt.Errorf("schema for notion_search: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "notion_search",
		Description: "Search Notion workspace for pages AND databases",
		InputSchema: searchSchema,
	}, s.NotionSearch)

	pageContentSchema, err := jsonschema.For[PageContentInput](nil)
	if err != nil {
		return fmt.Errorf("schema for notion_get_page_content: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "notion_get_page_content",
		Description: "Get full text content of a page",
		InputSchema: pageContentSchema,
	}, s.PageContent)

	queryDatabaseSchema, err := jsonschema.For[QueryDatabaseInput](nil)
	if err != nil {
		return fmt.Errorf("schema for notion_query_database: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "notion_query_database",
		Description: "Query Notion database (optional: filter by feature)",
		InputSchema: queryDatabaseSchema,
	}, s.QueryDatabase)

	dbFromPageSchema, err := jsonschema.For[DatabaseFromPageInput](nil)
	if err != nil {
		return fmt.Errorf("schema for notion_get_db_from_page: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "notion_get_db_from_page",
		Description: "Find inline/linked database in a page (searches recursively, returns all found)",
		InputSchema: dbFromPageSchema,
	}, s.DatabaseFromPage)

	listDatabasesSchema, err := jsonschema.For[ListDatabasesInput](nil)
	if err != nil {
		return fmt.Errorf("schema for notion_list_all_databases: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "notion_list_all_databases",
		Description: "List ALL databases accessible to the integration (useful for finding database IDs)",
		InputSchema: listDatabasesSchema,
	}, s.ListDatabases)

	return nil
}

// NotionSearchInput defines the input schema for notion_search.
type NotionSearchInput struct {
	Query string `json:"query" jsonschema:"Text to search pages and databases for"`
}

// NotionSearchResult lists search hits across pages and databases.
type NotionSearchResult struct {
	Success bool                  `json:"success"`
	Results []notion.SearchResult `json:"results"`
}

// NotionSearch handles the notion_search tool call.
func (s *Server) NotionSearch(ctx context.Context, req *mcp.CallToolRequest, in NotionSearchInput) (*mcp.CallToolResult, any, error) {
	results, err := s.notion.Search(ctx, in.Query)
	if err != nil {
		return failure(err.Error()), nil, nil
	}
	if results == nil {
		results = []notion.SearchResult{}
	}

	return success(NotionSearchResult{Success: true, Results: results}), nil, nil
}

// PageContentInput defines the input schema for notion_get_page_content.
type PageContentInput struct {
	PageID string `json:"page_id" jsonschema:"ID of the page to read"`
}

// PageContentResult carries a page's aggregated text.
type PageContentResult struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
}

// PageContent handles the notion_get_page_content tool call. A page with
// no text at all is a failed envelope, so the model can tell "nothing
// there" from an upstream fault by the error text.
func (s *Server) PageContent(ctx context.Context, req *mcp.CallToolRequest, in PageContentInput) (*mcp.CallToolResult, any, error) {
	text, err := notion.PageText(ctx, s.notion, in.PageID)
	if err != nil {
		return failure(err.Error()), nil, nil
	}

	return success(PageContentResult{Success: true, Content: text}), nil, nil
}

// QueryDatabaseInput defines the input schema for notion_query_database.
type QueryDatabaseInput struct {
	DatabaseID string `json:"database_id" jsonschema:"ID of the database to query"`
	Feature    string `json:"feature,omitempty" jsonschema:"Optional Feature select value to filter rows by"`
}

// QueryDatabaseResult lists row summaries plus their count.
type QueryDatabaseResult struct {
	Success bool                `json:"success"`
	Tasks   []notion.RowSummary `json:"tasks"`
	Count   int                 `json:"count"`
}

// QueryDatabase handles the notion_query_database tool call.
func (s *Server) QueryDatabase(ctx context.Context, req *mcp.CallToolRequest, in QueryDatabaseInput) (*mcp.CallToolResult, any, error) {
	rows, err := s.notion.QueryDatabase(ctx, in.DatabaseID, in.Feature)
	if err != nil {
		return failure(err.Error()), nil, nil
	}
	if rows == nil {
		rows = []notion.RowSummary{}
	}

	return success(QueryDatabaseResult{Success: true, Tasks: rows, Count: len(rows)}), nil, nil
}

// DatabaseFromPageInput defines the input schema for notion_get_db_from_page.
type DatabaseFromPageInput struct {
	PageID string `json:"page_id" jsonschema:"ID of the page to scan for databases"`
}

// DatabaseFromPageResult promotes the first database found and keeps the
// full discovery list alongside it.
type DatabaseFromPageResult struct {
	Success      bool                 `json:"success"`
	DatabaseID   string               `json:"database_id"`
	Title        string               `json:"title"`
	Type         string               `json:"type"`
	TotalFound   int                  `json:"total_found"`
	AllDatabases []notion.DatabaseRef `json:"all_databases"`
}

// DatabaseFromPage handles the notion_get_db_from_page tool call.
func (s *Server) DatabaseFromPage(ctx context.Context, req *mcp.CallToolRequest, in DatabaseFromPageInput) (*mcp.CallToolResult, any, error) {
	refs, err := notion.FindDatabases(ctx, s.notion, in.PageID)
	if err != nil {
		return failure(err.Error()), nil, nil
	}

	first := refs[0]
	return success(DatabaseFromPageResult{
		Success:      true,
		DatabaseID:   first.ID,
		Title:        first.Title,
		Type:         first.Type,
		TotalFound:   len(refs),
		AllDatabases: refs,
	}), nil, nil
}

// ListDatabasesInput defines the (empty) input schema for
// notion_list_all_databases.
type ListDatabasesInput struct{}

// DatabaseSummary is one entry of the workspace database listing.
type DatabaseSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ListDatabasesResult lists every reachable database plus the count.
type ListDatabasesResult struct {
	Success   bool              `json:"success"`
	Databases []DatabaseSummary `json:"databases"`
	Count     int               `json:"count"`
}

// ListDatabases handles the notion_list_all_databases tool call.
func (s *Server) ListDatabases(ctx context.Context, req *mcp.CallToolRequest, in ListDatabasesInput) (*mcp.CallToolResult, any, error) {
	results, err := s.notion.SearchDatabases(ctx)
	if err != nil {
		return failure(err.Error()), nil, nil
	}

	databases := make([]DatabaseSummary, 0, len(results))
	for _, r := range results {
		databases = append(databases, DatabaseSummary{ID: r.ID, Title: r.Title, URL: r.URL})
	}

	return success(ListDatabasesResult{Success: true, Databases: databases, Count: len(databases)}), nil, nil
}
