package agent

import (
	"sort"
	"strings"
)

// databaseSource is the label recorded for database queries, which have no
// single page to point at.
const databaseSource = "Project Database"

// sources accumulates citation provenance across one run: which pages were
// read and which repository files were fetched. Only successful invocations
// count; a failed fetch is not a source.
type sources struct {
	pages map[string]struct{}
	files map[string]struct{}
}

func newSources() *sources {
	return &sources{
		pages: make(map[string]struct{}),
		files: make(map[string]struct{}),
	}
}

// record tracks provenance for one successful tool result. The mapping is
// fixed: page reads cite the page, database queries cite the database label,
// file fetches cite the path.
func (s *sources) record(tool string, args map[string]any, env Envelope) {
	if !env.Success {
		return
	}

	switch tool {
	case "notion_get_page_content":
		s.pages[stringArg(args, "page_id", "Unknown Page")] = struct{}{}
	case "notion_query_database":
		s.pages[databaseSource] = struct{}{}
	case "github_get_file":
		s.files[stringArg(args, "path", "unknown")] = struct{}{}
	}
}

// footer renders the Sources line for an answer, or "" when there is
// nothing to cite or the model already cited inline ("Based on ...").
func (s *sources) footer(answer string) string {
	var parts []string

	if len(s.pages) > 0 {
		parts = append(parts, "Notion pages: "+strings.Join(sortedKeys(s.pages), ", "))
	}
	if len(s.files) > 0 {
		files := sortedKeys(s.files)
		for i, f := range files {
			files[i] = "`" + f + "`"
		}
		parts = append(parts, "Git files: "+strings.Join(files, ", "))
	}

	if len(parts) == 0 || strings.Contains(answer, "Based on") {
		return ""
	}
	return "\n\n**Sources:** " + strings.Join(parts, " | ")
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
