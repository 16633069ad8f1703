package notion

import (
	"encoding/json"
	"strings"
)

// Unknown is the sentinel for database row fields whose property is missing,
// empty, or shaped unlike anything the decoder recognizes. Row decoding never
// fails on shape; it degrades to this value.
const Unknown = "Unknown"

// Block is a Notion block object. Exactly one type-specific payload pointer
// is set, keyed by Type; types the agent never reads simply decode with all
// payloads nil.
type Block struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`

	Paragraph        *TextBlock      `json:"paragraph,omitempty"`
	Heading1         *TextBlock      `json:"heading_1,omitempty"`
	Heading2         *TextBlock      `json:"heading_2,omitempty"`
	Heading3         *TextBlock      `json:"heading_3,omitempty"`
	BulletedListItem *TextBlock      `json:"bulleted_list_item,omitempty"`
	NumberedListItem *TextBlock      `json:"numbered_list_item,omitempty"`
	Code             *CodeBlock      `json:"code,omitempty"`
	Quote            *TextBlock      `json:"quote,omitempty"`
	Callout          *TextBlock      `json:"callout,omitempty"`
	ToDo             *ToDoBlock      `json:"to_do,omitempty"`
	ChildDatabase    *ChildDatabase  `json:"child_database,omitempty"`
	LinkedDatabase   *LinkedDatabase `json:"linked_database,omitempty"`
}

// richText returns the rich-text runs of the active payload, nil when the
// block type carries none.
func (b Block) richText() []RichText {
	switch {
	case b.Paragraph != nil:
		return b.Paragraph.RichText
	case b.Heading1 != nil:
		return b.Heading1.RichText
	case b.Heading2 != nil:
		return b.Heading2.RichText
	case b.Heading3 != nil:
		return b.Heading3.RichText
	case b.BulletedListItem != nil:
		return b.BulletedListItem.RichText
	case b.NumberedListItem != nil:
		return b.NumberedListItem.RichText
	case b.Code != nil:
		return b.Code.RichText
	case b.Quote != nil:
		return b.Quote.RichText
	case b.Callout != nil:
		return b.Callout.RichText
	case b.ToDo != nil:
		return b.ToDo.RichText
	}
	return nil
}

// PlainText concatenates the block's rich-text segments with single spaces.
// Blocks without text payloads yield "".
func (b Block) PlainText() string {
	runs := b.richText()
	if len(runs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(runs))
	for _, r := range runs {
		parts = append(parts, r.PlainText)
	}
	return strings.Join(parts, " ")
}

// TextBlock covers every block type whose payload is rich text plus styling
// (paragraph, headings, list items, quote, callout).
type TextBlock struct {
	RichText []RichText `json:"rich_text"`
	Color    string     `json:"color,omitempty"`
}

// CodeBlock is a fenced code block.
type CodeBlock struct {
	RichText []RichText `json:"rich_text"`
	Language string     `json:"language,omitempty"`
}

// ToDoBlock is a checkbox item.
type ToDoBlock struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

// ChildDatabase is a database embedded directly in a page; the owning
// block's id is the database id.
type ChildDatabase struct {
	Title string `json:"title"`
}

// LinkedDatabase references a database that lives elsewhere.
type LinkedDatabase struct {
	DatabaseID string `json:"database_id,omitempty"`
}

// RichText is one styled text run.
type RichText struct {
	Type      string `json:"type,omitempty"`
	PlainText string `json:"plain_text"`
	Href      string `json:"href,omitempty"`
}

// SearchResult is the distilled form of one search hit, page or database.
type SearchResult struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ObjectType string `json:"type"`
	URL        string `json:"url"`
}

// RowSummary is the tolerant projection of one database row. Fields default
// to Unknown; see summarizeRow.
type RowSummary struct {
	Task    string `json:"task"`
	Status  string `json:"status"`
	Feature string `json:"feature"`
}

// rowProperty decodes just the property shapes the summary cares about: a
// title array or a select option. Foreign shapes leave both zero.
type rowProperty struct {
	Type   string        `json:"type,omitempty"`
	Title  []RichText    `json:"title,omitempty"`
	Select *SelectOption `json:"select,omitempty"`
}

// SelectOption is a select property's chosen value.
type SelectOption struct {
	Name string `json:"name"`
}

// summarizeRow projects a row's properties onto RowSummary. The task name
// comes from the "Task" title property, falling back to "Name"; status and
// feature come from select properties. Anything missing or foreign-shaped
// stays Unknown.
func summarizeRow(props map[string]rowProperty) RowSummary {
	row := RowSummary{Task: Unknown, Status: Unknown, Feature: Unknown}

	if p, ok := props["Task"]; ok && len(p.Title) > 0 {
		row.Task = p.Title[0].PlainText
	} else if p, ok := props["Name"]; ok && len(p.Title) > 0 {
		row.Task = p.Title[0].PlainText
	}

	if p, ok := props["Status"]; ok && p.Select != nil {
		row.Status = p.Select.Name
	}
	if p, ok := props["Feature"]; ok && p.Select != nil {
		row.Feature = p.Select.Name
	}

	return row
}

// searchItem is the tolerant decode target for one raw search result, which
// may be a page or a database object.
type searchItem struct {
	Object     string                 `json:"object"`
	ID         string                 `json:"id"`
	URL        string                 `json:"url"`
	Title      []RichText             `json:"title"`      // database objects
	Properties map[string]rowProperty `json:"properties"` // page objects
}

// extractTitle pulls a display title out of a page or database object:
// a property literally named "title" wins, then the object-level title
// array, then "Untitled".
func extractTitle(item searchItem) string {
	if p, ok := item.Properties["title"]; ok && len(p.Title) > 0 {
		if joined := joinPlainText(p.Title); joined != "" {
			return joined
		}
	}
	if joined := joinPlainText(item.Title); joined != "" {
		return joined
	}
	return "Untitled"
}

func joinPlainText(runs []RichText) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.PlainText)
	}
	return sb.String()
}

// SearchRequest is the body of the search endpoint.
type SearchRequest struct {
	Query       string        `json:"query,omitempty"`
	Filter      *SearchFilter `json:"filter,omitempty"`
	StartCursor string        `json:"start_cursor,omitempty"`
	PageSize    int           `json:"page_size,omitempty"`
}

// SearchFilter narrows search results by object type.
type SearchFilter struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// SearchResponse is the paginated search reply; results are a page/database
// union, decoded tolerantly per item.
type SearchResponse struct {
	Results    []json.RawMessage `json:"results"`
	NextCursor string            `json:"next_cursor,omitempty"`
	HasMore    bool              `json:"has_more"`
}

// BlockChildrenResponse is one page of a block's children.
type BlockChildrenResponse struct {
	Results    []Block `json:"results"`
	NextCursor string  `json:"next_cursor,omitempty"`
	HasMore    bool    `json:"has_more"`
}

// queryRequest is the body of the database query endpoint.
type queryRequest struct {
	Filter      *propertyFilter `json:"filter,omitempty"`
	StartCursor string          `json:"start_cursor,omitempty"`
	PageSize    int             `json:"page_size,omitempty"`
}

// propertyFilter matches rows whose select property equals a value.
type propertyFilter struct {
	Property string       `json:"property"`
	Select   selectEquals `json:"select"`
}

type selectEquals struct {
	Equals string `json:"equals"`
}

// queryResponse is one page of database rows.
type queryResponse struct {
	Results    []databaseRow `json:"results"`
	NextCursor string        `json:"next_cursor,omitempty"`
	HasMore    bool          `json:"has_more"`
}

type databaseRow struct {
	ID         string                 `json:"id"`
	Properties map[string]rowProperty `json:"properties"`
}
