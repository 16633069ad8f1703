package notion

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoContent reports a page whose visited blocks carry no text at all,
	// distinct from a failed fetch.
	ErrNoContent = errors.New("page has no text content")

	// ErrNoDatabase reports a page with no embedded or linked database
	// within reach of the walk.
	ErrNoDatabase = errors.New("no inline or linked database found in this page")
)

// maxWalkDepth bounds both traversals. A block one level past this depth is
// still visited but its children are never fetched, so nothing deeper than
// maxWalkDepth+1 levels below the root is ever seen.
const maxWalkDepth = 3

// ChildSource yields one level of a node's ordered children. *Client
// satisfies it; tests substitute fixture trees.
type ChildSource interface {
	BlockChildren(ctx context.Context, blockID string) ([]Block, error)
}

// frame is one worklist entry: a block waiting to be visited and its depth
// below the root. The root itself enters as a synthetic frame at depth 0.
type frame struct {
	block Block
	depth int
}

// walk visits the tree under rootID in pre-order (parent before children,
// siblings in fetch order), calling visit on every block except the
// synthetic root. Children are pushed in reverse so the top of the stack is
// always the next block in document order. Descent stops silently at the
// depth bound; fetch errors abort the walk.
func walk(ctx context.Context, src ChildSource, rootID string, visit func(Block)) error {
	stack := []frame{{block: Block{ID: rootID, HasChildren: true}, depth: 0}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > 0 {
			visit(f.block)
		}

		if !f.block.HasChildren || f.depth > maxWalkDepth {
			continue
		}

		children, err := src.BlockChildren(ctx, f.block.ID)
		if err != nil {
			return fmt.Errorf("fetching children of block %s: %w", f.block.ID, err)
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{block: children[i], depth: f.depth + 1})
		}
	}

	return nil
}

// PageText extracts a page's text content: every visited block's plain text,
// in document order, joined by newlines. Returns ErrNoContent when the
// visited blocks carry no text at all; an empty page reads as a failure,
// not an empty success.
func PageText(ctx context.Context, src ChildSource, pageID string) (string, error) {
	var fragments []string

	err := walk(ctx, src, pageID, func(b Block) {
		if text := b.PlainText(); text != "" {
			fragments = append(fragments, text)
		}
	})
	if err != nil {
		return "", err
	}

	if len(fragments) == 0 {
		return "", ErrNoContent
	}
	return strings.Join(fragments, "\n"), nil
}

// DatabaseRef identifies one database discovered inside a page.
type DatabaseRef struct {
	ID    string `json:"database_id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// FindDatabases discovers every embedded or linked database under pageID,
// in pre-order. The caller treats the first element as the primary result.
// Returns ErrNoDatabase when the walk finds none.
func FindDatabases(ctx context.Context, src ChildSource, pageID string) ([]DatabaseRef, error) {
	var found []DatabaseRef

	err := walk(ctx, src, pageID, func(b Block) {
		if ref, ok := classifyDatabase(b); ok {
			found = append(found, ref)
		}
	})
	if err != nil {
		return nil, err
	}

	if len(found) == 0 {
		return nil, ErrNoDatabase
	}
	return found, nil
}

// classifyDatabase maps a block onto a DatabaseRef. An embedded database is
// its own identifier; a linked one carries a separate reference, falling
// back to the block id when the payload omits it.
func classifyDatabase(b Block) (DatabaseRef, bool) {
	switch b.Type {
	case "child_database":
		title := "Untitled Database"
		if b.ChildDatabase != nil && b.ChildDatabase.Title != "" {
			title = b.ChildDatabase.Title
		}
		return DatabaseRef{ID: b.ID, Title: title, Type: "child_database"}, true

	case "linked_database":
		id := b.ID
		if b.LinkedDatabase != nil && b.LinkedDatabase.DatabaseID != "" {
			id = b.LinkedDatabase.DatabaseID
		}
		return DatabaseRef{ID: id, Title: "Linked Database", Type: "linked_database"}, true
	}

	return DatabaseRef{}, false
}
