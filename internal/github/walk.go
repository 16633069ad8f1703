package github

import (
	"context"
	"fmt"
)

// DirSource yields one directory level. *Client satisfies it; tests
// substitute fixture trees.
type DirSource interface {
	ListDirectory(ctx context.Context, path string) ([]Entry, error)
}

// FlattenTree walks the tree under root depth-first and returns its files
// in listing order, each directory's contents spliced in place of the
// directory itself. Entries are pushed in reverse so the top of the stack
// is always the next entry in listing order. Any listing failure aborts the
// whole flatten.
//
// Entries that are neither files nor directories (symlinks, submodules)
// are skipped.
func FlattenTree(ctx context.Context, src DirSource, root string) ([]Entry, error) {
	var files []Entry
	stack := []Entry{{Path: root, Type: TypeDir}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch cur.Type {
		case TypeFile:
			files = append(files, cur)
			continue
		case TypeDir:
			// fall through to the listing below
		default:
			continue
		}

		entries, err := src.ListDirectory(ctx, cur.Path)
		if err != nil {
			return nil, fmt.Errorf("listing %q: %w", cur.Path, err)
		}
		for i := len(entries) - 1; i >= 0; i-- {
			stack = append(stack, entries[i])
		}
	}

	return files, nil
}
