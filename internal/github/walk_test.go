package github

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// fixtureTree serves canned directory listings and records which paths were
// listed, in order.
type fixtureTree struct {
	listings map[string][]Entry
	errs     map[string]error
	listed   []string
}

func (f *fixtureTree) ListDirectory(_ context.Context, path string) ([]Entry, error) {
	f.listed = append(f.listed, path)
	if err := f.errs[path]; err != nil {
		return nil, err
	}
	return f.listings[path], nil
}

func file(path string) Entry {
	name := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		name = path[i+1:]
	}
	return Entry{Name: name, Path: path, Type: TypeFile}
}

func dir(path string) Entry {
	name := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		name = path[i+1:]
	}
	return Entry{Name: name, Path: path, Type: TypeDir}
}

func TestFlattenTree_ListingOrder(t *testing.T) {
	tree := &fixtureTree{listings: map[string][]Entry{
		"":        {file("a.txt"), dir("dir")},
		"dir":     {file("dir/b.txt"), dir("dir/sub")},
		"dir/sub": {file("dir/sub/c.txt")},
	}}

	got, err := FlattenTree(context.Background(), tree, "")
	if err != nil {
		t.Fatalf("FlattenTree failed: %v", err)
	}

	var paths []string
	for _, e := range got {
		paths = append(paths, e.Path)
	}
	want := []string{"a.txt", "dir/b.txt", "dir/sub/c.txt"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
}

func TestFlattenTree_SplicesDirectoryBeforeNextSibling(t *testing.T) {
	tree := &fixtureTree{listings: map[string][]Entry{
		"":     {dir("docs"), file("main.go")},
		"docs": {file("docs/guide.md")},
	}}

	got, err := FlattenTree(context.Background(), tree, "")
	if err != nil {
		t.Fatalf("FlattenTree failed: %v", err)
	}

	var paths []string
	for _, e := range got {
		paths = append(paths, e.Path)
	}
	want := []string{"docs/guide.md", "main.go"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
}

func TestFlattenTree_FailsFastOnListingError(t *testing.T) {
	boom := errors.New("boom")
	tree := &fixtureTree{
		listings: map[string][]Entry{
			"":    {file("a.txt"), dir("dir"), file("z.txt")},
			"dir": {dir("dir/sub")},
		},
		errs: map[string]error{"dir": boom},
	}

	got, err := FlattenTree(context.Background(), tree, "")
	if err == nil {
		t.Fatal("expected an error when a subdirectory listing fails")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error should wrap the listing failure, got: %v", err)
	}
	if !strings.Contains(err.Error(), `"dir"`) {
		t.Errorf("error should name the failed directory, got: %v", err)
	}
	if got != nil {
		t.Errorf("a failed flatten should return no entries, got %v", got)
	}
	if want := []string{"", "dir"}; !reflect.DeepEqual(tree.listed, want) {
		t.Errorf("listed %v, want the walk to stop at the failed directory: %v", tree.listed, want)
	}
}

func TestFlattenTree_SkipsSymlinksAndSubmodules(t *testing.T) {
	tree := &fixtureTree{listings: map[string][]Entry{
		"": {
			{Name: "link", Path: "link", Type: "symlink"},
			file("real.txt"),
			{Name: "vendor", Path: "vendor", Type: "submodule"},
		},
	}}

	got, err := FlattenTree(context.Background(), tree, "")
	if err != nil {
		t.Fatalf("FlattenTree failed: %v", err)
	}
	if len(got) != 1 || got[0].Path != "real.txt" {
		t.Errorf("got %+v, want just real.txt", got)
	}
}

func TestFlattenTree_EmptyRoot(t *testing.T) {
	tree := &fixtureTree{listings: map[string][]Entry{"src": {}}}

	got, err := FlattenTree(context.Background(), tree, "src")
	if err != nil {
		t.Fatalf("FlattenTree failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want no entries", got)
	}
}
