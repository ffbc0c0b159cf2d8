package assets

import (
	"io"
	"testing"
	"testing/fstest"

	"atelier/internal/domain/models"
)

func TestFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"loose.txt":          {Data: []byte("top")},
		"A/B/nested.txt":     {Data: []byte("deep")},
		"A/one.txt":          {Data: []byte("one")},
		"Empty/placeholder":  {Data: []byte("p")},
		"Empty/placeholder2": {Data: []byte("q")},
	}

	items, errs := FromFS(fsys)
	if len(errs) != 0 {
		t.Fatalf("unexpected extract errors: %v", errs)
	}

	byPath := make(map[string]models.DirectoryItem)
	for _, item := range items {
		byPath[item.Path] = item
	}

	for _, p := range []string{"A/", "A/B/", "Empty/"} {
		item, ok := byPath[p]
		if !ok {
			t.Errorf("expected folder item %q", p)
			continue
		}
		if item.Kind != models.ItemFolder {
			t.Errorf("%q: expected folder kind", p)
		}
	}

	file, ok := byPath["A/B/nested.txt"]
	if !ok {
		t.Fatal("expected file item A/B/nested.txt")
	}
	if file.Kind != models.ItemFile || file.Name != "nested.txt" || file.Size != 4 {
		t.Errorf("unexpected file item: %+v", file)
	}

	rc, err := file.Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "deep" {
		t.Errorf("expected payload 'deep', got %q", data)
	}

	if file.Dir() != "A/B" {
		t.Errorf("expected Dir A/B, got %q", file.Dir())
	}
	loose := byPath["loose.txt"]
	if loose.Dir() != "" {
		t.Errorf("loose file should have empty Dir")
	}
}

func TestNormalizeRelPath(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "A/B/file.txt", want: "A/B/file.txt"},
		{name: "windows separators", in: `A\B\file.txt`, want: "A/B/file.txt"},
		{name: "leading slash trimmed", in: "/A/file.txt", want: "A/file.txt"},
		{name: "dot segments collapsed", in: "A/./B/../file.txt", want: "A/file.txt"},
		{name: "escape rejected", in: "../secrets.txt", wantErr: true},
		{name: "empty", in: "", want: ""},
		{name: "root dot", in: ".", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeRelPath(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDirectoryItemDir(t *testing.T) {
	folder := folderItem("A/B")
	if folder.Dir() != "A" {
		t.Errorf("expected folder Dir A, got %q", folder.Dir())
	}

	top := folderItem("Top")
	if top.Dir() != "" {
		t.Errorf("expected empty Dir for top-level folder, got %q", top.Dir())
	}
}
