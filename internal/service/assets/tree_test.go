package assets

import (
	"testing"

	"atelier/internal/domain/models"
)

func TestBuildTree(t *testing.T) {
	rootID := "f-root"
	flat := []models.Asset{
		{ID: "file-1", Name: "notes.txt", Kind: models.KindFile},
		{ID: rootID, Name: "Creatives", Kind: models.KindFolder},
		{ID: "f-sub", Name: "Logos", Kind: models.KindFolder, ParentID: &rootID},
		{ID: "img-1", Name: "mark.png", Kind: models.KindImage, ParentID: &rootID},
	}

	roots := buildTree(flat)

	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	// folders sort before files
	if roots[0].Asset.ID != rootID {
		t.Errorf("expected folder first, got %s", roots[0].Asset.Name)
	}
	if len(roots[0].Children) != 2 {
		t.Fatalf("expected 2 children under Creatives, got %d", len(roots[0].Children))
	}
	if roots[0].Children[0].Asset.Name != "Logos" {
		t.Errorf("expected subfolder first among children, got %s", roots[0].Children[0].Asset.Name)
	}
}

func TestBuildTree_OrphanBecomesRoot(t *testing.T) {
	missing := "gone"
	flat := []models.Asset{
		{ID: "a", Name: "stray.txt", Kind: models.KindFile, ParentID: &missing},
	}

	roots := buildTree(flat)
	if len(roots) != 1 {
		t.Fatalf("orphaned record should surface as a root, got %d roots", len(roots))
	}
}

func TestBuildPreview(t *testing.T) {
	items := []models.DirectoryItem{
		fileItem("A/B/deep.txt", "text/plain", nil),
		fileItem("loose.txt", "text/plain", nil),
		folderItem("Empty"),
	}

	roots := BuildPreview(items)

	byName := make(map[string]*PreviewNode)
	for _, n := range roots {
		byName[n.Name] = n
	}

	if len(roots) != 3 {
		t.Fatalf("expected 3 roots (A, loose.txt, Empty), got %d", len(roots))
	}

	a := byName["A"]
	if a == nil || a.Kind != models.ItemFolder {
		t.Fatal("expected synthesized folder node A")
	}
	if len(a.Children) != 1 || a.Children[0].Name != "B" {
		t.Fatalf("expected A to contain B")
	}
	b := a.Children[0]
	if len(b.Children) != 1 || b.Children[0].Name != "deep.txt" {
		t.Errorf("expected B to contain deep.txt")
	}

	if empty := byName["Empty"]; empty == nil || len(empty.Children) != 0 {
		t.Error("expected empty folder node with no children")
	}
	if loose := byName["loose.txt"]; loose == nil || loose.Kind != models.ItemFile {
		t.Error("expected loose file at the preview root")
	}
}
