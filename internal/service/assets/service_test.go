package assets

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"atelier/internal/domain"
	"atelier/internal/domain/models"
)

func TestDelete_ProtectedFolderRejected(t *testing.T) {
	repo := newMemoryAssetRepo()
	store := newMemoryBlobStore()
	svc := newTestService(repo, store)
	ctx := context.Background()

	for _, name := range []string{"Creatives", "Setup", "Reports"} {
		t.Run(name, func(t *testing.T) {
			folder := repo.seed(&models.Asset{
				UserID: "user-1",
				Kind:   models.KindFolder,
				Name:   name,
			})

			deletesBefore := repo.deleteCalls
			err := svc.Delete(ctx, "user-1", folder.ID)

			if !errors.Is(err, domain.ErrProtectedFolder) {
				t.Fatalf("expected protected folder error, got %v", err)
			}
			if repo.deleteCalls != deletesBefore {
				t.Error("no delete call may reach the repository")
			}
			if len(store.deletes) != 0 {
				t.Error("no blob delete may be issued")
			}
		})
	}
}

func TestDelete_ProtectedNameAsFileIsAllowed(t *testing.T) {
	repo := newMemoryAssetRepo()
	svc := newTestService(repo, newMemoryBlobStore())

	// only folders are protected; a file that happens to share the name
	// can be removed
	file := repo.seed(&models.Asset{
		UserID: "user-1",
		Kind:   models.KindFile,
		Name:   "Reports",
		Blob:   &models.BlobInfo{StoragePath: "users/user-1/k1"},
	})

	if err := svc.Delete(context.Background(), "user-1", file.ID); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
}

func TestDelete_CascadesThroughFolderContents(t *testing.T) {
	repo := newMemoryAssetRepo()
	store := newMemoryBlobStore()
	svc := newTestService(repo, store)
	ctx := context.Background()

	root := repo.seed(&models.Asset{UserID: "user-1", Kind: models.KindFolder, Name: "Projects"})
	sub := repo.seed(&models.Asset{UserID: "user-1", Kind: models.KindFolder, Name: "2026", ParentID: &root.ID})
	repo.seed(&models.Asset{
		UserID: "user-1", Kind: models.KindFile, Name: "brief.pdf", ParentID: &sub.ID,
		Blob: &models.BlobInfo{StoragePath: "users/user-1/k-brief"},
	})
	repo.seed(&models.Asset{
		UserID: "user-1", Kind: models.KindImage, Name: "logo.png", ParentID: &root.ID,
		Blob: &models.BlobInfo{StoragePath: "users/user-1/k-logo"},
	})

	if err := svc.Delete(ctx, "user-1", root.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	list, _ := repo.ListAll(ctx, "user-1")
	if len(list) != 0 {
		t.Errorf("expected all descendants deleted, %d remain", len(list))
	}
	if len(store.deletes) != 2 {
		t.Errorf("expected 2 blob deletions, got %d", len(store.deletes))
	}
}

func TestRename_PreservesFileExtension(t *testing.T) {
	tests := []struct {
		name     string
		original string
		newName  string
		want     string
	}{
		{name: "extension restored", original: "report.pdf", newName: "summary", want: "summary.pdf"},
		{name: "extension kept when supplied", original: "report.pdf", newName: "summary.pdf", want: "summary.pdf"},
		{name: "case insensitive match", original: "photo.JPG", newName: "cover.jpg", want: "cover.jpg"},
		{name: "no original extension", original: "README", newName: "NOTES", want: "NOTES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryAssetRepo()
			svc := newTestService(repo, newMemoryBlobStore())

			file := repo.seed(&models.Asset{
				UserID: "user-1",
				Kind:   models.KindFile,
				Name:   tt.original,
				Blob:   &models.BlobInfo{StoragePath: "k"},
			})

			renamed, err := svc.Rename(context.Background(), "user-1", file.ID, tt.newName)
			if err != nil {
				t.Fatalf("Rename failed: %v", err)
			}
			if renamed.Name != tt.want {
				t.Errorf("expected persisted name %q, got %q", tt.want, renamed.Name)
			}
		})
	}
}

func TestRename_FolderKeepsExactName(t *testing.T) {
	repo := newMemoryAssetRepo()
	svc := newTestService(repo, newMemoryBlobStore())

	folder := repo.seed(&models.Asset{UserID: "user-1", Kind: models.KindFolder, Name: "Drafts"})

	renamed, err := svc.Rename(context.Background(), "user-1", folder.ID, "Archive.old")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if renamed.Name != "Archive.old" {
		t.Errorf("folder names are not extension-adjusted, got %q", renamed.Name)
	}
}

func TestCreateFolder_DuplicateReturnsConflict(t *testing.T) {
	repo := newMemoryAssetRepo()
	svc := newTestService(repo, newMemoryBlobStore())
	ctx := context.Background()

	if _, err := svc.CreateFolder(ctx, "user-1", &CreateFolderRequest{Name: "Creatives"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.CreateFolder(ctx, "user-1", &CreateFolderRequest{Name: "Creatives"})
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Error("ConflictError should match ErrConflict")
	}
}

func TestCreateFolder_ValidatesName(t *testing.T) {
	repo := newMemoryAssetRepo()
	svc := newTestService(repo, newMemoryBlobStore())
	ctx := context.Background()

	for _, name := range []string{"", "a/b"} {
		if _, err := svc.CreateFolder(ctx, "user-1", &CreateFolderRequest{Name: name}); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("name %q: expected validation error, got %v", name, err)
		}
	}
}

func TestUploadFile_RollsBackBlobOnRecordFailure(t *testing.T) {
	repo := newMemoryAssetRepo()
	repo.failAssetNames["doomed.txt"] = true
	store := newMemoryBlobStore()
	svc := newTestService(repo, store)

	_, err := svc.UploadFile(context.Background(), "user-1", nil,
		"doomed.txt", "text/plain", 4, bytes.NewReader([]byte("data")))
	if err == nil {
		t.Fatal("expected upload to fail")
	}

	if len(store.deletes) != 1 {
		t.Errorf("expected the stored blob to be cleaned up, got %d deletes", len(store.deletes))
	}
}

func TestGet_IncludesDisplayPath(t *testing.T) {
	repo := newMemoryAssetRepo()
	svc := newTestService(repo, newMemoryBlobStore())
	ctx := context.Background()

	a := repo.seed(&models.Asset{UserID: "user-1", Kind: models.KindFolder, Name: "Clients"})
	b := repo.seed(&models.Asset{UserID: "user-1", Kind: models.KindFolder, Name: "Acme", ParentID: &a.ID})
	file := repo.seed(&models.Asset{
		UserID:   "user-1",
		Kind:     models.KindFile,
		Name:     "brief.pdf",
		ParentID: &b.ID,
		Blob:     &models.BlobInfo{StoragePath: "users/user-1/k-brief"},
	})

	got, err := svc.Get(ctx, "user-1", file.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Path != "Clients/Acme/brief.pdf" {
		t.Errorf("unexpected path %q", got.Path)
	}

	rootFolder, err := svc.Get(ctx, "user-1", a.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rootFolder.Path != "Clients" {
		t.Errorf("unexpected root path %q", rootFolder.Path)
	}
}

func TestDownload_FolderRejected(t *testing.T) {
	repo := newMemoryAssetRepo()
	svc := newTestService(repo, newMemoryBlobStore())

	folder := repo.seed(&models.Asset{UserID: "user-1", Kind: models.KindFolder, Name: "Setup"})

	if _, err := svc.Download(context.Background(), "user-1", folder.ID); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDownload_PresignsBlob(t *testing.T) {
	repo := newMemoryAssetRepo()
	svc := newTestService(repo, newMemoryBlobStore())

	file := repo.seed(&models.Asset{
		UserID: "user-1",
		Kind:   models.KindFile,
		Name:   "brief.pdf",
		Blob:   &models.BlobInfo{StoragePath: "users/user-1/k-brief"},
	})

	url, err := svc.Download(context.Background(), "user-1", file.ID)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if url != "https://blobs.example/users/user-1/k-brief" {
		t.Errorf("unexpected presigned url %q", url)
	}
}
