package assets

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"atelier/internal/config"
	"atelier/internal/domain/models"
	"atelier/internal/storage"
)

// BatchOutcome summarizes a whole upload batch.
type BatchOutcome string

const (
	BatchSuccess BatchOutcome = "success"
	BatchPartial BatchOutcome = "partial"
	BatchFailure BatchOutcome = "failure"
)

// FileResult is the per-file accounting of one batch upload.
type FileResult struct {
	Path  string        `json:"path"`
	Asset *models.Asset `json:"asset,omitempty"`
	Error string        `json:"error,omitempty"`
}

// BatchResult aggregates a directory batch: folders reconciled up
// front, then per-file success/failure counts.
type BatchResult struct {
	Outcome       BatchOutcome `json:"outcome"`
	Created       int          `json:"created"`
	Failed        int          `json:"failed"`
	Folders       int          `json:"folders"`
	FoldersFailed int          `json:"folders_failed"`
	Files         []FileResult `json:"files"`
}

// UploadBatch runs a full directory batch: reconcile every implied
// folder path sequentially in depth order, then upload all files
// concurrently into their resolved parents. Individual file failures
// never abort the batch; the result reports partial success.
func (s *Service) UploadBatch(
	ctx context.Context,
	userID string,
	parentID *string,
	items []models.DirectoryItem,
) (*BatchResult, error) {
	parentID, err := s.resolveDropTarget(ctx, userID, parentID)
	if err != nil {
		return nil, err
	}

	folders := s.reconcileFolders(ctx, userID, parentID, items)

	var files []models.DirectoryItem
	for _, item := range items {
		if item.Kind == models.ItemFile {
			files = append(files, item)
		}
	}

	result := &BatchResult{
		Folders:       len(folders.ids),
		FoldersFailed: len(folders.failed),
		Files:         make([]FileResult, len(files)),
	}

	// Uploads only start once the folder map is fully resolved. Each
	// goroutine writes its own slot, so no mutex is needed.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.MaxBatchConcurrency)

	for i := range files {
		item := files[i]
		g.Go(func() error {
			result.Files[i] = s.uploadOne(gctx, userID, parentID, folders, &item)
			return nil
		})
	}
	_ = g.Wait()

	for i := range result.Files {
		if result.Files[i].Error != "" {
			result.Failed++
		} else {
			result.Created++
		}
	}

	// A failed folder counts against the batch even when no file
	// depended on it, so a dropped empty folder cannot report success.
	switch {
	case result.Failed == 0 && result.FoldersFailed == 0:
		result.Outcome = BatchSuccess
	case result.Created > 0 || result.Folders > 0:
		result.Outcome = BatchPartial
	default:
		result.Outcome = BatchFailure
	}

	s.logger.Info("upload batch complete",
		"user_id", userID,
		"outcome", result.Outcome,
		"created", result.Created,
		"failed", result.Failed,
		"folders", result.Folders,
		"folders_failed", result.FoldersFailed,
	)

	return result, nil
}

// uploadOne places and uploads a single file from a batch.
func (s *Service) uploadOne(
	ctx context.Context,
	userID string,
	root *string,
	folders *folderMap,
	item *models.DirectoryItem,
) FileResult {
	res := FileResult{Path: item.Path}

	placement, err := resolvePlacement(item, root, folders)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	if item.Open == nil {
		res.Error = "missing file payload"
		return res
	}
	body, err := item.Open()
	if err != nil {
		res.Error = fmt.Sprintf("failed to open file: %v", err)
		return res
	}
	defer body.Close()

	key := storage.NewStorageKey(userID)
	if err := s.blobStore.Put(ctx, key, item.ContentType, body); err != nil {
		res.Error = fmt.Sprintf("failed to store file: %v", err)
		return res
	}

	asset := &models.Asset{
		UserID:   userID,
		ParentID: placement,
		Kind:     kindForContentType(item.ContentType),
		Name:     item.Name,
		Blob: &models.BlobInfo{
			StoragePath: key,
			ContentType: item.ContentType,
			Size:        item.Size,
		},
	}

	if err := s.assetRepo.Create(ctx, asset); err != nil {
		// The record never existed, so the orphaned blob is removed
		// best effort.
		if delErr := s.blobStore.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned blob",
				"key", key,
				"error", delErr,
			)
		}
		res.Error = fmt.Sprintf("failed to create asset: %v", err)
		return res
	}

	res.Asset = asset
	return res
}
