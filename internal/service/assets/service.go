// Package assets implements the client asset manager: the folder/file
// hierarchy, directory batch uploads with folder reconciliation, and
// the rename/delete rules around protected folders.
package assets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"atelier/internal/config"
	"atelier/internal/domain"
	"atelier/internal/domain/models"
	"atelier/internal/domain/repositories"
	"atelier/internal/storage"
)

var assetNamePattern = regexp.MustCompile(`^[^/]+$`)

// Service coordinates asset persistence with the blob store.
type Service struct {
	assetRepo repositories.AssetRepository
	txManager repositories.TransactionManager
	blobStore storage.BlobStore
	logger    *slog.Logger
}

// NewService creates the asset service.
func NewService(
	assetRepo repositories.AssetRepository,
	txManager repositories.TransactionManager,
	blobStore storage.BlobStore,
	logger *slog.Logger,
) *Service {
	return &Service{
		assetRepo: assetRepo,
		txManager: txManager,
		blobStore: blobStore,
		logger:    logger,
	}
}

// CreateFolderRequest is the payload for an explicit folder creation.
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

// CreateFolder creates a single folder under the given parent.
func (s *Service) CreateFolder(ctx context.Context, userID string, req *CreateFolderRequest) (*models.Asset, error) {
	if err := validateAssetName(req.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Normalize empty string to nil for root-level folders
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	if req.ParentID != nil {
		parent, err := s.assetRepo.GetByID(ctx, *req.ParentID, userID)
		if err != nil {
			return nil, fmt.Errorf("parent folder not found: %w", err)
		}
		if !parent.IsFolder() {
			return nil, fmt.Errorf("%w: parent is not a folder", domain.ErrValidation)
		}
	}

	existing, err := s.assetRepo.FindFolder(ctx, userID, req.Name, req.ParentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ConflictError{
			Message:      "a folder with this name already exists here",
			ResourceType: "asset",
			ResourceID:   existing.ID,
		}
	}

	folder := &models.Asset{
		UserID:   userID,
		ParentID: req.ParentID,
		Kind:     models.KindFolder,
		Name:     req.Name,
	}
	if err := s.assetRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"user_id", userID,
		"parent_id", req.ParentID,
	)

	return folder, nil
}

// UploadFile stores a single file blob and creates its asset record
// under the given parent.
func (s *Service) UploadFile(
	ctx context.Context,
	userID string,
	parentID *string,
	name, contentType string,
	size int64,
	body io.Reader,
) (*models.Asset, error) {
	if err := validateAssetName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	parentID, err := s.resolveDropTarget(ctx, userID, parentID)
	if err != nil {
		return nil, err
	}

	key := storage.NewStorageKey(userID)
	if err := s.blobStore.Put(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	asset := &models.Asset{
		UserID:   userID,
		ParentID: parentID,
		Kind:     kindForContentType(contentType),
		Name:     name,
		Blob: &models.BlobInfo{
			StoragePath: key,
			ContentType: contentType,
			Size:        size,
		},
	}

	if err := s.assetRepo.Create(ctx, asset); err != nil {
		if delErr := s.blobStore.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned blob", "key", key, "error", delErr)
		}
		return nil, err
	}

	s.logger.Info("file uploaded",
		"id", asset.ID,
		"name", asset.Name,
		"user_id", userID,
		"size", size,
	)

	return asset, nil
}

// Rename changes an asset's display name. For files and images the
// original extension is always preserved, so renaming "report.pdf" to
// "summary" persists "summary.pdf".
func (s *Service) Rename(ctx context.Context, userID, id, newName string) (*models.Asset, error) {
	newName = strings.TrimSpace(newName)
	if err := validateAssetName(newName); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	asset, err := s.assetRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if !asset.IsFolder() {
		ext := filepath.Ext(asset.Name)
		if ext != "" && !strings.EqualFold(filepath.Ext(newName), ext) {
			newName += ext
		}
	}

	if asset.IsFolder() {
		dup, err := s.assetRepo.FindFolder(ctx, userID, newName, asset.ParentID)
		if err != nil {
			return nil, err
		}
		if dup != nil && dup.ID != asset.ID {
			return nil, &domain.ConflictError{
				Message:      "a folder with this name already exists here",
				ResourceType: "asset",
				ResourceID:   dup.ID,
			}
		}
	}

	if err := s.assetRepo.Rename(ctx, id, userID, newName); err != nil {
		return nil, err
	}
	asset.Name = newName

	s.logger.Info("asset renamed", "id", id, "name", newName, "user_id", userID)

	return asset, nil
}

// Delete removes an asset. Protected folders are refused before any
// repository or storage call. Deleting a folder cascades to all of its
// descendants in one transaction; the underlying blobs are removed from
// object storage best effort after the records are gone.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	asset, err := s.assetRepo.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if asset.IsFolder() && config.ProtectedFolders[asset.Name] {
		return fmt.Errorf("%w: folder '%s' cannot be deleted", domain.ErrProtectedFolder, asset.Name)
	}

	var blobKeys []string
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		keys, err := s.deleteRecursive(txCtx, userID, asset)
		if err != nil {
			return err
		}
		blobKeys = keys
		return nil
	})
	if err != nil {
		return err
	}

	for _, key := range blobKeys {
		if err := s.blobStore.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to delete blob", "key", key, "error", err)
		}
	}

	s.logger.Info("asset deleted",
		"id", id,
		"name", asset.Name,
		"kind", asset.Kind,
		"user_id", userID,
		"blobs", len(blobKeys),
	)

	return nil
}

// deleteRecursive removes an asset and all descendants depth-first,
// collecting the storage keys of every deleted blob.
func (s *Service) deleteRecursive(ctx context.Context, userID string, asset *models.Asset) ([]string, error) {
	var keys []string

	if asset.IsFolder() {
		children, err := s.assetRepo.ListChildren(ctx, &asset.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list children of '%s': %w", asset.Name, err)
		}
		for i := range children {
			childKeys, err := s.deleteRecursive(ctx, userID, &children[i])
			if err != nil {
				return nil, err
			}
			keys = append(keys, childKeys...)
		}
	} else if asset.Blob != nil {
		keys = append(keys, asset.Blob.StoragePath)
	}

	if err := s.assetRepo.Delete(ctx, asset.ID, userID); err != nil {
		return nil, err
	}

	return keys, nil
}

// Get retrieves one asset.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.Asset, error) {
	asset, err := s.assetRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	parentPath, err := s.assetRepo.GetPath(ctx, asset.ParentID, userID)
	if err != nil {
		return nil, err
	}
	asset.Path = asset.Name
	if parentPath != "" {
		asset.Path = parentPath + "/" + asset.Name
	}

	return asset, nil
}

// ListAll returns the user's full flat asset list with derived counts.
func (s *Service) ListAll(ctx context.Context, userID string) ([]models.Asset, error) {
	return s.assetRepo.ListAll(ctx, userID)
}

// Download returns a time-limited URL for an uploaded file's blob.
func (s *Service) Download(ctx context.Context, userID, id string) (string, error) {
	asset, err := s.assetRepo.GetByID(ctx, id, userID)
	if err != nil {
		return "", err
	}
	if asset.IsFolder() || asset.Blob == nil {
		return "", fmt.Errorf("%w: folders cannot be downloaded", domain.ErrValidation)
	}

	url, err := s.blobStore.PresignGet(ctx, asset.Blob.StoragePath)
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return url, nil
}

// resolveDropTarget validates the optional drop-target folder id,
// normalizing "" to nil for the root.
func (s *Service) resolveDropTarget(ctx context.Context, userID string, parentID *string) (*string, error) {
	if parentID != nil && *parentID == "" {
		parentID = nil
	}
	if parentID == nil {
		return nil, nil
	}

	parent, err := s.assetRepo.GetByID(ctx, *parentID, userID)
	if err != nil {
		return nil, fmt.Errorf("target folder not found: %w", err)
	}
	if !parent.IsFolder() {
		return nil, fmt.Errorf("%w: target is not a folder", domain.ErrValidation)
	}
	return parentID, nil
}

func validateAssetName(name string) error {
	return validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxAssetNameLength),
		validation.Match(assetNamePattern).Error("name cannot contain slashes"),
	)
}

// kindForContentType discriminates image uploads from generic files.
func kindForContentType(contentType string) models.AssetKind {
	if strings.HasPrefix(contentType, "image/") {
		return models.KindImage
	}
	return models.KindFile
}
