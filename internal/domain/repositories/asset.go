package repositories

import (
	"context"

	"atelier/internal/domain/models"
)

// AssetRepository defines data access operations for the asset hierarchy.
// All operations are scoped by the owning user.
type AssetRepository interface {
	// Create creates a new asset record and fills in its backend-assigned id
	Create(ctx context.Context, asset *models.Asset) error

	// GetByID retrieves an asset by ID
	GetByID(ctx context.Context, id, userID string) (*models.Asset, error)

	// Rename updates an asset's name
	Rename(ctx context.Context, id, userID, name string) error

	// Delete removes a single asset record
	Delete(ctx context.Context, id, userID string) error

	// ListAll retrieves the user's full flat asset list with derived
	// immediate-child counts for folders
	ListAll(ctx context.Context, userID string) ([]models.Asset, error)

	// ListChildren lists immediate children of a folder (nil = root)
	ListChildren(ctx context.Context, parentID *string, userID string) ([]models.Asset, error)

	// FindFolder finds a folder by name and parent. Returns (nil, nil)
	// when no such folder exists.
	FindFolder(ctx context.Context, userID, name string, parentID *string) (*models.Asset, error)

	// CreateFolderIfNotExists creates a folder only if no folder with the
	// same name and parent exists; either way the resulting record is returned
	CreateFolderIfNotExists(ctx context.Context, userID string, parentID *string, name string) (*models.Asset, error)

	// GetPath computes the display path of a folder
	GetPath(ctx context.Context, folderID *string, userID string) (string, error)
}
