package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"atelier/internal/domain"
	"atelier/internal/domain/models"
	"atelier/internal/domain/repositories"
)

// PostgresAssetRepository implements the AssetRepository interface
type PostgresAssetRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(config *RepositoryConfig) repositories.AssetRepository {
	return &PostgresAssetRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new asset record and fills in its backend-assigned id.
// Blob columns stay NULL for folders.
func (r *PostgresAssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	executor := GetExecutor(ctx, r.pool)

	now := time.Now()
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = now
	}
	if asset.UpdatedAt.IsZero() {
		asset.UpdatedAt = now
	}

	var storagePath, contentType *string
	var size *int64
	if asset.Blob != nil {
		storagePath = &asset.Blob.StoragePath
		contentType = &asset.Blob.ContentType
		size = &asset.Blob.Size
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, parent_id, kind, name, storage_path, mimetype, size, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.Assets)

	err := executor.QueryRow(ctx, query,
		asset.UserID,
		asset.ParentID,
		asset.Kind,
		asset.Name,
		storagePath,
		contentType,
		size,
		asset.CreatedAt,
		asset.UpdatedAt,
	).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("asset '%s': %w", asset.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create asset: %w", err)
	}

	return nil
}

// GetByID retrieves an asset by ID
func (r *PostgresAssetRepository) GetByID(ctx context.Context, id, userID string) (*models.Asset, error) {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT a.id, a.user_id, a.parent_id, a.kind, a.name,
		       a.storage_path, a.mimetype, a.size,
		       (SELECT COUNT(*) FROM %s c WHERE c.parent_id = a.id) AS items,
		       a.created_at, a.updated_at
		FROM %s a
		WHERE a.id = $1 AND a.user_id = $2
	`, r.tables.Assets, r.tables.Assets)

	asset, err := scanAsset(executor.QueryRow(ctx, query, id, userID))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}

	return asset, nil
}

// Rename updates an asset's name
func (r *PostgresAssetRepository) Rename(ctx context.Context, id, userID, name string) error {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
	`, r.tables.Assets)

	result, err := executor.Exec(ctx, query, name, time.Now(), id, userID)
	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("asset '%s': %w", name, domain.ErrConflict)
		}
		return fmt.Errorf("rename asset: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a single asset record
func (r *PostgresAssetRepository) Delete(ctx context.Context, id, userID string) error {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Assets)

	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("cannot delete folder with children: %w", domain.ErrConflict)
		}
		return fmt.Errorf("delete asset: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListAll retrieves the user's full flat asset list. The items column is
// recomputed per fetch so folder counts always reflect the backend state.
func (r *PostgresAssetRepository) ListAll(ctx context.Context, userID string) ([]models.Asset, error) {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT a.id, a.user_id, a.parent_id, a.kind, a.name,
		       a.storage_path, a.mimetype, a.size,
		       (SELECT COUNT(*) FROM %s c WHERE c.parent_id = a.id) AS items,
		       a.created_at, a.updated_at
		FROM %s a
		WHERE a.user_id = $1
		ORDER BY a.kind = 'folder' DESC, a.name ASC
	`, r.tables.Assets, r.tables.Assets)

	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, *asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}

	return assets, nil
}

// ListChildren lists immediate children of a folder (nil = root)
func (r *PostgresAssetRepository) ListChildren(ctx context.Context, parentID *string, userID string) ([]models.Asset, error) {
	executor := GetExecutor(ctx, r.pool)

	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT a.id, a.user_id, a.parent_id, a.kind, a.name,
			       a.storage_path, a.mimetype, a.size,
			       (SELECT COUNT(*) FROM %s c WHERE c.parent_id = a.id) AS items,
			       a.created_at, a.updated_at
			FROM %s a
			WHERE a.user_id = $1 AND a.parent_id IS NULL
			ORDER BY a.name ASC
		`, r.tables.Assets, r.tables.Assets)
		args = append(args, userID)
	} else {
		query = fmt.Sprintf(`
			SELECT a.id, a.user_id, a.parent_id, a.kind, a.name,
			       a.storage_path, a.mimetype, a.size,
			       (SELECT COUNT(*) FROM %s c WHERE c.parent_id = a.id) AS items,
			       a.created_at, a.updated_at
			FROM %s a
			WHERE a.user_id = $1 AND a.parent_id = $2
			ORDER BY a.name ASC
		`, r.tables.Assets, r.tables.Assets)
		args = append(args, userID, *parentID)
	}

	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list asset children: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, *asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}

	return assets, nil
}

// FindFolder finds a folder by name and parent. Returns (nil, nil) when
// no such folder exists.
func (r *PostgresAssetRepository) FindFolder(ctx context.Context, userID, name string, parentID *string) (*models.Asset, error) {
	executor := GetExecutor(ctx, r.pool)

	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT a.id, a.user_id, a.parent_id, a.kind, a.name,
			       a.storage_path, a.mimetype, a.size,
			       0 AS items,
			       a.created_at, a.updated_at
			FROM %s a
			WHERE a.user_id = $1 AND a.name = $2 AND a.kind = 'folder' AND a.parent_id IS NULL
		`, r.tables.Assets)
		args = append(args, userID, name)
	} else {
		query = fmt.Sprintf(`
			SELECT a.id, a.user_id, a.parent_id, a.kind, a.name,
			       a.storage_path, a.mimetype, a.size,
			       0 AS items,
			       a.created_at, a.updated_at
			FROM %s a
			WHERE a.user_id = $1 AND a.name = $2 AND a.kind = 'folder' AND a.parent_id = $3
		`, r.tables.Assets)
		args = append(args, userID, name, *parentID)
	}

	asset, err := scanAsset(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil // Not found, not an error
		}
		return nil, fmt.Errorf("find folder: %w", err)
	}

	return asset, nil
}

// CreateFolderIfNotExists creates a folder only if it doesn't exist
func (r *PostgresAssetRepository) CreateFolderIfNotExists(ctx context.Context, userID string, parentID *string, name string) (*models.Asset, error) {
	existing, err := r.FindFolder(ctx, userID, name, parentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil // Already exists, return it
	}

	now := time.Now()
	folder := &models.Asset{
		UserID:    userID,
		ParentID:  parentID,
		Kind:      models.KindFolder,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.Create(ctx, folder); err != nil {
		return nil, err
	}

	return folder, nil
}

// GetPath computes the display path of a folder using a recursive CTE
func (r *PostgresAssetRepository) GetPath(ctx context.Context, folderID *string, userID string) (string, error) {
	if folderID == nil {
		return "", nil
	}

	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		WITH RECURSIVE asset_path AS (
			SELECT id, name, parent_id, name::text AS path
			FROM %s
			WHERE id = $1 AND user_id = $2
			UNION ALL
			SELECT a.id, a.name, a.parent_id, a.name || '/' || ap.path
			FROM %s a
			JOIN asset_path ap ON a.id = ap.parent_id
		)
		SELECT path FROM asset_path WHERE parent_id IS NULL
	`, r.tables.Assets, r.tables.Assets)

	var path string
	err := executor.QueryRow(ctx, query, *folderID, userID).Scan(&path)
	if err != nil {
		if isPgNoRowsError(err) {
			return "", fmt.Errorf("folder %s: %w", *folderID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("get folder path: %w", err)
	}

	return path, nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for scanAsset
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAsset reads one asset row, folding the nullable blob columns into
// a BlobInfo only when a storage path is present.
func scanAsset(row rowScanner) (*models.Asset, error) {
	var asset models.Asset
	var storagePath, contentType *string
	var size *int64

	err := row.Scan(
		&asset.ID,
		&asset.UserID,
		&asset.ParentID,
		&asset.Kind,
		&asset.Name,
		&storagePath,
		&contentType,
		&size,
		&asset.Items,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if storagePath != nil {
		asset.Blob = &models.BlobInfo{StoragePath: *storagePath}
		if contentType != nil {
			asset.Blob.ContentType = *contentType
		}
		if size != nil {
			asset.Blob.Size = *size
		}
	}

	return &asset, nil
}
