package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"atelier/internal/domain"
	"atelier/internal/domain/models"
	"atelier/internal/domain/repositories"
)

// memoryAssetRepo is an in-memory AssetRepository that records call
// order so tests can assert creation sequencing.
type memoryAssetRepo struct {
	mu     sync.Mutex
	assets map[string]*models.Asset
	seq    int

	// createdFolderPaths records the display path of every folder
	// creation, in call order.
	createdFolderPaths []string
	// failFolderNames makes folder creation fail for specific names.
	failFolderNames map[string]bool
	// failAssetNames makes file record creation fail for specific names.
	failAssetNames map[string]bool

	deleteCalls int
}

func newMemoryAssetRepo() *memoryAssetRepo {
	return &memoryAssetRepo{
		assets:          make(map[string]*models.Asset),
		failFolderNames: make(map[string]bool),
		failAssetNames:  make(map[string]bool),
	}
}

// seed inserts an asset directly, bypassing call accounting.
func (m *memoryAssetRepo) seed(asset *models.Asset) *models.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	if asset.ID == "" {
		m.seq++
		asset.ID = fmt.Sprintf("asset-%d", m.seq)
	}
	m.assets[asset.ID] = asset
	return asset
}

// pathOf reconstructs an asset's display path from its parent chain.
// Caller must hold the lock.
func (m *memoryAssetRepo) pathOf(asset *models.Asset) string {
	if asset.ParentID == nil {
		return asset.Name
	}
	parent, ok := m.assets[*asset.ParentID]
	if !ok {
		return asset.Name
	}
	return m.pathOf(parent) + "/" + asset.Name
}

func (m *memoryAssetRepo) Create(ctx context.Context, asset *models.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if asset.Kind == models.KindFolder && m.failFolderNames[asset.Name] {
		return fmt.Errorf("simulated folder creation failure for %s", asset.Name)
	}
	if asset.Kind != models.KindFolder && m.failAssetNames[asset.Name] {
		return fmt.Errorf("simulated asset creation failure for %s", asset.Name)
	}

	m.seq++
	asset.ID = fmt.Sprintf("asset-%d", m.seq)
	m.assets[asset.ID] = asset

	if asset.Kind == models.KindFolder {
		m.createdFolderPaths = append(m.createdFolderPaths, m.pathOf(asset))
	}
	return nil
}

func (m *memoryAssetRepo) GetByID(ctx context.Context, id, userID string) (*models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	asset, ok := m.assets[id]
	if !ok || asset.UserID != userID {
		return nil, fmt.Errorf("%w: asset %s", domain.ErrNotFound, id)
	}
	copied := *asset
	return &copied, nil
}

func (m *memoryAssetRepo) Rename(ctx context.Context, id, userID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	asset, ok := m.assets[id]
	if !ok || asset.UserID != userID {
		return fmt.Errorf("%w: asset %s", domain.ErrNotFound, id)
	}
	asset.Name = name
	return nil
}

func (m *memoryAssetRepo) Delete(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	asset, ok := m.assets[id]
	if !ok || asset.UserID != userID {
		return fmt.Errorf("%w: asset %s", domain.ErrNotFound, id)
	}
	delete(m.assets, id)
	return nil
}

func (m *memoryAssetRepo) ListAll(ctx context.Context, userID string) ([]models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Asset
	for _, asset := range m.assets {
		if asset.UserID == userID {
			out = append(out, *asset)
		}
	}
	return out, nil
}

func (m *memoryAssetRepo) ListChildren(ctx context.Context, parentID *string, userID string) ([]models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Asset
	for _, asset := range m.assets {
		if asset.UserID != userID {
			continue
		}
		if sameParent(asset.ParentID, parentID) {
			out = append(out, *asset)
		}
	}
	return out, nil
}

func (m *memoryAssetRepo) FindFolder(ctx context.Context, userID, name string, parentID *string) (*models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, asset := range m.assets {
		if asset.UserID == userID && asset.Kind == models.KindFolder &&
			asset.Name == name && sameParent(asset.ParentID, parentID) {
			copied := *asset
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryAssetRepo) CreateFolderIfNotExists(ctx context.Context, userID string, parentID *string, name string) (*models.Asset, error) {
	existing, err := m.FindFolder(ctx, userID, name, parentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	folder := &models.Asset{
		UserID:   userID,
		ParentID: parentID,
		Kind:     models.KindFolder,
		Name:     name,
	}
	if err := m.Create(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

func (m *memoryAssetRepo) GetPath(ctx context.Context, folderID *string, userID string) (string, error) {
	if folderID == nil {
		return "", nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	asset, ok := m.assets[*folderID]
	if !ok {
		return "", fmt.Errorf("%w: folder %s", domain.ErrNotFound, *folderID)
	}
	return m.pathOf(asset), nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// folderCreatePaths returns a snapshot of the recorded creation order.
func (m *memoryAssetRepo) folderCreatePaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.createdFolderPaths...)
}

// memoryBlobStore records blob operations.
type memoryBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deletes []string
	puts    int
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{objects: make(map[string][]byte)}
}

func (m *memoryBlobStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	m.objects[key] = data
	return nil
}

func (m *memoryBlobStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, key)
	delete(m.objects, key)
	return nil
}

func (m *memoryBlobStore) PresignGet(ctx context.Context, key string) (string, error) {
	return "https://blobs.example/" + key, nil
}

func (m *memoryBlobStore) putCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// passthroughTxManager runs the function without a real transaction.
type passthroughTxManager struct{}

func (passthroughTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func newTestService(repo *memoryAssetRepo, store *memoryBlobStore) *Service {
	return NewService(repo, passthroughTxManager{}, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fileItem builds a file DirectoryItem with an in-memory payload.
func fileItem(relPath, contentType string, content []byte) models.DirectoryItem {
	return models.DirectoryItem{
		Kind:        models.ItemFile,
		Name:        leafName(relPath),
		Path:        relPath,
		Size:        int64(len(content)),
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

func folderItem(relPath string) models.DirectoryItem {
	return models.DirectoryItem{
		Kind: models.ItemFolder,
		Name: leafName(relPath),
		Path: relPath + "/",
	}
}
