package assets

import (
	"context"
	"fmt"
	"path"
	"strings"

	"atelier/internal/domain/models"
)

// folderMap holds the result of one reconciliation pass: resolved
// folder ids keyed by relative path, plus the paths whose creation
// failed (directly or through a failed ancestor).
type folderMap struct {
	ids    map[string]string
	failed map[string]error
}

// resolve returns the folder id for a relative path, or an error when
// the path is unknown or belongs to a failed subtree.
func (m *folderMap) resolve(p string) (string, error) {
	if err, ok := m.failed[p]; ok {
		return "", err
	}
	id, ok := m.ids[p]
	if !ok {
		return "", fmt.Errorf("folder path '%s' was not reconciled", p)
	}
	return id, nil
}

// reconcileFolders materializes every folder path implied by the batch
// as a persisted asset, reusing folders that already exist under the
// same parent. Creation calls run sequentially in depth order so a
// parent's id is always resolved before any child references it.
//
// A failed creation poisons its whole subtree but not its siblings.
// Already-created folders are never rolled back; a retry of the same
// batch finds and reuses them.
func (s *Service) reconcileFolders(
	ctx context.Context,
	userID string,
	root *string,
	items []models.DirectoryItem,
) *folderMap {
	result := &folderMap{
		ids:    make(map[string]string),
		failed: make(map[string]error),
	}

	for _, p := range requiredFolderPaths(items) {
		parent := root
		if dir := parentPath(p); dir != "" {
			if err, ok := result.failed[dir]; ok {
				result.failed[p] = fmt.Errorf("parent folder '%s' unavailable: %w", dir, err)
				continue
			}
			parentID := result.ids[dir]
			parent = &parentID
		}

		folder, err := s.assetRepo.CreateFolderIfNotExists(ctx, userID, parent, path.Base(p))
		if err != nil {
			s.logger.Warn("folder reconciliation failed",
				"path", p,
				"user_id", userID,
				"error", err,
			)
			result.failed[p] = err
			continue
		}

		result.ids[p] = folder.ID
	}

	return result
}

// parentPath strips the leaf segment from a relative path.
func parentPath(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i]
	}
	return ""
}

// resolvePlacement determines the parent folder id for one file item:
// loose top-level files go to the batch's drop target, nested files to
// their reconciled containing folder.
func resolvePlacement(item *models.DirectoryItem, root *string, folders *folderMap) (*string, error) {
	dir := item.Dir()
	if dir == "" {
		return root, nil
	}

	id, err := folders.resolve(dir)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
