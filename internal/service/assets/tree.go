package assets

import (
	"context"
	"sort"
	"strings"

	"atelier/internal/domain/models"
)

// TreeNode is one node of the nested asset tree returned by the tree
// listing: the flat parent-pointer records regrouped for display.
type TreeNode struct {
	Asset    models.Asset `json:"asset"`
	Children []*TreeNode  `json:"children,omitempty"`
}

// Tree returns the user's assets as a nested tree rooted at the
// top-level records. Built in three passes over the flat list: index
// nodes by id, attach children to parents, collect the roots. Records
// whose parent is missing are treated as roots rather than dropped.
func (s *Service) Tree(ctx context.Context, userID string) ([]*TreeNode, error) {
	flat, err := s.assetRepo.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildTree(flat), nil
}

func buildTree(flat []models.Asset) []*TreeNode {
	nodes := make(map[string]*TreeNode, len(flat))
	for i := range flat {
		nodes[flat[i].ID] = &TreeNode{Asset: flat[i]}
	}

	var roots []*TreeNode
	for i := range flat {
		node := nodes[flat[i].ID]
		if pid := flat[i].ParentID; pid != nil {
			if parent, ok := nodes[*pid]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	sortTree(roots)
	return roots
}

// sortTree orders siblings folders-first, then by name, recursively.
func sortTree(nodes []*TreeNode) {
	sort.Slice(nodes, func(i, j int) bool {
		fi := nodes[i].Asset.IsFolder()
		fj := nodes[j].Asset.IsFolder()
		if fi != fj {
			return fi
		}
		return nodes[i].Asset.Name < nodes[j].Asset.Name
	})
	for _, n := range nodes {
		sortTree(n.Children)
	}
}

// PreviewNode is one node of the ephemeral preview tree shown for a
// directory batch before it is committed.
type PreviewNode struct {
	Kind     models.DirectoryItemKind `json:"type"`
	Name     string                   `json:"name"`
	Path     string                   `json:"path"`
	Size     int64                    `json:"size,omitempty"`
	Children []*PreviewNode           `json:"children,omitempty"`
}

// BuildPreview regroups a flat DirectoryItem list into a nested tree by
// path segment. Intermediate folders that only appear as file prefixes
// are synthesized.
func BuildPreview(items []models.DirectoryItem) []*PreviewNode {
	byPath := make(map[string]*PreviewNode)
	var roots []*PreviewNode

	// ensureFolder materializes a preview folder node for a path and
	// all of its ancestors.
	var ensureFolder func(p string) *PreviewNode
	ensureFolder = func(p string) *PreviewNode {
		if node, ok := byPath[p]; ok {
			return node
		}
		node := &PreviewNode{
			Kind: models.ItemFolder,
			Name: leafName(p),
			Path: p + "/",
		}
		byPath[p] = node
		if dir := parentPath(p); dir != "" {
			parent := ensureFolder(dir)
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
		return node
	}

	for _, item := range items {
		switch item.Kind {
		case models.ItemFolder:
			ensureFolder(trimTrailingSlash(item.Path))
		case models.ItemFile:
			node := &PreviewNode{
				Kind: models.ItemFile,
				Name: item.Name,
				Path: item.Path,
				Size: item.Size,
			}
			if dir := item.Dir(); dir != "" {
				parent := ensureFolder(dir)
				parent.Children = append(parent.Children, node)
			} else {
				roots = append(roots, node)
			}
		}
	}

	return roots
}

func trimTrailingSlash(p string) string {
	if len(p) > 0 && p[len(p)-1] == '/' {
		return p[:len(p)-1]
	}
	return p
}

func leafName(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
