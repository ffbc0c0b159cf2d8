package assets

import (
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"path"
	"sort"
	"strings"

	"atelier/internal/config"
	"atelier/internal/domain/models"
)

// ExtractError reports one entry that could not be extracted from an
// upload payload. Extraction of siblings continues regardless.
type ExtractError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// FromMultipart converts a parsed multipart batch into a flat
// DirectoryItem list. File parts arrive under the "files" field with
// their slash-delimited relative path as the part filename; explicit
// folder paths (needed to round-trip empty folders) arrive as repeated
// "folders" form values.
func FromMultipart(form *multipart.Form) ([]models.DirectoryItem, []ExtractError) {
	var items []models.DirectoryItem
	var errs []ExtractError

	for _, raw := range form.Value["folders"] {
		p, err := normalizeRelPath(raw)
		if err != nil {
			errs = append(errs, ExtractError{Path: raw, Error: err.Error()})
			continue
		}
		if p == "" {
			continue
		}
		items = append(items, models.DirectoryItem{
			Kind: models.ItemFolder,
			Name: path.Base(p),
			Path: p + "/",
		})
	}

	for _, fh := range form.File["files"] {
		p, err := normalizeRelPath(fh.Filename)
		if err != nil {
			errs = append(errs, ExtractError{Path: fh.Filename, Error: err.Error()})
			continue
		}
		if p == "" {
			errs = append(errs, ExtractError{Path: fh.Filename, Error: "empty file name"})
			continue
		}

		items = append(items, models.DirectoryItem{
			Kind:        models.ItemFile,
			Name:        path.Base(p),
			Path:        p,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}

	return items, errs
}

// FromFS walks a filesystem tree rooted at fsys and produces the same
// flat DirectoryItem contract as FromMultipart. A directory is emitted
// before any of its descendants.
func FromFS(fsys fs.FS) ([]models.DirectoryItem, []ExtractError) {
	var items []models.DirectoryItem
	var errs []ExtractError

	walkErr := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, ExtractError{Path: p, Error: err.Error()})
			return nil
		}
		if p == "." {
			return nil
		}

		if d.IsDir() {
			items = append(items, models.DirectoryItem{
				Kind: models.ItemFolder,
				Name: d.Name(),
				Path: p + "/",
			})
			return nil
		}

		info, err := d.Info()
		if err != nil {
			errs = append(errs, ExtractError{Path: p, Error: err.Error()})
			return nil
		}

		items = append(items, models.DirectoryItem{
			Kind: models.ItemFile,
			Name: d.Name(),
			Path: p,
			Size: info.Size(),
			Open: func() (io.ReadCloser, error) {
				return fsys.Open(p)
			},
		})
		return nil
	})
	if walkErr != nil {
		errs = append(errs, ExtractError{Path: ".", Error: walkErr.Error()})
	}

	return items, errs
}

// normalizeRelPath cleans a slash-delimited relative path and rejects
// anything that could escape the batch root.
func normalizeRelPath(raw string) (string, error) {
	p := strings.ReplaceAll(raw, "\\", "/")
	p = strings.Trim(p, "/")
	if p == "" {
		return "", nil
	}
	if len(p) > config.MaxRelativePathLength {
		return "", fmt.Errorf("path exceeds maximum length of %d", config.MaxRelativePathLength)
	}

	p = path.Clean(p)
	if p == "." {
		return "", nil
	}
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("path escapes the upload root")
	}

	for _, segment := range strings.Split(p, "/") {
		if len(segment) > config.MaxAssetNameLength {
			return "", fmt.Errorf("path segment '%s' exceeds maximum length of %d", segment, config.MaxAssetNameLength)
		}
	}

	return p, nil
}

// requiredFolderPaths collects every folder path implied by the batch:
// each file contributes all of its directory prefixes, each explicit
// folder contributes its own path plus prefixes. The result is sorted
// by depth ascending so parents always precede children.
func requiredFolderPaths(items []models.DirectoryItem) []string {
	seen := make(map[string]bool)

	addWithPrefixes := func(p string) {
		segments := strings.Split(p, "/")
		for i := 1; i <= len(segments); i++ {
			seen[strings.Join(segments[:i], "/")] = true
		}
	}

	for _, item := range items {
		switch item.Kind {
		case models.ItemFolder:
			addWithPrefixes(strings.TrimSuffix(item.Path, "/"))
		case models.ItemFile:
			if dir := item.Dir(); dir != "" {
				addWithPrefixes(dir)
			}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}

	sort.Slice(paths, func(i, j int) bool {
		di := strings.Count(paths[i], "/")
		dj := strings.Count(paths[j], "/")
		if di != dj {
			return di < dj
		}
		return paths[i] < paths[j]
	})

	return paths
}
