package models

import (
	"io"
	"time"
)

// AssetKind discriminates the asset variants. Blob fields are only
// populated for KindFile and KindImage.
type AssetKind string

const (
	KindFolder AssetKind = "folder"
	KindFile   AssetKind = "file"
	KindImage  AssetKind = "image"
)

// Valid reports whether k is one of the known kinds.
func (k AssetKind) Valid() bool {
	switch k {
	case KindFolder, KindFile, KindImage:
		return true
	}
	return false
}

// BlobInfo locates an uploaded object in the blob store.
type BlobInfo struct {
	StoragePath string `json:"storage_path" db:"storage_path"`
	ContentType string `json:"mimetype" db:"mimetype"`
	Size        int64  `json:"size" db:"size"`
}

// Asset is a persisted folder, file or image in the hierarchy.
type Asset struct {
	ID       string    `json:"id" db:"id"`
	UserID   string    `json:"-" db:"user_id"`
	ParentID *string   `json:"parent_id" db:"parent_id"` // NULL = root level
	Kind     AssetKind `json:"type" db:"kind"`
	Name     string    `json:"name" db:"name"`
	Blob     *BlobInfo `json:"blob,omitempty"` // nil for folders

	// Items is the count of immediate children. It is derived per fetch
	// by the repository, never stored.
	Items int `json:"items"`

	// Path is the slash-delimited display path from the root to this
	// asset. Populated on single-asset fetches, never stored.
	Path string `json:"path,omitempty"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsFolder reports whether the asset can contain children.
func (a *Asset) IsFolder() bool { return a.Kind == KindFolder }

// DirectoryItemKind is the entry type produced by the directory extractor.
type DirectoryItemKind string

const (
	ItemFolder DirectoryItemKind = "folder"
	ItemFile   DirectoryItemKind = "file"
)

// DirectoryItem is one entry encountered while walking an uploaded
// directory tree. It exists only for the duration of one batch and is
// never persisted.
type DirectoryItem struct {
	Kind DirectoryItemKind
	Name string
	// Path is the slash-delimited path relative to the batch root.
	// Folder paths carry a trailing slash.
	Path string

	// File payload fields, set only for ItemFile.
	Open        func() (io.ReadCloser, error)
	Size        int64
	ContentType string
}

// Dir returns the containing folder path of the item (no trailing
// slash), or "" for top-level entries.
func (d *DirectoryItem) Dir() string {
	p := d.Path
	if d.Kind == ItemFolder {
		// strip trailing slash, then the leaf segment
		p = p[:len(p)-1]
	}
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[:i]
		}
	}
	return ""
}
