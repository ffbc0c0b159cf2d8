package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"atelier/internal/domain"
	"atelier/internal/domain/models"
	"atelier/internal/httputil"
	"atelier/internal/service/assets"
)

// AssetHandler handles asset HTTP requests
type AssetHandler struct {
	assetService *assets.Service
	logger       *slog.Logger
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assetService *assets.Service, logger *slog.Logger) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
		logger:       logger,
	}
}

// ListAssets returns the user's full flat asset list
// GET /api/assets
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	list, err := h.assetService.ListAll(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	if list == nil {
		list = []models.Asset{}
	}

	httputil.RespondJSON(w, http.StatusOK, list)
}

// GetTree returns the user's assets as a nested tree
// GET /api/assets/tree
func (h *AssetHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	tree, err := h.assetService.Tree(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	if tree == nil {
		tree = []*assets.TreeNode{}
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// GetAsset returns a single asset with its display path
// GET /api/assets/{id}
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := requirePathID(w, r)
	if !ok {
		return
	}

	asset, err := h.assetService.Get(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, asset)
}

// CreateFolder creates a new folder
// POST /api/assets/folders
// Returns 201 if created, 409 with the existing folder if duplicate
func (h *AssetHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req assets.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.assetService.CreateFolder(r.Context(), userID, &req)
	if err != nil {
		HandleCreateConflict(w, err, func() (*models.Asset, error) {
			var conflictErr *domain.ConflictError
			if errors.As(err, &conflictErr) {
				return h.assetService.Get(r.Context(), userID, conflictErr.ResourceID)
			}
			return nil, err
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// Rename renames an asset
// PATCH /api/assets/{id}
func (h *AssetHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := requirePathID(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asset, err := h.assetService.Rename(r.Context(), userID, id, req.Name)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, asset)
}

// Delete deletes an asset, cascading through folder contents
// DELETE /api/assets/{id}
func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := requirePathID(w, r)
	if !ok {
		return
	}

	if err := h.assetService.Delete(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Download redirects to a presigned URL for a file's blob
// GET /api/assets/{id}/download
func (h *AssetHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := requirePathID(w, r)
	if !ok {
		return
	}

	url, err := h.assetService.Download(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}
