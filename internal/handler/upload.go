package handler

import (
	"log/slog"
	"net/http"

	"atelier/internal/config"
	"atelier/internal/httputil"
	"atelier/internal/service/assets"
)

// UploadHandler handles file and directory batch uploads
type UploadHandler struct {
	assetService *assets.Service
	logger       *slog.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(assetService *assets.Service, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		assetService: assetService,
		logger:       logger,
	}
}

// UploadFile uploads a single file into a folder
// POST /api/assets/files
// Multipart form: "file" part, optional "parent_id" value.
func (h *UploadHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	parentID := optionalFormValue(r, "parent_id")

	asset, err := h.assetService.UploadFile(
		r.Context(),
		userID,
		parentID,
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		file,
	)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, asset)
}

// UploadBatch uploads a whole directory tree in one request
// POST /api/assets/batch
// Multipart form: repeated "files" parts whose filenames carry relative
// paths, repeated "folders" values for explicit (possibly empty)
// folders, optional "parent_id" for the drop target.
//
// Responds 200 on full success, 207 on partial success, 502 when every
// file failed. Per-file accounting is always included.
func (h *UploadHandler) UploadBatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	items, extractErrs := assets.FromMultipart(r.MultipartForm)
	if len(items) == 0 && len(extractErrs) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "batch contains no entries")
		return
	}

	parentID := optionalFormValue(r, "parent_id")

	result, err := h.assetService.UploadBatch(r.Context(), userID, parentID, items)
	if err != nil {
		handleError(w, err)
		return
	}

	status := http.StatusOK
	switch result.Outcome {
	case assets.BatchPartial:
		status = http.StatusMultiStatus
	case assets.BatchFailure:
		status = http.StatusBadGateway
	}

	httputil.RespondJSON(w, status, struct {
		*assets.BatchResult
		Rejected []assets.ExtractError `json:"rejected,omitempty"`
	}{result, extractErrs})
}

// PreviewBatch returns the nested preview tree for a batch without
// committing anything
// POST /api/assets/batch/preview
func (h *UploadHandler) PreviewBatch(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	items, extractErrs := assets.FromMultipart(r.MultipartForm)

	httputil.RespondJSON(w, http.StatusOK, struct {
		Tree     []*assets.PreviewNode `json:"tree"`
		Rejected []assets.ExtractError `json:"rejected,omitempty"`
	}{assets.BuildPreview(items), extractErrs})
}

// optionalFormValue returns a pointer to a form value, nil when the
// field is absent or empty.
func optionalFormValue(r *http.Request, key string) *string {
	v := r.FormValue(key)
	if v == "" {
		return nil
	}
	return &v
}
