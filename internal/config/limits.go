package config

// Resource limits applied during validation.
const (
	// MaxAssetNameLength is the maximum length of a folder or file name.
	MaxAssetNameLength = 255

	// MaxRelativePathLength is the maximum length of a relative path
	// inside one uploaded directory batch.
	MaxRelativePathLength = 1024

	// MaxUploadSize is the per-request multipart memory limit (100MB).
	MaxUploadSize = 100 << 20

	// MaxBatchConcurrency caps the number of in-flight blob uploads for
	// one directory batch. Uploads within a batch are otherwise unordered.
	MaxBatchConcurrency = 8

	// MaxInvoiceLineItems bounds the number of line items on one invoice.
	MaxInvoiceLineItems = 200

	// MaxProposalBriefLength bounds the brief passed to the drafting provider.
	MaxProposalBriefLength = 4000
)

// ProtectedFolders are folder names that can never be deleted. The check
// happens in the asset service before any repository or blob-store call.
var ProtectedFolders = map[string]bool{
	"Creatives": true,
	"Setup":     true,
	"Reports":   true,
}
