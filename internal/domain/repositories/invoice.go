package repositories

import (
	"context"

	"atelier/internal/domain/models"
)

// InvoiceRepository defines data access operations for invoices
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, id, userID string) (*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, id, userID string) error
	ListByUser(ctx context.Context, userID string) ([]models.Invoice, error)

	// NextSequence returns the next per-user invoice sequence number for
	// the given year, atomically incrementing the counter.
	NextSequence(ctx context.Context, userID string, year int) (int, error)
}
