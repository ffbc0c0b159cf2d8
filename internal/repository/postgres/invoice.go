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

// PostgresInvoiceRepository implements the InvoiceRepository interface
type PostgresInvoiceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(config *RepositoryConfig) repositories.InvoiceRepository {
	return &PostgresInvoiceRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const invoiceColumns = `id, user_id, number, client_name, client_email, region, items, status,
	subtotal, tax_rate, tax, total, payment_reference, created_at, updated_at`

// Create creates a new invoice
func (r *PostgresInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, number, client_name, client_email, region, items, status,
			subtotal, tax_rate, tax, total, payment_reference, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`, r.tables.Invoices)

	now := time.Now()
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = now
	}
	if invoice.UpdatedAt.IsZero() {
		invoice.UpdatedAt = now
	}

	err := executor.QueryRow(ctx, query,
		invoice.UserID,
		invoice.Number,
		invoice.ClientName,
		invoice.ClientEmail,
		invoice.Region,
		invoice.Items,
		invoice.Status,
		invoice.Subtotal,
		invoice.TaxRate,
		invoice.Tax,
		invoice.Total,
		invoice.PaymentReference,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Scan(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("invoice '%s': %w", invoice.Number, domain.ErrConflict)
		}
		return fmt.Errorf("create invoice: %w", err)
	}

	return nil
}

// GetByID retrieves an invoice by ID
func (r *PostgresInvoiceRepository) GetByID(ctx context.Context, id, userID string) (*models.Invoice, error) {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND user_id = $2
	`, invoiceColumns, r.tables.Invoices)

	invoice, err := scanInvoice(executor.QueryRow(ctx, query, id, userID))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	return invoice, nil
}

// Update updates an invoice
func (r *PostgresInvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		UPDATE %s
		SET client_name = $1, client_email = $2, region = $3, items = $4, status = $5,
			subtotal = $6, tax_rate = $7, tax = $8, total = $9, payment_reference = $10,
			updated_at = $11
		WHERE id = $12 AND user_id = $13
	`, r.tables.Invoices)

	invoice.UpdatedAt = time.Now()

	result, err := executor.Exec(ctx, query,
		invoice.ClientName,
		invoice.ClientEmail,
		invoice.Region,
		invoice.Items,
		invoice.Status,
		invoice.Subtotal,
		invoice.TaxRate,
		invoice.Tax,
		invoice.Total,
		invoice.PaymentReference,
		invoice.UpdatedAt,
		invoice.ID,
		invoice.UserID,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s: %w", invoice.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes an invoice
func (r *PostgresInvoiceRepository) Delete(ctx context.Context, id, userID string) error {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Invoices)

	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByUser lists all invoices for a user, newest first
func (r *PostgresInvoiceRepository) ListByUser(ctx context.Context, userID string) ([]models.Invoice, error) {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, invoiceColumns, r.tables.Invoices)

	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, *invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}

	return invoices, nil
}

// NextSequence atomically increments and returns the per-user invoice
// counter for a year. Backed by an upsert so the first invoice of a year
// starts the counter at 1.
func (r *PostgresInvoiceRepository) NextSequence(ctx context.Context, userID string, year int) (int, error) {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, year, counter)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, year)
		DO UPDATE SET counter = %s.counter + 1
		RETURNING counter
	`, r.tables.InvoiceCounters, r.tables.InvoiceCounters)

	var counter int
	if err := executor.QueryRow(ctx, query, userID, year).Scan(&counter); err != nil {
		return 0, fmt.Errorf("next invoice sequence: %w", err)
	}

	return counter, nil
}

// scanInvoice reads one invoice row. The items column is JSONB.
func scanInvoice(row rowScanner) (*models.Invoice, error) {
	var invoice models.Invoice
	err := row.Scan(
		&invoice.ID,
		&invoice.UserID,
		&invoice.Number,
		&invoice.ClientName,
		&invoice.ClientEmail,
		&invoice.Region,
		&invoice.Items,
		&invoice.Status,
		&invoice.Subtotal,
		&invoice.TaxRate,
		&invoice.Tax,
		&invoice.Total,
		&invoice.PaymentReference,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}
