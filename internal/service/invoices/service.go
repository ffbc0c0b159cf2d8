// Package invoices implements invoice CRUD with server-derived fields:
// number, subtotal, tax, total and payment reference are recomputed on
// every write, never accepted from clients.
package invoices

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"atelier/internal/billing"
	"atelier/internal/config"
	"atelier/internal/domain"
	"atelier/internal/domain/models"
	"atelier/internal/domain/repositories"
	"atelier/internal/mailer"
)

// Service coordinates invoice persistence, derived-field computation
// and sending.
type Service struct {
	repo      repositories.InvoiceRepository
	txManager repositories.TransactionManager
	rates     *billing.Registry
	mail      mailer.Sender
	mailFrom  string
	logger    *slog.Logger
}

// NewService creates the invoice service.
func NewService(
	repo repositories.InvoiceRepository,
	txManager repositories.TransactionManager,
	rates *billing.Registry,
	mail mailer.Sender,
	mailFrom string,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		rates:     rates,
		mail:      mail,
		mailFrom:  mailFrom,
		logger:    logger,
	}
}

// CreateInvoiceRequest is the client payload for a new invoice. All
// monetary amounts are integer cents.
type CreateInvoiceRequest struct {
	ClientName  string            `json:"client_name"`
	ClientEmail string            `json:"client_email"`
	Region      string            `json:"region"`
	Items       []models.LineItem `json:"items"`
}

// UpdateInvoiceRequest carries the editable invoice fields. Nil fields
// are left unchanged.
type UpdateInvoiceRequest struct {
	ClientName  *string            `json:"client_name"`
	ClientEmail *string            `json:"client_email"`
	Region      *string            `json:"region"`
	Items       *[]models.LineItem `json:"items"`
	Status      *string            `json:"status"`
}

// Create persists a new draft invoice. The invoice number is assigned
// from a per-user yearly sequence inside the same transaction as the
// insert, so numbers never repeat or skip on conflict retries.
func (s *Service) Create(ctx context.Context, userID string, req *CreateInvoiceRequest) (*models.Invoice, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	invoice := &models.Invoice{
		UserID:      userID,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		Region:      req.Region,
		Items:       req.Items,
		Status:      models.InvoiceDraft,
	}
	s.deriveAmounts(invoice)

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		year := time.Now().Year()
		seq, err := s.repo.NextSequence(txCtx, userID, year)
		if err != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", err)
		}
		invoice.Number = s.formatNumber(year, seq)
		invoice.PaymentReference = billing.PaymentReference(invoice.Number)

		return s.repo.Create(txCtx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice created",
		"id", invoice.ID,
		"number", invoice.Number,
		"user_id", userID,
		"total", invoice.Total,
	)

	return invoice, nil
}

// Get retrieves one invoice.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.Invoice, error) {
	return s.repo.GetByID(ctx, id, userID)
}

// List returns the user's invoices, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.Invoice, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Update applies edits to an invoice and recomputes the derived
// amounts. The number and payment reference never change after
// creation. Content edits are only allowed while the invoice is a
// draft; status transitions follow the draft/sent/paid/void lifecycle.
func (s *Service) Update(ctx context.Context, userID, id string, req *UpdateInvoiceRequest) (*models.Invoice, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	invoice, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	contentEdit := req.ClientName != nil || req.ClientEmail != nil || req.Region != nil || req.Items != nil
	if contentEdit && invoice.Status != models.InvoiceDraft {
		return nil, fmt.Errorf("%w: only draft invoices can be edited", domain.ErrConflict)
	}

	if req.ClientName != nil {
		invoice.ClientName = *req.ClientName
	}
	if req.ClientEmail != nil {
		invoice.ClientEmail = *req.ClientEmail
	}
	if req.Region != nil {
		invoice.Region = *req.Region
	}
	if req.Items != nil {
		invoice.Items = *req.Items
	}
	if req.Status != nil {
		next := models.InvoiceStatus(*req.Status)
		if err := validateTransition(invoice.Status, next); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		invoice.Status = next
	}

	s.deriveAmounts(invoice)

	if err := s.repo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Info("invoice updated",
		"id", invoice.ID,
		"number", invoice.Number,
		"status", invoice.Status,
		"user_id", userID,
	)

	return invoice, nil
}

// Delete removes an invoice. Only drafts can be deleted; anything that
// has been sent stays on record (void it instead).
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	invoice, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if invoice.Status != models.InvoiceDraft {
		return fmt.Errorf("%w: only draft invoices can be deleted", domain.ErrConflict)
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.logger.Info("invoice deleted", "id", id, "number", invoice.Number, "user_id", userID)
	return nil
}

// Send emails the invoice to the client and moves it from draft to
// sent. The status only changes after the mail API accepts the message.
func (s *Service) Send(ctx context.Context, userID, id string) (*models.Invoice, error) {
	invoice, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceDraft {
		return nil, fmt.Errorf("%w: invoice has already been sent", domain.ErrConflict)
	}
	if invoice.ClientEmail == "" {
		return nil, fmt.Errorf("%w: invoice has no client email", domain.ErrValidation)
	}

	msg := mailer.Message{
		From:    s.mailFrom,
		To:      invoice.ClientEmail,
		Subject: fmt.Sprintf("Invoice %s", invoice.Number),
		Text:    renderInvoiceText(invoice),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send invoice: %w", err)
	}

	invoice.Status = models.InvoiceSent
	if err := s.repo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Info("invoice sent",
		"id", invoice.ID,
		"number", invoice.Number,
		"to", invoice.ClientEmail,
		"user_id", userID,
	)

	return invoice, nil
}

// deriveAmounts recomputes subtotal, tax and total from the line items
// and the region's tax rate. Integer basis-point math keeps cent
// amounts exact; the tax is rounded half up.
func (s *Service) deriveAmounts(invoice *models.Invoice) {
	var subtotal int64
	for _, item := range invoice.Items {
		subtotal += item.Amount()
	}

	rate := s.rates.RateFor(invoice.Region)
	tax := (subtotal*rate.BasisPoints + 5000) / 10000

	invoice.Subtotal = subtotal
	invoice.TaxRate = rate.Label
	invoice.Tax = tax
	invoice.Total = subtotal + tax
}

// formatNumber renders a derived invoice number, e.g. "INV-2026-0042".
func (s *Service) formatNumber(year, seq int) string {
	n := s.rates.Numbering()
	return fmt.Sprintf("%s-%d-%0*d", n.Prefix, year, n.Pad, seq)
}

func renderInvoiceText(inv *models.Invoice) string {
	return fmt.Sprintf(
		"Dear %s,\n\nPlease find invoice %s below.\n\n"+
			"Subtotal: %s\nTax (%s): %s\nTotal due: %s\n\n"+
			"Payment reference: %s\n",
		inv.ClientName,
		inv.Number,
		formatCents(inv.Subtotal),
		inv.TaxRate,
		formatCents(inv.Tax),
		formatCents(inv.Total),
		inv.PaymentReference,
	)
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// validateTransition enforces the invoice lifecycle: drafts are sent,
// sent invoices are paid or voided.
func validateTransition(from, to models.InvoiceStatus) error {
	allowed := map[models.InvoiceStatus][]models.InvoiceStatus{
		models.InvoiceDraft: {models.InvoiceSent, models.InvoiceVoid},
		models.InvoiceSent:  {models.InvoicePaid, models.InvoiceVoid},
	}
	for _, next := range allowed[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("cannot transition invoice from %s to %s", from, to)
}

func (s *Service) validateCreateRequest(req *CreateInvoiceRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ClientName, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.ClientEmail, validation.Required, is.EmailFormat),
		validation.Field(&req.Items,
			validation.Required,
			validation.Length(1, config.MaxInvoiceLineItems),
		),
	); err != nil {
		return err
	}
	return validateLineItems(req.Items)
}

func (s *Service) validateUpdateRequest(req *UpdateInvoiceRequest) error {
	if req.ClientName == nil && req.ClientEmail == nil && req.Region == nil &&
		req.Items == nil && req.Status == nil {
		return fmt.Errorf("at least one field must be provided")
	}

	if req.ClientEmail != nil {
		if err := validation.Validate(*req.ClientEmail, validation.Required, is.EmailFormat); err != nil {
			return fmt.Errorf("client_email: %v", err)
		}
	}
	if req.Status != nil && !models.InvoiceStatus(*req.Status).Valid() {
		return fmt.Errorf("unknown status '%s'", *req.Status)
	}
	if req.Items != nil {
		if len(*req.Items) == 0 || len(*req.Items) > config.MaxInvoiceLineItems {
			return fmt.Errorf("items must contain between 1 and %d entries", config.MaxInvoiceLineItems)
		}
		return validateLineItems(*req.Items)
	}
	return nil
}

func validateLineItems(items []models.LineItem) error {
	for i, item := range items {
		if item.Description == "" {
			return fmt.Errorf("items[%d]: description is required", i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("items[%d]: quantity must be positive", i)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("items[%d]: unit price cannot be negative", i)
		}
	}
	return nil
}
