package handler

import (
	"log/slog"
	"net/http"

	"atelier/internal/domain/models"
	"atelier/internal/httputil"
	"atelier/internal/service/invoices"
)

// InvoiceHandler handles invoice HTTP requests
type InvoiceHandler struct {
	invoiceService *invoices.Service
	logger         *slog.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *invoices.Service, logger *slog.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// ListInvoices retrieves all invoices for the user
// GET /api/invoices
func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	list, err := h.invoiceService.List(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	if list == nil {
		list = []models.Invoice{}
	}

	httputil.RespondJSON(w, http.StatusOK, list)
}

// CreateInvoice creates a new draft invoice with derived fields
// POST /api/invoices
func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req invoices.CreateInvoiceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	invoice, err := h.invoiceService.Create(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, invoice)
}

// GetInvoice retrieves an invoice by ID
// GET /api/invoices/{id}
func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := requirePathID(w, r)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Get(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, invoice)
}

// UpdateInvoice updates an invoice and recomputes derived fields
// PATCH /api/invoices/{id}
func (h *InvoiceHandler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := requirePathID(w, r)
	if !ok {
		return
	}

	var req invoices.UpdateInvoiceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	invoice, err := h.invoiceService.Update(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, invoice)
}

// DeleteInvoice deletes a draft invoice
// DELETE /api/invoices/{id}
func (h *InvoiceHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := requirePathID(w, r)
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SendInvoice emails the invoice to the client and marks it sent
// POST /api/invoices/{id}/send
func (h *InvoiceHandler) SendInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := requirePathID(w, r)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Send(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, invoice)
}
