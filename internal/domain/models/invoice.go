package models

import (
	"time"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
	InvoiceVoid  InvoiceStatus = "void"
)

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceVoid:
		return true
	}
	return false
}

// LineItem is one billable row on an invoice. Amounts are integer cents.
type LineItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

// Amount returns the line total in cents.
func (li LineItem) Amount() int64 {
	return int64(li.Quantity) * li.UnitPrice
}

// Invoice is a persisted invoice. Number, Subtotal, Tax, Total and
// PaymentReference are derived server-side and recomputed on every
// create/update; clients never supply them.
type Invoice struct {
	ID          string        `json:"id" db:"id"`
	UserID      string        `json:"-" db:"user_id"`
	Number      string        `json:"number" db:"number"`
	ClientName  string        `json:"client_name" db:"client_name"`
	ClientEmail string        `json:"client_email" db:"client_email"`
	Region      string        `json:"region" db:"region"`
	Items       []LineItem    `json:"items" db:"items"`
	Status      InvoiceStatus `json:"status" db:"status"`

	Subtotal         int64  `json:"subtotal" db:"subtotal"`
	TaxRate          string `json:"tax_rate" db:"tax_rate"` // e.g. "21%"
	Tax              int64  `json:"tax" db:"tax"`
	Total            int64  `json:"total" db:"total"`
	PaymentReference string `json:"payment_reference" db:"payment_reference"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
