package billing

import (
	"fmt"
	"strings"
)

// PaymentReference derives an ISO 11649 structured creditor reference
// ("RF" reference) from an invoice number. Non-alphanumeric characters
// in the number are dropped before computing the check digits, so
// "INV-2026-0042" and "INV20260042" map to the same reference.
func PaymentReference(invoiceNumber string) string {
	reference := sanitizeReference(invoiceNumber)
	check := 98 - mod97(reference+"RF00")
	return fmt.Sprintf("RF%02d%s", check, reference)
}

// sanitizeReference uppercases and strips everything outside [0-9A-Z].
func sanitizeReference(s string) string {
	var b strings.Builder
	for _, c := range strings.ToUpper(s) {
		if (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// mod97 computes the IBAN-style mod 97 of the expanded representation,
// where letters expand to two digits (A=10 .. Z=35). Digit-by-digit
// reduction avoids overflow for long references.
func mod97(s string) int {
	remainder := 0
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			remainder = (remainder*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			value := int(c-'A') + 10
			remainder = (remainder*100 + value) % 97
		}
	}
	return remainder
}
