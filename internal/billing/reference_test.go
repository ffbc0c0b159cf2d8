package billing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A structured creditor reference is valid when moving "RF" plus the
// check digits to the end yields mod 97 == 1.
func validReference(ref string) bool {
	if len(ref) < 5 || !strings.HasPrefix(ref, "RF") {
		return false
	}
	rearranged := ref[4:] + ref[:4]
	return mod97(rearranged) == 1
}

func TestPaymentReference_Valid(t *testing.T) {
	for _, number := range []string{
		"INV-2026-0001",
		"INV-2026-0042",
		"INV-2025-9999",
		"1",
	} {
		ref := PaymentReference(number)
		require.True(t, strings.HasPrefix(ref, "RF"), "reference %s must start with RF", ref)
		assert.True(t, validReference(ref), "reference %s fails the mod 97 check", ref)
	}
}

func TestPaymentReference_SeparatorsIrrelevant(t *testing.T) {
	assert.Equal(t,
		PaymentReference("INV-2026-0042"),
		PaymentReference("INV20260042"),
	)
	assert.Equal(t,
		PaymentReference("inv-2026-0042"),
		PaymentReference("INV-2026-0042"),
	)
}

func TestPaymentReference_Deterministic(t *testing.T) {
	a := PaymentReference("INV-2026-0042")
	b := PaymentReference("INV-2026-0042")
	assert.Equal(t, a, b)
}

func TestSanitizeReference(t *testing.T) {
	assert.Equal(t, "INV20260042", sanitizeReference("inv-2026-0042"))
	assert.Equal(t, "", sanitizeReference("--//--"))
}

func TestMod97_KnownValue(t *testing.T) {
	// 100 mod 97 = 3
	assert.Equal(t, 3, mod97("100"))
	// letter expansion: "A" -> 10
	assert.Equal(t, 10, mod97("A"))
}
