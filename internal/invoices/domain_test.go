package invoices

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInvoiceTransitions(t *testing.T) {
	allowed := []struct{ from, to InvoiceStatus }{
		{InvoiceStatusDraft, InvoiceStatusPending},
		{InvoiceStatusPending, InvoiceStatusValidated},
		{InvoiceStatusPending, InvoiceStatusRefused},
	}
	for _, tc := range allowed {
		require.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to InvoiceStatus }{
		{InvoiceStatusDraft, InvoiceStatusValidated},
		{InvoiceStatusDraft, InvoiceStatusRefused},
		{InvoiceStatusValidated, InvoiceStatusPending},
		{InvoiceStatusRefused, InvoiceStatusDraft},
		{InvoiceStatusPending, InvoiceStatusDraft},
	}
	for _, tc := range denied {
		require.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}

	require.False(t, InvoiceStatusDraft.Terminal())
	require.False(t, InvoiceStatusPending.Terminal())
	require.True(t, InvoiceStatusValidated.Terminal())
	require.True(t, InvoiceStatusRefused.Terminal())

	require.False(t, InvoiceStatus("annulée").Valid())
}

func TestComputeTotals(t *testing.T) {
	subtotal, tax, total := ComputeTotals([]InvoiceLine{
		{Description: "a", Quantity: 3, UnitPrice: 10},
		{Description: "b", Quantity: 1, UnitPrice: 5},
	})
	require.InDelta(t, 35.0, subtotal, 1e-9)
	require.InDelta(t, 7.0, tax, 1e-9)
	require.InDelta(t, 42.0, total, 1e-9)
}
