package orders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderTransitionTable(t *testing.T) {
	allowed := []struct {
		from, to OrderStatus
	}{
		{OrderStatusPending, OrderStatusValidated},
		{OrderStatusPending, OrderStatusRefused},
		{OrderStatusValidated, OrderStatusOrdered},
		{OrderStatusOrdered, OrderStatusDelivered},
		{OrderStatusDelivered, OrderStatusPaid},
	}
	for _, tc := range allowed {
		require.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct {
		from, to OrderStatus
	}{
		{OrderStatusPending, OrderStatusOrdered},
		{OrderStatusPending, OrderStatusPaid},
		{OrderStatusValidated, OrderStatusRefused},
		{OrderStatusRefused, OrderStatusValidated},
		{OrderStatusPaid, OrderStatusDelivered},
		{OrderStatusOrdered, OrderStatusValidated},
	}
	for _, tc := range denied {
		require.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	require.True(t, OrderStatusRefused.Terminal())
	require.True(t, OrderStatusPaid.Terminal())
	require.False(t, OrderStatusPending.Terminal())
	require.False(t, OrderStatusValidated.Terminal())
	require.False(t, OrderStatus("inconnue").Terminal())
}
