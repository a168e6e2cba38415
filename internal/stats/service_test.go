package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comptoir-erp/comptoir-erp/internal/auth"
	"github.com/comptoir-erp/comptoir-erp/internal/catalog"
	"github.com/comptoir-erp/comptoir-erp/internal/clients"
	"github.com/comptoir-erp/comptoir-erp/internal/invoices"
	"github.com/comptoir-erp/comptoir-erp/internal/orders"
)

func newSeededService(t *testing.T) *Service {
	t.Helper()
	now := time.Now().UTC()

	productRepo := catalog.NewMemoryRepository([]catalog.Product{
		{ID: "p1", Name: "Écran", Category: catalog.CategoryInformatique, Unit: "pièce", Price: 150, Quantity: 12, CreatedAt: now, UpdatedAt: now},
		{ID: "p2", Name: "Câble", Category: catalog.CategoryInformatique, Unit: "pièce", Price: 5, Quantity: 3, CreatedAt: now, UpdatedAt: now},
	}, nil)

	clientRepo := clients.NewMemoryRepository([]clients.Client{
		{ID: "c1", ResellerID: "reseller-a", Name: "Client A", CreatedAt: now, UpdatedAt: now},
		{ID: "c2", ResellerID: "reseller-b", Name: "Client B", CreatedAt: now, UpdatedAt: now},
	})

	orderRepo := orders.NewMemoryRepository([]orders.Order{
		{ID: "o1", ResellerID: "reseller-a", ClientID: "c1", Status: orders.OrderStatusPending, Total: 100, CreatedAt: now, UpdatedAt: now},
		{ID: "o2", ResellerID: "reseller-a", ClientID: "c1", Status: orders.OrderStatusValidated, Total: 40, CreatedAt: now, UpdatedAt: now},
		{ID: "o3", ResellerID: "reseller-b", ClientID: "c2", Status: orders.OrderStatusPending, Total: 60, CreatedAt: now, UpdatedAt: now},
	})

	invoiceRepo := invoices.NewMemoryRepository([]invoices.Invoice{
		{ID: "i1", ResellerID: "reseller-a", ClientID: "c1", Status: invoices.InvoiceStatusDraft, Total: 120, CreatedAt: now, UpdatedAt: now},
		{ID: "i2", ResellerID: "reseller-b", ClientID: "c2", Status: invoices.InvoiceStatusValidated, Total: 300, CreatedAt: now, UpdatedAt: now},
	})

	return NewService(NewMemoryRepository(productRepo, clientRepo, orderRepo, invoiceRepo))
}

func TestDashboardForManagerCoversEveryRow(t *testing.T) {
	svc := newSeededService(t)
	manager := auth.Identity{ID: "manager-1", Role: auth.RoleManager}

	dashboard, err := svc.Dashboard(context.Background(), manager)
	require.NoError(t, err)

	require.Equal(t, 2, dashboard.ProductCount)
	require.Equal(t, 1, dashboard.LowStockCount)
	require.Equal(t, 2, dashboard.ClientCount)
	require.Equal(t, 2, dashboard.OrdersByStatus[string(orders.OrderStatusPending)])
	require.Equal(t, 1, dashboard.OrdersByStatus[string(orders.OrderStatusValidated)])
	require.Equal(t, 1, dashboard.InvoiceTotals[string(invoices.InvoiceStatusValidated)].Count)
	require.InDelta(t, 300.0, dashboard.InvoiceTotals[string(invoices.InvoiceStatusValidated)].Total, 1e-9)
}

func TestDashboardScopedToReseller(t *testing.T) {
	svc := newSeededService(t)
	reseller := auth.Identity{ID: "reseller-a", Role: auth.RoleReseller}

	dashboard, err := svc.Dashboard(context.Background(), reseller)
	require.NoError(t, err)

	// The shared catalog stays visible; the scoped families shrink.
	require.Equal(t, 2, dashboard.ProductCount)
	require.Equal(t, 1, dashboard.ClientCount)
	require.Equal(t, 1, dashboard.OrdersByStatus[string(orders.OrderStatusPending)])
	require.Equal(t, 1, dashboard.OrdersByStatus[string(orders.OrderStatusValidated)])
	require.Empty(t, dashboard.InvoiceTotals[string(invoices.InvoiceStatusValidated)])
	require.Equal(t, 1, dashboard.InvoiceTotals[string(invoices.InvoiceStatusDraft)].Count)
}
