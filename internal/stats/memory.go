package stats

import (
	"context"

	"github.com/comptoir-erp/comptoir-erp/internal/catalog"
	"github.com/comptoir-erp/comptoir-erp/internal/clients"
	"github.com/comptoir-erp/comptoir-erp/internal/invoices"
	"github.com/comptoir-erp/comptoir-erp/internal/orders"
)

// memoryRepository derives the aggregates from the other families'
// stores, so the dashboard always reflects the same rows the contracts
// serve.
type memoryRepository struct {
	products catalog.Repository
	clients  clients.Repository
	orders   orders.Repository
	invoices invoices.Repository
}

// NewMemoryRepository builds an aggregation over the in-memory family
// stores.
func NewMemoryRepository(products catalog.Repository, clientRepo clients.Repository, orderRepo orders.Repository, invoiceRepo invoices.Repository) Repository {
	return &memoryRepository{products: products, clients: clientRepo, orders: orderRepo, invoices: invoiceRepo}
}

func (r *memoryRepository) Dashboard(ctx context.Context, filters Filters) (Dashboard, error) {
	dashboard := Dashboard{
		OrdersByStatus: make(map[string]int),
		InvoiceTotals:  make(map[string]StatusTotal),
	}

	productList, err := r.products.List(ctx, catalog.ProductFilters{})
	if err != nil {
		return Dashboard{}, err
	}
	dashboard.ProductCount = len(productList)
	for _, p := range productList {
		if p.Quantity <= LowStockThreshold {
			dashboard.LowStockCount++
		}
	}

	clientList, err := r.clients.List(ctx, clients.ClientFilters{ResellerID: filters.ResellerID})
	if err != nil {
		return Dashboard{}, err
	}
	dashboard.ClientCount = len(clientList)

	orderList, err := r.orders.List(ctx, orders.OrderFilters{ResellerID: filters.ResellerID})
	if err != nil {
		return Dashboard{}, err
	}
	for _, o := range orderList {
		dashboard.OrdersByStatus[string(o.Status)]++
	}

	invoiceList, err := r.invoices.List(ctx, invoices.InvoiceFilters{ResellerID: filters.ResellerID})
	if err != nil {
		return Dashboard{}, err
	}
	for _, inv := range invoiceList {
		entry := dashboard.InvoiceTotals[string(inv.Status)]
		entry.Count++
		entry.Total += inv.Total
		dashboard.InvoiceTotals[string(inv.Status)] = entry
	}

	return dashboard, nil
}
