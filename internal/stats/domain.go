package stats

// LowStockThreshold marks the quantity at or below which a product is
// counted as running out.
const LowStockThreshold = 5

// StatusTotal aggregates the invoices of one workflow state.
type StatusTotal struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// Dashboard is the aggregate snapshot the overview page renders. When
// the caller is a reseller, every figure covers its own rows only.
type Dashboard struct {
	ProductCount   int                    `json:"product_count"`
	LowStockCount  int                    `json:"low_stock_count"`
	ClientCount    int                    `json:"client_count"`
	OrdersByStatus map[string]int         `json:"orders_by_status"`
	InvoiceTotals  map[string]StatusTotal `json:"invoice_totals"`
}

// Filters narrows the aggregates; a nil ResellerID covers every row.
type Filters struct {
	ResellerID *string
}
