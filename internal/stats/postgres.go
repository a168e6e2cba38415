package stats

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comptoir-erp/comptoir-erp/internal/platform/db"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository builds the durable-store-backed aggregation.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Dashboard(ctx context.Context, filters Filters) (Dashboard, error) {
	dashboard := Dashboard{
		OrdersByStatus: make(map[string]int),
		InvoiceTotals:  make(map[string]StatusTotal),
	}

	// The catalog is shared across resellers; product figures are never
	// scoped.
	const productQuery = `SELECT COUNT(*), COUNT(*) FILTER (WHERE quantity <= $1) FROM products`
	if err := r.pool.QueryRow(ctx, productQuery, LowStockThreshold).
		Scan(&dashboard.ProductCount, &dashboard.LowStockCount); err != nil {
		return Dashboard{}, db.Translate(err)
	}

	if err := r.scopedCount(ctx, `clients`, filters, &dashboard.ClientCount); err != nil {
		return Dashboard{}, err
	}

	orderQuery := `SELECT status, COUNT(*) FROM orders`
	orderArgs := []interface{}{}
	if filters.ResellerID != nil {
		orderQuery += ` WHERE reseller_id = $1`
		orderArgs = append(orderArgs, *filters.ResellerID)
	}
	orderQuery += ` GROUP BY status`
	rows, err := r.pool.Query(ctx, orderQuery, orderArgs...)
	if err != nil {
		return Dashboard{}, db.Translate(err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Dashboard{}, db.Translate(err)
		}
		dashboard.OrdersByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return Dashboard{}, db.Translate(err)
	}

	invoiceQuery := `SELECT status, COUNT(*), COALESCE(SUM(total), 0) FROM invoices`
	invoiceArgs := []interface{}{}
	if filters.ResellerID != nil {
		invoiceQuery += ` WHERE reseller_id = $1`
		invoiceArgs = append(invoiceArgs, *filters.ResellerID)
	}
	invoiceQuery += ` GROUP BY status`
	invRows, err := r.pool.Query(ctx, invoiceQuery, invoiceArgs...)
	if err != nil {
		return Dashboard{}, db.Translate(err)
	}
	defer invRows.Close()
	for invRows.Next() {
		var status string
		var entry StatusTotal
		if err := invRows.Scan(&status, &entry.Count, &entry.Total); err != nil {
			return Dashboard{}, db.Translate(err)
		}
		dashboard.InvoiceTotals[status] = entry
	}
	if err := invRows.Err(); err != nil {
		return Dashboard{}, db.Translate(err)
	}

	return dashboard, nil
}

func (r *postgresRepository) scopedCount(ctx context.Context, table string, filters Filters, dest *int) error {
	query := `SELECT COUNT(*) FROM ` + table
	args := []interface{}{}
	if filters.ResellerID != nil {
		query += ` WHERE reseller_id = $1`
		args = append(args, *filters.ResellerID)
	}
	return db.Translate(r.pool.QueryRow(ctx, query, args...).Scan(dest))
}
