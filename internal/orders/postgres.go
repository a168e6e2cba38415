package orders

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comptoir-erp/comptoir-erp/internal/platform/db"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

const orderColumns = `id, reseller_id, client_id, status, total, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository builds the durable-store-backed repository.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) List(ctx context.Context, filters OrderFilters) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.ResellerID != nil {
		argCount++
		query += ` AND reseller_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.ResellerID)
	}
	if filters.Status != nil {
		argCount++
		query += ` AND status = $` + strconv.Itoa(argCount)
		args = append(args, string(*filters.Status))
	}

	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.Translate(err)
	}
	defer rows.Close()

	var orders []Order
	var ids []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Translate(err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	lines, err := r.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}
	return orders, nil
}

func (r *postgresRepository) Get(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return Order{}, err
	}
	lines, err := r.loadLines(ctx, []string{id})
	if err != nil {
		return Order{}, err
	}
	o.Lines = lines[id]
	return o, nil
}

func (r *postgresRepository) Create(ctx context.Context, order Order) (Order, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const insert = `INSERT INTO orders (id, reseller_id, client_id, status, total, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := tx.Exec(ctx, insert,
			order.ID, order.ResellerID, order.ClientID, string(order.Status), order.Total,
			order.CreatedAt, order.UpdatedAt); err != nil {
			return db.Translate(err)
		}
		return insertLines(ctx, tx, order.ID, order.Lines)
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

func (r *postgresRepository) Update(ctx context.Context, order Order) (Order, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const update = `UPDATE orders SET client_id = $2, total = $3, updated_at = $4 WHERE id = $1`
		tag, err := tx.Exec(ctx, update, order.ID, order.ClientID, order.Total, order.UpdatedAt)
		if err != nil {
			return db.Translate(err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM order_lines WHERE order_id = $1`, order.ID); err != nil {
			return db.Translate(err)
		}
		return insertLines(ctx, tx, order.ID, order.Lines)
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM order_lines WHERE order_id = $1`, id); err != nil {
			return db.Translate(err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
		if err != nil {
			return db.Translate(err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id string, from, to OrderStatus) (Order, error) {
	const query = `UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	tag, err := r.pool.Exec(ctx, query, id, string(from), string(to), time.Now().UTC())
	if err != nil {
		return Order{}, db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is gone or another request moved the status
		// first.
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return Order{}, db.Translate(err)
		}
		if !exists {
			return Order{}, shared.ErrNotFound
		}
		return Order{}, shared.ErrInvalidTransition
	}
	return r.Get(ctx, id)
}

func (r *postgresRepository) ReferencesClient(ctx context.Context, clientID string) (bool, error) {
	var referenced bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE client_id = $1)`, clientID).Scan(&referenced)
	return referenced, db.Translate(err)
}

func (r *postgresRepository) ReferencesProduct(ctx context.Context, productID string) (bool, error) {
	var referenced bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM order_lines WHERE product_id = $1)`, productID).Scan(&referenced)
	return referenced, db.Translate(err)
}

func (r *postgresRepository) loadLines(ctx context.Context, orderIDs []string) (map[string][]OrderLine, error) {
	const query = `SELECT order_id, product_id, label, quantity, unit_price FROM order_lines
		WHERE order_id = ANY($1) ORDER BY line_order`
	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, db.Translate(err)
	}
	defer rows.Close()

	lines := make(map[string][]OrderLine)
	for rows.Next() {
		var orderID string
		var line OrderLine
		if err := rows.Scan(&orderID, &line.ProductID, &line.Label, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, db.Translate(err)
		}
		lines[orderID] = append(lines[orderID], line)
	}
	return lines, db.Translate(rows.Err())
}

func insertLines(ctx context.Context, tx pgx.Tx, orderID string, lines []OrderLine) error {
	const insert = `INSERT INTO order_lines (order_id, line_order, product_id, label, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i, line := range lines {
		if _, err := tx.Exec(ctx, insert, orderID, i+1, line.ProductID, line.Label, line.Quantity, line.UnitPrice); err != nil {
			return db.Translate(err)
		}
	}
	return nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var status string
	err := row.Scan(&o.ID, &o.ResellerID, &o.ClientID, &status, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, db.Translate(err)
	}
	o.Status = OrderStatus(status)
	return o, nil
}
