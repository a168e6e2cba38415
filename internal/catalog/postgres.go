package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comptoir-erp/comptoir-erp/internal/platform/db"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

const productColumns = `id, reference, name, category, unit, color, price, quantity, purchase_date, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository builds the durable-store-backed repository.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) List(ctx context.Context, filters ProductFilters) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR reference ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.Category != nil {
		argCount++
		query += ` AND category = $` + strconv.Itoa(argCount)
		args = append(args, string(*filters.Category))
	}
	if filters.Color != nil {
		argCount++
		query += ` AND color ILIKE $` + strconv.Itoa(argCount)
		args = append(args, *filters.Color)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.Translate(err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, db.Translate(rows.Err())
}

func (r *postgresRepository) Get(ctx context.Context, id string) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *postgresRepository) Create(ctx context.Context, product Product) (Product, error) {
	const query = `INSERT INTO products (id, reference, name, category, unit, color, price, quantity, purchase_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.pool.Exec(ctx, query,
		product.ID, product.Reference, product.Name, string(product.Category), product.Unit,
		product.Color, product.Price, product.Quantity, product.PurchaseDate,
		product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return Product{}, db.Translate(err)
	}
	return product, nil
}

func (r *postgresRepository) Update(ctx context.Context, product Product) (Product, error) {
	const query = `UPDATE products SET reference = $2, name = $3, category = $4, unit = $5, color = $6,
		price = $7, purchase_date = $8, updated_at = $9 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query,
		product.ID, product.Reference, product.Name, string(product.Category), product.Unit,
		product.Color, product.Price, product.PurchaseDate, product.UpdatedAt)
	if err != nil {
		return Product{}, db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return Product{}, shared.ErrNotFound
	}
	return r.Get(ctx, product.ID)
}

func (r *postgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AdjustQuantity applies the delta with a conditional update so the
// sufficiency check and the write are a single statement: two concurrent
// adjustments can never interleave a stale read between them. The
// movement append rides in the same transaction, so the ledger and the
// quantity can never diverge.
func (r *postgresRepository) AdjustQuantity(ctx context.Context, id string, delta int, reason string) (Product, StockMovement, error) {
	var product Product
	var movement StockMovement

	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const adjust = `UPDATE products SET quantity = quantity + $2, updated_at = $3
			WHERE id = $1 AND quantity + $2 >= 0
			RETURNING ` + productColumns
		now := time.Now().UTC()
		p, err := scanProduct(tx.QueryRow(ctx, adjust, id, delta, now))
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				var exists bool
				if probeErr := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); probeErr != nil {
					return db.Translate(probeErr)
				}
				if exists {
					return shared.ErrInsufficientStock
				}
				return shared.ErrNotFound
			}
			return err
		}
		product = p

		movement = StockMovement{
			ID:        uuid.NewString(),
			ProductID: id,
			Delta:     delta,
			Reason:    reason,
			CreatedAt: now,
		}
		const insert = `INSERT INTO stock_movements (id, product_id, delta, reason, created_at) VALUES ($1, $2, $3, $4, $5)`
		if _, err := tx.Exec(ctx, insert, movement.ID, movement.ProductID, movement.Delta, movement.Reason, movement.CreatedAt); err != nil {
			return fmt.Errorf("catalog: append movement: %w", db.Translate(err))
		}
		return nil
	})
	if err != nil {
		return Product{}, StockMovement{}, err
	}
	return product, movement, nil
}

func (r *postgresRepository) ListMovements(ctx context.Context, productID string) ([]StockMovement, error) {
	const query = `SELECT id, product_id, delta, reason, created_at FROM stock_movements
		WHERE product_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, db.Translate(err)
	}
	defer rows.Close()

	var movements []StockMovement
	for rows.Next() {
		var m StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Delta, &m.Reason, &m.CreatedAt); err != nil {
			return nil, db.Translate(err)
		}
		movements = append(movements, m)
	}
	return movements, db.Translate(rows.Err())
}

func (r *postgresRepository) CountMovements(ctx context.Context, productID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements WHERE product_id = $1`, productID).Scan(&count)
	if err != nil {
		return 0, db.Translate(err)
	}
	return count, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var category string
	err := row.Scan(&p.ID, &p.Reference, &p.Name, &category, &p.Unit, &p.Color,
		&p.Price, &p.Quantity, &p.PurchaseDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, db.Translate(err)
	}
	p.Category = Category(category)
	return p, nil
}
