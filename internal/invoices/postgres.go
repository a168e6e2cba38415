package invoices

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comptoir-erp/comptoir-erp/internal/platform/db"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

const invoiceColumns = `id, reseller_id, client_id, status, subtotal, tax_amount, total, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository builds the durable-store-backed repository.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) List(ctx context.Context, filters InvoiceFilters) ([]Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
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

	var invoices []Invoice
	var ids []string
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
		ids = append(ids, inv.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Translate(err)
	}
	if len(invoices) == 0 {
		return invoices, nil
	}

	lines, err := r.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		invoices[i].Lines = lines[invoices[i].ID]
	}
	return invoices, nil
}

func (r *postgresRepository) Get(ctx context.Context, id string) (Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		return Invoice{}, err
	}
	lines, err := r.loadLines(ctx, []string{id})
	if err != nil {
		return Invoice{}, err
	}
	inv.Lines = lines[id]
	return inv, nil
}

func (r *postgresRepository) Create(ctx context.Context, invoice Invoice) (Invoice, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const insert = `INSERT INTO invoices (id, reseller_id, client_id, status, subtotal, tax_amount, total, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		if _, err := tx.Exec(ctx, insert,
			invoice.ID, invoice.ResellerID, invoice.ClientID, string(invoice.Status),
			invoice.Subtotal, invoice.TaxAmount, invoice.Total,
			invoice.CreatedAt, invoice.UpdatedAt); err != nil {
			return db.Translate(err)
		}
		return insertInvoiceLines(ctx, tx, invoice.ID, invoice.Lines)
	})
	if err != nil {
		return Invoice{}, err
	}
	return invoice, nil
}

func (r *postgresRepository) Update(ctx context.Context, invoice Invoice) (Invoice, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const update = `UPDATE invoices SET client_id = $2, subtotal = $3, tax_amount = $4, total = $5, updated_at = $6 WHERE id = $1`
		tag, err := tx.Exec(ctx, update,
			invoice.ID, invoice.ClientID, invoice.Subtotal, invoice.TaxAmount, invoice.Total, invoice.UpdatedAt)
		if err != nil {
			return db.Translate(err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, invoice.ID); err != nil {
			return db.Translate(err)
		}
		return insertInvoiceLines(ctx, tx, invoice.ID, invoice.Lines)
	})
	if err != nil {
		return Invoice{}, err
	}
	return invoice, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, id); err != nil {
			return db.Translate(err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
		if err != nil {
			return db.Translate(err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id string, from, to InvoiceStatus) (Invoice, error) {
	const query = `UPDATE invoices SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	tag, err := r.pool.Exec(ctx, query, id, string(from), string(to), time.Now().UTC())
	if err != nil {
		return Invoice{}, db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is gone or another request moved the status
		// first.
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, id).Scan(&exists); err != nil {
			return Invoice{}, db.Translate(err)
		}
		if !exists {
			return Invoice{}, shared.ErrNotFound
		}
		return Invoice{}, shared.ErrInvalidTransition
	}
	return r.Get(ctx, id)
}

func (r *postgresRepository) ReferencesClient(ctx context.Context, clientID string) (bool, error) {
	var referenced bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE client_id = $1)`, clientID).Scan(&referenced)
	return referenced, db.Translate(err)
}

func (r *postgresRepository) loadLines(ctx context.Context, invoiceIDs []string) (map[string][]InvoiceLine, error) {
	const query = `SELECT invoice_id, description, quantity, unit_price FROM invoice_lines
		WHERE invoice_id = ANY($1) ORDER BY line_order`
	rows, err := r.pool.Query(ctx, query, invoiceIDs)
	if err != nil {
		return nil, db.Translate(err)
	}
	defer rows.Close()

	lines := make(map[string][]InvoiceLine)
	for rows.Next() {
		var invoiceID string
		var line InvoiceLine
		if err := rows.Scan(&invoiceID, &line.Description, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, db.Translate(err)
		}
		lines[invoiceID] = append(lines[invoiceID], line)
	}
	return lines, db.Translate(rows.Err())
}

func insertInvoiceLines(ctx context.Context, tx pgx.Tx, invoiceID string, lines []InvoiceLine) error {
	const insert = `INSERT INTO invoice_lines (invoice_id, line_order, description, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`
	for i, line := range lines {
		if _, err := tx.Exec(ctx, insert, invoiceID, i+1, line.Description, line.Quantity, line.UnitPrice); err != nil {
			return db.Translate(err)
		}
	}
	return nil
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	var status string
	err := row.Scan(&inv.ID, &inv.ResellerID, &inv.ClientID, &status,
		&inv.Subtotal, &inv.TaxAmount, &inv.Total, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return Invoice{}, db.Translate(err)
	}
	inv.Status = InvoiceStatus(status)
	return inv, nil
}
