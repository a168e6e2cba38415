package clients

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comptoir-erp/comptoir-erp/internal/platform/db"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

const clientColumns = `id, reseller_id, name, email, phone, address, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository builds the durable-store-backed repository.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) List(ctx context.Context, filters ClientFilters) ([]Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.ResellerID != nil {
		argCount++
		query += ` AND reseller_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.ResellerID)
	}
	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR email ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.Translate(err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, db.Translate(rows.Err())
}

func (r *postgresRepository) Get(ctx context.Context, id string) (Client, error) {
	return scanClient(r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
}

func (r *postgresRepository) Create(ctx context.Context, client Client) (Client, error) {
	const query = `INSERT INTO clients (id, reseller_id, name, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query,
		client.ID, client.ResellerID, client.Name, client.Email, client.Phone, client.Address,
		client.CreatedAt, client.UpdatedAt)
	if err != nil {
		return Client{}, db.Translate(err)
	}
	return client, nil
}

func (r *postgresRepository) Update(ctx context.Context, client Client) (Client, error) {
	const query = `UPDATE clients SET name = $2, email = $3, phone = $4, address = $5, updated_at = $6 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query,
		client.ID, client.Name, client.Email, client.Phone, client.Address, client.UpdatedAt)
	if err != nil {
		return Client{}, db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return Client{}, shared.ErrNotFound
	}
	return client, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.ResellerID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Client{}, db.Translate(err)
	}
	return c, nil
}
