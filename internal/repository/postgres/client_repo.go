// internal/repository/postgres/client_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"atriumcrm-service/internal/domain/client"
	xerrors "atriumcrm-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const clientColumns = `id, code, first_name, last_name, email, country_id, city_id,
	       billing_customer_ref, tags, created_at`

type ClientRepository struct {
	db *pgxpool.Pool
}

func NewClientRepository(db *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{db: db}
}

func scanClient(row pgx.Row) (*client.Client, error) {
	var c client.Client
	err := row.Scan(
		&c.ID, &c.Code, &c.FirstName, &c.LastName, &c.Email,
		&c.CountryID, &c.CityID, &c.BillingCustomerRef, &c.Tags, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}
	return &c, nil
}

// Create inserts a new client
func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	query := `
		INSERT INTO clients (code, first_name, last_name, email, country_id,
		                     city_id, billing_customer_ref, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		c.Code, c.FirstName, c.LastName, c.Email, c.CountryID,
		c.CityID, c.BillingCustomerRef, c.Tags,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

// FindByID retrieves a client by ID
func (r *ClientRepository) FindByID(ctx context.Context, id int64) (*client.Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE id = $1`, clientColumns)
	return scanClient(r.db.QueryRow(ctx, query, id))
}

// FindByIDWithTx retrieves a client by ID inside a transaction
func (r *ClientRepository) FindByIDWithTx(ctx context.Context, tx pgx.Tx, id int64) (*client.Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE id = $1`, clientColumns)
	return scanClient(tx.QueryRow(ctx, query, id))
}

// FindByEmail retrieves clients with the same email, case-insensitively,
// excluding excludeID
func (r *ClientRepository) FindByEmail(ctx context.Context, email string, excludeID int64) ([]client.Client, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM clients
		WHERE LOWER(email) = LOWER($1) AND id <> $2
		ORDER BY id
	`, clientColumns)

	return r.queryClients(ctx, q, email, excludeID)
}

// FindByName retrieves clients matching both name parts exactly, excluding
// excludeID
func (r *ClientRepository) FindByName(ctx context.Context, first, last string, excludeID int64) ([]client.Client, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM clients
		WHERE first_name = $1 AND last_name = $2 AND id <> $3
		ORDER BY id
	`, clientColumns)

	return r.queryClients(ctx, q, first, last, excludeID)
}

func (r *ClientRepository) queryClients(ctx context.Context, query string, args ...interface{}) ([]client.Client, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	clients := []client.Client{}
	for rows.Next() {
		var c client.Client
		err := rows.Scan(
			&c.ID, &c.Code, &c.FirstName, &c.LastName, &c.Email,
			&c.CountryID, &c.CityID, &c.BillingCustomerRef, &c.Tags, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}

	return clients, rows.Err()
}

// List retrieves clients with search and pagination
func (r *ClientRepository) List(ctx context.Context, filters *client.ListFilters) ([]client.Client, int64, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf(`(
			first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d
			OR EXISTS (
				SELECT 1 FROM contact_numbers cn
				WHERE cn.client_id = clients.id AND cn.phone ILIKE $%d
			)
		)`, argPos, argPos, argPos, argPos))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM clients WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}

	query := fmt.Sprintf(`
		SELECT %s FROM clients
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, clientColumns, whereClause, argPos, argPos+1)
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	clients, err := r.queryClients(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

// UpdateFields applies a partial field update
func (r *ClientRepository) UpdateFields(ctx context.Context, id int64, patch client.FieldPatch) error {
	return r.updateFields(ctx, r.db, id, patch)
}

// UpdateFieldsWithTx applies a partial field update inside a transaction
func (r *ClientRepository) UpdateFieldsWithTx(ctx context.Context, tx pgx.Tx, id int64, patch client.FieldPatch) error {
	return r.updateFields(ctx, tx, id, patch)
}

func (r *ClientRepository) updateFields(ctx context.Context, q queryer, id int64, patch client.FieldPatch) error {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	appendSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if patch.FirstName != nil {
		appendSet("first_name", client.NullText(*patch.FirstName))
	}
	if patch.LastName != nil {
		appendSet("last_name", client.NullText(*patch.LastName))
	}
	if patch.Email != nil {
		appendSet("email", client.NullText(*patch.Email))
	}
	if patch.CountryID != nil {
		appendSet("country_id", *patch.CountryID)
	}
	if patch.CityID != nil {
		appendSet("city_id", *patch.CityID)
	}
	if patch.BillingCustomerRef != nil {
		appendSet("billing_customer_ref", client.NullText(*patch.BillingCustomerRef))
	}

	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE clients SET %s WHERE id = $%d", strings.Join(sets, ", "), argPos)
	args = append(args, id)

	result, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// UpdateTags replaces a client's tags
func (r *ClientRepository) UpdateTags(ctx context.Context, id int64, tags []string) error {
	result, err := r.db.Exec(ctx, `UPDATE clients SET tags = $1 WHERE id = $2`, pq.StringArray(tags), id)
	if err != nil {
		return fmt.Errorf("failed to update tags: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// LockWithTx takes row locks on the given clients in ascending id order
func (r *ClientRepository) LockWithTx(ctx context.Context, tx pgx.Tx, ids ...int64) error {
	sorted := append([]int64{}, ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	rows, err := tx.Query(ctx, `SELECT id FROM clients WHERE id = ANY($1) ORDER BY id FOR UPDATE`, sorted)
	if err != nil {
		return fmt.Errorf("failed to lock clients: %w", err)
	}
	rows.Close()

	return rows.Err()
}

// Delete removes a client row
func (r *ClientRepository) Delete(ctx context.Context, id int64) error {
	return r.deleteBy(ctx, r.db, id)
}

// DeleteWithTx removes a client row inside a transaction
func (r *ClientRepository) DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	return r.deleteBy(ctx, tx, id)
}

func (r *ClientRepository) deleteBy(ctx context.Context, q queryer, id int64) error {
	result, err := q.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
