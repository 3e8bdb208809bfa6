// internal/repository/postgres/phone_repo.go
package postgres

import (
	"context"
	"fmt"

	"atriumcrm-service/internal/domain/client"
	xerrors "atriumcrm-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContactNumberRepository struct {
	db *pgxpool.Pool
}

func NewContactNumberRepository(db *pgxpool.Pool) *ContactNumberRepository {
	return &ContactNumberRepository{db: db}
}

// Create inserts a new contact number for a client
func (r *ContactNumberRepository) Create(ctx context.Context, n *client.ContactNumber) error {
	query := `
		INSERT INTO contact_numbers (client_id, phone, has_messaging)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, n.ClientID, n.Phone, n.HasMessaging).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact number: %w", err)
	}

	return nil
}

// ListByClient retrieves all numbers owned by a client
func (r *ContactNumberRepository) ListByClient(ctx context.Context, clientID int64) ([]client.ContactNumber, error) {
	return r.listByClient(ctx, r.db, clientID)
}

// ListByClientWithTx retrieves all numbers owned by a client inside a transaction
func (r *ContactNumberRepository) ListByClientWithTx(ctx context.Context, tx pgx.Tx, clientID int64) ([]client.ContactNumber, error) {
	return r.listByClient(ctx, tx, clientID)
}

func (r *ContactNumberRepository) listByClient(ctx context.Context, q queryer, clientID int64) ([]client.ContactNumber, error) {
	query := `
		SELECT id, client_id, phone, has_messaging, created_at
		FROM contact_numbers
		WHERE client_id = $1
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact numbers: %w", err)
	}
	defer rows.Close()

	return scanNumbers(rows)
}

// FindByNumbers retrieves numbers whose phone string exactly equals one of
// numbers, excluding rows owned by excludeClientID
func (r *ContactNumberRepository) FindByNumbers(ctx context.Context, numbers []string, excludeClientID int64) ([]client.ContactNumber, error) {
	if len(numbers) == 0 {
		return []client.ContactNumber{}, nil
	}

	query := `
		SELECT id, client_id, phone, has_messaging, created_at
		FROM contact_numbers
		WHERE phone = ANY($1) AND client_id <> $2
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, numbers, excludeClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to match contact numbers: %w", err)
	}
	defer rows.Close()

	return scanNumbers(rows)
}

func scanNumbers(rows pgx.Rows) ([]client.ContactNumber, error) {
	out := []client.ContactNumber{}
	for rows.Next() {
		var n client.ContactNumber
		if err := rows.Scan(&n.ID, &n.ClientID, &n.Phone, &n.HasMessaging, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact number: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ReassignWithTx re-points a single number to a new owning client
func (r *ContactNumberRepository) ReassignWithTx(ctx context.Context, tx pgx.Tx, phoneID, newOwnerID int64) error {
	result, err := tx.Exec(ctx, `UPDATE contact_numbers SET client_id = $1 WHERE id = $2`, newOwnerID, phoneID)
	if err != nil {
		return fmt.Errorf("failed to reassign contact number: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// DeleteByClientWithTx removes every number still owned by a client
func (r *ContactNumberRepository) DeleteByClientWithTx(ctx context.Context, tx pgx.Tx, clientID int64) error {
	_, err := tx.Exec(ctx, `DELETE FROM contact_numbers WHERE client_id = $1`, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete contact numbers: %w", err)
	}
	return nil
}

// Delete removes a single number, scoped to its owning client
func (r *ContactNumberRepository) Delete(ctx context.Context, id, clientID int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM contact_numbers WHERE id = $1 AND client_id = $2`, id, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete contact number: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
