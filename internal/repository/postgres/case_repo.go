// internal/repository/postgres/case_repo.go
package postgres

import (
	"context"
	"fmt"

	"atriumcrm-service/internal/domain/related"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CaseRepository struct {
	db *pgxpool.Pool
}

func NewCaseRepository(db *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{db: db}
}

// Create inserts a new case for a client
func (r *CaseRepository) Create(ctx context.Context, c *related.Case) error {
	query := `
		INSERT INTO cases (client_id, code, title, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, c.ClientID, c.Code, c.Title, c.Status).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}

	return nil
}

// ListByClient retrieves all cases owned by a client
func (r *CaseRepository) ListByClient(ctx context.Context, clientID int64) ([]related.Case, error) {
	query := `
		SELECT id, client_id, code, title, status, created_at
		FROM cases
		WHERE client_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	cases := []related.Case{}
	for rows.Next() {
		var c related.Case
		if err := rows.Scan(&c.ID, &c.ClientID, &c.Code, &c.Title, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, c)
	}

	return cases, rows.Err()
}

// CodesByClientWithTx retrieves the human-facing codes of a client's cases
func (r *CaseRepository) CodesByClientWithTx(ctx context.Context, tx pgx.Tx, clientID int64) ([]string, error) {
	rows, err := tx.Query(ctx, `SELECT code FROM cases WHERE client_id = $1 ORDER BY id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list case codes: %w", err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan case code: %w", err)
		}
		codes = append(codes, code)
	}

	return codes, rows.Err()
}

// ReassignWithTx bulk re-points all of a client's cases to a new owner
func (r *CaseRepository) ReassignWithTx(ctx context.Context, tx pgx.Tx, ownerID, newOwnerID int64) (int64, error) {
	result, err := tx.Exec(ctx, `UPDATE cases SET client_id = $1 WHERE client_id = $2`, newOwnerID, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign cases: %w", err)
	}
	return result.RowsAffected(), nil
}
