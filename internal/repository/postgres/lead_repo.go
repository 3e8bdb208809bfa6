// internal/repository/postgres/lead_repo.go
package postgres

import (
	"context"
	"fmt"

	"atriumcrm-service/internal/domain/related"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LeadReferenceRepository struct {
	db *pgxpool.Pool
}

func NewLeadReferenceRepository(db *pgxpool.Pool) *LeadReferenceRepository {
	return &LeadReferenceRepository{db: db}
}

// ListByClient retrieves all external lead references owned by a client
func (r *LeadReferenceRepository) ListByClient(ctx context.Context, clientID int64) ([]related.LeadReference, error) {
	query := `
		SELECT id, client_id, source, external_ref, created_at
		FROM lead_references
		WHERE client_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lead references: %w", err)
	}
	defer rows.Close()

	leads := []related.LeadReference{}
	for rows.Next() {
		var l related.LeadReference
		if err := rows.Scan(&l.ID, &l.ClientID, &l.Source, &l.ExternalRef, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead reference: %w", err)
		}
		leads = append(leads, l)
	}

	return leads, rows.Err()
}

// ReassignWithTx bulk re-points all of a client's lead references to a new owner
func (r *LeadReferenceRepository) ReassignWithTx(ctx context.Context, tx pgx.Tx, ownerID, newOwnerID int64) (int64, error) {
	result, err := tx.Exec(ctx, `UPDATE lead_references SET client_id = $1 WHERE client_id = $2`, newOwnerID, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign lead references: %w", err)
	}
	return result.RowsAffected(), nil
}
