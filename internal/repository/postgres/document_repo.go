// internal/repository/postgres/document_repo.go
package postgres

import (
	"context"
	"fmt"

	"atriumcrm-service/internal/domain/related"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DocumentRepository struct {
	db *pgxpool.Pool
}

func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// ListByClient retrieves all documents owned by a client
func (r *DocumentRepository) ListByClient(ctx context.Context, clientID int64) ([]related.ClientDocument, error) {
	query := `
		SELECT id, client_id, file_name, file_key, created_at
		FROM client_documents
		WHERE client_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := []related.ClientDocument{}
	for rows.Next() {
		var d related.ClientDocument
		if err := rows.Scan(&d.ID, &d.ClientID, &d.FileName, &d.FileKey, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}

	return docs, rows.Err()
}

// ReassignWithTx bulk re-points all of a client's documents to a new owner
func (r *DocumentRepository) ReassignWithTx(ctx context.Context, tx pgx.Tx, ownerID, newOwnerID int64) (int64, error) {
	result, err := tx.Exec(ctx, `UPDATE client_documents SET client_id = $1 WHERE client_id = $2`, newOwnerID, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign documents: %w", err)
	}
	return result.RowsAffected(), nil
}
