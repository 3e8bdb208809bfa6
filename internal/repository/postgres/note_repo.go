// internal/repository/postgres/note_repo.go
package postgres

import (
	"context"
	"fmt"

	"atriumcrm-service/internal/domain/related"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NoteRepository struct {
	db *pgxpool.Pool
}

func NewNoteRepository(db *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create inserts a note for a client
func (r *NoteRepository) Create(ctx context.Context, n *related.ClientNote) error {
	return r.create(ctx, r.db, n)
}

// CreateWithTx inserts a note inside a transaction
func (r *NoteRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, n *related.ClientNote) error {
	return r.create(ctx, tx, n)
}

func (r *NoteRepository) create(ctx context.Context, q queryer, n *related.ClientNote) error {
	query := `
		INSERT INTO client_notes (client_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query, n.ClientID, n.AuthorID, n.Body).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

// ListByClient retrieves all notes owned by a client, newest first
func (r *NoteRepository) ListByClient(ctx context.Context, clientID int64) ([]related.ClientNote, error) {
	query := `
		SELECT id, client_id, author_id, body, created_at
		FROM client_notes
		WHERE client_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := []related.ClientNote{}
	for rows.Next() {
		var n related.ClientNote
		if err := rows.Scan(&n.ID, &n.ClientID, &n.AuthorID, &n.Body, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}

	return notes, rows.Err()
}

// ReassignWithTx bulk re-points all of a client's notes to a new owner
func (r *NoteRepository) ReassignWithTx(ctx context.Context, tx pgx.Tx, ownerID, newOwnerID int64) (int64, error) {
	result, err := tx.Exec(ctx, `UPDATE client_notes SET client_id = $1 WHERE client_id = $2`, newOwnerID, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign notes: %w", err)
	}
	return result.RowsAffected(), nil
}
