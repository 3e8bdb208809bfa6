// internal/repository/postgres/entity_store.go
package postgres

import (
	"context"
	"fmt"

	"atriumcrm-service/internal/domain/client"
	"atriumcrm-service/internal/domain/related"
	"atriumcrm-service/internal/service/dedupe"

	"github.com/jackc/pgx/v5"
)

// EntityStore is the postgres implementation of the dedupe store adapter.
// It composes the CRUD repositories so the SQL for each table lives in
// exactly one place.
type EntityStore struct {
	db      *DB
	clients *ClientRepository
	phones  *ContactNumberRepository
	cases   *CaseRepository
	notes   *NoteRepository
	docs    *DocumentRepository
	leads   *LeadReferenceRepository
}

func NewEntityStore(
	db *DB,
	clients *ClientRepository,
	phones *ContactNumberRepository,
	cases *CaseRepository,
	notes *NoteRepository,
	docs *DocumentRepository,
	leads *LeadReferenceRepository,
) *EntityStore {
	return &EntityStore{
		db:      db,
		clients: clients,
		phones:  phones,
		cases:   cases,
		notes:   notes,
		docs:    docs,
		leads:   leads,
	}
}

func (s *EntityStore) FindClient(ctx context.Context, id int64) (*client.Client, error) {
	return s.clients.FindByID(ctx, id)
}

func (s *EntityStore) FindPhonesByClient(ctx context.Context, clientID int64) ([]client.ContactNumber, error) {
	return s.phones.ListByClient(ctx, clientID)
}

func (s *EntityStore) FindPhonesByNumbers(ctx context.Context, numbers []string, excludeClientID int64) ([]client.ContactNumber, error) {
	return s.phones.FindByNumbers(ctx, numbers, excludeClientID)
}

func (s *EntityStore) FindClientsByEmail(ctx context.Context, email string, excludeID int64) ([]client.Client, error) {
	return s.clients.FindByEmail(ctx, email, excludeID)
}

func (s *EntityStore) FindClientsByName(ctx context.Context, first, last string, excludeID int64) ([]client.Client, error) {
	return s.clients.FindByName(ctx, first, last, excludeID)
}

func (s *EntityStore) WithTx(ctx context.Context, fn func(dedupe.Tx) error) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(&entityTx{store: s, tx: tx})
	})
}

// entityTx exposes the repositories' WithTx methods behind the dedupe.Tx
// contract, all bound to one pgx transaction.
type entityTx struct {
	store *EntityStore
	tx    pgx.Tx
}

func (t *entityTx) LockClients(ctx context.Context, ids ...int64) error {
	return t.store.clients.LockWithTx(ctx, t.tx, ids...)
}

func (t *entityTx) FindClient(ctx context.Context, id int64) (*client.Client, error) {
	return t.store.clients.FindByIDWithTx(ctx, t.tx, id)
}

func (t *entityTx) FindPhonesByClient(ctx context.Context, clientID int64) ([]client.ContactNumber, error) {
	return t.store.phones.ListByClientWithTx(ctx, t.tx, clientID)
}

func (t *entityTx) UpdateClientFields(ctx context.Context, id int64, patch client.FieldPatch) error {
	return t.store.clients.UpdateFieldsWithTx(ctx, t.tx, id, patch)
}

func (t *entityTx) ReassignPhone(ctx context.Context, phoneID, newOwnerID int64) error {
	return t.store.phones.ReassignWithTx(ctx, t.tx, phoneID, newOwnerID)
}

func (t *entityTx) ReassignOwned(ctx context.Context, kind related.Kind, ownerID, newOwnerID int64) (int64, error) {
	switch kind {
	case related.KindCase:
		return t.store.cases.ReassignWithTx(ctx, t.tx, ownerID, newOwnerID)
	case related.KindNote:
		return t.store.notes.ReassignWithTx(ctx, t.tx, ownerID, newOwnerID)
	case related.KindDocument:
		return t.store.docs.ReassignWithTx(ctx, t.tx, ownerID, newOwnerID)
	case related.KindLead:
		return t.store.leads.ReassignWithTx(ctx, t.tx, ownerID, newOwnerID)
	default:
		return 0, fmt.Errorf("unknown owned entity kind %q", kind)
	}
}

func (t *entityTx) CaseCodesByClient(ctx context.Context, clientID int64) ([]string, error) {
	return t.store.cases.CodesByClientWithTx(ctx, t.tx, clientID)
}

func (t *entityTx) InsertNote(ctx context.Context, clientID, authorID int64, body string) error {
	n := &related.ClientNote{ClientID: clientID, AuthorID: authorID, Body: body}
	return t.store.notes.CreateWithTx(ctx, t.tx, n)
}

func (t *entityTx) DeletePhonesByClient(ctx context.Context, clientID int64) error {
	return t.store.phones.DeleteByClientWithTx(ctx, t.tx, clientID)
}

func (t *entityTx) DeleteClient(ctx context.Context, id int64) error {
	return t.store.clients.DeleteWithTx(ctx, t.tx, id)
}

var _ dedupe.Store = (*EntityStore)(nil)
