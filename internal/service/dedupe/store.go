// internal/service/dedupe/store.go
package dedupe

import (
	"context"

	"atriumcrm-service/internal/domain/client"
	"atriumcrm-service/internal/domain/related"
)

// Store is the entity-store adapter the detector and merge orchestrator run
// against. The postgres layer implements it; tests substitute an in-memory
// fake.
type Store interface {
	FindClient(ctx context.Context, id int64) (*client.Client, error)
	FindPhonesByClient(ctx context.Context, clientID int64) ([]client.ContactNumber, error)
	// FindPhonesByNumbers returns every contact number whose phone string
	// exactly equals one of numbers, excluding rows owned by excludeClientID.
	FindPhonesByNumbers(ctx context.Context, numbers []string, excludeClientID int64) ([]client.ContactNumber, error)
	// FindClientsByEmail matches case-insensitively.
	FindClientsByEmail(ctx context.Context, email string, excludeID int64) ([]client.Client, error)
	FindClientsByName(ctx context.Context, first, last string, excludeID int64) ([]client.Client, error)

	// WithTx runs fn inside a single store transaction. fn returning an
	// error rolls back every write made through the Tx; otherwise the
	// transaction commits.
	WithTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the mutating surface available inside a store transaction.
type Tx interface {
	// LockClients takes row-level locks on the given client rows in
	// ascending id order, so concurrent merges over the same pair cannot
	// deadlock regardless of which record each caller picked as main.
	LockClients(ctx context.Context, ids ...int64) error

	FindClient(ctx context.Context, id int64) (*client.Client, error)
	FindPhonesByClient(ctx context.Context, clientID int64) ([]client.ContactNumber, error)

	UpdateClientFields(ctx context.Context, id int64, patch client.FieldPatch) error
	ReassignPhone(ctx context.Context, phoneID, newOwnerID int64) error
	// ReassignOwned re-points the owning-client foreign key of every row of
	// the given kind from ownerID to newOwnerID, returning the affected count.
	ReassignOwned(ctx context.Context, kind related.Kind, ownerID, newOwnerID int64) (int64, error)
	CaseCodesByClient(ctx context.Context, clientID int64) ([]string, error)
	InsertNote(ctx context.Context, clientID, authorID int64, body string) error
	DeletePhonesByClient(ctx context.Context, clientID int64) error
	DeleteClient(ctx context.Context, id int64) error
}
