// internal/service/client/client.go
package client

import (
	"context"
	"fmt"

	"atriumcrm-service/internal/domain/client"
	"atriumcrm-service/internal/domain/related"
	xerrors "atriumcrm-service/internal/pkg/errors"
	"atriumcrm-service/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// EventSink receives notifications about committed client mutations. May be nil.
type EventSink interface {
	ClientChanged(clientID int64)
}

// ClientService owns the ordinary CRUD flows around client records. The
// dedupe package handles everything that crosses more than one client.
type ClientService struct {
	db      *postgres.DB
	clients *postgres.ClientRepository
	phones  *postgres.ContactNumberRepository
	cases   *postgres.CaseRepository
	notes   *postgres.NoteRepository
	docs    *postgres.DocumentRepository
	leads   *postgres.LeadReferenceRepository
	events  EventSink
	logger  *zap.Logger
}

func NewClientService(
	db *postgres.DB,
	clients *postgres.ClientRepository,
	phones *postgres.ContactNumberRepository,
	cases *postgres.CaseRepository,
	notes *postgres.NoteRepository,
	docs *postgres.DocumentRepository,
	leads *postgres.LeadReferenceRepository,
	events EventSink,
	logger *zap.Logger,
) *ClientService {
	return &ClientService{
		db:      db,
		clients: clients,
		phones:  phones,
		cases:   cases,
		notes:   notes,
		docs:    docs,
		leads:   leads,
		events:  events,
		logger:  logger,
	}
}

// CreateClient creates a client with an optional initial contact number.
// At least one identifying attribute (name, email or phone) must be present.
func (s *ClientService) CreateClient(ctx context.Context, req *client.CreateClientRequest) (*client.Detail, error) {
	if req.FirstName == "" && req.LastName == "" && req.Email == "" && req.Phone == "" {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "client needs at least a name, email or phone")
	}

	c := &client.Client{
		Code:               "CL-" + ulid.Make().String(),
		FirstName:          client.NullText(req.FirstName),
		LastName:           client.NullText(req.LastName),
		Email:              client.NullText(req.Email),
		BillingCustomerRef: client.NullText(req.BillingCustomerRef),
		Tags:               pq.StringArray(req.Tags),
	}
	if req.CountryID != nil {
		c.CountryID.Int64, c.CountryID.Valid = *req.CountryID, true
	}
	if req.CityID != nil {
		c.CityID.Int64, c.CityID.Valid = *req.CityID, true
	}

	if err := s.clients.Create(ctx, c); err != nil {
		s.logger.Error("failed to create client", zap.Error(err))
		return nil, err
	}

	phones := []client.ContactNumber{}
	if req.Phone != "" {
		n := &client.ContactNumber{
			ClientID:     c.ID,
			Phone:        req.Phone,
			HasMessaging: req.HasMessaging,
		}
		if err := s.phones.Create(ctx, n); err != nil {
			s.logger.Error("failed to create initial contact number", zap.Error(err))
			return nil, err
		}
		phones = append(phones, *n)
	}

	s.logger.Info("client created",
		zap.Int64("client_id", c.ID),
		zap.String("code", c.Code),
	)

	if s.events != nil {
		s.events.ClientChanged(c.ID)
	}

	return &client.Detail{Client: *c, Phones: phones}, nil
}

// GetClient retrieves a client with its contact numbers
func (s *ClientService) GetClient(ctx context.Context, id int64) (*client.Detail, error) {
	c, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	phones, err := s.phones.ListByClient(ctx, id)
	if err != nil {
		return nil, err
	}

	return &client.Detail{Client: *c, Phones: phones}, nil
}

// ListClients retrieves clients with search and pagination
func (s *ClientService) ListClients(ctx context.Context, filters *client.ListFilters) (*client.ListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	if filters.PageSize > 100 {
		filters.PageSize = 100
	}

	clients, total, err := s.clients.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	totalPages := int(total) / filters.PageSize
	if int(total)%filters.PageSize > 0 {
		totalPages++
	}

	return &client.ListResponse{
		Clients:    clients,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdateClient applies a partial update to a client's fields
func (s *ClientService) UpdateClient(ctx context.Context, id int64, req *client.UpdateClientRequest) (*client.Detail, error) {
	patch := client.FieldPatch{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		CountryID:          req.CountryID,
		CityID:             req.CityID,
		BillingCustomerRef: req.BillingCustomerRef,
	}

	if !patch.IsZero() {
		if err := s.clients.UpdateFields(ctx, id, patch); err != nil {
			s.logger.Error("failed to update client", zap.Error(err))
			return nil, err
		}
	}

	if req.Tags != nil {
		if err := s.clients.UpdateTags(ctx, id, req.Tags); err != nil {
			return nil, err
		}
	}

	s.logger.Info("client updated", zap.Int64("client_id", id))

	if s.events != nil {
		s.events.ClientChanged(id)
	}

	return s.GetClient(ctx, id)
}

// DeleteClient removes a client and its contact numbers. Clients with open
// cases or other dependent rows are protected by foreign keys; merging is
// the supported way to retire a duplicate that owns data.
func (s *ClientService) DeleteClient(ctx context.Context, id int64) error {
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.phones.DeleteByClientWithTx(ctx, tx, id); err != nil {
			return err
		}
		return s.clients.DeleteWithTx(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("client deleted", zap.Int64("client_id", id))

	if s.events != nil {
		s.events.ClientChanged(id)
	}

	return nil
}

// AddPhone adds a contact number to a client
func (s *ClientService) AddPhone(ctx context.Context, clientID int64, req *client.AddPhoneRequest) (*client.ContactNumber, error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		return nil, err
	}

	n := &client.ContactNumber{
		ClientID:     clientID,
		Phone:        req.Phone,
		HasMessaging: req.HasMessaging,
	}
	if err := s.phones.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.ClientChanged(clientID)
	}

	return n, nil
}

// RemovePhone removes a contact number from a client
func (s *ClientService) RemovePhone(ctx context.Context, clientID, phoneID int64) error {
	if err := s.phones.Delete(ctx, phoneID, clientID); err != nil {
		return err
	}

	if s.events != nil {
		s.events.ClientChanged(clientID)
	}

	return nil
}

// ListNotes retrieves a client's notes
func (s *ClientService) ListNotes(ctx context.Context, clientID int64) ([]related.ClientNote, error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		return nil, err
	}
	return s.notes.ListByClient(ctx, clientID)
}

// AddNote records a note on a client, attributed to the acting user
func (s *ClientService) AddNote(ctx context.Context, clientID, authorID int64, req *related.AddNoteRequest) (*related.ClientNote, error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		return nil, err
	}

	n := &related.ClientNote{
		ClientID: clientID,
		AuthorID: authorID,
		Body:     req.Body,
	}
	if err := s.notes.Create(ctx, n); err != nil {
		return nil, err
	}

	return n, nil
}

// ListCases retrieves a client's cases
func (s *ClientService) ListCases(ctx context.Context, clientID int64) ([]related.Case, error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		return nil, err
	}
	return s.cases.ListByClient(ctx, clientID)
}

// CreateCase opens a case for a client
func (s *ClientService) CreateCase(ctx context.Context, clientID int64, req *related.CreateCaseRequest) (*related.Case, error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		return nil, err
	}

	c := &related.Case{
		ClientID: clientID,
		Code:     "CA-" + ulid.Make().String(),
		Title:    req.Title,
		Status:   "open",
	}
	if err := s.cases.Create(ctx, c); err != nil {
		s.logger.Error("failed to create case", zap.Error(err))
		return nil, err
	}

	s.logger.Info("case created",
		zap.Int64("case_id", c.ID),
		zap.Int64("client_id", clientID),
		zap.String("code", c.Code),
	)

	return c, nil
}

// ListDocuments retrieves a client's documents
func (s *ClientService) ListDocuments(ctx context.Context, clientID int64) ([]related.ClientDocument, error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		return nil, err
	}
	return s.docs.ListByClient(ctx, clientID)
}

// ListLeads retrieves a client's external lead references
func (s *ClientService) ListLeads(ctx context.Context, clientID int64) ([]related.LeadReference, error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		return nil, err
	}
	return s.leads.ListByClient(ctx, clientID)
}
