package dedupe

import (
	"context"
	"sort"
	"strings"
	"time"

	"atriumcrm-service/internal/domain/client"
	"atriumcrm-service/internal/domain/related"
	xerrors "atriumcrm-service/internal/pkg/errors"
)

// fakeStore is an in-memory Store with transactional semantics: WithTx runs
// against a deep copy of the state and only swaps it in when fn succeeds, so
// rollback behavior can be asserted for real.
type fakeStore struct {
	state    *fakeState
	failOn   map[string]error
	lockCall int
}

type fakeState struct {
	clients map[int64]client.Client
	phones  map[int64]client.ContactNumber
	cases   map[int64]related.Case
	notes   map[int64]related.ClientNote
	docs    map[int64]related.ClientDocument
	leads   map[int64]related.LeadReference
	nextID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		state: &fakeState{
			clients: map[int64]client.Client{},
			phones:  map[int64]client.ContactNumber{},
			cases:   map[int64]related.Case{},
			notes:   map[int64]related.ClientNote{},
			docs:    map[int64]related.ClientDocument{},
			leads:   map[int64]related.LeadReference{},
			nextID:  1,
		},
		failOn: map[string]error{},
	}
}

func (s *fakeState) clone() *fakeState {
	c := &fakeState{
		clients: map[int64]client.Client{},
		phones:  map[int64]client.ContactNumber{},
		cases:   map[int64]related.Case{},
		notes:   map[int64]related.ClientNote{},
		docs:    map[int64]related.ClientDocument{},
		leads:   map[int64]related.LeadReference{},
		nextID:  s.nextID,
	}
	for k, v := range s.clients {
		c.clients[k] = v
	}
	for k, v := range s.phones {
		c.phones[k] = v
	}
	for k, v := range s.cases {
		c.cases[k] = v
	}
	for k, v := range s.notes {
		c.notes[k] = v
	}
	for k, v := range s.docs {
		c.docs[k] = v
	}
	for k, v := range s.leads {
		c.leads[k] = v
	}
	return c
}

func (s *fakeStore) id() int64 {
	id := s.state.nextID
	s.state.nextID++
	return id
}

// --- builders ---

func (s *fakeStore) addClient(code, first, last, email string) int64 {
	id := s.id()
	s.state.clients[id] = client.Client{
		ID:        id,
		Code:      code,
		FirstName: client.NullText(first),
		LastName:  client.NullText(last),
		Email:     client.NullText(email),
		CreatedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	return id
}

func (s *fakeStore) setClient(c client.Client) {
	s.state.clients[c.ID] = c
}

func (s *fakeStore) addPhone(clientID int64, phone string) int64 {
	id := s.id()
	s.state.phones[id] = client.ContactNumber{ID: id, ClientID: clientID, Phone: phone}
	return id
}

func (s *fakeStore) addCase(clientID int64, code string) int64 {
	id := s.id()
	s.state.cases[id] = related.Case{ID: id, ClientID: clientID, Code: code, Status: "open"}
	return id
}

func (s *fakeStore) addNote(clientID, authorID int64, body string) int64 {
	id := s.id()
	s.state.notes[id] = related.ClientNote{ID: id, ClientID: clientID, AuthorID: authorID, Body: body}
	return id
}

func (s *fakeStore) addDocument(clientID int64, name string) int64 {
	id := s.id()
	s.state.docs[id] = related.ClientDocument{ID: id, ClientID: clientID, FileName: name}
	return id
}

func (s *fakeStore) addLead(clientID int64, source string) int64 {
	id := s.id()
	s.state.leads[id] = related.LeadReference{ID: id, ClientID: clientID, Source: source}
	return id
}

func (s *fakeStore) notesByClient(clientID int64) []related.ClientNote {
	out := []related.ClientNote{}
	for _, id := range sortedKeys(s.state.notes) {
		n := s.state.notes[id]
		if n.ClientID == clientID {
			out = append(out, n)
		}
	}
	return out
}

func (s *fakeStore) phonesByClient(clientID int64) []client.ContactNumber {
	out := []client.ContactNumber{}
	for _, id := range sortedKeys(s.state.phones) {
		p := s.state.phones[id]
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// --- Store ---

func (s *fakeStore) fail(op string) error {
	return s.failOn[op]
}

func (s *fakeStore) FindClient(ctx context.Context, id int64) (*client.Client, error) {
	if err := s.fail("FindClient"); err != nil {
		return nil, err
	}
	return findClientIn(s.state, id)
}

func (s *fakeStore) FindPhonesByClient(ctx context.Context, clientID int64) ([]client.ContactNumber, error) {
	if err := s.fail("FindPhonesByClient"); err != nil {
		return nil, err
	}
	return s.phonesByClient(clientID), nil
}

func (s *fakeStore) FindPhonesByNumbers(ctx context.Context, numbers []string, excludeClientID int64) ([]client.ContactNumber, error) {
	if err := s.fail("FindPhonesByNumbers"); err != nil {
		return nil, err
	}
	want := map[string]bool{}
	for _, n := range numbers {
		want[n] = true
	}
	out := []client.ContactNumber{}
	for _, id := range sortedKeys(s.state.phones) {
		p := s.state.phones[id]
		if p.ClientID != excludeClientID && want[p.Phone] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) FindClientsByEmail(ctx context.Context, email string, excludeID int64) ([]client.Client, error) {
	if err := s.fail("FindClientsByEmail"); err != nil {
		return nil, err
	}
	out := []client.Client{}
	for _, id := range sortedKeys(s.state.clients) {
		c := s.state.clients[id]
		if c.ID != excludeID && client.HasText(c.Email) && strings.EqualFold(c.Email.String, email) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeStore) FindClientsByName(ctx context.Context, first, last string, excludeID int64) ([]client.Client, error) {
	if err := s.fail("FindClientsByName"); err != nil {
		return nil, err
	}
	out := []client.Client{}
	for _, id := range sortedKeys(s.state.clients) {
		c := s.state.clients[id]
		if c.ID != excludeID && c.FirstName.String == first && c.LastName.String == last &&
			client.HasText(c.FirstName) && client.HasText(c.LastName) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(Tx) error) error {
	if err := s.fail("WithTx"); err != nil {
		return err
	}
	work := s.state.clone()
	if err := fn(&fakeTx{store: s, state: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// --- Tx ---

type fakeTx struct {
	store *fakeStore
	state *fakeState
}

func findClientIn(state *fakeState, id int64) (*client.Client, error) {
	c, ok := state.clients[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &c, nil
}

func (t *fakeTx) LockClients(ctx context.Context, ids ...int64) error {
	if err := t.store.fail("LockClients"); err != nil {
		return err
	}
	t.store.lockCall++
	return nil
}

func (t *fakeTx) FindClient(ctx context.Context, id int64) (*client.Client, error) {
	if err := t.store.fail("TxFindClient"); err != nil {
		return nil, err
	}
	return findClientIn(t.state, id)
}

func (t *fakeTx) FindPhonesByClient(ctx context.Context, clientID int64) ([]client.ContactNumber, error) {
	out := []client.ContactNumber{}
	for _, id := range sortedKeys(t.state.phones) {
		p := t.state.phones[id]
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (t *fakeTx) UpdateClientFields(ctx context.Context, id int64, patch client.FieldPatch) error {
	if err := t.store.fail("UpdateClientFields"); err != nil {
		return err
	}
	c, ok := t.state.clients[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	if patch.FirstName != nil {
		c.FirstName = client.NullText(*patch.FirstName)
	}
	if patch.LastName != nil {
		c.LastName = client.NullText(*patch.LastName)
	}
	if patch.Email != nil {
		c.Email = client.NullText(*patch.Email)
	}
	if patch.CountryID != nil {
		c.CountryID.Int64, c.CountryID.Valid = *patch.CountryID, true
	}
	if patch.CityID != nil {
		c.CityID.Int64, c.CityID.Valid = *patch.CityID, true
	}
	if patch.BillingCustomerRef != nil {
		c.BillingCustomerRef = client.NullText(*patch.BillingCustomerRef)
	}
	t.state.clients[id] = c
	return nil
}

func (t *fakeTx) ReassignPhone(ctx context.Context, phoneID, newOwnerID int64) error {
	if err := t.store.fail("ReassignPhone"); err != nil {
		return err
	}
	p, ok := t.state.phones[phoneID]
	if !ok {
		return xerrors.ErrNotFound
	}
	p.ClientID = newOwnerID
	t.state.phones[phoneID] = p
	return nil
}

func (t *fakeTx) ReassignOwned(ctx context.Context, kind related.Kind, ownerID, newOwnerID int64) (int64, error) {
	if err := t.store.fail("ReassignOwned:" + string(kind)); err != nil {
		return 0, err
	}
	var count int64
	switch kind {
	case related.KindCase:
		for id, v := range t.state.cases {
			if v.ClientID == ownerID {
				v.ClientID = newOwnerID
				t.state.cases[id] = v
				count++
			}
		}
	case related.KindNote:
		for id, v := range t.state.notes {
			if v.ClientID == ownerID {
				v.ClientID = newOwnerID
				t.state.notes[id] = v
				count++
			}
		}
	case related.KindDocument:
		for id, v := range t.state.docs {
			if v.ClientID == ownerID {
				v.ClientID = newOwnerID
				t.state.docs[id] = v
				count++
			}
		}
	case related.KindLead:
		for id, v := range t.state.leads {
			if v.ClientID == ownerID {
				v.ClientID = newOwnerID
				t.state.leads[id] = v
				count++
			}
		}
	}
	return count, nil
}

func (t *fakeTx) CaseCodesByClient(ctx context.Context, clientID int64) ([]string, error) {
	if err := t.store.fail("CaseCodesByClient"); err != nil {
		return nil, err
	}
	out := []string{}
	for _, id := range sortedKeys(t.state.cases) {
		if t.state.cases[id].ClientID == clientID {
			out = append(out, t.state.cases[id].Code)
		}
	}
	return out, nil
}

func (t *fakeTx) InsertNote(ctx context.Context, clientID, authorID int64, body string) error {
	if err := t.store.fail("InsertNote"); err != nil {
		return err
	}
	id := t.state.nextID
	t.state.nextID++
	t.state.notes[id] = related.ClientNote{ID: id, ClientID: clientID, AuthorID: authorID, Body: body}
	return nil
}

func (t *fakeTx) DeletePhonesByClient(ctx context.Context, clientID int64) error {
	if err := t.store.fail("DeletePhonesByClient"); err != nil {
		return err
	}
	for id, p := range t.state.phones {
		if p.ClientID == clientID {
			delete(t.state.phones, id)
		}
	}
	return nil
}

func (t *fakeTx) DeleteClient(ctx context.Context, id int64) error {
	if err := t.store.fail("DeleteClient"); err != nil {
		return err
	}
	if _, ok := t.state.clients[id]; !ok {
		return xerrors.ErrNotFound
	}
	delete(t.state.clients, id)
	return nil
}

// fakeSink records merge notifications.
type fakeSink struct {
	merged [][2]int64
}

func (s *fakeSink) ClientsMerged(mainID, secondaryID int64) {
	s.merged = append(s.merged, [2]int64{mainID, secondaryID})
}
