package dedupe

import (
	"context"
	"errors"
	"testing"

	"atriumcrm-service/internal/domain/client"
	xerrors "atriumcrm-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const actingUser = int64(77)

func newTestMerger(store *fakeStore, sink EventSink) *Merger {
	return NewMerger(store, sink, zap.NewNop())
}

// seedMergePair builds a main with gaps and a secondary that fills them.
func seedMergePair(store *fakeStore) (mainID, secondaryID int64) {
	mainID = store.addClient("CL-MAIN", "Jan", "", "")
	secondaryID = store.addClient("CL-SEC", "Janek", "Nowak", "jan@example.com")

	store.addPhone(mainID, "+48 601 000 111")
	store.addPhone(secondaryID, "+48 601 000 111") // duplicate of main's
	store.addPhone(secondaryID, "+48 602 000 222") // genuinely new

	store.addCase(secondaryID, "CA-100")
	store.addCase(secondaryID, "CA-101")
	store.addNote(secondaryID, 5, "called about contract")
	store.addLead(secondaryID, "webform")
	return mainID, secondaryID
}

func TestMergeClientsHappyPath(t *testing.T) {
	store := newFakeStore()
	mainID, secondaryID := seedMergePair(store)
	sink := &fakeSink{}

	merger := newTestMerger(store, sink)

	err := merger.MergeClients(context.Background(), mainID, secondaryID, actingUser)
	require.NoError(t, err)

	// Secondary is gone.
	_, err = store.FindClient(context.Background(), secondaryID)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	// Gaps filled from secondary, non-empty main fields untouched.
	main, err := store.FindClient(context.Background(), mainID)
	require.NoError(t, err)
	assert.Equal(t, "Jan", main.FirstName.String, "non-empty main field must survive")
	assert.Equal(t, "Nowak", main.LastName.String)
	assert.Equal(t, "jan@example.com", main.Email.String)

	// One new number, no duplicate rows.
	phones := store.phonesByClient(mainID)
	require.Len(t, phones, 2)
	assert.Equal(t, "+48 601 000 111", phones[0].Phone)
	assert.Equal(t, "+48 602 000 222", phones[1].Phone)

	// Dependents re-pointed.
	for _, cs := range store.state.cases {
		assert.Equal(t, mainID, cs.ClientID)
	}
	for _, l := range store.state.leads {
		assert.Equal(t, mainID, l.ClientID)
	}

	// The transferred note plus exactly one audit note, attributed to the
	// acting user.
	notes := store.notesByClient(mainID)
	require.Len(t, notes, 2)
	audit := notes[1]
	assert.Equal(t, actingUser, audit.AuthorID)
	assert.Contains(t, audit.Body, "CL-SEC")
	assert.Contains(t, audit.Body, "last name: Nowak")
	assert.Contains(t, audit.Body, "email: jan@example.com")
	assert.Contains(t, audit.Body, "+48 602 000 222")
	assert.Contains(t, audit.Body, "CA-100, CA-101")
	assert.Contains(t, audit.Body, "cases: 2")
	assert.Contains(t, audit.Body, "notes: 1")
	assert.Contains(t, audit.Body, "lead references: 1")

	require.Len(t, sink.merged, 1)
	assert.Equal(t, [2]int64{mainID, secondaryID}, sink.merged[0])
}

func TestMergeClientsRejectsSelfMerge(t *testing.T) {
	store := newFakeStore()
	id := store.addClient("CL-A", "Jan", "Nowak", "")

	merger := newTestMerger(store, nil)

	err := merger.MergeClients(context.Background(), id, id, actingUser)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestMergeClientsMissingParty(t *testing.T) {
	store := newFakeStore()
	id := store.addClient("CL-A", "Jan", "Nowak", "")

	merger := newTestMerger(store, nil)

	err := merger.MergeClients(context.Background(), id, 999, actingUser)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	var mergeErr *MergeError
	require.ErrorAs(t, err, &mergeErr)
	assert.Equal(t, StageLoad, mergeErr.Stage)
}

func TestMergeClientsRollsBackOnTransferFailure(t *testing.T) {
	store := newFakeStore()
	mainID, secondaryID := seedMergePair(store)
	before := store.state.clone()
	sink := &fakeSink{}

	// Fields merge and phone transfer run, then the case transfer blows up.
	store.failOn["ReassignOwned:case"] = errors.New("disk full")

	merger := newTestMerger(store, sink)

	err := merger.MergeClients(context.Background(), mainID, secondaryID, actingUser)
	require.Error(t, err)

	var mergeErr *MergeError
	require.ErrorAs(t, err, &mergeErr)
	assert.Equal(t, StageCases, mergeErr.Stage)
	assert.Contains(t, err.Error(), "transferring cases")

	// Both records completely unchanged: no field copies, no moved phones,
	// no audit note, secondary alive.
	assert.Equal(t, before.clients, store.state.clients)
	assert.Equal(t, before.phones, store.state.phones)
	assert.Equal(t, before.cases, store.state.cases)
	assert.Equal(t, before.notes, store.state.notes)
	assert.Equal(t, before.leads, store.state.leads)
	assert.Empty(t, sink.merged)
}

func TestMergeClientsTwiceReturnsNotFound(t *testing.T) {
	store := newFakeStore()
	mainID, secondaryID := seedMergePair(store)

	merger := newTestMerger(store, nil)

	require.NoError(t, merger.MergeClients(context.Background(), mainID, secondaryID, actingUser))

	err := merger.MergeClients(context.Background(), mainID, secondaryID, actingUser)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrNotFound, "repeat merge must not silently no-op")

	// No second audit note appeared.
	notes := store.notesByClient(mainID)
	auditCount := 0
	for _, n := range notes {
		if n.AuthorID == actingUser {
			auditCount++
		}
	}
	assert.Equal(t, 1, auditCount)
}

func TestMergeClientsSkipsFieldUpdateWhenNoGaps(t *testing.T) {
	store := newFakeStore()
	mainID := store.addClient("CL-MAIN", "Jan", "Nowak", "jan@example.com")
	secondaryID := store.addClient("CL-SEC", "Johann", "Neumann", "johann@example.com")

	merger := newTestMerger(store, nil)

	require.NoError(t, merger.MergeClients(context.Background(), mainID, secondaryID, actingUser))

	main, err := store.FindClient(context.Background(), mainID)
	require.NoError(t, err)
	assert.Equal(t, "Jan", main.FirstName.String)
	assert.Equal(t, "Nowak", main.LastName.String)
	assert.Equal(t, "jan@example.com", main.Email.String)
}

func TestMergeClientsEmptyStringCountsAsAbsent(t *testing.T) {
	store := newFakeStore()
	mainID := store.addClient("CL-MAIN", "", "", "")
	// Valid-but-empty strings on main must still be treated as gaps.
	main, _ := store.FindClient(context.Background(), mainID)
	main.Email = client.NullText("")
	store.setClient(*main)

	secondaryID := store.addClient("CL-SEC", "Jan", "Nowak", "jan@example.com")

	merger := newTestMerger(store, nil)

	require.NoError(t, merger.MergeClients(context.Background(), mainID, secondaryID, actingUser))

	got, err := store.FindClient(context.Background(), mainID)
	require.NoError(t, err)
	assert.Equal(t, "jan@example.com", got.Email.String)
}
