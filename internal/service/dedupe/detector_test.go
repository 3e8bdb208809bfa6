package dedupe

import (
	"context"
	"errors"
	"testing"

	xerrors "atriumcrm-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDetector(store *fakeStore) *Detector {
	return NewDetector(store, zap.NewNop())
}

func TestDetectConflictsPhoneAndEmailGraph(t *testing.T) {
	// A and B share a phone, B and C share an email, A and C share nothing.
	store := newFakeStore()
	a := store.addClient("CL-A", "Anna", "Kowalska", "anna@example.com")
	b := store.addClient("CL-B", "Ania", "Kowalczyk", "shared@example.com")
	c := store.addClient("CL-C", "Celina", "Nowak", "shared@example.com")
	store.addPhone(a, "+48 600 100 200")
	store.addPhone(b, "+48 600 100 200")
	store.addPhone(c, "+48 700 900 900")

	det := newTestDetector(store)

	fromA, err := det.DetectConflicts(context.Background(), a)
	require.NoError(t, err)
	require.Len(t, fromA, 1)
	assert.Equal(t, b, fromA[0].Client.ID)
	assert.Equal(t, []string{"Same phone: +48 600 100 200"}, fromA[0].Reasons)

	fromB, err := det.DetectConflicts(context.Background(), b)
	require.NoError(t, err)
	require.Len(t, fromB, 2)
	assert.Equal(t, a, fromB[0].Client.ID)
	assert.Equal(t, []string{"Same phone: +48 600 100 200"}, fromB[0].Reasons)
	assert.Equal(t, c, fromB[1].Client.ID)
	assert.Equal(t, []string{"Same email: shared@example.com"}, fromB[1].Reasons)
}

func TestDetectConflictsAccumulatesReasonsOnOneCandidate(t *testing.T) {
	store := newFakeStore()
	subject := store.addClient("CL-A", "Jan", "Nowak", "jan@example.com")
	twin := store.addClient("CL-B", "Jan", "Nowak", "jan@example.com")
	store.addPhone(subject, "+48 601 000 111")
	store.addPhone(twin, "+48 601 000 111")

	det := newTestDetector(store)

	got, err := det.DetectConflicts(context.Background(), subject)
	require.NoError(t, err)
	require.Len(t, got, 1, "same candidate must not appear twice")
	assert.Equal(t, twin, got[0].Client.ID)
	assert.Equal(t, []string{
		"Same phone: +48 601 000 111",
		"Same email: jan@example.com",
		"Same name: Jan Nowak",
	}, got[0].Reasons)
	require.Len(t, got[0].Phones, 1)
	assert.Equal(t, "+48 601 000 111", got[0].Phones[0].Phone)
}

func TestDetectConflictsJoinsMultipleMatchedNumbers(t *testing.T) {
	store := newFakeStore()
	subject := store.addClient("CL-A", "", "", "")
	other := store.addClient("CL-B", "", "", "")
	store.addPhone(subject, "+48 601 000 111")
	store.addPhone(subject, "+48 602 000 222")
	store.addPhone(other, "+48 601 000 111")
	store.addPhone(other, "+48 602 000 222")

	det := newTestDetector(store)

	got, err := det.DetectConflicts(context.Background(), subject)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Same phone: +48 601 000 111, +48 602 000 222"}, got[0].Reasons)
}

func TestDetectConflictsNeverReturnsSubject(t *testing.T) {
	store := newFakeStore()
	subject := store.addClient("CL-A", "Jan", "Nowak", "jan@example.com")
	store.addPhone(subject, "+48 601 000 111")
	// A second phone row on the subject itself with the same string must not
	// surface the subject as its own duplicate.
	store.addPhone(subject, "+48 601 000 111")

	det := newTestDetector(store)

	got, err := det.DetectConflicts(context.Background(), subject)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDetectConflictsEmailIsCaseInsensitive(t *testing.T) {
	store := newFakeStore()
	subject := store.addClient("CL-A", "", "", "Jan.Nowak@Example.com")
	other := store.addClient("CL-B", "", "", "jan.nowak@example.com")

	det := newTestDetector(store)

	got, err := det.DetectConflicts(context.Background(), subject)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, other, got[0].Client.ID)
	assert.Equal(t, []string{"Same email: Jan.Nowak@Example.com"}, got[0].Reasons)
}

func TestDetectConflictsNameNeedsBothParts(t *testing.T) {
	store := newFakeStore()
	subject := store.addClient("CL-A", "Jan", "", "")
	store.addClient("CL-B", "Jan", "", "")

	det := newTestDetector(store)

	got, err := det.DetectConflicts(context.Background(), subject)
	require.NoError(t, err)
	assert.Empty(t, got, "first name alone is not a match signal")
}

func TestDetectConflictsSubjectMissing(t *testing.T) {
	store := newFakeStore()

	det := newTestDetector(store)

	_, err := det.DetectConflicts(context.Background(), 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestDetectConflictsStoreErrorPropagates(t *testing.T) {
	store := newFakeStore()
	subject := store.addClient("CL-A", "", "", "")
	other := store.addClient("CL-B", "", "", "")
	store.addPhone(subject, "+48 601 000 111")
	store.addPhone(other, "+48 601 000 111")

	boom := errors.New("connection reset")
	store.failOn["FindPhonesByNumbers"] = boom

	det := newTestDetector(store)

	got, err := det.DetectConflicts(context.Background(), subject)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, got, "no partial result on store failure")
}
