package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xerrors "atriumcrm-service/internal/pkg/errors"
)

func TestIssueAndVerifyRoundtrip(t *testing.T) {
	mgr := NewManager("test-secret", "atriumcrm", time.Hour)

	signed, err := mgr.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := mgr.Verify(signed)
	require.NoError(t, err)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, "atriumcrm", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	mgr := NewManager("test-secret", "atriumcrm", -time.Minute)

	signed, err := mgr.Issue(42)
	require.NoError(t, err)

	_, err = mgr.Verify(signed)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	other := NewManager("test-secret", "someone-else", time.Hour)
	signed, err := other.Issue(42)
	require.NoError(t, err)

	mgr := NewManager("test-secret", "atriumcrm", time.Hour)
	_, err = mgr.Verify(signed)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	mgr := NewManager("test-secret", "atriumcrm", time.Hour)
	signed, err := mgr.Issue(42)
	require.NoError(t, err)

	other := NewManager("another-secret", "atriumcrm", time.Hour)
	_, err = other.Verify(signed)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	mgr := NewManager("test-secret", "atriumcrm", time.Hour)

	_, err := mgr.Verify("not.a.token")
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}
