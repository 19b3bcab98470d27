package webauthn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asgardeo/webauthncore/internal/store"
)

func testWebAuthnWithStore(t *testing.T) (*WebAuthn, *store.Adapter) {
	t.Helper()
	adapter := store.NewInMemoryAdapter()
	w, err := New(Config{
		RPName:      "Example Corp",
		RPID:        testRPID,
		Origins:     []string{testOrigin},
		TokenSecret: make([]byte, 32),
		Store:       adapter,
	})
	require.NoError(t, err)
	return w, adapter
}

func TestCreateAndValidateSessionStandalone(t *testing.T) {
	w := testWebAuthn(t)
	token, err := w.CreateSession("user-1", []byte{0x01}, true, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	sess, err := w.ValidateSession(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sess.UserID)
	assert.True(t, sess.UserVerified)
}

func TestValidateSessionRejectsTamperedToken(t *testing.T) {
	w := testWebAuthn(t)
	token, err := w.CreateSession("user-1", nil, false, nil)
	require.NoError(t, err)

	_, err = w.ValidateSession(token + "x")
	assert.Error(t, err)
}

func TestValidateSessionRejectsExpiredToken(t *testing.T) {
	w, err := New(Config{
		RPName:          "Example Corp",
		RPID:            testRPID,
		Origins:         []string{testOrigin},
		TokenSecret:     make([]byte, 32),
		SessionDuration: time.Nanosecond,
	})
	require.NoError(t, err)

	token, err := w.CreateSession("user-1", nil, false, nil)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	_, err = w.ValidateSession(token)
	assert.Error(t, err)
}

func TestCreateSessionPersistsToStore(t *testing.T) {
	w, adapter := testWebAuthnWithStore(t)
	token, err := w.CreateSession("user-1", []byte{0xaa}, true, map[string]interface{}{"k": "v"})
	require.NoError(t, err)

	sess, err := w.ValidateSession(token)
	require.NoError(t, err)

	rec, err := adapter.Sessions.Find(sess.SessionID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "user-1", rec.UserID)
}

func TestValidateSessionPrefersStoreOverToken(t *testing.T) {
	w, adapter := testWebAuthnWithStore(t)
	token, err := w.CreateSession("user-1", nil, false, nil)
	require.NoError(t, err)

	sess, err := w.ValidateSession(token)
	require.NoError(t, err)

	// Mutate the stored record directly; the token itself still carries
	// the stale copy.
	rec, err := adapter.Sessions.Find(sess.SessionID)
	require.NoError(t, err)
	rec.UserVerified = true
	require.NoError(t, adapter.Sessions.Update(sess.SessionID, *rec))

	updated, err := w.ValidateSession(token)
	require.NoError(t, err)
	assert.True(t, updated.UserVerified)
}

func TestValidateSessionNotFoundWhenStoreMissesRecord(t *testing.T) {
	w, adapter := testWebAuthnWithStore(t)
	token, err := w.CreateSession("user-1", nil, false, nil)
	require.NoError(t, err)

	sess, err := w.ValidateSession(token)
	require.NoError(t, err)
	require.NoError(t, adapter.Sessions.Delete(sess.SessionID))

	_, err = w.ValidateSession(token)
	require.Error(t, err)
	var wErr *Error
	require.ErrorAs(t, err, &wErr)
	assert.Equal(t, "WAC-1503", wErr.Code())
}

func TestRefreshSessionExtendsExpiry(t *testing.T) {
	w := testWebAuthn(t)
	token, err := w.CreateSession("user-1", nil, false, nil)
	require.NoError(t, err)

	original, err := w.ValidateSession(token)
	require.NoError(t, err)

	newToken, err := w.RefreshSession(token)
	require.NoError(t, err)
	assert.NotEqual(t, token, newToken)

	refreshed, err := w.ValidateSession(newToken)
	require.NoError(t, err)
	assert.True(t, refreshed.ExpiresAt.After(original.ExpiresAt) || refreshed.ExpiresAt.Equal(original.ExpiresAt))
}

func TestRevokeSessionRemovesFromStore(t *testing.T) {
	w, adapter := testWebAuthnWithStore(t)
	token, err := w.CreateSession("user-1", nil, false, nil)
	require.NoError(t, err)

	sess, err := w.ValidateSession(token)
	require.NoError(t, err)

	w.RevokeSession(token)

	rec, err := adapter.Sessions.Find(sess.SessionID)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRevokeSessionNeverErrorsOnGarbageToken(t *testing.T) {
	w := testWebAuthn(t)
	assert.NotPanics(t, func() {
		w.RevokeSession("not-a-real-token")
	})
}
