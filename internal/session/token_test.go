package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	UserID string `json:"user_id"`
}

func TestSealOpenRoundTrip(t *testing.T) {
	secret := []byte("a very secret token key of any length")
	createdAt := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	token, err := Seal("session-123", payload{UserID: "user-1"}, createdAt, secret)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	opened, err := Open(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "session-123", opened.SessionID)
	assert.True(t, createdAt.Equal(opened.CreatedAt))

	var got payload
	require.NoError(t, json.Unmarshal(opened.Data, &got))
	assert.Equal(t, "user-1", got.UserID)
}

func TestOpenRejectsWrongSecret(t *testing.T) {
	secret := []byte("correct-secret")
	token, err := Seal("session-abc", payload{UserID: "u"}, time.Now().UTC().Truncate(time.Second), secret)
	require.NoError(t, err)

	_, err = Open(token, []byte("wrong-secret"))
	assert.Error(t, err)
}

func TestOpenRejectsTamperedToken(t *testing.T) {
	secret := []byte("secret")
	token, err := Seal("session-xyz", payload{UserID: "u"}, time.Now().UTC().Truncate(time.Second), secret)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "zz"
	_, err = Open(tampered, secret)
	assert.Error(t, err)
}

func TestOpenRejectsMalformedEnvelope(t *testing.T) {
	_, err := Open("not-a-valid-token!!", []byte("secret"))
	assert.Error(t, err)
}

func TestOpenRejectsEmptyToken(t *testing.T) {
	_, err := Open("", []byte("secret"))
	assert.Error(t, err)
}

func TestSealProducesDistinctTokensForSamePayload(t *testing.T) {
	secret := []byte("secret")
	createdAt := time.Now().UTC().Truncate(time.Second)

	a, err := Seal("s", payload{UserID: "u"}, createdAt, secret)
	require.NoError(t, err)
	b, err := Seal("s", payload{UserID: "u"}, createdAt, secret)
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "fresh salt and IV must make repeated seals of identical input distinct")
}

func TestGenerateSessionIDUniqueAndURLSafe(t *testing.T) {
	a, err := GenerateSessionID()
	require.NoError(t, err)
	b, err := GenerateSessionID()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "=")
	assert.NotContains(t, a, "+")
	assert.NotContains(t, a, "/")
}
