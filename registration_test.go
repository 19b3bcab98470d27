package webauthn

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asgardeo/webauthncore/internal/encoding"
	"github.com/asgardeo/webauthncore/internal/hash"
	"github.com/asgardeo/webauthncore/internal/protocol/cbor"
)

const testRPID = "example.com"
const testOrigin = "https://example.com"

func testWebAuthn(t *testing.T) *WebAuthn {
	t.Helper()
	w, err := New(Config{
		RPName:      "Example Corp",
		RPID:        testRPID,
		Origins:     []string{testOrigin},
		TokenSecret: make([]byte, 32),
	})
	require.NoError(t, err)
	return w
}

func buildAuthData(t *testing.T, flags byte, counter uint32, credID []byte, coseKey []byte) []byte {
	t.Helper()
	rpIDHash := hash.SHA256Sum([]byte(testRPID))

	buf := make([]byte, 37)
	copy(buf[:32], rpIDHash[:])
	buf[32] = flags
	binary.BigEndian.PutUint32(buf[33:37], counter)

	if flags&0x40 == 0 { // AT not set
		return buf
	}

	aaguid := make([]byte, 16)
	credIDLen := make([]byte, 2)
	binary.BigEndian.PutUint16(credIDLen, uint16(len(credID)))

	out := append(buf, aaguid...)
	out = append(out, credIDLen...)
	out = append(out, credID...)
	out = append(out, coseKey...)
	return out
}

func ec2CoseKey(t *testing.T) []byte {
	t.Helper()
	encoded, err := cbor.Encode(cbor.Map(
		cbor.Pair{Key: cbor.Uint(1), Value: cbor.Uint(2)},        // kty: EC2
		cbor.Pair{Key: cbor.Uint(3), Value: cbor.NegInt(-7)},     // alg: ES256
		cbor.Pair{Key: cbor.NegInt(-1), Value: cbor.Uint(1)},     // crv: P-256
		cbor.Pair{Key: cbor.NegInt(-2), Value: cbor.Bytes(make([]byte, 32))},
		cbor.Pair{Key: cbor.NegInt(-3), Value: cbor.Bytes(make([]byte, 32))},
	))
	require.NoError(t, err)
	return encoded
}

func buildAttestationObject(t *testing.T, authData []byte) []byte {
	t.Helper()
	encoded, err := cbor.Encode(cbor.Map(
		cbor.Pair{Key: cbor.Text("fmt"), Value: cbor.Text("none")},
		cbor.Pair{Key: cbor.Text("attStmt"), Value: cbor.Map()},
		cbor.Pair{Key: cbor.Text("authData"), Value: cbor.Bytes(authData)},
	))
	require.NoError(t, err)
	return encoded
}

func clientDataJSON(t *testing.T, typ, challenge, origin string) []byte {
	t.Helper()
	data, err := json.Marshal(map[string]interface{}{
		"type":      typ,
		"challenge": challenge,
		"origin":    origin,
	})
	require.NoError(t, err)
	return data
}

func buildRegistrationResponse(t *testing.T, challenge string, credID []byte, authData []byte) []byte {
	t.Helper()
	clientData := clientDataJSON(t, "webauthn.create", challenge, testOrigin)
	attObj := buildAttestationObject(t, authData)

	body := map[string]interface{}{
		"id":    encoding.EncodeToString(credID),
		"rawId": encoding.EncodeToString(credID),
		"type":  "public-key",
		"response": map[string]interface{}{
			"clientDataJSON":    base64.RawURLEncoding.EncodeToString(clientData),
			"attestationObject": base64.RawURLEncoding.EncodeToString(attObj),
		},
	}
	out, err := json.Marshal(body)
	require.NoError(t, err)
	return out
}

func TestBeginRegistrationPopulatesOptions(t *testing.T) {
	w := testWebAuthn(t)
	user := User{ID: "u1", Username: "alice", DisplayName: "Alice"}

	options, challenge, err := w.BeginRegistration(user)
	require.NoError(t, err)
	assert.NotEmpty(t, challenge)
	assert.Equal(t, testRPID, options.RelyingParty.ID)
	assert.Equal(t, "alice", options.User.Name)
	assert.NotEmpty(t, options.PubKeyCredParams)
}

func TestFinishRegistrationSucceeds(t *testing.T) {
	w := testWebAuthn(t)
	credID := []byte{0x01, 0x02, 0x03, 0x04}
	authData := buildAuthData(t, 0x41, 1, credID, ec2CoseKey(t)) // UP + AT

	challenge := "test-challenge-value"
	respJSON := buildRegistrationResponse(t, challenge, credID, authData)

	info, err := w.FinishRegistration(respJSON, challenge, []string{testOrigin}, []string{testRPID}, false)
	require.NoError(t, err)
	assert.Equal(t, credID, info.CredentialID)
	assert.Equal(t, DeviceTypeSingleDevice, info.DeviceType)
	assert.False(t, info.UserVerified)
}

func TestFinishRegistrationRejectsChallengeMismatch(t *testing.T) {
	w := testWebAuthn(t)
	credID := []byte{0x01}
	authData := buildAuthData(t, 0x41, 1, credID, ec2CoseKey(t))
	respJSON := buildRegistrationResponse(t, "issued-challenge", credID, authData)

	_, err := w.FinishRegistration(respJSON, "different-challenge", []string{testOrigin}, []string{testRPID}, false)
	require.Error(t, err)
	var wErr *Error
	require.ErrorAs(t, err, &wErr)
	assert.Equal(t, "WAC-1401", wErr.Code())
}

func TestFinishRegistrationRejectsOriginMismatch(t *testing.T) {
	w := testWebAuthn(t)
	credID := []byte{0x01}
	authData := buildAuthData(t, 0x41, 1, credID, ec2CoseKey(t))
	respJSON := buildRegistrationResponse(t, "chal", credID, authData)

	_, err := w.FinishRegistration(respJSON, "chal", []string{"https://not-example.com"}, []string{testRPID}, false)
	require.Error(t, err)
	var wErr *Error
	require.ErrorAs(t, err, &wErr)
	assert.Equal(t, "WAC-1402", wErr.Code())
}

func TestFinishRegistrationRejectsMissingUserPresence(t *testing.T) {
	w := testWebAuthn(t)
	credID := []byte{0x01}
	authData := buildAuthData(t, 0x40, 1, credID, ec2CoseKey(t)) // AT only, no UP
	respJSON := buildRegistrationResponse(t, "chal", credID, authData)

	_, err := w.FinishRegistration(respJSON, "chal", []string{testOrigin}, []string{testRPID}, false)
	require.Error(t, err)
}

func TestFinishRegistrationRequiresUserVerificationWhenAsked(t *testing.T) {
	w := testWebAuthn(t)
	credID := []byte{0x01}
	authData := buildAuthData(t, 0x41, 1, credID, ec2CoseKey(t)) // UP + AT, no UV
	respJSON := buildRegistrationResponse(t, "chal", credID, authData)

	_, err := w.FinishRegistration(respJSON, "chal", []string{testOrigin}, []string{testRPID}, true)
	require.Error(t, err)
}

func TestFinishRegistrationRejectsMissingAttestedData(t *testing.T) {
	w := testWebAuthn(t)
	authData := buildAuthData(t, 0x01, 1, nil, nil) // UP only, no AT
	respJSON := buildRegistrationResponse(t, "chal", []byte{0xff}, authData)

	_, err := w.FinishRegistration(respJSON, "chal", []string{testOrigin}, []string{testRPID}, false)
	require.Error(t, err)
}

func TestFinishRegistrationDetectsMultiDeviceCredential(t *testing.T) {
	w := testWebAuthn(t)
	credID := []byte{0x02}
	authData := buildAuthData(t, 0x41|0x08, 1, credID, ec2CoseKey(t)) // UP + AT + BE
	respJSON := buildRegistrationResponse(t, "chal", credID, authData)

	info, err := w.FinishRegistration(respJSON, "chal", []string{testOrigin}, []string{testRPID}, false)
	require.NoError(t, err)
	assert.Equal(t, DeviceTypeMultiDevice, info.DeviceType)
}
