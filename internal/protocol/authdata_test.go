package protocol

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asgardeo/webauthncore/internal/protocol/cbor"
)

func fixedAuthDataHeader(flags byte, counter uint32) []byte {
	buf := make([]byte, 37)
	copy(buf[:32], make([]byte, 32))
	buf[32] = flags
	binary.BigEndian.PutUint32(buf[33:37], counter)
	return buf
}

func TestParseAuthenticatorDataTooShort(t *testing.T) {
	_, err := ParseAuthenticatorData(make([]byte, 36))
	assert.Error(t, err)
}

func TestParseAuthenticatorDataMinimalAccepted(t *testing.T) {
	data := fixedAuthDataHeader(byte(FlagUserPresent), 7)
	authData, err := ParseAuthenticatorData(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), authData.Counter)
	assert.True(t, authData.Flags.HasUserPresent())
	assert.False(t, authData.Flags.HasAttestedCredentialData())
	assert.Nil(t, authData.Attested)
}

func TestParseAuthenticatorDataWithAttestedCredential(t *testing.T) {
	header := fixedAuthDataHeader(byte(FlagUserPresent)|byte(FlagAttestedData), 1)

	aaguid := make([]byte, 16)
	credID := []byte{0xaa, 0xbb, 0xcc}
	credIDLen := make([]byte, 2)
	binary.BigEndian.PutUint16(credIDLen, uint16(len(credID)))

	coseKey, err := cbor.Encode(cbor.Map(
		cbor.Pair{Key: cbor.Uint(1), Value: cbor.Uint(uint64(coseKtyEC2))},
		cbor.Pair{Key: cbor.NegInt(-1), Value: cbor.Uint(uint64(CurveP256))},
		cbor.Pair{Key: cbor.NegInt(-2), Value: cbor.Bytes(make([]byte, 32))},
		cbor.Pair{Key: cbor.NegInt(-3), Value: cbor.Bytes(make([]byte, 32))},
	))
	require.NoError(t, err)

	data := append(header, aaguid...)
	data = append(data, credIDLen...)
	data = append(data, credID...)
	data = append(data, coseKey...)

	authData, err := ParseAuthenticatorData(data)
	require.NoError(t, err)
	require.NotNil(t, authData.Attested)
	assert.Equal(t, credID, authData.Attested.CredentialID)
	assert.Equal(t, aaguid, authData.Attested.AAGUID)
	assert.Equal(t, coseKey, authData.Attested.CredentialPublicKey)
	require.NotNil(t, authData.Attested.ParsedPublicKey)
	assert.Equal(t, AlgES256, authData.Attested.ParsedPublicKey.Algorithm)
}

func TestParseAuthenticatorDataTruncatedAttestedCredential(t *testing.T) {
	header := fixedAuthDataHeader(byte(FlagAttestedData), 1)
	// AAGUID present but credential-id length field missing.
	data := append(header, make([]byte, 16)...)
	_, err := ParseAuthenticatorData(data)
	assert.Error(t, err)
}

func TestFlagValidation(t *testing.T) {
	noUP := AuthenticatorData{Flags: AuthenticatorFlags(0)}
	assert.Error(t, noUP.Validate(FlagRequirements{RequireUserPresence: true}))
	assert.NoError(t, noUP.Validate(FlagRequirements{RequireUserPresence: false}))

	noUV := AuthenticatorData{Flags: AuthenticatorFlags(FlagUserPresent)}
	assert.NoError(t, noUV.Validate(FlagRequirements{RequireUserPresence: true}))
	assert.Error(t, noUV.Validate(FlagRequirements{RequireUserPresence: true, RequireUserVerification: true}))

	withUV := AuthenticatorData{Flags: AuthenticatorFlags(FlagUserPresent | FlagUserVerified)}
	assert.NoError(t, withUV.Validate(FlagRequirements{RequireUserPresence: true, RequireUserVerification: true}))
}

func TestFlagBitMasks(t *testing.T) {
	f := AuthenticatorFlags(FlagUserPresent | FlagBackupEligible | FlagBackupState)
	assert.True(t, f.HasUserPresent())
	assert.False(t, f.HasUserVerified())
	assert.True(t, f.HasBackupEligible())
	assert.True(t, f.HasBackupState())
	assert.False(t, f.HasAttestedCredentialData())
	assert.False(t, f.HasExtensionData())
}
